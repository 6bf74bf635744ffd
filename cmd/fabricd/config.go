/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package main

import (
	"fmt"
	"os"

	"github.com/YusufShahp/CSE461Proj2/log"
	"github.com/YusufShahp/CSE461Proj2/network"
	"github.com/YusufShahp/CSE461Proj2/policy"
	"github.com/YusufShahp/CSE461Proj2/topology"

	"github.com/fsnotify/fsnotify"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type config struct {
	port      int
	logDriver string
	logLevel  logging.Level
	// Path of a topology document. Empty means the embedded one.
	topology string
	network  network.Config
	rest     struct {
		enable bool
		port   uint16
		cert   string
		key    string
	}
}

func setDefaults(v *viper.Viper) {
	def := network.DefaultConfig()

	v.SetDefault("default.port", 6633)
	v.SetDefault("log.driver", log.DriverSyslog)
	v.SetDefault("log.level", "info")
	v.SetDefault("policy.default_action", def.DefaultAction.String())
	v.SetDefault("resolver.install_on_request", def.Resolver.InstallOnRequest)
	v.SetDefault("resolver.flow_cache_expiration", def.Resolver.FlowCacheExpiration)
	v.SetDefault("resolver.flow_cache_size", def.Resolver.FlowCacheSize)
	v.SetDefault("rest.enable", false)
	v.SetDefault("rest.port", 8080)
	v.SetDefault("rest.tls", false)
}

// parseConfig validates the settings of v.
func parseConfig(v *viper.Viper) (*config, error) {
	conf := new(config)

	conf.port = v.GetInt("default.port")
	if conf.port <= 0 || conf.port > 0xFFFF {
		return nil, errors.New("invalid default.port")
	}
	conf.topology = v.GetString("default.topology")

	conf.logDriver = v.GetString("log.driver")
	if conf.logDriver != log.DriverSyslog && conf.logDriver != log.DriverStderr {
		return nil, fmt.Errorf("invalid log.driver: %v", conf.logDriver)
	}
	level, err := log.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid log.level")
	}
	conf.logLevel = level

	action, err := policy.ParseDefaultAction(v.GetString("policy.default_action"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid policy.default_action")
	}
	conf.network.DefaultAction = action

	conf.network.Resolver.InstallOnRequest = v.GetBool("resolver.install_on_request")
	conf.network.Resolver.FlowCacheExpiration = v.GetDuration("resolver.flow_cache_expiration")
	if conf.network.Resolver.FlowCacheExpiration < 0 {
		return nil, errors.New("invalid resolver.flow_cache_expiration")
	}
	conf.network.Resolver.FlowCacheSize = v.GetInt("resolver.flow_cache_size")
	if conf.network.Resolver.FlowCacheSize <= 0 {
		return nil, errors.New("invalid resolver.flow_cache_size")
	}

	conf.rest.enable = v.GetBool("rest.enable")
	if conf.rest.enable {
		port := v.GetInt("rest.port")
		if port <= 0 || port > 0xFFFF {
			return nil, errors.New("invalid rest.port")
		}
		conf.rest.port = uint16(port)
		if v.GetBool("rest.tls") {
			conf.rest.cert = v.GetString("rest.cert_file")
			conf.rest.key = v.GetString("rest.key_file")
			if conf.rest.cert == "" || conf.rest.key == "" {
				return nil, errors.New("rest.cert_file and rest.key_file are required for rest.tls")
			}
		}
	}

	return conf, nil
}

// readConfig reads the config file into the global viper instance and keeps
// watching it so that log.level can be changed without restart.
func readConfig(file string) (*config, error) {
	setDefaults(viper.GetViper())
	viper.SetConfigFile(file)
	// Read the config file.
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read the config file")
	}
	conf, err := parseConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	// Watching and re-reading config file whenever it changes.
	viper.OnConfigChange(func(e fsnotify.Event) {
		// Ignore the other operations to avoid reading empty config.
		if e.Op != fsnotify.Write {
			return
		}
		if loggerLeveled == nil {
			return
		}
		level, err := log.ParseLevel(viper.GetString("log.level"))
		if err != nil {
			logger.Errorf("ignore the invalid log.level: %v", err)
			return
		}
		// Set log level for all modules
		loggerLeveled.SetLevel(level, "")
		logger.Infof("log level is changed to %v", level)
	})
	viper.WatchConfig()

	return conf, nil
}

func loadTopology(file string) (*topology.Topology, error) {
	if file == "" {
		return topology.Default(), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	topo, err := topology.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid topology document %v", file)
	}

	return topo, nil
}
