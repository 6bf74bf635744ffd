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
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YusufShahp/CSE461Proj2/api"
	"github.com/YusufShahp/CSE461Proj2/log"
	"github.com/YusufShahp/CSE461Proj2/network"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	programName    = "fabricd"
	programVersion = "0.1.0"
)

var (
	logger        = logging.MustGetLogger("main")
	loggerLeveled logging.LeveledBackend
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlag(flags *pflag.FlagSet, file *string) {
	flags.StringVar(file, "config", fmt.Sprintf("/usr/local/etc/%v.yaml", programName), "absolute path of the configuration file")
}

func newRootCommand() *cobra.Command {
	var configFile string
	var showVersion bool

	cmd := &cobra.Command{
		Use:          programName,
		Short:        "OpenFlow 1.0 controller for the access/core/datacenter fabric",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("Version: %v\n", programVersion)
				return nil
			}
			return run(configFile)
		},
	}
	addConfigFlag(cmd.PersistentFlags(), &configFile)
	cmd.Flags().BoolVar(&showVersion, "version", false, "show program version and exit")
	cmd.AddCommand(newPolicyCommand(&configFile))

	return cmd
}

func run(configFile string) error {
	conf, err := readConfig(configFile)
	if err != nil {
		return err
	}
	loggerLeveled, err = log.Init(conf.logDriver, programName, conf.logLevel)
	if err != nil {
		return err
	}
	topo, err := loadTopology(conf.topology)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	controller := network.NewController(topo, conf.network)
	if conf.rest.enable {
		initAPIServer(conf, controller)
	}
	initSignalHandler(controller, cancel)

	logger.Infof("%v %v is started: port=%v, default_action=%v", programName, programVersion, conf.port, conf.network.DefaultAction)
	return listen(ctx, conf.port, controller)
}

func initAPIServer(conf *config, controller *network.Controller) {
	go func() {
		srv := &api.Server{Port: conf.rest.port, Controller: controller}
		srv.TLS.Cert = conf.rest.cert
		srv.TLS.Key = conf.rest.key
		if err := srv.Serve(); err != nil {
			logger.Fatalf("failed to run the API server: %v", err)
		}
	}()
}

func initSignalHandler(controller *network.Controller, cancel context.CancelFunc) {
	go func() {
		c := make(chan os.Signal, 5)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

		// Infinte loop.
		for {
			s := <-c
			if s == syscall.SIGTERM || s == syscall.SIGINT {
				// Graceful shutdown
				logger.Warning("Shutting down...")
				cancel()
				// Timeout for cancelation
				time.Sleep(5 * time.Second)
				os.Exit(0)
			} else if s == syscall.SIGHUP {
				fmt.Println("* Controller status:")
				fmt.Println(controller.String())
			}
		}
	}()
}

func listen(ctx context.Context, port int, controller *network.Controller) error {
	type KeepAliver interface {
		SetKeepAlive(keepalive bool) error
		SetKeepAlivePeriod(d time.Duration) error
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%v", port))
	if err != nil {
		return fmt.Errorf("failed to listen on %v port: %v", port, err)
	}
	defer listener.Close()

	// Connection dispatcher.
	f := func(c chan<- net.Conn) {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				logger.Errorf("failed to accept a new connection: %v", err)
				continue
			}
			logger.Infof("new switch is connected from %v", conn.RemoteAddr())
			// Pass the new connection into the backlog queue.
			c <- conn
		}
	}
	backlog := make(chan net.Conn, 32)
	go f(backlog)

	// Infinite loop
	for {
		select {
		case <-ctx.Done():
			logger.Debug("terminating the main listener loop...")
			return nil
		case conn := <-backlog:
			if v, ok := conn.(KeepAliver); ok {
				if err := v.SetKeepAlive(true); err == nil {
					// Makes a broken connection will be disconnected within 45 seconds.
					v.SetKeepAlivePeriod(time.Duration(5) * time.Second)
				} else {
					logger.Errorf("failed to enable socket keepalive: %v", err)
				}
			}
			controller.AddConnection(ctx, conn)
		}
	}
}
