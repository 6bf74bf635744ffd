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
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/YusufShahp/CSE461Proj2/policy"

	"github.com/op/go-logging"
	"github.com/spf13/viper"
)

func newViper(t *testing.T, doc string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("failed to read the config: %v", err)
	}

	return v
}

func TestSampleConfig(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile("fabricd.yaml")
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	conf, err := parseConfig(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.port != 6633 {
		t.Fatalf("unexpected port: expected=6633, actual=%v", conf.port)
	}
	if conf.network.DefaultAction != policy.DefaultToController {
		t.Fatalf("unexpected default action: %v", conf.network.DefaultAction)
	}
	if conf.network.Resolver.FlowCacheExpiration != 5*time.Second {
		t.Fatalf("unexpected flow cache expiration: %v", conf.network.Resolver.FlowCacheExpiration)
	}
	if conf.rest.enable {
		t.Fatal("REST API should be disabled by default")
	}
}

func TestDefaults(t *testing.T) {
	conf, err := parseConfig(newViper(t, "log:\n  driver: stderr\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.port != 6633 || conf.logLevel != logging.INFO {
		t.Fatalf("unexpected defaults: port=%v, level=%v", conf.port, conf.logLevel)
	}
	if conf.network.DefaultAction != policy.DefaultDrop {
		t.Fatalf("unexpected default action: %v", conf.network.DefaultAction)
	}
	if !conf.network.Resolver.InstallOnRequest {
		t.Fatal("install_on_request should be enabled by default")
	}
}

func TestInvalidConfig(t *testing.T) {
	docs := []string{
		"default:\n  port: 0\n",
		"default:\n  port: 70000\n",
		"log:\n  driver: kafka\n",
		"log:\n  level: verbose\n",
		"policy:\n  default_action: forward\n",
		"resolver:\n  flow_cache_size: 0\n",
		"resolver:\n  flow_cache_expiration: -1s\n",
		"rest:\n  enable: true\n  port: 0\n",
		"rest:\n  enable: true\n  tls: true\n",
	}

	for _, doc := range docs {
		if _, err := parseConfig(newViper(t, doc)); err == nil {
			t.Fatalf("expected error for %q", doc)
		}
	}
}

func TestPrintPolicy(t *testing.T) {
	conf, err := parseConfig(newViper(t, "policy:\n  default_action: controller\n"))
	if err != nil {
		t.Fatal(err)
	}

	buf := new(bytes.Buffer)
	if err := printPolicy(buf, conf, 21); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 9 {
		t.Fatalf("unexpected number of lines: expected=9, actual=%v\n%v", len(lines), buf)
	}
	if !strings.HasPrefix(lines[1], "deny-icmp-untrusted:") {
		t.Fatalf("unexpected first rule: %v", lines[1])
	}
	if !strings.HasPrefix(lines[8], "default:") || !strings.Contains(lines[8], "controller") {
		t.Fatalf("unexpected last rule: %v", lines[8])
	}

	if err := printPolicy(new(bytes.Buffer), conf, 99); err == nil {
		t.Fatal("expected error for unknown DPID")
	}
}

func TestPrintPolicyAllSwitches(t *testing.T) {
	conf, err := parseConfig(newViper(t, "log:\n  driver: stderr\n"))
	if err != nil {
		t.Fatal(err)
	}

	buf := new(bytes.Buffer)
	if err := printPolicy(buf, conf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var headers []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "# DPID=") {
			headers = append(headers, strings.Fields(line)[1])
		}
	}
	expected := []string{"DPID=1,", "DPID=2,", "DPID=3,", "DPID=21,", "DPID=31,"}
	if len(headers) != len(expected) {
		t.Fatalf("unexpected headers: expected=%v, actual=%v", expected, headers)
	}
	for i := range expected {
		if headers[i] != expected[i] {
			t.Fatalf("unexpected header #%v: expected=%v, actual=%v", i, expected[i], headers[i])
		}
	}
}
