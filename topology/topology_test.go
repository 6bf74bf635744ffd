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

package topology

import (
	"net"
	"testing"

	"github.com/pkg/errors"
)

func TestAddressingPlan(t *testing.T) {
	topo := Default()

	src := []struct {
		Name   string
		IP     string
		Subnet string
		MAC    string
	}{
		{"h10", "10.0.1.10", "10.0.1.0/24", "00:00:00:00:00:01"},
		{"h20", "10.0.2.20", "10.0.2.0/24", "00:00:00:00:00:02"},
		{"h30", "10.0.3.30", "10.0.3.0/24", "00:00:00:00:00:03"},
		{"serv1", "10.0.4.10", "10.0.4.0/24", "00:00:00:00:00:04"},
		{"hnotrust", "172.16.10.100", "172.16.10.0/24", "00:00:00:00:00:05"},
	}

	for _, v := range src {
		ip := topo.LookupIP(v.Name)
		if ip.String() != v.IP {
			t.Fatalf("unexpected IP address of %v: expected=%v, actual=%v", v.Name, v.IP, ip)
		}
		subnet := topo.LookupSubnet(v.Name)
		if subnet.String() != v.Subnet {
			t.Fatalf("unexpected subnet of %v: expected=%v, actual=%v", v.Name, v.Subnet, subnet)
		}
		mac := topo.LookupMAC(net.ParseIP(v.IP))
		if mac.String() != v.MAC {
			t.Fatalf("unexpected MAC address of %v: expected=%v, actual=%v", v.Name, v.MAC, mac)
		}
	}

	if topo.Server().Name != "serv1" {
		t.Fatalf("unexpected server: %v", topo.Server())
	}
	if topo.Untrusted().Name != "hnotrust" {
		t.Fatalf("unexpected untrusted host: %v", topo.Untrusted())
	}
	if len(topo.Hosts()) != len(src) {
		t.Fatalf("unexpected number of hosts: expected=%v, actual=%v", len(src), len(topo.Hosts()))
	}
}

func TestRoleOf(t *testing.T) {
	topo := Default()

	src := []struct {
		DPID     uint64
		Expected Role
		Unknown  bool
	}{
		{DPID: 1, Expected: NewEdgeAccess(1)},
		{DPID: 2, Expected: NewEdgeAccess(2)},
		{DPID: 3, Expected: NewEdgeAccess(3)},
		{DPID: 21, Expected: Role{Kind: CoreAggregation}},
		{DPID: 31, Expected: Role{Kind: Datacenter}},
		{DPID: 0, Unknown: true},
		{DPID: 4, Unknown: true},
		{DPID: 99, Unknown: true},
	}

	for _, v := range src {
		role, err := topo.RoleOf(v.DPID)
		if v.Unknown {
			if errors.Cause(err) != ErrUnknownSwitch {
				t.Fatalf("expected ErrUnknownSwitch for DPID %v, but got %v", v.DPID, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for DPID %v: %v", v.DPID, err)
		}
		if role != v.Expected {
			t.Fatalf("unexpected role of DPID %v: expected=%v, actual=%v", v.DPID, v.Expected, role)
		}
	}
}

func TestFindMAC(t *testing.T) {
	topo := Default()

	if _, ok := topo.FindMAC(net.ParseIP("10.0.9.9")); ok {
		t.Fatal("expected an unknown IP address, but found a MAC address")
	}
	mac, ok := topo.FindMAC(net.ParseIP("10.0.4.10"))
	if !ok || mac.String() != "00:00:00:00:00:04" {
		t.Fatalf("unexpected MAC address of serv1: %v (ok=%v)", mac, ok)
	}
}

func TestLookupUnknownHostPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on an unknown host name")
		}
	}()
	Default().LookupIP("h99")
}

func TestParseInvalidDocument(t *testing.T) {
	src := []struct {
		Name     string
		Document string
	}{
		{
			Name: "ip outside its subnet",
			Document: `
hosts:
  - {name: a, ip: 10.0.2.1, subnet: 10.0.1.0/24, mac: "00:00:00:00:00:01", core_port: 1, server: true}
  - {name: b, ip: 10.0.3.1, subnet: 10.0.3.0/24, mac: "00:00:00:00:00:02", core_port: 2, untrusted: true}
switches:
  - {dpid: 1, role: edge}
`,
		},
		{
			Name: "shared core port",
			Document: `
hosts:
  - {name: a, ip: 10.0.1.1, subnet: 10.0.1.0/24, mac: "00:00:00:00:00:01", core_port: 1, server: true}
  - {name: b, ip: 10.0.3.1, subnet: 10.0.3.0/24, mac: "00:00:00:00:00:02", core_port: 1, untrusted: true}
switches:
  - {dpid: 1, role: edge}
`,
		},
		{
			Name: "missing untrusted host",
			Document: `
hosts:
  - {name: a, ip: 10.0.1.1, subnet: 10.0.1.0/24, mac: "00:00:00:00:00:01", core_port: 1, server: true}
switches:
  - {dpid: 1, role: edge}
`,
		},
		{
			Name: "unknown role",
			Document: `
hosts:
  - {name: a, ip: 10.0.1.1, subnet: 10.0.1.0/24, mac: "00:00:00:00:00:01", core_port: 1, server: true}
  - {name: b, ip: 10.0.3.1, subnet: 10.0.3.0/24, mac: "00:00:00:00:00:02", core_port: 2, untrusted: true}
switches:
  - {dpid: 1, role: spine}
`,
		},
		{
			Name: "invalid MAC address",
			Document: `
hosts:
  - {name: a, ip: 10.0.1.1, subnet: 10.0.1.0/24, mac: "zz", core_port: 1, server: true}
switches:
  - {dpid: 1, role: edge}
`,
		},
	}

	for _, v := range src {
		if _, err := Parse([]byte(v.Document)); err == nil {
			t.Fatalf("%v: expected error, but no error returns", v.Name)
		}
	}
}
