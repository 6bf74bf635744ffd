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
	_ "embed"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed fabric.yaml
var fabricDocument []byte

var (
	defaultTopo *Topology
	defaultOnce sync.Once
)

// Host is a static host record. It is never modified after parsing.
type Host struct {
	Name   string
	IP     net.IP
	Subnet *net.IPNet
	MAC    net.HardwareAddr
	// CorePort is the port number of the core switch heading to this host.
	CorePort  uint32
	Server    bool
	Untrusted bool
}

func (r Host) String() string {
	return fmt.Sprintf("Name=%v, IP=%v, Subnet=%v, MAC=%v, CorePort=%v", r.Name, r.IP, r.Subnet, r.MAC, r.CorePort)
}

// Topology is the read-only addressing plan and switch table of the fabric.
// It is safe for concurrent use because nothing mutates it after Parse.
type Topology struct {
	hosts     map[string]*Host
	byIP      map[string]*Host
	roles     map[uint64]Role
	server    *Host
	untrusted *Host
}

// Default returns the topology compiled into the binary. It panics if the
// embedded document is invalid.
func Default() *Topology {
	defaultOnce.Do(func() {
		topo, err := Parse(fabricDocument)
		if err != nil {
			panic(fmt.Sprintf("invalid embedded fabric topology: %v", err))
		}
		defaultTopo = topo
	})

	return defaultTopo
}

type document struct {
	Hosts []struct {
		Name      string `yaml:"name"`
		IP        string `yaml:"ip"`
		Subnet    string `yaml:"subnet"`
		MAC       string `yaml:"mac"`
		CorePort  uint32 `yaml:"core_port"`
		Server    bool   `yaml:"server"`
		Untrusted bool   `yaml:"untrusted"`
	} `yaml:"hosts"`
	Switches []struct {
		DPID uint64 `yaml:"dpid"`
		Role string `yaml:"role"`
	} `yaml:"switches"`
}

// Parse decodes and validates a topology document.
func Parse(data []byte) (*Topology, error) {
	doc := new(document)
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(err, "decoding topology document")
	}

	topo := &Topology{
		hosts: make(map[string]*Host),
		byIP:  make(map[string]*Host),
		roles: make(map[uint64]Role),
	}
	ports := make(map[uint32]string)
	for _, v := range doc.Hosts {
		host, err := parseHost(v.Name, v.IP, v.Subnet, v.MAC)
		if err != nil {
			return nil, err
		}
		host.CorePort = v.CorePort
		host.Server = v.Server
		host.Untrusted = v.Untrusted

		if _, ok := topo.hosts[host.Name]; ok {
			return nil, fmt.Errorf("duplicated host name: %v", host.Name)
		}
		if _, ok := topo.byIP[host.IP.String()]; ok {
			return nil, fmt.Errorf("duplicated host IP address: %v", host.IP)
		}
		if host.CorePort == 0 {
			return nil, fmt.Errorf("missing core port for %v", host.Name)
		}
		if owner, ok := ports[host.CorePort]; ok {
			return nil, fmt.Errorf("core port %v is shared by %v and %v", host.CorePort, owner, host.Name)
		}
		ports[host.CorePort] = host.Name

		if host.Server {
			if topo.server != nil {
				return nil, errors.New("more than one server host")
			}
			topo.server = host
		}
		if host.Untrusted {
			if topo.untrusted != nil {
				return nil, errors.New("more than one untrusted host")
			}
			topo.untrusted = host
		}
		topo.hosts[host.Name] = host
		topo.byIP[host.IP.String()] = host
	}
	if topo.server == nil {
		return nil, errors.New("missing server host")
	}
	if topo.untrusted == nil {
		return nil, errors.New("missing untrusted host")
	}

	for _, v := range doc.Switches {
		if _, ok := topo.roles[v.DPID]; ok {
			return nil, fmt.Errorf("duplicated switch DPID: %v", v.DPID)
		}
		role, err := parseRole(v.DPID, v.Role)
		if err != nil {
			return nil, err
		}
		topo.roles[v.DPID] = role
	}
	if len(topo.roles) == 0 {
		return nil, errors.New("empty switch table")
	}

	return topo, nil
}

func parseHost(name, ip, subnet, mac string) (*Host, error) {
	if len(name) == 0 {
		return nil, errors.New("empty host name")
	}

	addr := net.ParseIP(ip).To4()
	if addr == nil {
		return nil, fmt.Errorf("invalid IPv4 address for %v: %v", name, ip)
	}
	_, network, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid subnet for %v", name)
	}
	if !network.Contains(addr) {
		return nil, fmt.Errorf("%v (%v) is not in its subnet %v", name, addr, network)
	}
	hwAddr, err := net.ParseMAC(mac)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid MAC address for %v", name)
	}

	return &Host{
		Name:   name,
		IP:     addr,
		Subnet: network,
		MAC:    hwAddr,
	}, nil
}

func (r *Topology) mustHost(name string) *Host {
	host, ok := r.hosts[name]
	if !ok {
		panic(fmt.Sprintf("unknown host name: %v", name))
	}

	return host
}

// LookupIP panics if name is not a known host.
func (r *Topology) LookupIP(name string) net.IP {
	return r.mustHost(name).IP
}

// LookupSubnet panics if name is not a known host.
func (r *Topology) LookupSubnet(name string) *net.IPNet {
	return r.mustHost(name).Subnet
}

// LookupMAC panics if ip does not belong to a known host.
func (r *Topology) LookupMAC(ip net.IP) net.HardwareAddr {
	mac, ok := r.FindMAC(ip)
	if !ok {
		panic(fmt.Sprintf("unknown host IP address: %v", ip))
	}

	return mac
}

// FindMAC returns the MAC address of the host that owns ip, if any.
func (r *Topology) FindMAC(ip net.IP) (mac net.HardwareAddr, ok bool) {
	host, ok := r.byIP[ip.String()]
	if !ok {
		return nil, false
	}

	return host.MAC, true
}

func (r *Topology) Host(name string) (host Host, ok bool) {
	v, ok := r.hosts[name]
	if !ok {
		return Host{}, false
	}

	return *v, true
}

// Hosts returns all the hosts sorted by name.
func (r *Topology) Hosts() []Host {
	result := make([]Host, 0, len(r.hosts))
	for _, v := range r.hosts {
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Server returns the protected server host.
func (r *Topology) Server() Host {
	return *r.server
}

// Untrusted returns the host on the untrusted segment.
func (r *Topology) Untrusted() Host {
	return *r.untrusted
}

// RoleOf returns ErrUnknownSwitch if dpid is not in the switch table.
func (r *Topology) RoleOf(dpid uint64) (Role, error) {
	role, ok := r.roles[dpid]
	if !ok {
		return Role{}, errors.Wrapf(ErrUnknownSwitch, "DPID=%v", dpid)
	}

	return role, nil
}

// Switches returns the DPIDs of the switch table in ascending order.
func (r *Topology) Switches() []uint64 {
	result := make([]uint64, 0, len(r.roles))
	for dpid := range r.roles {
		result = append(result, dpid)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})

	return result
}
