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

package policy

import (
	"fmt"
	"strings"

	"github.com/YusufShahp/CSE461Proj2/topology"
)

const (
	PriorityDenyICMP   uint16 = 0xA000
	PriorityDenyServer uint16 = 0x9000
	PriorityLearned    uint16 = 0x8800 // Above the routes, below the deny rules.
	PriorityRoute      uint16 = 0x8000
	PriorityDefault    uint16 = 0
)

type DefaultAction int

const (
	// DefaultDrop installs the catch-all rule of the core switch without any action.
	DefaultDrop DefaultAction = iota
	// DefaultToController sends packets missing all other core rules to the controller.
	DefaultToController
)

func (r DefaultAction) String() string {
	switch r {
	case DefaultDrop:
		return "drop"
	case DefaultToController:
		return "controller"
	default:
		return fmt.Sprintf("DefaultAction(%d)", int(r))
	}
}

func ParseDefaultAction(s string) (DefaultAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return DefaultDrop, nil
	case "controller":
		return DefaultToController, nil
	default:
		return DefaultDrop, fmt.Errorf("invalid default action: %v", s)
	}
}

type Options struct {
	DefaultAction DefaultAction
}

// Compile returns the baseline flow rules of a switch that has the role,
// using the default options.
func Compile(topo *topology.Topology, role topology.Role) []FlowRule {
	return CompileWith(topo, role, Options{})
}

// CompileWith returns the baseline flow rules of a switch that has the role.
// Rules are ordered from the most specific one to the least, and their
// priorities never increase in that order.
func CompileWith(topo *topology.Topology, role topology.Role, opt Options) []FlowRule {
	switch role.Kind {
	case topology.EdgeAccess, topology.Datacenter:
		return []FlowRule{floodAll()}
	case topology.CoreAggregation:
		return compileCore(topo, opt)
	default:
		panic(fmt.Sprintf("unexpected switch role: %v", role))
	}
}

func floodAll() FlowRule {
	return FlowRule{
		Name:     "flood",
		Priority: PriorityDefault,
		Actions:  []Action{Flood()},
	}
}

func compileCore(topo *topology.Topology, opt Options) []FlowRule {
	untrusted := topo.Untrusted()
	server := topo.Server()
	hosts := topo.Hosts()

	result := make([]FlowRule, 0, len(hosts)+3)
	result = append(result,
		FlowRule{
			Name:     "deny-icmp-untrusted",
			Priority: PriorityDenyICMP,
			Match: Match{
				EtherType: EtherTypeIPv4,
				Protocol:  ProtocolICMP,
				SrcIP:     untrusted.IP,
			},
		},
		FlowRule{
			Name:     "deny-untrusted-server",
			Priority: PriorityDenyServer,
			Match: Match{
				EtherType: EtherTypeIPv4,
				SrcIP:     untrusted.IP,
				DstIP:     server.IP,
			},
		},
	)

	for _, host := range hosts {
		result = append(result, FlowRule{
			Name:     fmt.Sprintf("route-%v", host.Name),
			Priority: PriorityRoute,
			Match: Match{
				EtherType: EtherTypeIPv4,
				DstIP:     host.IP,
			},
			Actions: []Action{Output(host.CorePort)},
		})
	}

	def := FlowRule{
		Name:     "default",
		Priority: PriorityDefault,
	}
	if opt.DefaultAction == DefaultToController {
		def.Actions = []Action{ToController()}
	}

	return append(result, def)
}
