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
	"net"
	"sort"
)

// Packet is the subset of packet headers that a Match can inspect.
type Packet struct {
	EtherType uint16
	Protocol  uint8
	SrcIP     net.IP
	DstIP     net.IP
}

type Decision int

const (
	// Miss means no rule matched. OpenFlow 1.0 switches send such packets to the controller.
	Miss Decision = iota
	Drop
	Forward
	FloodAll
	Controller
)

func (r Decision) String() string {
	switch r {
	case Miss:
		return "miss"
	case Drop:
		return "drop"
	case Forward:
		return "forward"
	case FloodAll:
		return "flood"
	case Controller:
		return "controller"
	default:
		return fmt.Sprintf("Decision(%d)", int(r))
	}
}

type Verdict struct {
	Decision Decision
	// Port is the output port if Decision is Forward.
	Port uint32
	// Rule is nil if Decision is Miss.
	Rule *FlowRule
}

func (r Verdict) String() string {
	if r.Rule == nil {
		return r.Decision.String()
	}
	if r.Decision == Forward {
		return fmt.Sprintf("%v:%v (%v)", r.Decision, r.Port, r.Rule.Name)
	}

	return fmt.Sprintf("%v (%v)", r.Decision, r.Rule.Name)
}

// Matches reports whether p satisfies every non-wildcard field of the match.
func (r Match) Matches(p Packet) bool {
	if r.EtherType != 0 && r.EtherType != p.EtherType {
		return false
	}
	if r.Protocol != 0 && r.Protocol != p.Protocol {
		return false
	}
	if r.SrcIP != nil && !r.SrcIP.Equal(p.SrcIP) {
		return false
	}
	if r.DstIP != nil && !r.DstIP.Equal(p.DstIP) {
		return false
	}

	return true
}

// Evaluate simulates the flow table loaded with rules: the first matching rule
// in descending priority wins, and rules that share a priority keep their
// order in the slice.
func Evaluate(rules []FlowRule, p Packet) Verdict {
	table := make([]FlowRule, len(rules))
	copy(table, rules)
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Priority > table[j].Priority
	})

	for i := range table {
		rule := &table[i]
		if !rule.Match.Matches(p) {
			continue
		}
		return verdictOf(rule)
	}

	return Verdict{Decision: Miss}
}

func verdictOf(rule *FlowRule) Verdict {
	v := Verdict{Decision: Drop, Rule: rule}
	for _, a := range rule.Actions {
		switch a.Type {
		case ActionOutput:
			v.Decision = Forward
			v.Port = a.Port
		case ActionFlood:
			v.Decision = FloodAll
		case ActionController:
			v.Decision = Controller
		}
	}

	return v
}
