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
	"strings"
)

const (
	EtherTypeIPv4 = 0x0800
	EtherTypeARP  = 0x0806

	ProtocolICMP = 1
	ProtocolTCP  = 6
	ProtocolUDP  = 17
)

type ActionType int

const (
	ActionOutput ActionType = iota
	ActionFlood
	ActionSetDstMAC
	ActionController
)

type Action struct {
	Type ActionType
	Port uint32           // ActionOutput only
	MAC  net.HardwareAddr // ActionSetDstMAC only
}

func Output(port uint32) Action {
	return Action{Type: ActionOutput, Port: port}
}

func Flood() Action {
	return Action{Type: ActionFlood}
}

func SetDstMAC(mac net.HardwareAddr) Action {
	return Action{Type: ActionSetDstMAC, MAC: mac}
}

func ToController() Action {
	return Action{Type: ActionController}
}

func (r Action) String() string {
	switch r.Type {
	case ActionOutput:
		return fmt.Sprintf("output:%v", r.Port)
	case ActionFlood:
		return "flood"
	case ActionSetDstMAC:
		return fmt.Sprintf("set_dl_dst:%v", r.MAC)
	case ActionController:
		return "controller"
	default:
		return fmt.Sprintf("unknown(%d)", int(r.Type))
	}
}

// Match is a flow predicate. Zero values are wildcards: EtherType 0 and
// Protocol 0 match any value, and a nil IP address matches any address.
type Match struct {
	EtherType uint16
	Protocol  uint8
	SrcIP     net.IP
	DstIP     net.IP
}

func (r Match) IsWildcard() bool {
	return r.EtherType == 0 && r.Protocol == 0 && r.SrcIP == nil && r.DstIP == nil
}

// Specificity is the number of fields that are not wildcarded.
func (r Match) Specificity() int {
	n := 0
	if r.EtherType != 0 {
		n++
	}
	if r.Protocol != 0 {
		n++
	}
	if r.SrcIP != nil {
		n++
	}
	if r.DstIP != nil {
		n++
	}

	return n
}

func (r Match) String() string {
	if r.IsWildcard() {
		return "*"
	}

	fields := make([]string, 0, 4)
	if r.EtherType != 0 {
		fields = append(fields, fmt.Sprintf("dl_type=0x%04x", r.EtherType))
	}
	if r.Protocol != 0 {
		fields = append(fields, fmt.Sprintf("nw_proto=%v", r.Protocol))
	}
	if r.SrcIP != nil {
		fields = append(fields, fmt.Sprintf("nw_src=%v", r.SrcIP))
	}
	if r.DstIP != nil {
		fields = append(fields, fmt.Sprintf("nw_dst=%v", r.DstIP))
	}

	return strings.Join(fields, ",")
}

type FlowRule struct {
	Name     string
	Priority uint16
	Match    Match
	// An empty action list drops the matched packets.
	Actions []Action
}

func (r FlowRule) IsDrop() bool {
	return len(r.Actions) == 0
}

func (r FlowRule) String() string {
	actions := "drop"
	if !r.IsDrop() {
		v := make([]string, len(r.Actions))
		for i, a := range r.Actions {
			v[i] = a.String()
		}
		actions = strings.Join(v, ",")
	}

	return fmt.Sprintf("%v: priority=%v, match=%v, actions=%v", r.Name, r.Priority, r.Match, actions)
}
