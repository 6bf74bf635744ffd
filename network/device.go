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

package network

import (
	"encoding"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/YusufShahp/CSE461Proj2/openflow/of10"
	"github.com/YusufShahp/CSE461Proj2/openflow/transceiver"
	"github.com/YusufShahp/CSE461Proj2/policy"
)

var (
	ErrClosedDevice = errors.New("already closed device")
)

// Device is a Channel that speaks OpenFlow 1.0 to a connected switch.
type Device struct {
	mutex   sync.RWMutex
	dpid    uint64
	factory *of10.Factory
	writer  transceiver.Writer
	// ports is nil until the switch announces its ports.
	ports  map[uint16]of10.Port
	closed bool
}

func newDevice(dpid uint64, f *of10.Factory, w transceiver.Writer) *Device {
	if f == nil {
		panic("nil factory")
	}
	if w == nil {
		panic("nil writer")
	}

	return &Device{
		dpid:    dpid,
		factory: f,
		writer:  w,
	}
}

func (r *Device) String() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return fmt.Sprintf("Device DPID=%v, # of ports=%v, Closed=%v", r.dpid, len(r.ports), r.closed)
}

func (r *Device) DPID() uint64 {
	return r.dpid
}

// Ports returns the physical ports sorted by their number.
func (r *Device) Ports() []of10.Port {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]of10.Port, 0, len(r.ports))
	for _, v := range r.ports {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})

	return result
}

func (r *Device) setPorts(ports []of10.Port) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.ports == nil {
		r.ports = make(map[uint16]of10.Port)
	}
	for _, p := range ports {
		r.ports[p.Number] = p
	}
}

func (r *Device) updatePort(reason uint8, p of10.Port) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.ports == nil {
		r.ports = make(map[uint16]of10.Port)
	}
	if reason == of10.OFPPR_DELETE {
		delete(r.ports, p.Number)
		return
	}
	r.ports[p.Number] = p
	logger.Debugf("DPID=%v, PortNum=%v, LinkUp=%v", r.dpid, p.Number, !p.IsLinkDown())
}

func (r *Device) send(msg encoding.BinaryMarshaler) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if msg == nil {
		panic("nil message")
	}
	if r.closed {
		return ErrClosedDevice
	}

	return r.writer.Write(msg)
}

// outputPort validates a physical output port. Once the switch has announced
// its ports, only those ports are accepted.
func (r *Device) outputPort(port uint32) (uint16, error) {
	if port == 0 || port > of10.OFPP_MAX {
		return 0, fmt.Errorf("invalid switch port number: %v", port)
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.ports == nil {
		return uint16(port), nil
	}
	if _, ok := r.ports[uint16(port)]; !ok {
		return 0, fmt.Errorf("unknown port %v on DPID %v", port, r.dpid)
	}

	return uint16(port), nil
}

// ingressPort validates the port that a packet came in through. It can be
// the local port of the switch as well as a physical port.
func ingressPort(port uint32) (uint16, error) {
	if port == 0 || (port > of10.OFPP_MAX && port != of10.OFPP_LOCAL) {
		return 0, fmt.Errorf("invalid ingress port number: %v", port)
	}

	return uint16(port), nil
}

func (r *Device) convertAction(actions []policy.Action) (*of10.Action, error) {
	result := of10.NewAction()
	for _, a := range actions {
		switch a.Type {
		case policy.ActionOutput:
			port, err := r.outputPort(a.Port)
			if err != nil {
				return nil, err
			}
			result.AddOutput(port)
		case policy.ActionFlood:
			result.AddOutput(of10.OFPP_FLOOD)
		case policy.ActionController:
			result.AddOutput(of10.OFPP_CONTROLLER)
		case policy.ActionSetDstMAC:
			if len(a.MAC) != 6 {
				return nil, fmt.Errorf("invalid destination MAC address: %v", a.MAC)
			}
			result.SetDstMAC(a.MAC)
		default:
			return nil, fmt.Errorf("unsupported action type: %v", a.Type)
		}
	}

	return result, nil
}

func convertMatch(m policy.Match) (*of10.Match, error) {
	result := of10.NewMatch()
	if m.EtherType != 0 {
		result.SetEtherType(m.EtherType)
	}
	if m.Protocol != 0 {
		result.SetIPProtocol(m.Protocol)
	}
	if m.SrcIP != nil {
		result.SetSrcIP(m.SrcIP)
	}
	if m.DstIP != nil {
		result.SetDstIP(m.DstIP)
	}
	if err := result.Error(); err != nil {
		return nil, err
	}

	return result, nil
}

// InstallRule adds a permanent flow entry for rule.
func (r *Device) InstallRule(rule policy.FlowRule) error {
	match, err := convertMatch(rule.Match)
	if err != nil {
		return fmt.Errorf("%v: %v", rule.Name, err)
	}
	action, err := r.convertAction(rule.Actions)
	if err != nil {
		return fmt.Errorf("%v: %v", rule.Name, err)
	}

	flow := r.factory.NewFlowMod(of10.OFPFC_ADD)
	flow.Priority = rule.Priority
	flow.Match = match
	flow.Action = action

	return r.send(flow)
}

// PacketOut sends frame out of port as if it came from the controller.
func (r *Device) PacketOut(port uint32, frame []byte) error {
	p, err := r.outputPort(port)
	if err != nil {
		return err
	}

	out := r.factory.NewPacketOut()
	out.InPort = of10.OFPP_CONTROLLER
	out.Action.AddOutput(p)
	out.Data = frame

	return r.send(out)
}

// Flood sends frame out of every port except inPort.
func (r *Device) Flood(inPort uint32, frame []byte) error {
	p, err := ingressPort(inPort)
	if err != nil {
		return err
	}

	out := r.factory.NewPacketOut()
	out.InPort = p
	out.Action.AddOutput(of10.OFPP_FLOOD)
	out.Data = frame

	return r.send(out)
}

// RemoveAllFlows deletes every flow entry of the switch.
func (r *Device) RemoveAllFlows() error {
	// Wildcard match and OFPP_NONE out port
	return r.send(r.factory.NewFlowMod(of10.OFPFC_DELETE))
}

func (r *Device) Barrier() error {
	return r.send(r.factory.NewBarrierRequest())
}

func (r *Device) IsClosed() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.closed
}

func (r *Device) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.closed = true
}
