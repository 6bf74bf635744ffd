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

package resolver

import (
	"fmt"
	"net"
	"time"

	"github.com/YusufShahp/CSE461Proj2/policy"
	"github.com/YusufShahp/CSE461Proj2/protocol"
	"github.com/YusufShahp/CSE461Proj2/topology"

	"github.com/davecgh/go-spew/spew"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("resolver")
)

// Channel is the control channel of a switch.
type Channel interface {
	InstallRule(policy.FlowRule) error
	// PacketOut sends frame out the port.
	PacketOut(port uint32, frame []byte) error
	// Flood sends frame out all the ports except inPort.
	Flood(inPort uint32, frame []byte) error
}

type Options struct {
	// DPID is only used to label log messages.
	DPID uint64
	// InstallOnRequest installs a flow rule toward the requester of an ARP
	// request before any IPv4 packet heads to it.
	InstallOnRequest bool
	// FlowCacheExpiration is how long an installed rule suppresses the same
	// FLOW_MOD. Zero or negative disables the suppression.
	FlowCacheExpiration time.Duration
	FlowCacheSize       int
}

func DefaultOptions() Options {
	return Options{
		InstallOnRequest:    true,
		FlowCacheExpiration: 5 * time.Second,
		FlowCacheSize:       8192,
	}
}

// Engine is the address resolution engine of a switch. HandlePacketIn should
// be called sequentially in the arrival order of the packets.
type Engine struct {
	topo    *topology.Topology
	channel Channel
	opt     Options
	table   *Table
	cache   *flowCache
}

func New(topo *topology.Topology, channel Channel, opt Options) *Engine {
	if topo == nil {
		panic("nil topology")
	}
	if channel == nil {
		panic("nil channel")
	}
	if opt.FlowCacheSize <= 0 {
		opt.FlowCacheSize = DefaultOptions().FlowCacheSize
	}

	return &Engine{
		topo:    topo,
		channel: channel,
		opt:     opt,
		table:   NewTable(),
		cache:   newFlowCache(opt.FlowCacheSize, opt.FlowCacheExpiration),
	}
}

func (r *Engine) Table() *Table {
	return r.table
}

// Close discards the flow cache. The learning table stays readable.
func (r *Engine) Close() {
	r.cache.RemoveAll()
}

// HandlePacketIn processes a frame that the switch sent to the controller.
// Malformed or unsupported frames are logged and ignored; only the failures of
// the control channel are returned.
func (r *Engine) HandlePacketIn(inPort uint32, data []byte) error {
	frame, err := protocol.Decode(data)
	if err != nil {
		logger.Warningf("DPID=%v: discarding a malformed packet from port %v: %v", r.opt.DPID, inPort, err)
		return nil
	}

	switch frame.Kind {
	case protocol.KindARP:
		return r.handleARP(inPort, frame)
	case protocol.KindIPv4:
		return r.handleIPv4(inPort, frame)
	default:
		logger.Debugf("DPID=%v: unhandled packet from port %v: %v", r.opt.DPID, inPort, spew.Sdump(frame))
		return nil
	}
}

func (r *Engine) handleARP(inPort uint32, frame *protocol.Frame) error {
	arp := frame.ARP
	switch arp.Operation {
	case protocol.ARPRequest:
		r.learn(arp.SPA, arp.SHA, inPort)
		if err := r.proxyReply(inPort, arp); err != nil {
			return err
		}
		if r.opt.InstallOnRequest && !arp.SPA.IsUnspecified() {
			return r.install(learnedRule(arp.SPA, arp.SHA, inPort))
		}
		return nil
	case protocol.ARPReply:
		r.learn(arp.SPA, arp.SHA, inPort)
		return nil
	default:
		logger.Noticef("DPID=%v: ignore the unknown ARP operation %v from port %v", r.opt.DPID, arp.Operation, inPort)
		return nil
	}
}

func (r *Engine) learn(ip net.IP, mac net.HardwareAddr, port uint32) {
	// ARP probes do not bind any address.
	if ip.IsUnspecified() {
		logger.Debugf("DPID=%v: skip learning the ARP probe from %v", r.opt.DPID, mac)
		return
	}

	prev, exist := r.table.Update(ip, mac, port)
	switch {
	case !exist:
		logger.Infof("DPID=%v: learned a new host: IP=%v, MAC=%v, port=%v", r.opt.DPID, ip, mac, port)
	case prev.Port != port || prev.MAC.String() != mac.String():
		logger.Infof("DPID=%v: host moved: IP=%v, MAC=%v->%v, port=%v->%v", r.opt.DPID, ip, prev.MAC, mac, prev.Port, port)
	}
}

func (r *Engine) proxyReply(inPort uint32, request *protocol.ARP) error {
	mac, ok := r.topo.FindMAC(request.TPA)
	if !ok {
		logger.Debugf("DPID=%v: no proxy ARP reply for the unknown host %v", r.opt.DPID, request.TPA)
		return nil
	}

	reply, err := protocol.NewARPReply(mac, request.TPA, request.SHA, request.SPA)
	if err != nil {
		return errors.Wrap(err, "making an ARP reply")
	}
	if err := r.channel.PacketOut(inPort, reply); err != nil {
		return errors.Wrapf(err, "sending an ARP reply for %v to port %v", request.TPA, inPort)
	}
	logger.Debugf("DPID=%v: sent a proxy ARP reply: %v is at %v (port=%v)", r.opt.DPID, request.TPA, mac, inPort)

	return nil
}

func (r *Engine) handleIPv4(inPort uint32, frame *protocol.Frame) error {
	dst := frame.IPv4.Dst
	entry, ok := r.table.Lookup(dst)
	if !ok {
		logger.Debugf("DPID=%v: flooding a packet to the unknown destination %v", r.opt.DPID, dst)
		if err := r.channel.Flood(inPort, frame.Data); err != nil {
			return errors.Wrapf(err, "flooding a packet to %v", dst)
		}
		return nil
	}

	if err := r.install(learnedRule(dst, entry.MAC, entry.Port)); err != nil {
		return err
	}
	// The packet that triggered the rule should not be lost.
	if err := r.channel.PacketOut(entry.Port, frame.Data); err != nil {
		return errors.Wrapf(err, "re-injecting a packet to %v via port %v", dst, entry.Port)
	}

	return nil
}

func (r *Engine) install(rule policy.FlowRule) error {
	if r.opt.FlowCacheExpiration > 0 && r.cache.InProgress(rule) {
		logger.Debugf("DPID=%v: skip the flow installation in progress: %v", r.opt.DPID, rule)
		return nil
	}

	if err := r.channel.InstallRule(rule); err != nil {
		return errors.Wrapf(err, "installing %v", rule.Name)
	}
	r.cache.Add(rule)
	logger.Debugf("DPID=%v: installed a flow rule: %v", r.opt.DPID, rule)

	return nil
}

func learnedRule(ip net.IP, mac net.HardwareAddr, port uint32) policy.FlowRule {
	return policy.FlowRule{
		Name:     fmt.Sprintf("learned-%v", ip),
		Priority: policy.PriorityLearned,
		Match: policy.Match{
			EtherType: policy.EtherTypeIPv4,
			DstIP:     copyIP(ip),
		},
		Actions: []policy.Action{
			policy.SetDstMAC(copyMAC(mac)),
			policy.Output(port),
		},
	}
}
