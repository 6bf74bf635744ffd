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
	"bytes"
	"errors"
	"net"
	"testing"

	"github.com/YusufShahp/CSE461Proj2/policy"
	"github.com/YusufShahp/CSE461Proj2/protocol"
	"github.com/YusufShahp/CSE461Proj2/topology"

	"github.com/google/go-cmp/cmp"
	pkgerrors "github.com/pkg/errors"
)

type call struct {
	Kind  string
	Port  uint32
	Rule  *policy.FlowRule
	Frame []byte
}

type fakeChannel struct {
	calls []call
	err   error
}

func (r *fakeChannel) InstallRule(rule policy.FlowRule) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, call{Kind: "install", Rule: &rule})
	return nil
}

func (r *fakeChannel) PacketOut(port uint32, frame []byte) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, call{Kind: "packet_out", Port: port, Frame: append([]byte(nil), frame...)})
	return nil
}

func (r *fakeChannel) Flood(inPort uint32, frame []byte) error {
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, call{Kind: "flood", Port: inPort, Frame: append([]byte(nil), frame...)})
	return nil
}

func (r *fakeChannel) kinds() []string {
	result := make([]string, len(r.calls))
	for i, v := range r.calls {
		result[i] = v.Kind
	}
	return result
}

var (
	h10MAC = net.HardwareAddr{0, 0, 0, 0, 0, 1}
	h10IP  = net.IPv4(10, 0, 1, 10).To4()
	unkIP  = net.IPv4(10, 0, 9, 9).To4()
)

func newEngine(opt Options) (*Engine, *fakeChannel) {
	channel := new(fakeChannel)
	return New(topology.Default(), channel, opt), channel
}

func arpRequest(t *testing.T, sha net.HardwareAddr, spa, tpa net.IP) []byte {
	v, err := protocol.NewARPRequest(sha, spa, tpa)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func arpReply(t *testing.T, sha net.HardwareAddr, spa net.IP, tha net.HardwareAddr, tpa net.IP) []byte {
	v, err := protocol.NewARPReply(sha, spa, tha, tpa)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func ipv4(t *testing.T, src, dst net.IP) []byte {
	v, err := protocol.NewIPv4(h10MAC, net.HardwareAddr{0, 0, 0, 0, 0, 0x99}, src, dst, policy.ProtocolUDP, []byte("data"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

func handle(t *testing.T, engine *Engine, inPort uint32, frame []byte) {
	if err := engine.HandlePacketIn(inPort, frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLearningOverwrite(t *testing.T) {
	engine, _ := newEngine(DefaultOptions())
	handle(t, engine, 1, arpRequest(t, h10MAC, h10IP, unkIP))

	entry, ok := engine.Table().Lookup(h10IP)
	if !ok {
		t.Fatal("missing learning entry")
	}
	if entry.MAC.String() != h10MAC.String() || entry.Port != 1 {
		t.Fatalf("unexpected entry: %v", entry)
	}

	moved := net.HardwareAddr{0, 0, 0, 0, 0, 0x77}
	handle(t, engine, 7, arpReply(t, moved, h10IP, h10MAC, unkIP))
	entry, ok = engine.Table().Lookup(h10IP)
	if !ok {
		t.Fatal("missing learning entry")
	}
	if entry.MAC.String() != moved.String() || entry.Port != 7 {
		t.Fatalf("unexpected entry after the overwrite: %v", entry)
	}
	if engine.Table().Len() != 1 {
		t.Fatalf("unexpected table length: expected=1, actual=%v", engine.Table().Len())
	}
}

func TestProxyARPReply(t *testing.T) {
	topo := topology.Default()
	serverIP := topo.LookupIP("serv1")
	engine, channel := newEngine(DefaultOptions())
	handle(t, engine, 1, arpRequest(t, h10MAC, h10IP, serverIP))

	if diff := cmp.Diff([]string{"packet_out", "install"}, channel.kinds()); diff != "" {
		t.Fatalf("unexpected channel calls (-want +got):\n%v", diff)
	}
	if channel.calls[0].Port != 1 {
		t.Fatalf("unexpected reply port: expected=1, actual=%v", channel.calls[0].Port)
	}

	frame, err := protocol.Decode(channel.calls[0].Frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := &protocol.ARP{
		Operation: protocol.ARPReply,
		SHA:       topo.LookupMAC(serverIP),
		SPA:       serverIP,
		THA:       h10MAC,
		TPA:       h10IP,
	}
	if diff := cmp.Diff(expected, frame.ARP); diff != "" {
		t.Fatalf("unexpected ARP reply (-want +got):\n%v", diff)
	}
	if frame.DstMAC.String() != h10MAC.String() {
		t.Fatalf("unexpected Ethernet destination: %v", frame.DstMAC)
	}

	rule := channel.calls[1].Rule
	if diff := cmp.Diff(learnedRule(h10IP, h10MAC, 1), *rule); diff != "" {
		t.Fatalf("unexpected flow rule toward the requester (-want +got):\n%v", diff)
	}
}

func TestARPRequestForUnknownHost(t *testing.T) {
	engine, channel := newEngine(DefaultOptions())
	handle(t, engine, 2, arpRequest(t, h10MAC, h10IP, unkIP))
	if diff := cmp.Diff([]string{"install"}, channel.kinds()); diff != "" {
		t.Fatalf("unexpected channel calls (-want +got):\n%v", diff)
	}

	opt := DefaultOptions()
	opt.InstallOnRequest = false
	engine, channel = newEngine(opt)
	handle(t, engine, 2, arpRequest(t, h10MAC, h10IP, unkIP))
	if len(channel.calls) != 0 {
		t.Fatalf("unexpected channel calls: %v", channel.kinds())
	}
	if _, ok := engine.Table().Lookup(h10IP); !ok {
		t.Fatal("the requester is not learned")
	}
}

func TestARPReplyOnlyLearns(t *testing.T) {
	engine, channel := newEngine(DefaultOptions())
	handle(t, engine, 3, arpReply(t, h10MAC, h10IP, net.HardwareAddr{0, 0, 0, 0, 0, 2}, net.IPv4(10, 0, 2, 20)))
	if len(channel.calls) != 0 {
		t.Fatalf("unexpected channel calls: %v", channel.kinds())
	}
	if entry, ok := engine.Table().Lookup(h10IP); !ok || entry.Port != 3 {
		t.Fatalf("unexpected learning entry: %v", entry)
	}
}

func TestKnownDestination(t *testing.T) {
	engine, channel := newEngine(DefaultOptions())
	handle(t, engine, 5, arpReply(t, h10MAC, h10IP, net.HardwareAddr{0, 0, 0, 0, 0, 2}, net.IPv4(10, 0, 2, 20)))

	packet := ipv4(t, net.IPv4(10, 0, 2, 20), h10IP)
	handle(t, engine, 2, packet)

	if diff := cmp.Diff([]string{"install", "packet_out"}, channel.kinds()); diff != "" {
		t.Fatalf("unexpected channel calls (-want +got):\n%v", diff)
	}
	expected := policy.FlowRule{
		Name:     "learned-10.0.1.10",
		Priority: policy.PriorityLearned,
		Match:    policy.Match{EtherType: policy.EtherTypeIPv4, DstIP: h10IP},
		Actions:  []policy.Action{policy.SetDstMAC(h10MAC), policy.Output(5)},
	}
	if diff := cmp.Diff(expected, *channel.calls[0].Rule); diff != "" {
		t.Fatalf("unexpected flow rule (-want +got):\n%v", diff)
	}
	if channel.calls[1].Port != 5 || !bytes.Equal(channel.calls[1].Frame, packet) {
		t.Fatalf("unexpected re-injection: port=%v", channel.calls[1].Port)
	}
}

func TestUnknownDestinationFloods(t *testing.T) {
	engine, channel := newEngine(DefaultOptions())
	packet := ipv4(t, h10IP, unkIP)
	handle(t, engine, 4, packet)

	if diff := cmp.Diff([]string{"flood"}, channel.kinds()); diff != "" {
		t.Fatalf("unexpected channel calls (-want +got):\n%v", diff)
	}
	if channel.calls[0].Port != 4 || !bytes.Equal(channel.calls[0].Frame, packet) {
		t.Fatalf("unexpected flood: inPort=%v", channel.calls[0].Port)
	}
}

func TestDuplicatedFlowInstallSuppressed(t *testing.T) {
	src := []struct {
		Options  Options
		Expected []string
	}{
		{
			Options:  DefaultOptions(),
			Expected: []string{"install", "packet_out", "packet_out"},
		},
		{
			Options:  Options{FlowCacheExpiration: 0},
			Expected: []string{"install", "packet_out", "install", "packet_out"},
		},
	}

	for _, v := range src {
		engine, channel := newEngine(v.Options)
		engine.Table().Update(h10IP, h10MAC, 1)
		packet := ipv4(t, unkIP, h10IP)
		handle(t, engine, 2, packet)
		handle(t, engine, 2, packet)
		if diff := cmp.Diff(v.Expected, channel.kinds()); diff != "" {
			t.Fatalf("unexpected channel calls (-want +got):\n%v", diff)
		}
	}
}

func TestIgnoredFrames(t *testing.T) {
	unknownOp := arpRequest(t, h10MAC, h10IP, unkIP)
	// ARP operation field
	unknownOp[14+6], unknownOp[14+7] = 0, 9
	other := make([]byte, 60)
	other[12], other[13] = 0x86, 0xdd

	src := [][]byte{
		nil,
		{1, 2, 3},
		unknownOp,
		other,
	}
	for i, v := range src {
		engine, channel := newEngine(DefaultOptions())
		if err := engine.HandlePacketIn(1, v); err != nil {
			t.Fatalf("unexpected error for #%v: %v", i, err)
		}
		if len(channel.calls) != 0 || engine.Table().Len() != 0 {
			t.Fatalf("unexpected side effect for #%v: calls=%v, entries=%v", i, channel.kinds(), engine.Table().Entries())
		}
	}
}

func TestChannelFailure(t *testing.T) {
	errChannel := errors.New("channel is down")
	engine, channel := newEngine(DefaultOptions())
	channel.err = errChannel

	err := engine.HandlePacketIn(1, ipv4(t, h10IP, unkIP))
	if pkgerrors.Cause(err) != errChannel {
		t.Fatalf("unexpected error: expected=%v, actual=%v", errChannel, err)
	}
}

func TestFirstPacketAfterARPRequest(t *testing.T) {
	noCache := DefaultOptions()
	noCache.FlowCacheExpiration = 0

	src := []struct {
		Options  Options
		Expected []string
	}{
		// The rule installed for the ARP request is identical, so the
		// first IPv4 packet is only re-injected.
		{
			Options:  DefaultOptions(),
			Expected: []string{"packet_out"},
		},
		{
			Options:  noCache,
			Expected: []string{"install", "packet_out"},
		},
	}

	for _, v := range src {
		engine, channel := newEngine(v.Options)
		handle(t, engine, 1, arpRequest(t, h10MAC, h10IP, unkIP))
		if diff := cmp.Diff([]string{"install"}, channel.kinds()); diff != "" {
			t.Fatalf("unexpected channel calls for the ARP request (-want +got):\n%v", diff)
		}
		requester := *channel.calls[0].Rule
		channel.calls = nil

		packet := ipv4(t, unkIP, h10IP)
		handle(t, engine, 2, packet)
		if diff := cmp.Diff(v.Expected, channel.kinds()); diff != "" {
			t.Fatalf("unexpected channel calls for the first IPv4 packet (-want +got):\n%v", diff)
		}
		last := channel.calls[len(channel.calls)-1]
		if last.Port != 1 || !bytes.Equal(last.Frame, packet) {
			t.Fatalf("unexpected re-injection: port=%v", last.Port)
		}
		if len(channel.calls) == 2 {
			if diff := cmp.Diff(requester, *channel.calls[0].Rule); diff != "" {
				t.Fatalf("unexpected flow rule (-want +got):\n%v", diff)
			}
		}
	}
}
