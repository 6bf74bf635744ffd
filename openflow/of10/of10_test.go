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

package of10

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"

	"github.com/YusufShahp/CSE461Proj2/openflow"
	"github.com/pkg/errors"
)

func TestFlowModEncoding(t *testing.T) {
	mac := net.HardwareAddr{0, 0, 0, 0, 0, 4}
	flow := NewFlowMod(7, OFPFC_ADD)
	flow.Priority = 0x8000
	flow.Match.SetEtherType(0x0800)
	flow.Match.SetDstIP(net.IPv4(10, 0, 4, 10))
	flow.Action.SetDstMAC(mac)
	flow.Action.AddOutput(4)

	packet, err := flow.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// header + match + flow_mod body + set_dl_dst + output
	if len(packet) != 8+40+24+16+8 {
		t.Fatalf("unexpected packet length: %v", len(packet))
	}
	if packet[1] != OFPT_FLOW_MOD || binary.BigEndian.Uint16(packet[2:4]) != uint16(len(packet)) {
		t.Fatalf("unexpected header: %v", packet[0:8])
	}
	wildcards := binary.BigEndian.Uint32(packet[8:12])
	if wildcards != 0x3020EF {
		t.Fatalf("unexpected wildcards: expected=0x3020ef, actual=0x%x", wildcards)
	}
	if !bytes.Equal(packet[8+32:8+36], []byte{10, 0, 4, 10}) {
		t.Fatalf("unexpected nw_dst: %v", packet[8+32:8+36])
	}
	if v := binary.BigEndian.Uint16(packet[8+40+14 : 8+40+16]); v != 0x8000 {
		t.Fatalf("unexpected priority: %v", v)
	}

	decoded := new(FlowMod)
	if err := decoded.UnmarshalBinary(packet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, v := decoded.Action.DstMAC(); !ok || v.String() != mac.String() {
		t.Fatalf("unexpected destination MAC action: %v", v)
	}
	if outputs := decoded.Action.Outputs(); len(outputs) != 1 || outputs[0] != 4 {
		t.Fatalf("unexpected output actions: %v", outputs)
	}
	if wildcard, ip := decoded.Match.DstIP(); wildcard || !ip.Equal(net.IPv4(10, 0, 4, 10)) {
		t.Fatalf("unexpected destination IP match: wildcard=%v, ip=%v", wildcard, ip)
	}
	if wildcard, _ := decoded.Match.SrcIP(); !wildcard {
		t.Fatal("source IP is not wildcarded")
	}
}

func TestMatchRequiresIPv4(t *testing.T) {
	match := NewMatch()
	match.SetIPProtocol(1)
	if _, err := match.MarshalBinary(); err == nil {
		t.Fatal("expected error, but no error returns")
	}
}

func TestDeleteAllFlows(t *testing.T) {
	packet, err := NewFlowMod(1, OFPFC_DELETE).MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packet) != 8+40+24 {
		t.Fatalf("unexpected packet length: %v", len(packet))
	}
	if v := binary.BigEndian.Uint32(packet[8:12]); v != 0x3820FF {
		t.Fatalf("unexpected wildcards: 0x%x", v)
	}
	if v := binary.BigEndian.Uint16(packet[8+40+20 : 8+40+22]); v != OFPP_NONE {
		t.Fatalf("unexpected out_port: %v", v)
	}
}

func TestPacketOutFlood(t *testing.T) {
	out := NewPacketOut(3)
	out.InPort = 2
	out.Action.AddOutput(OFPP_FLOOD)
	out.Data = []byte{1, 2, 3, 4}

	packet, err := out.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, err := ParseMessage(packet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, ok := msg.(*PacketOut)
	if !ok {
		t.Fatalf("unexpected message type: %T", msg)
	}
	if decoded.InPort != 2 || decoded.BufferID != OFP_NO_BUFFER || decoded.TransactionID() != 3 {
		t.Fatalf("unexpected PACKET_OUT: inPort=%v, bufferID=%v, xid=%v", decoded.InPort, decoded.BufferID, decoded.TransactionID())
	}
	if outputs := decoded.Action.Outputs(); len(outputs) != 1 || outputs[0] != OFPP_FLOOD {
		t.Fatalf("unexpected outputs: %v", outputs)
	}
	if !bytes.Equal(decoded.Data, out.Data) {
		t.Fatalf("unexpected data: expected=%v, actual=%v", out.Data, decoded.Data)
	}
}

func TestFeaturesReply(t *testing.T) {
	reply := NewFeaturesReply(9)
	reply.DPID = 21
	reply.NumTables = 1
	reply.Ports = []Port{
		{Number: 1, MAC: net.HardwareAddr{0, 1, 2, 3, 4, 5}, Name: "s21-eth1"},
		{Number: 2, MAC: net.HardwareAddr{0, 1, 2, 3, 4, 6}, Name: "s21-eth2", State: OFPPS_LINK_DOWN},
	}
	packet, err := reply.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := ParseMessage(packet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := msg.(*FeaturesReply)
	if decoded.DPID != 21 || len(decoded.Ports) != 2 {
		t.Fatalf("unexpected FEATURES_REPLY: dpid=%v, ports=%v", decoded.DPID, decoded.Ports)
	}
	if decoded.Ports[0].Name != "s21-eth1" || decoded.Ports[0].IsLinkDown() || !decoded.Ports[1].IsLinkDown() {
		t.Fatalf("unexpected ports: %v", decoded.Ports)
	}
}

func TestParseMessageErrors(t *testing.T) {
	hello, _ := NewHello(1).MarshalBinary()
	truncated := NewPacketIn(1, 1, []byte{1, 2, 3})
	packetIn, _ := truncated.MarshalBinary()
	// Claim a shorter length than the PACKET_IN body.
	binary.BigEndian.PutUint16(packetIn[2:4], 12)

	src := []struct {
		Packet []byte
		Cause  error
	}{
		{Packet: hello[:4], Cause: openflow.ErrInvalidPacketLength},
		{Packet: []byte{0x04, OFPT_HELLO, 0, 8, 0, 0, 0, 1}, Cause: openflow.ErrUnsupportedVersion},
		{Packet: []byte{0x01, OFPT_STATS_REPLY, 0, 8, 0, 0, 0, 1}, Cause: openflow.ErrUnsupportedMessage},
		{Packet: packetIn, Cause: openflow.ErrInvalidPacketLength},
	}

	for i, v := range src {
		_, err := ParseMessage(v.Packet)
		if errors.Cause(err) != v.Cause {
			t.Fatalf("unexpected error for #%v: expected=%v, actual=%v", i, v.Cause, err)
		}
	}
}

func TestFactoryTransactionID(t *testing.T) {
	factory := NewFactory()
	first := factory.NewHello().TransactionID()
	second := factory.NewBarrierRequest().TransactionID()
	if first != 1 || second != 2 {
		t.Fatalf("unexpected transaction IDs: first=%v, second=%v", first, second)
	}
}
