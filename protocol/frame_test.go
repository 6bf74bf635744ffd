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

package protocol

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var (
	macA = net.HardwareAddr{0, 0, 0, 0, 0, 1}
	macB = net.HardwareAddr{0, 0, 0, 0, 0, 4}
	ipA  = net.IPv4(10, 0, 1, 10).To4()
	ipB  = net.IPv4(10, 0, 4, 10).To4()
)

func TestDecodeARPRequest(t *testing.T) {
	data, err := NewARPRequest(macA, ipA, ipB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Kind != KindARP {
		t.Fatalf("unexpected kind: expected=%v, actual=%v", KindARP, frame.Kind)
	}
	if frame.DstMAC.String() != "ff:ff:ff:ff:ff:ff" {
		t.Fatalf("unexpected destination MAC: %v", frame.DstMAC)
	}
	expected := &ARP{
		Operation: ARPRequest,
		SHA:       macA,
		SPA:       ipA,
		THA:       net.HardwareAddr{0, 0, 0, 0, 0, 0},
		TPA:       ipB,
	}
	if diff := cmp.Diff(expected, frame.ARP); diff != "" {
		t.Fatalf("unexpected ARP (-want +got):\n%v", diff)
	}
}

func TestARPReplyIsUnicast(t *testing.T) {
	data, err := NewARPReply(macB, ipB, macA, ipA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.ARP.Operation != ARPReply {
		t.Fatalf("unexpected operation: expected=%v, actual=%v", ARPReply, frame.ARP.Operation)
	}
	if frame.SrcMAC.String() != macB.String() || frame.DstMAC.String() != macA.String() {
		t.Fatalf("unexpected Ethernet addresses: src=%v, dst=%v", frame.SrcMAC, frame.DstMAC)
	}
	if !frame.ARP.SPA.Equal(ipB) || !frame.ARP.TPA.Equal(ipA) {
		t.Fatalf("unexpected protocol addresses: %v", frame.ARP)
	}
}

func TestDecodeIPv4(t *testing.T) {
	data, err := NewIPv4(macA, macB, ipA, ipB, 17, []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Kind != KindIPv4 || frame.EtherType != 0x0800 {
		t.Fatalf("unexpected frame: %v", frame)
	}
	if frame.IPv4.Protocol != 17 || !frame.IPv4.Src.Equal(ipA) || !frame.IPv4.Dst.Equal(ipB) {
		t.Fatalf("unexpected IPv4 header: %v", frame.IPv4)
	}
}

func TestDecodeOtherEtherType(t *testing.T) {
	data := make([]byte, 60)
	copy(data[0:6], macB)
	copy(data[6:12], macA)
	data[12], data[13] = 0x88, 0xb5

	frame, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Kind != KindOther || frame.EtherType != 0x88b5 {
		t.Fatalf("unexpected frame: %v", frame)
	}
}

func TestDecodeMalformed(t *testing.T) {
	arp, err := NewARPRequest(macA, ipA, ipB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ipv4, err := NewIPv4(macA, macB, ipA, ipB, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := [][]byte{
		nil,
		{0x00, 0x01, 0x02},
		arp[:24],
		ipv4[:20],
	}
	for i, v := range src {
		if _, err := Decode(v); err == nil {
			t.Fatalf("expected error for frame #%v, but no error returns", i)
		}
	}
}

func TestNewARPInvalidAddress(t *testing.T) {
	if _, err := NewARPReply(macB, net.ParseIP("fe80::1"), macA, ipA); err == nil {
		t.Fatal("expected error, but no error returns")
	}
	if _, err := NewARPReply(net.HardwareAddr{1, 2}, ipB, macA, ipA); err == nil {
		t.Fatal("expected error, but no error returns")
	}
}
