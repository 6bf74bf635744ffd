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
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

type Kind int

const (
	KindOther Kind = iota
	KindARP
	KindIPv4
)

func (r Kind) String() string {
	switch r {
	case KindARP:
		return "ARP"
	case KindIPv4:
		return "IPv4"
	default:
		return "Other"
	}
}

// IPv4 carries the header fields of an IPv4 packet that the controller uses.
type IPv4 struct {
	Protocol uint8
	Src      net.IP
	Dst      net.IP
}

func (r IPv4) String() string {
	return fmt.Sprintf("Protocol=%v, Src=%v, Dst=%v", r.Protocol, r.Src, r.Dst)
}

// Frame is a decoded Ethernet frame. ARP is set only if Kind is KindARP, and
// IPv4 only if Kind is KindIPv4.
type Frame struct {
	Kind      Kind
	SrcMAC    net.HardwareAddr
	DstMAC    net.HardwareAddr
	EtherType uint16
	ARP       *ARP
	IPv4      *IPv4
	// Data is the raw frame including the Ethernet header.
	Data []byte
}

func (r Frame) String() string {
	s := fmt.Sprintf("Kind=%v, SrcMAC=%v, DstMAC=%v, EtherType=0x%04x", r.Kind, r.SrcMAC, r.DstMAC, r.EtherType)
	switch r.Kind {
	case KindARP:
		s += fmt.Sprintf(", ARP={%v}", r.ARP)
	case KindIPv4:
		s += fmt.Sprintf(", IPv4={%v}", r.IPv4)
	}

	return s
}

// Decode parses an Ethernet frame. Frames that are neither ARP nor IPv4 are
// returned with KindOther and no error; an error means the frame, or its ARP
// or IPv4 header, is malformed.
func Decode(data []byte) (*Frame, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)
	l := packet.Layer(layers.LayerTypeEthernet)
	if l == nil {
		return nil, decodeError(packet, "Ethernet")
	}
	eth := l.(*layers.Ethernet)

	frame := &Frame{
		Kind:      KindOther,
		SrcMAC:    eth.SrcMAC,
		DstMAC:    eth.DstMAC,
		EtherType: uint16(eth.EthernetType),
		Data:      data,
	}

	switch eth.EthernetType {
	case layers.EthernetTypeARP:
		l := packet.Layer(layers.LayerTypeARP)
		if l == nil {
			return nil, decodeError(packet, "ARP")
		}
		arp, err := newARP(l.(*layers.ARP))
		if err != nil {
			return nil, err
		}
		frame.Kind = KindARP
		frame.ARP = arp
	case layers.EthernetTypeIPv4:
		l := packet.Layer(layers.LayerTypeIPv4)
		if l == nil {
			return nil, decodeError(packet, "IPv4")
		}
		ip := l.(*layers.IPv4)
		frame.Kind = KindIPv4
		frame.IPv4 = &IPv4{
			Protocol: uint8(ip.Protocol),
			Src:      ip.SrcIP,
			Dst:      ip.DstIP,
		}
	}

	return frame, nil
}

func decodeError(packet gopacket.Packet, layer string) error {
	if e := packet.ErrorLayer(); e != nil {
		return errors.Wrapf(e.Error(), "decoding %v", layer)
	}

	return fmt.Errorf("missing %v layer", layer)
}

// NewIPv4 returns an Ethernet frame that carries an IPv4 packet with the
// protocol number and payload.
func NewIPv4(srcMAC, dstMAC net.HardwareAddr, src, dst net.IP, proto uint8, payload []byte) ([]byte, error) {
	if src.To4() == nil || dst.To4() == nil {
		return nil, errors.New("source or destination is not an IPv4 address")
	}

	eth := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocol(proto),
		SrcIP:    src.To4(),
		DstIP:    dst.To4(),
	}

	return serialize(eth, ip, gopacket.Payload(payload))
}

func serialize(l ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	if err := gopacket.SerializeLayers(buf, opts, l...); err != nil {
		return nil, errors.Wrap(err, "serializing frame")
	}

	return buf.Bytes(), nil
}
