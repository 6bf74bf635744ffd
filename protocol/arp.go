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

	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

const (
	ARPRequest = layers.ARPRequest
	ARPReply   = layers.ARPReply
)

var broadcast = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

type ARP struct {
	Operation uint16
	SHA       net.HardwareAddr // Sender Hardware Address
	SPA       net.IP           // Sender Protocol Address
	THA       net.HardwareAddr // Target Hardware Address
	TPA       net.IP           // Target Protocol Address
}

func (r ARP) String() string {
	return fmt.Sprintf("Operation=%v, SHA=%v, SPA=%v, THA=%v, TPA=%v", r.Operation, r.SHA, r.SPA, r.THA, r.TPA)
}

func newARP(arp *layers.ARP) (*ARP, error) {
	if arp.AddrType != layers.LinkTypeEthernet || arp.Protocol != layers.EthernetTypeIPv4 {
		return nil, fmt.Errorf("unsupported ARP address type: hardware=%v, protocol=%v", arp.AddrType, arp.Protocol)
	}
	if arp.HwAddressSize != 6 || arp.ProtAddressSize != 4 {
		return nil, fmt.Errorf("invalid ARP address size: hardware=%v, protocol=%v", arp.HwAddressSize, arp.ProtAddressSize)
	}

	return &ARP{
		Operation: arp.Operation,
		SHA:       net.HardwareAddr(arp.SourceHwAddress),
		SPA:       net.IP(arp.SourceProtAddress),
		THA:       net.HardwareAddr(arp.DstHwAddress),
		TPA:       net.IP(arp.DstProtAddress),
	}, nil
}

func newARPFrame(op uint16, ethDst, sha net.HardwareAddr, spa net.IP, tha net.HardwareAddr, tpa net.IP) ([]byte, error) {
	if len(sha) != 6 || len(tha) != 6 || len(ethDst) != 6 {
		return nil, errors.New("invalid hardware address")
	}
	if spa.To4() == nil || tpa.To4() == nil {
		return nil, errors.New("protocol address is not an IPv4 address")
	}

	eth := &layers.Ethernet{
		SrcMAC:       sha,
		DstMAC:       ethDst,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         op,
		SourceHwAddress:   sha,
		SourceProtAddress: spa.To4(),
		DstHwAddress:      tha,
		DstProtAddress:    tpa.To4(),
	}

	return serialize(eth, arp)
}

// NewARPRequest returns a broadcast Ethernet frame asking who has tpa.
func NewARPRequest(sha net.HardwareAddr, spa, tpa net.IP) ([]byte, error) {
	return newARPFrame(ARPRequest, broadcast, sha, spa, net.HardwareAddr{0, 0, 0, 0, 0, 0}, tpa)
}

// NewARPReply returns an Ethernet frame, sent from sha to tha, telling that
// spa is at sha.
func NewARPReply(sha net.HardwareAddr, spa net.IP, tha net.HardwareAddr, tpa net.IP) ([]byte, error) {
	return newARPFrame(ARPReply, tha, sha, spa, tha, tpa)
}
