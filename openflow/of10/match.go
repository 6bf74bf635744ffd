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
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/YusufShahp/CSE461Proj2/openflow"
)

const matchLength = 40

type Wildcard struct {
	InPort    bool /* Switch input port. */
	VLANID    bool /* VLAN id. */
	SrcMAC    bool /* Ethernet source address. */
	DstMAC    bool /* Ethernet destination address. */
	EtherType bool /* Ethernet frame type. */
	Protocol  bool /* IP protocol. */
	SrcPort   bool /* TCP/UDP source port. */
	DstPort   bool /* TCP/UDP destination port. */
	// IP source address wildcard bit count. 0 is exact match,
	// 1 ignores the LSB, 2 ignores the 2 least-significant bits, ...,
	// 32 and higher wildcard the entire field.
	SrcIP        uint8
	DstIP        uint8
	VLANPriority bool /* VLAN priority. */
	TOS          bool /* IP ToS. */
}

func newWildcardAll() Wildcard {
	return Wildcard{
		InPort:       true,
		VLANID:       true,
		SrcMAC:       true,
		DstMAC:       true,
		EtherType:    true,
		Protocol:     true,
		SrcPort:      true,
		DstPort:      true,
		SrcIP:        32,
		DstIP:        32,
		VLANPriority: true,
		TOS:          true,
	}
}

func (r Wildcard) bits() (uint32, error) {
	if r.SrcIP > 32 || r.DstIP > 32 {
		return 0, errors.New("invalid IP address wildcard bit count")
	}

	var v uint32
	flags := []struct {
		set bool
		bit uint32
	}{
		{r.InPort, OFPFW_IN_PORT},
		{r.VLANID, OFPFW_DL_VLAN},
		{r.SrcMAC, OFPFW_DL_SRC},
		{r.DstMAC, OFPFW_DL_DST},
		{r.EtherType, OFPFW_DL_TYPE},
		{r.Protocol, OFPFW_NW_PROTO},
		{r.SrcPort, OFPFW_TP_SRC},
		{r.DstPort, OFPFW_TP_DST},
		{r.VLANPriority, OFPFW_DL_VLAN_PCP},
		{r.TOS, OFPFW_NW_TOS},
	}
	for _, f := range flags {
		if f.set {
			v |= f.bit
		}
	}
	v |= uint32(r.SrcIP) << OFPFW_NW_SRC_SHIFT
	v |= uint32(r.DstIP) << OFPFW_NW_DST_SHIFT

	return v, nil
}

func (r *Wildcard) setBits(w uint32) {
	r.InPort = w&OFPFW_IN_PORT != 0
	r.VLANID = w&OFPFW_DL_VLAN != 0
	r.SrcMAC = w&OFPFW_DL_SRC != 0
	r.DstMAC = w&OFPFW_DL_DST != 0
	r.EtherType = w&OFPFW_DL_TYPE != 0
	r.Protocol = w&OFPFW_NW_PROTO != 0
	r.SrcPort = w&OFPFW_TP_SRC != 0
	r.DstPort = w&OFPFW_TP_DST != 0
	r.SrcIP = uint8((w >> OFPFW_NW_SRC_SHIFT) & 0x3F)
	r.DstIP = uint8((w >> OFPFW_NW_DST_SHIFT) & 0x3F)
	r.VLANPriority = w&OFPFW_DL_VLAN_PCP != 0
	r.TOS = w&OFPFW_NW_TOS != 0
}

// Match is ofp_match. Only the fields used by the fabric policy have setters;
// all the others stay wildcarded.
type Match struct {
	err       error
	wildcards Wildcard
	inPort    uint16
	etherType uint16
	protocol  uint8
	srcIP     net.IP
	dstIP     net.IP
}

// NewMatch returns a Match whose fields are all wildcarded.
func NewMatch() *Match {
	return &Match{
		wildcards: newWildcardAll(),
		srcIP:     net.IPv4zero,
		dstIP:     net.IPv4zero,
	}
}

func (r *Match) Error() error {
	return r.err
}

func (r *Match) SetEtherType(t uint16) {
	r.etherType = t
	r.wildcards.EtherType = false
}

func (r *Match) EtherType() (wildcard bool, etherType uint16) {
	return r.wildcards.EtherType, r.etherType
}

func (r *Match) isIPv4() bool {
	return !r.wildcards.EtherType && r.etherType == 0x0800
}

func (r *Match) SetIPProtocol(p uint8) {
	if !r.isIPv4() {
		r.err = errors.New("SetIPProtocol: EtherType is not IPv4")
		return
	}

	r.protocol = p
	r.wildcards.Protocol = false
}

func (r *Match) IPProtocol() (wildcard bool, protocol uint8) {
	return r.wildcards.Protocol, r.protocol
}

// SetSrcIP sets an exact match on the IPv4 source address.
func (r *Match) SetSrcIP(ip net.IP) {
	if !r.isIPv4() {
		r.err = errors.New("SetSrcIP: EtherType is not IPv4")
		return
	}
	if ip.To4() == nil {
		r.err = fmt.Errorf("SetSrcIP: invalid IPv4 address: %v", ip)
		return
	}

	r.srcIP = ip.To4()
	r.wildcards.SrcIP = 0
}

func (r *Match) SrcIP() (wildcard bool, ip net.IP) {
	return r.wildcards.SrcIP >= 32, r.srcIP
}

// SetDstIP sets an exact match on the IPv4 destination address.
func (r *Match) SetDstIP(ip net.IP) {
	if !r.isIPv4() {
		r.err = errors.New("SetDstIP: EtherType is not IPv4")
		return
	}
	if ip.To4() == nil {
		r.err = fmt.Errorf("SetDstIP: invalid IPv4 address: %v", ip)
		return
	}

	r.dstIP = ip.To4()
	r.wildcards.DstIP = 0
}

func (r *Match) DstIP() (wildcard bool, ip net.IP) {
	return r.wildcards.DstIP >= 32, r.dstIP
}

func (r *Match) MarshalBinary() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}

	wildcard, err := r.wildcards.bits()
	if err != nil {
		return nil, err
	}

	data := make([]byte, matchLength)
	binary.BigEndian.PutUint32(data[0:4], wildcard)
	binary.BigEndian.PutUint16(data[4:6], r.inPort)
	// data[6:18] is the Ethernet addresses, data[18:21] is VLAN and data[21] is padding.
	binary.BigEndian.PutUint16(data[22:24], r.etherType)
	// data[24] is ToS.
	data[25] = r.protocol
	// data[26:28] is padding.
	copy(data[28:32], r.srcIP.To4())
	copy(data[32:36], r.dstIP.To4())
	// data[36:40] is TCP/UDP ports.

	return data, nil
}

func (r *Match) UnmarshalBinary(data []byte) error {
	if len(data) < matchLength {
		return openflow.ErrInvalidPacketLength
	}

	r.wildcards.setBits(binary.BigEndian.Uint32(data[0:4]))
	r.inPort = binary.BigEndian.Uint16(data[4:6])
	r.etherType = binary.BigEndian.Uint16(data[22:24])
	r.protocol = data[25]
	r.srcIP = net.IPv4(data[28], data[29], data[30], data[31]).To4()
	r.dstIP = net.IPv4(data[32], data[33], data[34], data[35]).To4()

	return nil
}

func (r *Match) String() string {
	return fmt.Sprintf("Wildcards=%+v, InPort=%v, EtherType=0x%04x, Protocol=%v, SrcIP=%v, DstIP=%v", r.wildcards, r.inPort, r.etherType, r.protocol, r.srcIP, r.dstIP)
}
