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
	"fmt"
	"net"

	"github.com/YusufShahp/CSE461Proj2/openflow"
)

const portLength = 48

// Port is ofp_phy_port.
type Port struct {
	Number uint16
	MAC    net.HardwareAddr
	Name   string
	Config uint32
	State  uint32
}

func (r Port) String() string {
	return fmt.Sprintf("Number=%v, MAC=%v, Name=%v, Config=%v, State=%v", r.Number, r.MAC, r.Name, r.Config, r.State)
}

func (r Port) IsLinkDown() bool {
	return r.State&OFPPS_LINK_DOWN != 0
}

func (r *Port) MarshalBinary() ([]byte, error) {
	if len(r.Name) > 16 {
		return nil, fmt.Errorf("too long port name: %v", r.Name)
	}

	v := make([]byte, portLength)
	binary.BigEndian.PutUint16(v[0:2], r.Number)
	copy(v[2:8], r.MAC)
	copy(v[8:24], r.Name)
	binary.BigEndian.PutUint32(v[24:28], r.Config)
	binary.BigEndian.PutUint32(v[28:32], r.State)
	// v[32:48] is the port features that we don't use.

	return v, nil
}

func (r *Port) UnmarshalBinary(data []byte) error {
	if len(data) < portLength {
		return openflow.ErrInvalidPacketLength
	}

	r.Number = binary.BigEndian.Uint16(data[0:2])
	r.MAC = make(net.HardwareAddr, 6)
	copy(r.MAC, data[2:8])
	r.Name = string(bytes.TrimRight(data[8:24], "\x00"))
	r.Config = binary.BigEndian.Uint32(data[24:28])
	r.State = binary.BigEndian.Uint32(data[28:32])

	return nil
}

type PortStatus struct {
	openflow.Message
	Reason uint8
	Port   Port
}

func (r *PortStatus) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 8+portLength {
		return openflow.ErrInvalidPacketLength
	}
	r.Reason = payload[0]
	// payload[1:8] is padding

	return r.Port.UnmarshalBinary(payload[8:])
}
