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

// Action is an ordered OpenFlow 1.0 action list. The destination MAC rewrite,
// if any, always precedes the outputs. An empty list means drop.
type Action struct {
	dstMAC  net.HardwareAddr
	outputs []uint16
}

func NewAction() *Action {
	return &Action{}
}

func (r *Action) SetDstMAC(mac net.HardwareAddr) {
	r.dstMAC = mac
}

func (r *Action) DstMAC() (ok bool, mac net.HardwareAddr) {
	return r.dstMAC != nil, r.dstMAC
}

func (r *Action) AddOutput(port uint16) {
	r.outputs = append(r.outputs, port)
}

func (r *Action) Outputs() []uint16 {
	return r.outputs
}

func marshalOutput(port uint16) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint16(v[0:2], OFPAT_OUTPUT)
	binary.BigEndian.PutUint16(v[2:4], 8)
	binary.BigEndian.PutUint16(v[4:6], port)
	// Send the whole packet if the port is the controller.
	binary.BigEndian.PutUint16(v[6:8], 0xFFFF)

	return v
}

func marshalMAC(t uint16, mac net.HardwareAddr) ([]byte, error) {
	if len(mac) != 6 {
		return nil, fmt.Errorf("invalid MAC address: %v", mac)
	}

	v := make([]byte, 16)
	binary.BigEndian.PutUint16(v[0:2], t)
	binary.BigEndian.PutUint16(v[2:4], 16)
	copy(v[4:10], mac)

	return v, nil
}

func (r *Action) MarshalBinary() ([]byte, error) {
	result := make([]byte, 0, 16+8*len(r.outputs))
	if r.dstMAC != nil {
		v, err := marshalMAC(OFPAT_SET_DL_DST, r.dstMAC)
		if err != nil {
			return nil, err
		}
		result = append(result, v...)
	}
	for _, port := range r.outputs {
		result = append(result, marshalOutput(port)...)
	}

	return result, nil
}

func (r *Action) UnmarshalBinary(data []byte) error {
	r.dstMAC = nil
	r.outputs = nil

	buf := data
	for len(buf) >= 4 {
		t := binary.BigEndian.Uint16(buf[0:2])
		length := binary.BigEndian.Uint16(buf[2:4])
		if length < 8 || int(length) > len(buf) || length%8 != 0 {
			return openflow.ErrInvalidPacketLength
		}

		switch t {
		case OFPAT_OUTPUT:
			r.outputs = append(r.outputs, binary.BigEndian.Uint16(buf[4:6]))
		case OFPAT_SET_DL_DST:
			if length < 16 {
				return openflow.ErrInvalidPacketLength
			}
			r.dstMAC = make(net.HardwareAddr, 6)
			copy(r.dstMAC, buf[4:10])
		default:
			return fmt.Errorf("unsupported action type: %v", t)
		}
		buf = buf[length:]
	}
	if len(buf) != 0 {
		return errors.New("trailing garbage after the action list")
	}

	return nil
}
