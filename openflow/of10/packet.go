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
	"fmt"

	"github.com/YusufShahp/CSE461Proj2/openflow"
)

type PacketIn struct {
	openflow.Message
	BufferID uint32
	Length   uint16
	InPort   uint16
	Reason   uint8
	Data     []byte
}

func NewPacketIn(xid uint32, inPort uint16, data []byte) *PacketIn {
	return &PacketIn{
		Message:  openflow.NewMessage(openflow.OF10_VERSION, OFPT_PACKET_IN, xid),
		BufferID: OFP_NO_BUFFER,
		Length:   uint16(len(data)),
		InPort:   inPort,
		Reason:   OFPR_NO_MATCH,
		Data:     data,
	}
}

func (r *PacketIn) MarshalBinary() ([]byte, error) {
	v := make([]byte, 10+len(r.Data))
	binary.BigEndian.PutUint32(v[0:4], r.BufferID)
	binary.BigEndian.PutUint16(v[4:6], r.Length)
	binary.BigEndian.PutUint16(v[6:8], r.InPort)
	v[8] = r.Reason
	// v[9] is padding
	copy(v[10:], r.Data)
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *PacketIn) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 10 {
		return openflow.ErrInvalidPacketLength
	}
	r.BufferID = binary.BigEndian.Uint32(payload[0:4])
	r.Length = binary.BigEndian.Uint16(payload[4:6])
	r.InPort = binary.BigEndian.Uint16(payload[6:8])
	r.Reason = payload[8]
	// payload[9] is padding
	r.Data = payload[10:]

	return nil
}

type PacketOut struct {
	openflow.Message
	BufferID uint32
	InPort   uint16
	Action   *Action
	Data     []byte
}

func NewPacketOut(xid uint32) *PacketOut {
	return &PacketOut{
		Message:  openflow.NewMessage(openflow.OF10_VERSION, OFPT_PACKET_OUT, xid),
		BufferID: OFP_NO_BUFFER,
		InPort:   OFPP_NONE,
		Action:   NewAction(),
	}
}

func (r *PacketOut) MarshalBinary() ([]byte, error) {
	if r.Action == nil {
		return nil, fmt.Errorf("empty action list")
	}
	action, err := r.Action.MarshalBinary()
	if err != nil {
		return nil, err
	}

	v := make([]byte, 8, 8+len(action)+len(r.Data))
	binary.BigEndian.PutUint32(v[0:4], r.BufferID)
	binary.BigEndian.PutUint16(v[4:6], r.InPort)
	binary.BigEndian.PutUint16(v[6:8], uint16(len(action)))
	v = append(v, action...)
	v = append(v, r.Data...)
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *PacketOut) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 8 {
		return openflow.ErrInvalidPacketLength
	}
	r.BufferID = binary.BigEndian.Uint32(payload[0:4])
	r.InPort = binary.BigEndian.Uint16(payload[4:6])
	length := int(binary.BigEndian.Uint16(payload[6:8]))
	if len(payload) < 8+length {
		return openflow.ErrInvalidPacketLength
	}
	r.Action = NewAction()
	if err := r.Action.UnmarshalBinary(payload[8 : 8+length]); err != nil {
		return err
	}
	r.Data = payload[8+length:]

	return nil
}
