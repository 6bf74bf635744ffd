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

	"github.com/YusufShahp/CSE461Proj2/openflow"
)

type FeaturesReply struct {
	openflow.Message
	DPID         uint64
	NumBuffers   uint32
	NumTables    uint8
	Capabilities uint32
	Actions      uint32
	Ports        []Port
}

func NewFeaturesReply(xid uint32) *FeaturesReply {
	return &FeaturesReply{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_FEATURES_REPLY, xid),
	}
}

func (r *FeaturesReply) MarshalBinary() ([]byte, error) {
	v := make([]byte, 24, 24+len(r.Ports)*portLength)
	binary.BigEndian.PutUint64(v[0:8], r.DPID)
	binary.BigEndian.PutUint32(v[8:12], r.NumBuffers)
	v[12] = r.NumTables
	// v[13:16] is padding
	binary.BigEndian.PutUint32(v[16:20], r.Capabilities)
	binary.BigEndian.PutUint32(v[20:24], r.Actions)
	for i := range r.Ports {
		port, err := r.Ports[i].MarshalBinary()
		if err != nil {
			return nil, err
		}
		v = append(v, port...)
	}
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *FeaturesReply) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 24 {
		return openflow.ErrInvalidPacketLength
	}
	r.DPID = binary.BigEndian.Uint64(payload[0:8])
	r.NumBuffers = binary.BigEndian.Uint32(payload[8:12])
	r.NumTables = payload[12]
	r.Capabilities = binary.BigEndian.Uint32(payload[16:20])
	r.Actions = binary.BigEndian.Uint32(payload[20:24])

	nPorts := (len(payload) - 24) / portLength
	r.Ports = make([]Port, nPorts)
	for i := 0; i < nPorts; i++ {
		buf := payload[24+i*portLength:]
		if err := r.Ports[i].UnmarshalBinary(buf[0:portLength]); err != nil {
			return err
		}
	}

	return nil
}
