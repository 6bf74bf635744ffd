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

type SetConfig struct {
	openflow.Message
	Flags uint16
	// Max bytes of a new flow that the switch should send to the controller.
	MissSendLength uint16
}

func NewSetConfig(xid uint32) *SetConfig {
	return &SetConfig{
		Message:        openflow.NewMessage(openflow.OF10_VERSION, OFPT_SET_CONFIG, xid),
		Flags:          OFPC_FRAG_NORMAL,
		MissSendLength: 0xFFFF,
	}
}

func (r *SetConfig) MarshalBinary() ([]byte, error) {
	v := make([]byte, 4)
	binary.BigEndian.PutUint16(v[0:2], r.Flags)
	binary.BigEndian.PutUint16(v[2:4], r.MissSendLength)
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *SetConfig) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 4 {
		return openflow.ErrInvalidPacketLength
	}
	r.Flags = binary.BigEndian.Uint16(payload[0:2])
	r.MissSendLength = binary.BigEndian.Uint16(payload[2:4])

	return nil
}
