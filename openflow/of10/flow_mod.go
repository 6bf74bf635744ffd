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

	"github.com/YusufShahp/CSE461Proj2/openflow"
)

type FlowMod struct {
	openflow.Message
	Command     uint16
	Cookie      uint64
	IdleTimeout uint16
	HardTimeout uint16
	Priority    uint16
	// OutPort filters FLOW_MOD DELETE commands. OFPP_NONE disables it.
	OutPort uint16
	Flags   uint16
	Match   *Match
	Action  *Action
}

func NewFlowMod(xid uint32, cmd uint16) *FlowMod {
	return &FlowMod{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_FLOW_MOD, xid),
		Command: cmd,
		OutPort: OFPP_NONE,
		Match:   NewMatch(),
		Action:  NewAction(),
	}
}

func (r *FlowMod) MarshalBinary() ([]byte, error) {
	if r.Match == nil {
		return nil, errors.New("empty flow match")
	}
	result, err := r.Match.MarshalBinary()
	if err != nil {
		return nil, err
	}

	v := make([]byte, 24)
	binary.BigEndian.PutUint64(v[0:8], r.Cookie)
	binary.BigEndian.PutUint16(v[8:10], r.Command)
	binary.BigEndian.PutUint16(v[10:12], r.IdleTimeout)
	binary.BigEndian.PutUint16(v[12:14], r.HardTimeout)
	binary.BigEndian.PutUint16(v[14:16], r.Priority)
	binary.BigEndian.PutUint32(v[16:20], OFP_NO_BUFFER)
	binary.BigEndian.PutUint16(v[20:22], r.OutPort)
	binary.BigEndian.PutUint16(v[22:24], r.Flags)
	result = append(result, v...)

	if r.Action != nil {
		action, err := r.Action.MarshalBinary()
		if err != nil {
			return nil, err
		}
		result = append(result, action...)
	}
	r.SetPayload(result)

	return r.Message.MarshalBinary()
}

func (r *FlowMod) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < matchLength+24 {
		return openflow.ErrInvalidPacketLength
	}
	r.Match = new(Match)
	if err := r.Match.UnmarshalBinary(payload[0:matchLength]); err != nil {
		return err
	}
	v := payload[matchLength:]
	r.Cookie = binary.BigEndian.Uint64(v[0:8])
	r.Command = binary.BigEndian.Uint16(v[8:10])
	r.IdleTimeout = binary.BigEndian.Uint16(v[10:12])
	r.HardTimeout = binary.BigEndian.Uint16(v[12:14])
	r.Priority = binary.BigEndian.Uint16(v[14:16])
	// v[16:20] is the buffer ID.
	r.OutPort = binary.BigEndian.Uint16(v[20:22])
	r.Flags = binary.BigEndian.Uint16(v[22:24])

	r.Action = NewAction()
	return r.Action.UnmarshalBinary(v[24:])
}
