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

// Error is an OFPT_ERROR message sent by a switch.
type Error struct {
	openflow.Message
	Class uint16
	Code  uint16
	// Data is at least 64 bytes of the failed request.
	Data []byte
}

func NewError(xid uint32, class, code uint16, data []byte) *Error {
	return &Error{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_ERROR, xid),
		Class:   class,
		Code:    code,
		Data:    data,
	}
}

func (r *Error) Error() string {
	return fmt.Sprintf("openflow error: type=%v, code=%v", r.Class, r.Code)
}

func (r *Error) MarshalBinary() ([]byte, error) {
	v := make([]byte, 4+len(r.Data))
	binary.BigEndian.PutUint16(v[0:2], r.Class)
	binary.BigEndian.PutUint16(v[2:4], r.Code)
	copy(v[4:], r.Data)
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *Error) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 4 {
		return openflow.ErrInvalidPacketLength
	}
	r.Class = binary.BigEndian.Uint16(payload[0:2])
	r.Code = binary.BigEndian.Uint16(payload[2:4])
	r.Data = payload[4:]

	return nil
}
