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
	"github.com/YusufShahp/CSE461Proj2/openflow"
)

type Hello struct {
	openflow.Message
}

func NewHello(xid uint32) *Hello {
	return &Hello{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_HELLO, xid),
	}
}

type EchoRequest struct {
	openflow.Message
}

func NewEchoRequest(xid uint32) *EchoRequest {
	return &EchoRequest{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_ECHO_REQUEST, xid),
	}
}

func (r *EchoRequest) Data() []byte {
	return r.Payload()
}

func (r *EchoRequest) SetData(data []byte) {
	r.SetPayload(data)
}

type EchoReply struct {
	openflow.Message
}

func NewEchoReply(xid uint32) *EchoReply {
	return &EchoReply{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_ECHO_REPLY, xid),
	}
}

func (r *EchoReply) Data() []byte {
	return r.Payload()
}

func (r *EchoReply) SetData(data []byte) {
	r.SetPayload(data)
}

type FeaturesRequest struct {
	openflow.Message
}

func NewFeaturesRequest(xid uint32) *FeaturesRequest {
	return &FeaturesRequest{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_FEATURES_REQUEST, xid),
	}
}

type BarrierRequest struct {
	openflow.Message
}

func NewBarrierRequest(xid uint32) *BarrierRequest {
	return &BarrierRequest{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_BARRIER_REQUEST, xid),
	}
}

type BarrierReply struct {
	openflow.Message
}

func NewBarrierReply(xid uint32) *BarrierReply {
	return &BarrierReply{
		Message: openflow.NewMessage(openflow.OF10_VERSION, OFPT_BARRIER_REPLY, xid),
	}
}
