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
	"github.com/pkg/errors"
)

// ParseMessage decodes an OpenFlow 1.0 message. It returns
// openflow.ErrUnsupportedMessage if the message type is not known.
func ParseMessage(packet []byte) (openflow.Incoming, error) {
	if len(packet) < openflow.HeaderLength {
		return nil, openflow.ErrInvalidPacketLength
	}
	if packet[0] != openflow.OF10_VERSION {
		return nil, openflow.ErrUnsupportedVersion
	}

	var msg openflow.Incoming
	switch packet[1] {
	case OFPT_HELLO:
		msg = new(Hello)
	case OFPT_ERROR:
		msg = new(Error)
	case OFPT_ECHO_REQUEST:
		msg = new(EchoRequest)
	case OFPT_ECHO_REPLY:
		msg = new(EchoReply)
	case OFPT_FEATURES_REQUEST:
		msg = new(FeaturesRequest)
	case OFPT_FEATURES_REPLY:
		msg = new(FeaturesReply)
	case OFPT_SET_CONFIG:
		msg = new(SetConfig)
	case OFPT_PACKET_IN:
		msg = new(PacketIn)
	case OFPT_PORT_STATUS:
		msg = new(PortStatus)
	case OFPT_PACKET_OUT:
		msg = new(PacketOut)
	case OFPT_FLOW_MOD:
		msg = new(FlowMod)
	case OFPT_BARRIER_REQUEST:
		msg = new(BarrierRequest)
	case OFPT_BARRIER_REPLY:
		msg = new(BarrierReply)
	default:
		return nil, errors.Wrapf(openflow.ErrUnsupportedMessage, "type=%v", packet[1])
	}

	if err := msg.UnmarshalBinary(packet); err != nil {
		return nil, errors.Wrapf(err, "failed to decode message type %v", packet[1])
	}

	return msg, nil
}
