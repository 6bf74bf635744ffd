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

package network

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/YusufShahp/CSE461Proj2/openflow/of10"
	"github.com/YusufShahp/CSE461Proj2/openflow/transceiver"
)

// Large enough to carry a full OpenFlow message.
const streamBufferSize = 0x10000

// connection handles the OpenFlow messages of a single switch connection.
type connection struct {
	controller  *Controller
	transceiver *transceiver.Transceiver
	remote      string

	mutex   sync.Mutex
	device  *Device
	session *Session
	entry   *cancelEntry
	cancel  context.CancelFunc
}

func newConnection(c *Controller, conn net.Conn) *connection {
	stream := transceiver.NewStream(conn, streamBufferSize)
	v := &connection{
		controller: c,
		remote:     stream.RemoteAddr(),
	}
	v.transceiver = transceiver.NewTransceiver(stream, v)

	return v
}

func (r *connection) OnHello(f *of10.Factory, w transceiver.Writer, v *of10.Hello) error {
	logger.Debugf("received HELLO from %v", r.remote)

	if err := w.Write(f.NewHello()); err != nil {
		return err
	}
	if err := w.Write(f.NewSetConfig()); err != nil {
		return err
	}
	if err := w.Write(f.NewFeaturesRequest()); err != nil {
		return err
	}

	return w.Write(f.NewBarrierRequest())
}

func (r *connection) OnError(f *of10.Factory, w transceiver.Writer, v *of10.Error) error {
	// Ignore the overlapped flow error.
	if isOverlapError(v) {
		return nil
	}
	logger.Errorf("%v: received an error from %v (xid=%v)", v, r.remote, v.TransactionID())

	return nil
}

func isOverlapError(v *of10.Error) bool {
	return v.Class == of10.OFPET_FLOW_MOD_FAILED && v.Code == of10.OFPFMFC_OVERLAP
}

func (r *connection) OnFeaturesReply(f *of10.Factory, w transceiver.Writer, v *of10.FeaturesReply) error {
	r.mutex.Lock()
	device := r.device
	r.mutex.Unlock()

	if device != nil {
		logger.Debugf("additional FEATURES_REPLY from DPID %v", v.DPID)
		device.setPorts(v.Ports)
		return nil
	}

	dpid := v.DPID
	// Already connected switch?
	if _, ok := r.controller.Session(dpid); ok {
		if cancel, ok := r.controller.canceller.pop(dpid); ok {
			// Disconnect the previous session so that the switch can make
			// a new fresh connection on its next attempt.
			cancel()
		}
		return errors.New("duplicated switch DPID")
	}

	device = newDevice(dpid, f, w)
	device.setPorts(v.Ports)
	r.mutex.Lock()
	r.device = device
	if r.cancel != nil {
		r.entry = r.controller.canceller.push(dpid, r.cancel)
	}
	r.mutex.Unlock()
	logger.Infof("connected switch: DPID=%v, Remote=%v, # of ports=%v", dpid, r.remote, len(v.Ports))

	session, err := r.controller.OnConnectionUp(dpid, device)
	if err != nil {
		return err
	}
	r.mutex.Lock()
	r.session = session
	r.mutex.Unlock()

	return nil
}

func (r *connection) OnPortStatus(f *of10.Factory, w transceiver.Writer, v *of10.PortStatus) error {
	logger.Infof("PORT_STATUS from %v: reason=%v, port=%v", r.remote, v.Reason, v.Port)

	r.mutex.Lock()
	device := r.device
	r.mutex.Unlock()
	if device != nil {
		device.updatePort(v.Reason, v.Port)
	}

	return nil
}

func (r *connection) OnPacketIn(f *of10.Factory, w transceiver.Writer, v *of10.PacketIn) error {
	r.mutex.Lock()
	session := r.session
	r.mutex.Unlock()

	if session == nil {
		logger.Debugf("ignore PACKET_IN from %v before the session is activated", r.remote)
		return nil
	}
	if err := session.HandlePacketIn(uint32(v.InPort), v.Data); err != nil {
		logger.Errorf("DPID=%v: failed to handle PACKET_IN: %v", session.DPID(), err)
	}

	return nil
}

// Run serves the connection until it is closed or ctx is done.
func (r *connection) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// This cancel function is used to disconnect this connection when the
	// switch reconnects with the same DPID.
	r.mutex.Lock()
	r.cancel = cancel
	r.mutex.Unlock()

	if err := r.transceiver.Run(ctx); err != nil {
		logger.Errorf("openflow transceiver is unexpectedly closed: %v", err)
	}
	r.transceiver.Close()

	r.mutex.Lock()
	device, session, entry := r.device, r.session, r.entry
	r.mutex.Unlock()

	if device == nil {
		logger.Infof("disconnected switch: %v", r.remote)
		return
	}
	logger.Infof("disconnected switch: DPID=%v, Remote=%v", device.DPID(), r.remote)
	device.Close()
	if entry != nil {
		r.controller.canceller.remove(device.DPID(), entry)
	}
	if session != nil {
		r.controller.OnConnectionDown(session)
	}
}
