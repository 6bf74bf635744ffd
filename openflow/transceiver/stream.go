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

package transceiver

import (
	"bufio"
	"io"
	"net"
	"sync"
	"time"

	"github.com/YusufShahp/CSE461Proj2/openflow"
)

// Stream is a buffered OpenFlow message channel over a socket.
type Stream struct {
	conn io.ReadWriteCloser

	rmu         sync.Mutex
	rd          *bufio.Reader
	readTimeout time.Duration

	wmu          sync.Mutex
	writeTimeout time.Duration
}

type deadline interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

func NewStream(conn io.ReadWriteCloser, bufSize int) *Stream {
	return &Stream{
		conn: conn,
		rd:   bufio.NewReaderSize(conn, bufSize),
	}
}

func (r *Stream) RemoteAddr() string {
	v, ok := r.conn.(interface {
		RemoteAddr() net.Addr
	})
	if !ok {
		return "unknown"
	}

	return v.RemoteAddr().String()
}

// SetTimeout sets I/O timeouts of the underlying socket if it supports
// deadlines. Zero disables the timeout.
func (r *Stream) SetTimeout(read, write time.Duration) {
	r.rmu.Lock()
	r.readTimeout = read
	r.rmu.Unlock()

	r.wmu.Lock()
	r.writeTimeout = write
	r.wmu.Unlock()

	logger.Debugf("set I/O timeout: read=%v, write=%v", read, write)
}

func expiry(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}

	return time.Now().Add(timeout)
}

// ReadPacket reads exactly one OpenFlow message. A timeout error leaves any
// partially received message in the buffer for the next call.
func (r *Stream) ReadPacket() ([]byte, error) {
	r.rmu.Lock()
	defer r.rmu.Unlock()

	// Directly use the underlying socket, instead of the reader, to set I/O timeout.
	if d, ok := r.conn.(deadline); ok {
		d.SetReadDeadline(expiry(r.readTimeout))
	}

	header, err := r.rd.Peek(openflow.HeaderLength)
	if err != nil {
		return nil, err
	}
	length, err := openflow.PacketLength(header)
	if err != nil {
		return nil, err
	}
	// Wait until we have the whole message in the reader or timeout.
	if _, err := r.rd.Peek(length); err != nil {
		return nil, err
	}

	packet := make([]byte, length)
	if _, err := io.ReadFull(r.rd, packet); err != nil {
		return nil, err
	}

	return packet, nil
}

func (r *Stream) Write(p []byte) (n int, err error) {
	r.wmu.Lock()
	defer r.wmu.Unlock()

	if d, ok := r.conn.(deadline); ok {
		d.SetWriteDeadline(expiry(r.writeTimeout))
	}

	return r.conn.Write(p)
}

func (r *Stream) Close() error {
	return r.conn.Close()
}
