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
	"context"
	"encoding"
	"fmt"
	"time"

	"github.com/YusufShahp/CSE461Proj2/openflow"
	"github.com/YusufShahp/CSE461Proj2/openflow/of10"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("transceiver")
)

const (
	// Allowed idle time before we send an echo request to a switch.
	maxIdleTime = 10 * time.Second
	// I/O timeouts (These timeouts should be less than maxIdleTime).
	readTimeout  = 1 * time.Second
	writeTimeout = readTimeout * 2
	// Maximum number of unanswered echo requests before we give up the switch.
	maxPendingEcho = 3
	// The first HELLO should arrive within this time.
	helloTimeout = 30 * time.Second
)

type Writer interface {
	Write(msg encoding.BinaryMarshaler) error
}

// Handler receives the OpenFlow 1.0 messages of a switch. Echo messages are
// handled by the transceiver itself. A returned error closes the connection
// unless it is temporary.
type Handler interface {
	OnHello(*of10.Factory, Writer, *of10.Hello) error
	OnError(*of10.Factory, Writer, *of10.Error) error
	OnFeaturesReply(*of10.Factory, Writer, *of10.FeaturesReply) error
	OnPortStatus(*of10.Factory, Writer, *of10.PortStatus) error
	OnPacketIn(*of10.Factory, Writer, *of10.PacketIn) error
}

type Transceiver struct {
	stream      *Stream
	observer    Handler
	factory     *of10.Factory
	pingCounter uint
}

func NewTransceiver(stream *Stream, handler Handler) *Transceiver {
	if stream == nil {
		panic("stream is nil")
	}
	if handler == nil {
		panic("handler is nil")
	}

	return &Transceiver{
		stream:   stream,
		observer: handler,
		factory:  of10.NewFactory(),
	}
}

func isTimeout(err error) bool {
	v, ok := errors.Cause(err).(interface {
		Timeout() bool
	})
	return ok && v.Timeout()
}

func isTemporaryErr(err error) bool {
	e, ok := errors.Cause(err).(interface {
		Temporary() bool
	})
	return ok && e.Temporary()
}

// Run negotiates the protocol version and dispatches the incoming messages to
// the handler until the connection is closed, ctx is done, or the handler
// returns a non-temporary error.
func (r *Transceiver) Run(ctx context.Context) error {
	defer logger.Infof("transceiver is closed: %v", r.stream.RemoteAddr())
	r.stream.SetTimeout(readTimeout, writeTimeout)

	readerCtx, cancelReader := context.WithCancel(ctx)
	defer cancelReader()
	reader := r.runReader(readerCtx)

	if err := r.negotiate(ctx, reader); err != nil {
		return errors.Wrap(err, "failed to negotiate the protocol version")
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("context done")
			return nil
		case packet, ok := <-reader:
			if !ok {
				logger.Info("the reader channel is closed")
				return nil
			}
			if err := r.dispatch(packet); err != nil {
				if !isTemporaryErr(err) {
					return err
				}
				// Ignore the temporary error. Just log the error and keep go on.
				logger.Errorf("failed to dispatch the packet: %v", err)
			}
		}
	}
}

func (r *Transceiver) negotiate(ctx context.Context, reader <-chan []byte) error {
	select {
	case <-ctx.Done():
		return errors.New("context done")
	case <-time.After(helloTimeout):
		return errors.New("inactive for too long")
	case packet, ok := <-reader:
		if !ok {
			return errors.New("the reader channel is closed")
		}
		// The first message should be HELLO.
		if packet[1] != of10.OFPT_HELLO {
			return errors.New("missing HELLO message")
		}
		// We only speak 1.0, the lowest version, so the switch should
		// fall back to it if it supports a higher one.
		if packet[0] < openflow.OF10_VERSION {
			return fmt.Errorf("unsupported protocol version: %v", packet[0])
		}
		logger.Infof("negotiated to openflow version 1.0 (switch announced 0x%02x)", packet[0])

		hello := new(of10.Hello)
		if err := hello.UnmarshalBinary(packet); err != nil {
			return err
		}

		return r.observer.OnHello(r.factory, r, hello)
	}
}

func (r *Transceiver) runReader(ctx context.Context) <-chan []byte {
	// Buffered channel
	c := make(chan []byte, 4096)
	go func() {
		// The channel c will be closed when this goroutine returns in order to notice the connection has been closed.
		defer close(c)
		defer logger.Info("transceiver reader is closed")

		lastActivated := time.Now()
		for {
			select {
			case <-ctx.Done():
				logger.Info("context done")
				return
			default:
			}

			packet, err := r.stream.ReadPacket()
			if err != nil {
				if !isTimeout(err) {
					logger.Errorf("failed to read the next packet: %v", err)
					return
				}
				// Timeout occurrs. Send a ping request if necessary.
				if time.Now().After(lastActivated.Add(maxIdleTime)) {
					if err := r.sendEchoRequest(); err != nil {
						logger.Errorf("failed to send an echo request: %v", err)
						return
					}
					lastActivated = time.Now()
				}
				continue
			}
			lastActivated = time.Now()

			ok, err := r.handleEcho(packet)
			if err != nil {
				logger.Errorf("failed to handle the echo request or response: %v", err)
				return
			}
			if ok {
				// Do not forward the echo request and response
				// packets because this reader handles them.
				continue
			}

			select {
			case c <- packet:
			default:
				// Drop the packet if we cannot immediately carry it.
				logger.Error("transceiver buffer full: drop the incoming packet!")
			}
		}
	}()

	return c
}

func (r *Transceiver) sendEchoRequest() error {
	if r.pingCounter >= maxPendingEcho {
		return errors.New("device does not respond to our echo request")
	}

	echo := r.factory.NewEchoRequest()
	// We use current timestamp to check network latency between our controller and a switch.
	timestamp, err := time.Now().GobEncode()
	if err != nil {
		return err
	}
	echo.SetData(timestamp)

	if err := r.Write(echo); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REQUEST message")
	}
	r.pingCounter++

	return nil
}

func (r *Transceiver) handleEcho(packet []byte) (ok bool, err error) {
	if packet[0] != openflow.OF10_VERSION {
		// HELLO of a newer version is still allowed before negotiation.
		return false, nil
	}

	switch packet[1] {
	case of10.OFPT_ECHO_REQUEST:
		return true, r.handleEchoRequest(packet)
	case of10.OFPT_ECHO_REPLY:
		return true, r.handleEchoReply(packet)
	default:
		return false, nil
	}
}

func (r *Transceiver) handleEchoRequest(packet []byte) error {
	msg := new(of10.EchoRequest)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}
	logger.Debug("received an ECHO_REQUEST packet")

	// Copy transaction ID and data from the incoming echo request message
	reply := of10.NewEchoReply(msg.TransactionID())
	reply.SetData(msg.Data())
	if err := r.Write(reply); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REPLY message")
	}
	logger.Debug("sent an ECHO_REPLY packet")

	return nil
}

func (r *Transceiver) handleEchoReply(packet []byte) error {
	msg := new(of10.EchoReply)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}
	logger.Debug("received an ECHO_REPLY packet")
	// Any reply proves that the switch is alive.
	r.pingCounter = 0

	timestamp := time.Time{}
	if err := timestamp.GobDecode(msg.Data()); err != nil {
		// Some broken switches send an unexpected echo reply data.
		logger.Debug("unexpected timestamp data in the ECHO_REPLY packet")
		return nil
	}
	logger.Debugf("transceiver latency: %v", time.Since(timestamp))

	return nil
}

func (r *Transceiver) dispatch(packet []byte) error {
	if packet[0] != openflow.OF10_VERSION {
		return fmt.Errorf("mis-matched OpenFlow version: negotiated=%v, packet=%v", openflow.OF10_VERSION, packet[0])
	}

	msg, err := of10.ParseMessage(packet)
	if err != nil {
		if errors.Cause(err) == openflow.ErrUnsupportedMessage {
			logger.Debugf("ignore the message: %v", err)
			return nil
		}
		return err
	}

	switch v := msg.(type) {
	case *of10.Hello:
		return r.observer.OnHello(r.factory, r, v)
	case *of10.Error:
		return r.observer.OnError(r.factory, r, v)
	case *of10.FeaturesReply:
		return r.observer.OnFeaturesReply(r.factory, r, v)
	case *of10.PortStatus:
		return r.observer.OnPortStatus(r.factory, r, v)
	case *of10.PacketIn:
		return r.observer.OnPacketIn(r.factory, r, v)
	case *of10.BarrierReply:
		logger.Debugf("received a BARRIER_REPLY: xid=%v", v.TransactionID())
		return nil
	default:
		logger.Debugf("ignore the unexpected message type %v", msg.Type())
		return nil
	}
}

func (r *Transceiver) Write(msg encoding.BinaryMarshaler) error {
	packet, err := msg.MarshalBinary()
	if err != nil {
		return err
	}

	if _, err := r.stream.Write(packet); err != nil {
		return err
	}

	return nil
}

func (r *Transceiver) Close() error {
	return r.stream.Close()
}
