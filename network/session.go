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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/YusufShahp/CSE461Proj2/openflow/of10"
	"github.com/YusufShahp/CSE461Proj2/policy"
	"github.com/YusufShahp/CSE461Proj2/resolver"
	"github.com/YusufShahp/CSE461Proj2/topology"

	"github.com/google/uuid"
)

var (
	ErrNotActive = errors.New("session is not active")
)

type State int

const (
	StateUninitialized State = iota
	StateActive
	StateClosed
)

func (r State) String() string {
	switch r {
	case StateUninitialized:
		return "Uninitialized"
	case StateActive:
		return "Active"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(r))
	}
}

// Channel is the control channel of a switch.
type Channel interface {
	resolver.Channel
}

// Session is the controller state of a connected switch. Packets of a session
// are handled one at a time in their arrival order.
type Session struct {
	id      string
	dpid    uint64
	role    topology.Role
	channel Channel
	created time.Time

	mutex  sync.RWMutex
	state  State
	rules  []policy.FlowRule
	engine *resolver.Engine
}

func newSession(dpid uint64, role topology.Role, channel Channel) *Session {
	return &Session{
		id:      uuid.New().String(),
		dpid:    dpid,
		role:    role,
		channel: channel,
		created: time.Now(),
		state:   StateUninitialized,
	}
}

func (r *Session) ID() string {
	return r.id
}

func (r *Session) DPID() uint64 {
	return r.dpid
}

func (r *Session) Role() topology.Role {
	return r.role
}

func (r *Session) State() State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.state
}

// Rules returns the baseline flow rules installed on activation.
func (r *Session) Rules() []policy.FlowRule {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.rules
}

// Reactive reports whether the session resolves addresses by itself.
func (r *Session) Reactive() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.engine != nil
}

// Learned returns the learning table entries. It returns nil if the session
// is not reactive or is already closed.
func (r *Session) Learned() []resolver.Entry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.engine == nil {
		return nil
	}

	return r.engine.Table().Entries()
}

func (r *Session) activate(rules []policy.FlowRule, engine *resolver.Engine) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.rules = rules
	r.engine = engine
	r.state = StateActive
}

// HandlePacketIn routes a PACKET_IN to the address resolution engine. Roles
// without reactive logic ignore it.
func (r *Session) HandlePacketIn(inPort uint32, frame []byte) error {
	r.mutex.RLock()
	state, engine := r.state, r.engine
	r.mutex.RUnlock()

	if state != StateActive {
		return ErrNotActive
	}
	if engine == nil {
		logger.Debugf("DPID=%v: ignore PACKET_IN from port %v on the %v switch", r.dpid, inPort, r.role)
		return nil
	}

	return engine.HandlePacketIn(inPort, frame)
}

// Close moves the session to the closed state and discards its learning table.
func (r *Session) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.state == StateClosed {
		return
	}
	if r.engine != nil {
		r.engine.Close()
		r.engine = nil
	}
	r.state = StateClosed
	logger.Infof("session closed: ID=%v, DPID=%v", r.id, r.dpid)
}

// portLister is implemented by channels that know the ports of the switch.
type portLister interface {
	Ports() []of10.Port
}

type PortInfo struct {
	Number uint16 `json:"number"`
	Name   string `json:"name"`
	MAC    string `json:"mac"`
	LinkUp bool   `json:"link_up"`
}

type SessionStatus struct {
	ID      string     `json:"id"`
	DPID    uint64     `json:"dpid"`
	Role    string     `json:"role"`
	State   string     `json:"state"`
	Created time.Time  `json:"created"`
	Rules   int        `json:"rules"`
	Learned int        `json:"learned"`
	Ports   []PortInfo `json:"ports,omitempty"`
}

func (r *Session) Status() SessionStatus {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	learned := 0
	if r.engine != nil {
		learned = r.engine.Table().Len()
	}

	var ports []PortInfo
	if v, ok := r.channel.(portLister); ok {
		for _, p := range v.Ports() {
			ports = append(ports, PortInfo{
				Number: p.Number,
				Name:   p.Name,
				MAC:    p.MAC.String(),
				LinkUp: !p.IsLinkDown(),
			})
		}
	}

	return SessionStatus{
		ID:      r.id,
		DPID:    r.dpid,
		Role:    r.role.String(),
		State:   r.state.String(),
		Created: r.created,
		Rules:   len(r.rules),
		Learned: learned,
		Ports:   ports,
	}
}

func (r *Session) String() string {
	s := r.Status()
	return fmt.Sprintf("Session ID=%v, DPID=%v, Role=%v, State=%v, Rules=%v, Learned=%v", s.ID, s.DPID, s.Role, s.State, s.Rules, s.Learned)
}
