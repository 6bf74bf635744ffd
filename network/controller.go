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
	"bytes"
	"context"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/YusufShahp/CSE461Proj2/policy"
	"github.com/YusufShahp/CSE461Proj2/resolver"
	"github.com/YusufShahp/CSE461Proj2/topology"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("network")
)

type Config struct {
	DefaultAction policy.DefaultAction
	Resolver      resolver.Options
}

func DefaultConfig() Config {
	return Config{
		DefaultAction: policy.DefaultDrop,
		Resolver:      resolver.DefaultOptions(),
	}
}

// flowTable is implemented by channels that can clear the flow table of the
// switch and wait for the previous commands.
type flowTable interface {
	RemoveAllFlows() error
	Barrier() error
}

type Controller struct {
	topo      *topology.Topology
	config    Config
	canceller *canceller

	mutex    sync.Mutex
	sessions map[uint64]*Session
}

func NewController(topo *topology.Topology, conf Config) *Controller {
	if topo == nil {
		panic("nil topology")
	}

	return &Controller{
		topo:      topo,
		config:    conf,
		canceller: newCanceller(),
		sessions:  make(map[uint64]*Session),
	}
}

// CompiledRules returns the baseline flow rules of the switch whose DPID is dpid.
func (r *Controller) CompiledRules(dpid uint64) ([]policy.FlowRule, error) {
	role, err := r.topo.RoleOf(dpid)
	if err != nil {
		return nil, err
	}

	return policy.CompileWith(r.topo, role, policy.Options{DefaultAction: r.config.DefaultAction}), nil
}

// OnConnectionUp activates a new session for the switch whose DPID is dpid.
// An unknown DPID returns an error whose cause is topology.ErrUnknownSwitch
// and nothing is installed on the channel. If a flow installation fails, the
// session is not activated and the channel should be closed.
func (r *Controller) OnConnectionUp(dpid uint64, channel Channel) (*Session, error) {
	if channel == nil {
		panic("nil channel")
	}

	role, err := r.topo.RoleOf(dpid)
	if err != nil {
		logger.Errorf("rejecting the switch connection: %v", err)
		return nil, err
	}
	session := newSession(dpid, role, channel)
	logger.Infof("new session: ID=%v, DPID=%v, Role=%v", session.ID(), dpid, role)

	table, hasTable := channel.(flowTable)
	if hasTable {
		if err := table.RemoveAllFlows(); err != nil {
			return nil, errors.Wrapf(err, "removing all flows of DPID %v", dpid)
		}
	}

	rules := policy.CompileWith(r.topo, role, policy.Options{DefaultAction: r.config.DefaultAction})
	for _, rule := range rules {
		if err := channel.InstallRule(rule); err != nil {
			logger.Errorf("DPID=%v: failed to install %v: %v", dpid, rule.Name, err)
			return nil, errors.Wrapf(err, "installing %v on DPID %v", rule.Name, dpid)
		}
		logger.Debugf("DPID=%v: installed %v", dpid, rule)
	}
	if hasTable {
		if err := table.Barrier(); err != nil {
			return nil, errors.Wrapf(err, "sending a barrier to DPID %v", dpid)
		}
	}

	var engine *resolver.Engine
	if role.Kind == topology.CoreAggregation {
		opt := r.config.Resolver
		opt.DPID = dpid
		engine = resolver.New(r.topo, channel, opt)
	}
	session.activate(rules, engine)

	r.mutex.Lock()
	prev, ok := r.sessions[dpid]
	r.sessions[dpid] = session
	r.mutex.Unlock()
	if ok {
		logger.Warningf("DPID=%v: replacing the previous session %v", dpid, prev.ID())
		prev.Close()
	}
	logger.Infof("session activated: ID=%v, DPID=%v, Role=%v, Rules=%v, Reactive=%v", session.ID(), dpid, role, len(rules), engine != nil)

	return session, nil
}

// OnConnectionDown closes the session and unregisters it.
func (r *Controller) OnConnectionDown(session *Session) {
	session.Close()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if v, ok := r.sessions[session.DPID()]; ok && v == session {
		delete(r.sessions, session.DPID())
	}
}

func (r *Controller) Session(dpid uint64) (*Session, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v, ok := r.sessions[dpid]
	return v, ok
}

// Sessions returns the active sessions sorted by DPID.
func (r *Controller) Sessions() []*Session {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	result := make([]*Session, 0, len(r.sessions))
	for _, v := range r.sessions {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DPID() < result[j].DPID()
	})

	return result
}

// AddConnection serves a new switch connection in a separate goroutine.
func (r *Controller) AddConnection(ctx context.Context, c net.Conn) {
	conn := newConnection(r, c)
	go conn.Run(ctx)
}

func (r *Controller) String() string {
	buf := new(bytes.Buffer)
	sessions := r.Sessions()
	fmt.Fprintf(buf, "# of sessions=%v\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(buf, "%v\n", s)
		for _, e := range s.Learned() {
			fmt.Fprintf(buf, "\t%v\n", e)
		}
	}

	return buf.String()
}
