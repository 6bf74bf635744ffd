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

package api

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/YusufShahp/CSE461Proj2/network"
	"github.com/YusufShahp/CSE461Proj2/policy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/davecgh/go-spew/spew"
)

func (r *Server) listSwitch(w rest.ResponseWriter, req *rest.Request) {
	sessions := r.Controller.Sessions()
	result := make([]network.SessionStatus, len(sessions))
	for i, v := range sessions {
		result[i] = v.Status()
	}

	w.WriteJson(Response{Status: StatusOkay, Data: result})
}

func parseDPID(req *rest.Request) (uint64, error) {
	dpid, err := strconv.ParseUint(req.PathParam("dpid"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid DPID: %v", req.PathParam("dpid"))
	}

	return dpid, nil
}

type learnedEntry struct {
	IP      string `json:"ip"`
	MAC     string `json:"mac"`
	Port    uint32 `json:"port"`
	Updated int64  `json:"updated"`
}

func (r *Server) listLearning(w rest.ResponseWriter, req *rest.Request) {
	dpid, err := parseDPID(req)
	if err != nil {
		w.WriteJson(Response{Status: StatusInvalidParameter, Message: err.Error()})
		return
	}
	session, ok := r.Controller.Session(dpid)
	if !ok {
		w.WriteJson(Response{Status: StatusNotFound, Message: fmt.Sprintf("no active session for DPID %v", dpid)})
		return
	}

	entries := session.Learned()
	result := make([]learnedEntry, len(entries))
	for i, v := range entries {
		result[i] = learnedEntry{
			IP:      v.IP.String(),
			MAC:     v.MAC.String(),
			Port:    v.Port,
			Updated: v.Updated.Unix(),
		}
	}

	w.WriteJson(Response{Status: StatusOkay, Data: result})
}

type rule struct {
	Name     string   `json:"name"`
	Priority uint16   `json:"priority"`
	Match    string   `json:"match"`
	Actions  []string `json:"actions"`
}

func newRule(v policy.FlowRule) rule {
	actions := make([]string, len(v.Actions))
	for i, a := range v.Actions {
		actions[i] = a.String()
	}

	return rule{
		Name:     v.Name,
		Priority: v.Priority,
		Match:    v.Match.String(),
		Actions:  actions,
	}
}

func (r *Server) listPolicy(w rest.ResponseWriter, req *rest.Request) {
	dpid, err := parseDPID(req)
	if err != nil {
		w.WriteJson(Response{Status: StatusInvalidParameter, Message: err.Error()})
		return
	}
	rules, err := r.Controller.CompiledRules(dpid)
	if err != nil {
		w.WriteJson(Response{Status: StatusNotFound, Message: err.Error()})
		return
	}

	result := make([]rule, len(rules))
	for i, v := range rules {
		result[i] = newRule(v)
	}

	w.WriteJson(Response{Status: StatusOkay, Data: result})
}

type evaluateParam struct {
	DPID     uint64
	Src      net.IP
	Dst      net.IP
	Protocol uint8
}

func (r *evaluateParam) UnmarshalJSON(data []byte) error {
	v := struct {
		DPID     uint64 `json:"dpid"`
		Src      string `json:"src"`
		Dst      string `json:"dst"`
		Protocol uint8  `json:"protocol"`
	}{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	src := net.ParseIP(v.Src)
	if src == nil || src.To4() == nil {
		return fmt.Errorf("invalid source IPv4 address: %v", v.Src)
	}
	dst := net.ParseIP(v.Dst)
	if dst == nil || dst.To4() == nil {
		return fmt.Errorf("invalid destination IPv4 address: %v", v.Dst)
	}
	r.DPID = v.DPID
	r.Src = src.To4()
	r.Dst = dst.To4()
	r.Protocol = v.Protocol

	return nil
}

type verdict struct {
	Decision string `json:"decision"`
	Port     uint32 `json:"port,omitempty"`
	Rule     string `json:"rule,omitempty"`
}

func (r *Server) evaluate(w rest.ResponseWriter, req *rest.Request) {
	p := new(evaluateParam)
	if err := req.DecodeJsonPayload(p); err != nil {
		w.WriteJson(Response{Status: StatusInvalidParameter, Message: err.Error()})
		return
	}
	logger.Debugf("evaluate request from %v: %v", req.RemoteAddr, spew.Sdump(p))

	rules, err := r.Controller.CompiledRules(p.DPID)
	if err != nil {
		w.WriteJson(Response{Status: StatusNotFound, Message: err.Error()})
		return
	}

	v := policy.Evaluate(rules, policy.Packet{
		EtherType: policy.EtherTypeIPv4,
		Protocol:  p.Protocol,
		SrcIP:     p.Src,
		DstIP:     p.Dst,
	})
	result := verdict{Decision: v.Decision.String(), Port: v.Port}
	if v.Rule != nil {
		result.Rule = v.Rule.Name
	}

	w.WriteJson(Response{Status: StatusOkay, Data: result})
}
