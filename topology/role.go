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

package topology

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSwitch = errors.New("unknown switch")
)

type RoleKind int

const (
	EdgeAccess RoleKind = iota + 1
	CoreAggregation
	Datacenter
)

func (r RoleKind) String() string {
	switch r {
	case EdgeAccess:
		return "EdgeAccess"
	case CoreAggregation:
		return "CoreAggregation"
	case Datacenter:
		return "Datacenter"
	default:
		return fmt.Sprintf("RoleKind(%d)", int(r))
	}
}

// Role is the position of a switch in the fabric. Number is only meaningful
// for EdgeAccess switches.
type Role struct {
	Kind   RoleKind
	Number int
}

func NewEdgeAccess(n int) Role {
	return Role{Kind: EdgeAccess, Number: n}
}

func (r Role) String() string {
	if r.Kind == EdgeAccess {
		return fmt.Sprintf("%v(%v)", r.Kind, r.Number)
	}

	return r.Kind.String()
}

func parseRole(dpid uint64, name string) (Role, error) {
	switch name {
	case "edge":
		return NewEdgeAccess(int(dpid)), nil
	case "core":
		return Role{Kind: CoreAggregation}, nil
	case "datacenter":
		return Role{Kind: Datacenter}, nil
	default:
		return Role{}, fmt.Errorf("unknown role for DPID %v: %q", dpid, name)
	}
}
