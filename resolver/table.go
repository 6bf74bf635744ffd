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

package resolver

import (
	"bytes"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"
)

// Entry is a learned IP address binding.
type Entry struct {
	IP      net.IP
	MAC     net.HardwareAddr
	Port    uint32
	Updated time.Time
}

func (r Entry) String() string {
	return fmt.Sprintf("IP=%v, MAC=%v, Port=%v, Updated=%v", r.IP, r.MAC, r.Port, r.Updated.Format(time.RFC3339))
}

// Table is the learning table of a switch. The owner session is the only
// writer; the lock lets others read a consistent snapshot.
type Table struct {
	mutex   sync.RWMutex
	entries map[string]Entry
}

func NewTable() *Table {
	return &Table{
		entries: make(map[string]Entry),
	}
}

func key(ip net.IP) string {
	if v := ip.To4(); v != nil {
		return v.String()
	}

	return ip.String()
}

// Update overwrites the binding of ip unconditionally. It returns the previous
// entry if there was one.
func (r *Table) Update(ip net.IP, mac net.HardwareAddr, port uint32) (prev Entry, exist bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	k := key(ip)
	prev, exist = r.entries[k]
	r.entries[k] = Entry{
		IP:      copyIP(ip),
		MAC:     copyMAC(mac),
		Port:    port,
		Updated: time.Now(),
	}

	return prev, exist
}

func copyIP(ip net.IP) net.IP {
	if v := ip.To4(); v != nil {
		ip = v
	}
	return append(net.IP(nil), ip...)
}

func copyMAC(mac net.HardwareAddr) net.HardwareAddr {
	return append(net.HardwareAddr(nil), mac...)
}

func (r *Table) Lookup(ip net.IP) (Entry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v, ok := r.entries[key(ip)]
	return v, ok
}

// Entries returns all the entries sorted by IP address.
func (r *Table) Entries() []Entry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]Entry, 0, len(r.entries))
	for _, v := range r.entries {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return bytes.Compare(result[i].IP, result[j].IP) < 0
	})

	return result
}

func (r *Table) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.entries)
}
