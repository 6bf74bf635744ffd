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
	"fmt"
	"time"

	"github.com/YusufShahp/CSE461Proj2/policy"

	lru "github.com/hashicorp/golang-lru"
)

// flowCache remembers recently installed flow rules so that packets already
// in flight toward the controller do not trigger duplicated FLOW_MODs.
type flowCache struct {
	cache      *lru.Cache
	expiration time.Duration
}

func newFlowCache(size int, expiration time.Duration) *flowCache {
	c, err := lru.New(size)
	if err != nil {
		panic(fmt.Sprintf("failed to init a LRU flow cache: %v", err))
	}

	return &flowCache{
		cache:      c,
		expiration: expiration,
	}
}

func (r *flowCache) key(rule policy.FlowRule) string {
	return fmt.Sprintf("%v/%v/%v", rule.Priority, rule.Match, rule.Actions)
}

func (r *flowCache) Add(rule policy.FlowRule) {
	key := r.key(rule)
	t := time.Now()
	// Update if the key already exists.
	r.cache.Add(key, t)
	logger.Debugf("added a new flow cache: key=%v, timestamp=%v", key, t)
}

func (r *flowCache) InProgress(rule policy.FlowRule) bool {
	key := r.key(rule)
	v, ok := r.cache.Get(key)
	if !ok {
		return false
	}
	timestamp := v.(time.Time)

	// Timeout?
	if time.Since(timestamp) > r.expiration {
		r.cache.Remove(key)
		logger.Debugf("removed the timed-out flow cache: key=%v", key)
		return false
	}

	return true
}

func (r *flowCache) RemoveAll() {
	r.cache.Purge()
	logger.Debug("removed all the flow caches")
}
