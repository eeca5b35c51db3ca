/*
 * Copyright (C) 2025 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package rir

import (
	"net/netip"

	"github.com/netobserv/ip2code/pkg/ipaddr"
	"github.com/netobserv/ip2code/pkg/itree"
)

// Index maps IPv4 and IPv6 addresses to registry codes.
type Index struct {
	V4 *itree.Map[ipaddr.IPv4, Code]
	V6 *itree.Map[ipaddr.IPv6, Code]
}

func NewIndex() *Index {
	return &Index{
		V4: itree.NewOrdered[ipaddr.IPv4, Code](),
		V6: itree.New[ipaddr.IPv6, Code](ipaddr.IPv6.Compare),
	}
}

// Add inserts the record into the map of its family. Overlapping or
// malformed records are rejected with the itree error.
func (x *Index) Add(rec Record) error {
	if rec.Family == IPv6 {
		return x.V6.Insert(rec.V6, rec.Code)
	}
	return x.V4.Insert(rec.V4, rec.Code)
}

func (x *Index) Len() int {
	return x.V4.Len() + x.V6.Len()
}

// Query returns the code covering addr. IPv4-mapped IPv6 addresses are looked
// up as IPv4.
func (x *Index) Query(addr netip.Addr) (Code, bool) {
	_, code, ok := x.Match(addr)
	return code, ok
}

// Match is Query also returning the matched interval in text form.
func (x *Index) Match(addr netip.Addr) (string, Code, bool) {
	addr = addr.Unmap()
	if addr.Is4() {
		iv, code, ok := x.V4.GetKeyValue(ipaddr.IPv4FromAddr(addr))
		if !ok {
			return "", code, false
		}
		return iv.String(), code, true
	}
	if !addr.Is6() {
		return "", Code{}, false
	}
	iv, code, ok := x.V6.GetKeyValue(ipaddr.IPv6FromAddr(addr))
	if !ok {
		return "", code, false
	}
	return iv.String(), code, true
}

// GapsV4 returns the IPv4 ranges no stored interval covers, as closed
// intervals in ascending order.
func (x *Index) GapsV4() []itree.Interval[ipaddr.IPv4] {
	var gaps []itree.Interval[ipaddr.IPv4]
	next, more := ipaddr.IPv4(0), true
	x.V4.Ascend(func(iv itree.Interval[ipaddr.IPv4], _ Code) bool {
		if iv.Lo() > next {
			gaps = append(gaps, itree.NewScope(next, iv.Lo()-1))
		}
		last := iv.Hi()
		if !iv.Closed() {
			last--
		}
		next, more = last.AddChecked(1)
		return more
	})
	if more {
		gaps = append(gaps, itree.NewScope(next, ipaddr.MaxIPv4))
	}
	return gaps
}
