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

package ipaddr

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/netobserv/ip2code/pkg/itree"
	"lukechampine.com/uint128"
)

const (
	maxV4Len     = 31
	maxV6Len     = 48
	maxV6DashLen = 2*maxV6Len + 1
)

// ErrParse is matched by every address range syntax error.
var ErrParse = errors.New("malformed address range")

type ParseError struct {
	Family string
	Input  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s range error: %q", e.Family, e.Input)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ParseV4Interval parses IPv4 range notation:
//
//	100.0.0.0-101.0.0.0  closed range between two addresses
//	100.0.0.1-100        closed range up to the same /24 with last octet 100
//	100.0.0.1/20         the network 100.0.0.0/20, as [100.0.0.0, 100.0.15.255]
//	100.0.0.200          the single address
//
// A dash range is returned as written even when reversed; inserting it into a
// map reports it as invalid.
func ParseV4Interval(s string) (itree.Interval[IPv4], error) {
	fail := func() (itree.Interval[IPv4], error) {
		return itree.Interval[IPv4]{}, &ParseError{Family: "ipv4", Input: s}
	}
	if len(s) > maxV4Len {
		return fail()
	}
	if a, b, ok := strings.Cut(s, "-"); ok {
		lo, err := ParseIPv4(a)
		if err != nil {
			return fail()
		}
		if strings.Contains(b, ".") {
			hi, err := ParseIPv4(b)
			if err != nil {
				return fail()
			}
			return itree.NewScope(lo, hi), nil
		}
		n, err := strconv.ParseUint(b, 10, 8)
		if err != nil {
			return fail()
		}
		return itree.NewScope(lo, lo&^0xff|IPv4(n)), nil
	}
	if a, b, ok := strings.Cut(s, "/"); ok {
		ip, err := ParseIPv4(a)
		if err != nil {
			return fail()
		}
		n, err := strconv.ParseUint(b, 10, 8)
		if err != nil {
			return fail()
		}
		switch {
		case n == 0:
			if ip != 0 {
				return fail()
			}
			return itree.NewScope(IPv4(0), MaxIPv4), nil
		case n == 32:
			return itree.NewPoint(ip), nil
		case n < 32:
			host := MaxIPv4 >> n
			lo := ip &^ host
			return itree.NewScope(lo, lo|host), nil
		}
		return fail()
	}
	ip, err := ParseIPv4(s)
	if err != nil {
		return fail()
	}
	return itree.NewPoint(ip), nil
}

// ParseV6Interval parses IPv6 range notation, following ParseV4Interval. In
// the short dash form the right side is the hexadecimal value of the last
// 16-bit group, e.g. 2001:db8::1-ff.
func ParseV6Interval(s string) (itree.Interval[IPv6], error) {
	fail := func() (itree.Interval[IPv6], error) {
		return itree.Interval[IPv6]{}, &ParseError{Family: "ipv6", Input: s}
	}
	if len(s) > maxV6DashLen || !strings.Contains(s, ":") {
		return fail()
	}
	if a, b, ok := strings.Cut(s, "-"); ok {
		if len(a) > maxV6Len || len(b) > maxV6Len {
			return fail()
		}
		lo, err := ParseIPv6(a)
		if err != nil {
			return fail()
		}
		if strings.Contains(b, ":") {
			hi, err := ParseIPv6(b)
			if err != nil {
				return fail()
			}
			return itree.NewScope(lo, hi), nil
		}
		n, err := strconv.ParseUint(b, 16, 16)
		if err != nil {
			return fail()
		}
		u := lo.Uint128()
		hi := uint128.New(u.Lo&^0xffff|n, u.Hi)
		return itree.NewScope(lo, IPv6FromUint128(hi)), nil
	}
	if len(s) > maxV6Len {
		return fail()
	}
	if a, b, ok := strings.Cut(s, "/"); ok {
		ip, err := ParseIPv6(a)
		if err != nil {
			return fail()
		}
		n, err := strconv.ParseUint(b, 10, 8)
		if err != nil {
			return fail()
		}
		switch {
		case n == 0:
			if !ip.Uint128().IsZero() {
				return fail()
			}
			return itree.NewScope(IPv6{}, MaxIPv6), nil
		case n == 128:
			return itree.NewPoint(ip), nil
		case n < 128:
			host := uint128.Max.Rsh(uint(n))
			lo := ip.Uint128().And(host.Xor(uint128.Max))
			return itree.NewScope(IPv6FromUint128(lo), IPv6FromUint128(lo.Or(host))), nil
		}
		return fail()
	}
	ip, err := ParseIPv6(s)
	if err != nil {
		return fail()
	}
	return itree.NewPoint(ip), nil
}

// AnyInterval holds an interval of either address family.
type AnyInterval struct {
	IsV6 bool
	V4   itree.Interval[IPv4]
	V6   itree.Interval[IPv6]
}

func (a AnyInterval) String() string {
	if a.IsV6 {
		return a.V6.String()
	}
	return a.V4.String()
}

// Bounds returns the first and the last address of the interval.
func (a AnyInterval) Bounds() (netip.Addr, netip.Addr) {
	if a.IsV6 {
		hi := a.V6.Hi()
		if !a.V6.Closed() {
			hi = IPv6FromUint128(hi.Uint128().SubWrap64(1))
		}
		return a.V6.Lo().Addr(), hi.Addr()
	}
	hi := a.V4.Hi()
	if !a.V4.Closed() {
		hi--
	}
	return a.V4.Lo().Addr(), hi.Addr()
}

// ParseInterval parses IPv6 notation when s contains a colon, IPv4 otherwise.
func ParseInterval(s string) (AnyInterval, error) {
	if strings.Contains(s, ":") {
		iv, err := ParseV6Interval(s)
		return AnyInterval{IsV6: true, V6: iv}, err
	}
	iv, err := ParseV4Interval(s)
	return AnyInterval{V4: iv}, err
}
