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
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"

	"lukechampine.com/uint128"
)

// IPv4 is an IPv4 address as its 32-bit big-endian value.
type IPv4 uint32

// IPv6 is an IPv6 address as its 128-bit big-endian value.
type IPv6 uint128.Uint128

const MaxIPv4 = IPv4(math.MaxUint32)

var MaxIPv6 = IPv6(uint128.Max)

func ParseIPv4(s string) (IPv4, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return 0, err
	}
	if !addr.Is4() {
		return 0, fmt.Errorf("%q is not an IPv4 address", s)
	}
	return IPv4FromAddr(addr), nil
}

// IPv4FromAddr converts addr, which must be an IPv4 address.
func IPv4FromAddr(addr netip.Addr) IPv4 {
	b := addr.As4()
	return IPv4(binary.BigEndian.Uint32(b[:]))
}

func (ip IPv4) Addr() netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(ip))
	return netip.AddrFrom4(b)
}

func (ip IPv4) String() string {
	return ip.Addr().String()
}

func (ip IPv4) Compare(o IPv4) int {
	return cmp.Compare(ip, o)
}

// AddChecked returns ip+n, or false when the sum passes 255.255.255.255.
func (ip IPv4) AddChecked(n uint32) (IPv4, bool) {
	sum := uint64(ip) + uint64(n)
	if sum > math.MaxUint32 {
		return ip, false
	}
	return IPv4(sum), true
}

func ParseIPv6(s string) (IPv6, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return IPv6{}, err
	}
	if !addr.Is6() || addr.Zone() != "" {
		return IPv6{}, fmt.Errorf("%q is not a plain IPv6 address", s)
	}
	return IPv6FromAddr(addr), nil
}

// IPv6FromAddr converts addr; IPv4 addresses are taken in their mapped form.
func IPv6FromAddr(addr netip.Addr) IPv6 {
	return IPv6FromBytes(addr.As16())
}

func IPv6FromBytes(b [16]byte) IPv6 {
	return IPv6(uint128.FromBytesBE(b[:]))
}

// IPv6FromUint128 is the address whose value is u.
func IPv6FromUint128(u uint128.Uint128) IPv6 {
	return IPv6(u)
}

func (ip IPv6) Uint128() uint128.Uint128 {
	return uint128.Uint128(ip)
}

func (ip IPv6) Bytes() [16]byte {
	var b [16]byte
	ip.Uint128().PutBytesBE(b[:])
	return b
}

func (ip IPv6) Addr() netip.Addr {
	return netip.AddrFrom16(ip.Bytes())
}

func (ip IPv6) String() string {
	return ip.Addr().String()
}

func (ip IPv6) Compare(o IPv6) int {
	return ip.Uint128().Cmp(o.Uint128())
}

// AddChecked returns ip+n, or false when the sum passes the last address.
func (ip IPv6) AddChecked(n uint128.Uint128) (IPv6, bool) {
	if uint128.Max.Sub(ip.Uint128()).Cmp(n) < 0 {
		return ip, false
	}
	return IPv6(ip.Uint128().Add(n)), true
}
