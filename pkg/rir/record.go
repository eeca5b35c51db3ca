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
	"strconv"
	"strings"

	"github.com/netobserv/ip2code/pkg/ipaddr"
	"github.com/netobserv/ip2code/pkg/itree"
	"lukechampine.com/uint128"
)

// Code is a two letter country or region code, e.g. "CN".
type Code [2]byte

// NewCode returns the Code for name, which must be exactly two bytes long.
func NewCode(name string) (Code, bool) {
	if len(name) != 2 {
		return Code{}, false
	}
	return Code{name[0], name[1]}, true
}

func MustCode(name string) Code {
	c, ok := NewCode(name)
	if !ok {
		panic("rir: invalid code " + strconv.Quote(name))
	}
	return c
}

func (c Code) String() string {
	return string(c[:])
}

func (c Code) MarshalText() ([]byte, error) {
	return c[:], nil
}

type Status uint8

const (
	Unknown Status = iota
	Assigned
	Allocated
	Reserved
	Available
)

func (s Status) String() string {
	switch s {
	case Assigned:
		return "assigned"
	case Allocated:
		return "allocated"
	case Reserved:
		return "reserved"
	case Available:
		return "available"
	}
	return "unknown"
}

type Family uint8

const (
	IPv4 Family = iota
	IPv6
)

func (f Family) String() string {
	if f == IPv6 {
		return "ipv6"
	}
	return "ipv4"
}

// Record is one address delegation of a registry file. V4 is set when Family
// is IPv4, V6 otherwise.
type Record struct {
	Family Family
	V4     itree.Interval[ipaddr.IPv4]
	V6     itree.Interval[ipaddr.IPv6]
	Code   Code
	Status Status
}

func (r Record) Interval() string {
	if r.Family == IPv6 {
		return r.V6.String()
	}
	return r.V4.String()
}

const (
	fieldCode = 1
	fieldType = 2
	fieldAddr = 3
	fieldSize = 4
	fieldStat = 6
	minFields = 7
	maxFields = 8
)

// ParseLine parses one line of a delegation file such as
//
//	apnic|CN|ipv4|1.0.1.0|256|20110414|allocated
//	apnic|JP|ipv6|2001:200::|35|19990813|allocated
//
// It returns false for comments, headers, summaries, asn records and any
// line it cannot make sense of.
func ParseLine(line string) (Record, bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.HasPrefix(line, "#") {
		return Record{}, false
	}
	fields := strings.SplitN(line, "|", maxFields)
	if len(fields) < minFields {
		return Record{}, false
	}
	code, ok := NewCode(fields[fieldCode])
	if !ok {
		return Record{}, false
	}
	rec := Record{Code: code}
	switch fields[fieldStat] {
	case "allocated":
		rec.Status = Allocated
	case "assigned":
		rec.Status = Assigned
	case "reserved":
		rec.Status = Reserved
	case "available":
		rec.Status = Available
	case "":
		return Record{}, false
	default:
		rec.Status = Unknown
	}
	switch fields[fieldType] {
	case "ipv4":
		rec.Family = IPv4
		rec.V4, ok = parseV4Block(fields[fieldAddr], fields[fieldSize])
	case "ipv6":
		rec.Family = IPv6
		rec.V6, ok = parseV6Block(fields[fieldAddr], fields[fieldSize])
	default:
		return Record{}, false
	}
	if !ok {
		return Record{}, false
	}
	return rec, true
}

// parseV4Block reads a base address and an address count.
func parseV4Block(addr, count string) (itree.Interval[ipaddr.IPv4], bool) {
	ip, err := ipaddr.ParseIPv4(addr)
	if err != nil {
		return itree.Interval[ipaddr.IPv4]{}, false
	}
	n, err := strconv.ParseUint(count, 10, 32)
	if err != nil || n == 0 {
		return itree.Interval[ipaddr.IPv4]{}, false
	}
	if n == 1 {
		return itree.NewPoint(ip), true
	}
	last, ok := ip.AddChecked(uint32(n - 1))
	if !ok {
		return itree.Interval[ipaddr.IPv4]{}, false
	}
	return itree.NewScope(ip, last), true
}

// parseV6Block reads a base address and a prefix length.
func parseV6Block(addr, prefix string) (itree.Interval[ipaddr.IPv6], bool) {
	ip, err := ipaddr.ParseIPv6(addr)
	if err != nil {
		return itree.Interval[ipaddr.IPv6]{}, false
	}
	n, err := strconv.ParseUint(prefix, 10, 8)
	if err != nil || n > 128 {
		return itree.Interval[ipaddr.IPv6]{}, false
	}
	if n == 128 {
		return itree.NewPoint(ip), true
	}
	host := uint128.Max.Rsh(uint(n))
	last, ok := ip.AddChecked(host)
	if !ok {
		return itree.Interval[ipaddr.IPv6]{}, false
	}
	return itree.NewScope(ip, last), true
}
