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

package lookup

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/gaissmai/bart"
	"github.com/netobserv/ip2code/pkg/config"
	"github.com/netobserv/ip2code/pkg/operational"
	"github.com/netobserv/ip2code/pkg/rir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidAddress is returned by Lookup for text that is not an IP address.
var ErrInvalidAddress = errors.New("invalid IP address")

// Source tells which data answered a lookup.
type Source string

const (
	SourceOverride Source = "override"
	SourceRegistry Source = "registry"
	SourceLocation Source = "location"
	SourceNone     Source = "none"
)

type Result struct {
	IP     string `json:"ip"`
	Code   string `json:"code,omitempty"`
	Source Source `json:"source"`
	Range  string `json:"range,omitempty"`
}

// Snapshot answers lookups from configured overrides, then the registry
// index, then the optional location database. It is not modified once built,
// so any number of goroutines may query it.
type Snapshot struct {
	overrides *bart.Fast[rir.Code]
	index     *rir.Index
	location  locationDB
	metrics   *operational.Metrics
}

// NewSnapshot wraps an already loaded index, without overrides nor location
// fallback.
func NewSnapshot(index *rir.Index, metrics *operational.Metrics) *Snapshot {
	return &Snapshot{
		overrides: new(bart.Fast[rir.Code]),
		index:     index,
		metrics:   metrics,
	}
}

// Build loads everything cfg points at.
func Build(cfg *config.ConfigFileStruct, metrics *operational.Metrics) (*Snapshot, error) {
	s := NewSnapshot(rir.NewIndex(), metrics)
	if err := s.addOverrides(cfg.Overrides); err != nil {
		return nil, err
	}
	loader := rir.NewLoader(s.index, metrics)
	if err := loader.LoadDir(cfg.DataDir); err != nil {
		return nil, err
	}
	if cfg.LocationDB != "" {
		db, err := openLocationDB(cfg.LocationDB)
		if err != nil {
			return nil, err
		}
		s.location = db
	}
	log.WithFields(log.Fields{
		"overrides": s.overrides.Size(),
		"ipv4":      s.index.V4.Len(),
		"ipv6":      s.index.V6.Len(),
		"location":  s.location != nil,
	}).Info("lookup snapshot ready")
	return s, nil
}

func (s *Snapshot) addOverrides(cfg []config.Override) error {
	for _, o := range cfg {
		code, ok := rir.NewCode(o.Code)
		if !ok {
			return fmt.Errorf("override: invalid code %q", o.Code)
		}
		for _, cidr := range o.CIDRs {
			parsed, err := netip.ParsePrefix(cidr)
			if err != nil {
				return fmt.Errorf("override %s: fail to parse CIDR, %w", o.Code, err)
			}
			s.overrides.Insert(parsed.Masked(), code)
		}
	}
	return nil
}

// Index returns the registry index the snapshot was built from.
func (s *Snapshot) Index() *rir.Index {
	return s.index
}

// Close releases the location database, if any.
func (s *Snapshot) Close() {
	if s.location != nil {
		s.location.Close()
	}
}

// Lookup parses ip and resolves it. IPv4-mapped IPv6 addresses are resolved
// as IPv4.
func (s *Snapshot) Lookup(ip string) (Result, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return Result{IP: ip, Source: SourceNone}, errors.Wrapf(ErrInvalidAddress, "%q", ip)
	}
	return s.LookupAddr(addr), nil
}

func (s *Snapshot) LookupAddr(addr netip.Addr) Result {
	addr = addr.Unmap().WithZone("")
	res := s.resolve(addr)
	s.metrics.Lookup(string(res.Source))
	return res
}

func (s *Snapshot) resolve(addr netip.Addr) Result {
	res := Result{IP: addr.String(), Source: SourceNone}
	if pfx, code, ok := s.overrides.LookupPrefixLPM(netip.PrefixFrom(addr, addr.BitLen())); ok {
		res.Code, res.Source, res.Range = code.String(), SourceOverride, pfx.String()
		return res
	}
	if rng, code, ok := s.index.Match(addr); ok {
		res.Code, res.Source, res.Range = code.String(), SourceRegistry, rng
		return res
	}
	if s.location != nil {
		if code, ok := locate(s.location, addr); ok {
			res.Code, res.Source = code.String(), SourceLocation
		}
	}
	return res
}
