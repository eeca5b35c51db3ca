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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/netobserv/ip2code/pkg/ipaddr"
	"github.com/netobserv/ip2code/pkg/itree"
	"github.com/netobserv/ip2code/pkg/operational"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const apnicSample = `2|apnic|20240101|5|19830613|20231231|+1000
apnic|*|ipv4|*|3|summary
apnic|*|ipv6|*|1|summary
# delegated addresses
apnic|CN|ipv4|100.204.128.0|256|20110414|allocated
apnic|KR|ipv4|43.128.148.100|101|20110414|assigned
apnic|AU|asn|4608|1|20000131|allocated
apnic|JP|ipv6|2001:200::|35|19990813|allocated
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func query(t *testing.T, x *Index, addr string) (Code, bool) {
	t.Helper()
	return x.Query(netip.MustParseAddr(addr))
}

func TestLoader_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "delegated-apnic-latest.txt", apnicSample)

	index := NewIndex()
	loader := NewLoader(index, operational.NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, loader.LoadDir(dir))

	require.Equal(t, LoadStats{Files: 1, Records: 3, Skipped: 5}, loader.Stats)
	require.Equal(t, 2, index.V4.Len())
	require.Equal(t, 1, index.V6.Len())

	code, ok := query(t, index, "100.204.128.5")
	require.True(t, ok)
	require.Equal(t, "CN", code.String())
	code, ok = query(t, index, "43.128.148.150")
	require.True(t, ok)
	require.Equal(t, "KR", code.String())
	_, ok = query(t, index, "43.128.148.201")
	require.False(t, ok)
	_, ok = query(t, index, "8.8.8.8")
	require.False(t, ok)

	code, ok = query(t, index, "2001:200:123::1")
	require.True(t, ok)
	require.Equal(t, "JP", code.String())
	_, ok = query(t, index, "2001:200:2000::")
	require.False(t, ok)

	// mapped addresses resolve against the IPv4 map
	code, ok = query(t, index, "::ffff:100.204.128.5")
	require.True(t, ok)
	require.Equal(t, "CN", code.String())
}

func TestIndex_FromRangeSyntax(t *testing.T) {
	index := NewIndex()
	for _, tt := range []struct{ rng, code string }{
		{"100.204.128.0/24", "CN"},
		{"43.128.148.100-200", "KR"},
	} {
		iv, err := ipaddr.ParseV4Interval(tt.rng)
		require.NoError(t, err)
		require.NoError(t, index.Add(Record{Family: IPv4, V4: iv, Code: MustCode(tt.code)}))
	}
	rng, code, ok := index.Match(netip.MustParseAddr("43.128.148.150"))
	require.True(t, ok)
	require.Equal(t, "KR", code.String())
	require.Equal(t, "[43.128.148.100, 43.128.148.200]", rng)

	_, _, ok = index.Match(netip.Addr{})
	require.False(t, ok)
}

func TestLoader_ConflictAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "apnic|CN|ipv4|1.0.0.0|256|20110414|allocated\n")
	writeFile(t, dir, "b.txt", strings.Join([]string{
		"ripencc|FR|ipv4|2.0.0.0|256|20110414|allocated",
		"ripencc|DE|ipv4|1.0.0.128|16|20110414|allocated",
		"ripencc|IT|ipv4|3.0.0.0|256|20110414|allocated",
	}, "\n"))

	index := NewIndex()
	loader := NewLoader(index, nil)
	err := loader.LoadDir(dir)
	require.ErrorIs(t, err, itree.ErrConflict)
	require.Contains(t, err.Error(), "b.txt:2")
	require.Contains(t, err.Error(), "[1.0.0.128, 1.0.0.143]")

	// records before the conflict stay, nothing after it is loaded
	require.Equal(t, 2, index.V4.Len())
	_, ok := query(t, index, "3.0.0.1")
	require.False(t, ok)
}

func TestLoader_DirectoryFiltering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "apnic|CN|ipv4|1.0.0.0|256|20110414|allocated\n")
	writeFile(t, dir, "notes.md", "apnic|US|ipv4|8.8.8.0|256|20110414|allocated\n")
	sub := filepath.Join(dir, "nested.txt")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "two.txt", "apnic|US|ipv4|9.9.9.0|256|20110414|allocated\n")

	index := NewIndex()
	loader := NewLoader(index, nil)
	require.NoError(t, loader.LoadDir(dir))
	require.Equal(t, 1, loader.Stats.Files)
	require.Equal(t, 1, index.Len())
	_, ok := query(t, index, "8.8.8.8")
	require.False(t, ok)
	_, ok = query(t, index, "9.9.9.9")
	require.False(t, ok)
}

func TestLoader_Errors(t *testing.T) {
	loader := NewLoader(NewIndex(), nil)
	err := loader.LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading registry directory")

	err = loader.LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "opening registry file")

	long := "apnic|CN|ipv4|1.0.0.0|256|20110414|" + strings.Repeat("x", maxLineLength)
	err = loader.LoadReader("long.txt", strings.NewReader(long))
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading long.txt")
}

func TestIndex_GapsV4(t *testing.T) {
	index := NewIndex()
	require.Zero(t, index.V4.Len())
	require.Equal(t, []itree.Interval[ipaddr.IPv4]{itree.NewScope(ipaddr.IPv4(0), ipaddr.MaxIPv4)}, index.GapsV4())

	require.NoError(t, index.V4.Insert(itree.NewRange[ipaddr.IPv4](0, 10), MustCode("AA")))
	require.NoError(t, index.V4.Insert(itree.NewScope[ipaddr.IPv4](20, 29), MustCode("BB")))
	require.NoError(t, index.V4.Insert(itree.NewPoint[ipaddr.IPv4](30), MustCode("CC")))
	require.NoError(t, index.V4.Insert(itree.NewScope[ipaddr.IPv4](100, ipaddr.MaxIPv4), MustCode("DD")))

	require.Equal(t, []itree.Interval[ipaddr.IPv4]{
		itree.NewScope[ipaddr.IPv4](10, 19),
		itree.NewScope[ipaddr.IPv4](31, 99),
	}, index.GapsV4())
}
