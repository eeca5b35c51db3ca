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
	"testing"

	"github.com/netobserv/ip2code/pkg/ipaddr"
	"github.com/netobserv/ip2code/pkg/itree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustV4(t *testing.T, s string) ipaddr.IPv4 {
	t.Helper()
	ip, err := ipaddr.ParseIPv4(s)
	require.NoError(t, err)
	return ip
}

func mustV6(t *testing.T, s string) ipaddr.IPv6 {
	t.Helper()
	ip, err := ipaddr.ParseIPv6(s)
	require.NoError(t, err)
	return ip
}

func TestParseLine_IPv4(t *testing.T) {
	rec, ok := ParseLine("apnic|CN|ipv4|1.0.1.0|256|20110414|allocated\n")
	require.True(t, ok)
	require.Equal(t, IPv4, rec.Family)
	require.Equal(t, MustCode("CN"), rec.Code)
	require.Equal(t, Allocated, rec.Status)
	require.Equal(t, itree.NewScope(mustV4(t, "1.0.1.0"), mustV4(t, "1.0.1.255")), rec.V4)
	require.Equal(t, "[1.0.1.0, 1.0.1.255]", rec.Interval())

	rec, ok = ParseLine("ripencc|FR|ipv4|2.0.0.1|1|20100712|assigned\r\n")
	require.True(t, ok)
	require.Equal(t, Assigned, rec.Status)
	require.Equal(t, itree.NewPoint(mustV4(t, "2.0.0.1")), rec.V4)

	rec, ok = ParseLine("arin|US|ipv4|255.255.255.0|256|20100712|reserved")
	require.True(t, ok)
	require.Equal(t, Reserved, rec.Status)
	require.Equal(t, itree.NewScope(mustV4(t, "255.255.255.0"), ipaddr.MaxIPv4), rec.V4)
}

func TestParseLine_IPv6(t *testing.T) {
	rec, ok := ParseLine("apnic|JP|ipv6|2001:200::|35|19990813|allocated|extra|fields")
	require.True(t, ok)
	require.Equal(t, IPv6, rec.Family)
	require.Equal(t, MustCode("JP"), rec.Code)
	require.Equal(t, itree.NewScope(mustV6(t, "2001:200::"), mustV6(t, "2001:200:1fff:ffff:ffff:ffff:ffff:ffff")), rec.V6)

	rec, ok = ParseLine("apnic|JP|ipv6|2001:200::1|128|19990813|available")
	require.True(t, ok)
	require.Equal(t, Available, rec.Status)
	require.Equal(t, itree.NewPoint(mustV6(t, "2001:200::1")), rec.V6)

	rec, ok = ParseLine("lab|ZZ|ipv6|fd00::|8|20200101|intranet")
	require.True(t, ok)
	require.Equal(t, Unknown, rec.Status)
	require.Equal(t, "unknown", rec.Status.String())
}

func TestParseLine_Skipped(t *testing.T) {
	for _, line := range []string{
		"",
		"# comment|CN|ipv4|1.0.1.0|256|20110414|allocated",
		"2|apnic|20240101|71234|19830613|20231231|+1000",
		"apnic|*|ipv4|*|44500|summary",
		"apnic|CN|asn|4608|1|20000131|allocated",
		"apnic|CN|ipv4|1.0.1.0|256|20110414|",
		"apnic|CHN|ipv4|1.0.1.0|256|20110414|allocated",
		"apnic||ipv4|1.0.1.0|256|20110414|allocated",
		"apnic|CN|ipv4|1.0.1|256|20110414|allocated",
		"apnic|CN|ipv4|1.0.1.0|0|20110414|allocated",
		"apnic|CN|ipv4|1.0.1.0|-1|20110414|allocated",
		"apnic|CN|ipv4|255.255.255.255|2|20110414|allocated",
		"apnic|CN|ipv4|2001:200::|35|20110414|allocated",
		"apnic|JP|ipv6|2001:200::|129|19990813|allocated",
		"apnic|JP|ipv6|ffff::|0|19990813|allocated",
		"apnic|JP|ipv6|1.2.3.4|32|19990813|allocated",
		"apnic|JP|ipv6|2001:200::|35",
	} {
		_, ok := ParseLine(line)
		assert.False(t, ok, "line %q should be skipped", line)
	}
}

func TestCode(t *testing.T) {
	c, ok := NewCode("KR")
	require.True(t, ok)
	require.Equal(t, "KR", c.String())
	text, err := c.MarshalText()
	require.NoError(t, err)
	require.Equal(t, []byte("KR"), text)

	_, ok = NewCode("K")
	require.False(t, ok)
	require.Panics(t, func() { MustCode("KOR") })
}
