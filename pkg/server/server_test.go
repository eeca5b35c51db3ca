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

package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/netobserv/ip2code/pkg/config"
	"github.com/netobserv/ip2code/pkg/lookup"
	"github.com/netobserv/ip2code/pkg/operational"
	"github.com/netobserv/ip2code/pkg/rir"
	"github.com/netobserv/ip2code/pkg/test"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func testSnapshot(t *testing.T, reg prometheus.Registerer) *lookup.Snapshot {
	t.Helper()
	index := rir.NewIndex()
	loader := rir.NewLoader(index, nil)
	require.NoError(t, loader.LoadReader("test", strings.NewReader(test.RegistrySample)))
	return lookup.NewSnapshot(index, operational.NewMetrics(reg))
}

func TestServer_Lookup(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(config.Server{Address: "127.0.0.1", Port: 0}, reg)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	// not ready before a snapshot is set
	code, _ := get(t, srv, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get(t, srv, "/live")
	require.Equal(t, http.StatusOK, code)
	code, body := get(t, srv, "/lookup?ip=1.2.3.4")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Contains(t, body, "not loaded")

	s.SetSnapshot(testSnapshot(t, reg))
	code, _ = get(t, srv, "/ready")
	require.Equal(t, http.StatusOK, code)

	code, body = get(t, srv, "/lookup?ip=43.128.148.150")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ip":"43.128.148.150","code":"KR","source":"registry","range":"[43.128.148.100, 43.128.148.200]"}`, body)

	code, body = get(t, srv, "/lookup?ip=8.8.8.8")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ip":"8.8.8.8","source":"none"}`, body)

	code, body = get(t, srv, "/lookup?ip=not-an-ip")
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body, "invalid IP address")

	code, _ = get(t, srv, "/lookup")
	require.Equal(t, http.StatusBadRequest, code)

	resp, err := http.Post(srv.URL+"/lookup", "text/plain", strings.NewReader("1.2.3.4"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	code, body = get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `ip2code_lookups_total{source="registry"} 1`)
	require.Contains(t, test.ReadExposedMetrics(t, reg), `ip2code_lookups_total{source="none"} 1`)
}

func TestServer_Addr(t *testing.T) {
	s := New(config.Server{Address: "0.0.0.0", Port: 8080}, prometheus.NewRegistry())
	require.Equal(t, "0.0.0.0:8080", s.Addr)
}
