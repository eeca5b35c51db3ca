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

package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	cfg := InitConfig(t, `
dataDir: /data
locationDB: /data/IP2LOCATION-LITE-DB1.BIN
server:
  address: 127.0.0.1
  port: 9000
overrides:
  - code: ZZ
    cidrs:
      - 10.0.0.0/8
      - fd00::/8
`)
	require.Equal(t, "/data", cfg.DataDir)
	require.Equal(t, "/data/IP2LOCATION-LITE-DB1.BIN", cfg.LocationDB)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	require.Len(t, cfg.Overrides, 1)
	require.Equal(t, []string{"10.0.0.0/8", "fd00::/8"}, cfg.Overrides[0].CIDRs)
}

func TestWriteRegistryDir(t *testing.T) {
	dir := WriteRegistryDir(t, map[string]string{
		"apnic.txt":      RegistrySample,
		"nested/old.txt": "",
	})
	content, err := os.ReadFile(filepath.Join(dir, "apnic.txt"))
	require.NoError(t, err)
	require.Equal(t, RegistrySample, string(content))
	require.DirExists(t, filepath.Join(dir, "nested"))
}

func TestReadExposedMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()
	require.Contains(t, ReadExposedMetrics(t, reg), "test_total 1")
}
