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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/ip2code/pkg/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// RegistrySample is a small APNIC-style delegation file: a header, summaries,
// an asn record and three address records.
const RegistrySample = `2|apnic|20240101|5|19830613|20231231|+1000
apnic|*|ipv4|*|2|summary
apnic|*|ipv6|*|1|summary
apnic|AU|asn|4608|1|20000131|allocated
apnic|CN|ipv4|100.204.128.0|256|20110414|allocated
apnic|KR|ipv4|43.128.148.100|101|20110414|assigned
apnic|JP|ipv6|2001:200::|35|19990813|allocated
`

// WriteRegistryDir creates a temporary data directory holding files, by name.
func WriteRegistryDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// InitConfig reads a yaml configuration the way the command line does and
// returns it parsed.
func InitConfig(t *testing.T, conf string) config.ConfigFileStruct {
	t.Helper()
	var json = jsoniter.ConfigCompatibleWithStandardLibrary
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader([]byte(conf))))

	opts := config.Options{
		DataDir:    v.GetString("dataDir"),
		LocationDB: v.GetString("locationDB"),
		Server: config.Server{
			Address: v.GetString("server.address"),
			Port:    v.GetInt("server.port"),
		},
	}
	if v.IsSet("overrides") {
		overrides := v.Get("overrides")
		b, err := json.Marshal(&overrides)
		require.NoError(t, err)
		opts.Overrides = string(b)
	}

	cfg, err := config.ParseConfig(&opts)
	require.NoError(t, err)
	return cfg
}
