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

package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Options holds the raw command line / environment / config file values.
// Overrides is kept as text (yaml or json) so that it can travel through a
// single flag, the same way it does through the config file.
type Options struct {
	DataDir    string `yaml:"dataDir" json:"dataDir"`
	LocationDB string `yaml:"locationDB,omitempty" json:"locationDB,omitempty"`
	Overrides  string `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	Server     Server `yaml:"server" json:"server"`
}

type Server struct {
	Address string `yaml:"address" json:"address"`
	Port    int    `yaml:"port" json:"port"`
}

// Addr returns the host:port the server listens on.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

// Override forces Code for every address of the listed CIDRs, ahead of the
// registry data.
type Override struct {
	Code  string   `yaml:"code" json:"code"`
	CIDRs []string `yaml:"cidrs" json:"cidrs"`
}

// ConfigFileStruct is the parsed, validated configuration.
type ConfigFileStruct struct {
	DataDir    string     `yaml:"dataDir" json:"dataDir"`
	LocationDB string     `yaml:"locationDB,omitempty" json:"locationDB,omitempty"`
	Overrides  []Override `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	Server     Server     `yaml:"server" json:"server"`
}

// ParseConfig creates the internal unmarshalled representation from the options
func ParseConfig(opts *Options) (ConfigFileStruct, error) {
	out := ConfigFileStruct{
		DataDir:    opts.DataDir,
		LocationDB: opts.LocationDB,
		Server:     opts.Server,
	}

	logrus.Debugf("opts.Overrides = %v ", opts.Overrides)
	if opts.Overrides != "" {
		if err := yaml.UnmarshalStrict([]byte(opts.Overrides), &out.Overrides); err != nil {
			logrus.Errorf("error when parsing overrides: %v", err)
			return out, errors.Wrap(err, "parsing overrides")
		}
	}
	logrus.Debugf("overrides = %v ", out.Overrides)

	if err := out.validate(); err != nil {
		return out, err
	}
	return out, nil
}

func (c *ConfigFileStruct) validate() error {
	if c.DataDir == "" {
		return errors.New("dataDir must be set")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	for i, o := range c.Overrides {
		if len(o.Code) != 2 {
			return fmt.Errorf("override %d: code %q must have two characters", i, o.Code)
		}
		if len(o.CIDRs) == 0 {
			return fmt.Errorf("override %d (%s): no cidrs", i, o.Code)
		}
	}
	return nil
}
