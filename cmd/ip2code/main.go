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

package main

import (
	"context"
	"fmt"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/ip2code/pkg/config"
	"github.com/netobserv/ip2code/pkg/ipaddr"
	"github.com/netobserv/ip2code/pkg/lookup"
	"github.com/netobserv/ip2code/pkg/operational"
	"github.com/netobserv/ip2code/pkg/server"
	"github.com/netobserv/ip2code/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	buildVersion       = "unknown"
	buildDate          = "unknown"
	cfgFile            string
	logLevel           string
	envPrefix          = "IP2CODE"
	defaultLogFileName = ".ip2code"
	opts               config.Options
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:           "ip2code",
	Short:         "Resolve IP addresses to country codes from registry delegation files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var queryCmd = &cobra.Command{
	Use:   "query <address|range>...",
	Short: "Print the code of each address; ranges are resolved at both ends",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := buildSnapshot(nil)
		if err != nil {
			return err
		}
		defer snap.Close()
		return printQueries(cmd.OutOrStdout(), snap, args)
	},
}

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Print the IPv4 ranges no registry record covers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, err := buildSnapshot(nil)
		if err != nil {
			return err
		}
		defer snap.Close()
		for _, gap := range snap.Index().GapsV4() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s-%s\n", gap.Lo(), gap.Hi())
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve lookups, metrics and health over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve()
	},
}

var metricsDocCmd = &cobra.Command{
	Use:   "metrics-doc",
	Short: "Print the documentation of the operational metrics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		header := `
> Note: this file was automatically generated, to update execute "make docs"

# ip2code Operational Metrics

Each table below provides documentation for an exported ip2code operational metric.

`
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", header, operational.GetDocumentation())
	},
}

// initConfig use config file and ENV variables if set.
func initConfig() {
	v := viper.New()

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		// Search config in home directory with name ".ip2code" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName(defaultLogFileName)
	}

	// Read environment variables that match prefix
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// If a config file is found, read it in.
	cfgErr := v.ReadInConfig()

	bindFlags(rootCmd.PersistentFlags(), v)

	// initialize logger
	initLogger()

	if cfgErr != nil {
		if _, notFound := cfgErr.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			log.Errorf("Read config error: %v", cfgErr)
		}
	}
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

func dumpConfig(cfg *config.ConfigFileStruct) {
	configAsJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(cfg, "", "    ")
	if err != nil {
		panic(fmt.Sprintf("error dumping config: %v", err))
	}
	fmt.Printf("Using configuration:\n%s\n", configAsJSON)
}

func bindFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, ".") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, ".", "_"))
			_ = v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix))
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			switch val.(type) {
			case bool, uint, string, int32, int16, int8, int, uint32, uint64, int64, float64, float32, []string, []int:
				_ = flags.Set(f.Name, fmt.Sprintf("%v", val))
			default:
				var jsonNew = jsoniter.ConfigCompatibleWithStandardLibrary
				b, err := jsonNew.Marshal(&val)
				if err != nil {
					log.Fatalf("can't parse flag %s into json with value %v got error %s", f.Name, val, err)
					return
				}
				_ = flags.Set(f.Name, string(b))
			}
		}
	})
}

func initFlags() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s)", defaultLogFileName))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().StringVar(&opts.DataDir, "dataDir", "data", "Directory of registry delegation files (*.txt)")
	rootCmd.PersistentFlags().StringVar(&opts.LocationDB, "locationDB", "", "ip2location BIN database (or .zip archive) used as fallback (default: disabled)")
	rootCmd.PersistentFlags().StringVar(&opts.Overrides, "overrides", "", "yaml or json list of {code, cidrs} taking precedence over registry data")
	rootCmd.PersistentFlags().StringVar(&opts.Server.Address, "server.address", "0.0.0.0", "Lookup server address")
	rootCmd.PersistentFlags().IntVar(&opts.Server.Port, "server.port", 8080, "Lookup server port")
	rootCmd.AddCommand(queryCmd, gapsCmd, serveCmd, metricsDocCmd)
}

func main() {
	// Initialize flags (command line parameters)
	initFlags()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func buildSnapshot(metrics *operational.Metrics) (*lookup.Snapshot, error) {
	cfg, err := config.ParseConfig(&opts)
	if err != nil {
		return nil, fmt.Errorf("error in parsing config: %w", err)
	}
	return lookup.Build(&cfg, metrics)
}

// printQueries writes one "address code source range" line per resolved
// address, "-" standing for empty columns.
func printQueries(w io.Writer, snap *lookup.Snapshot, args []string) error {
	for _, arg := range args {
		var addrs []netip.Addr
		if strings.ContainsAny(arg, "-/") {
			iv, err := ipaddr.ParseInterval(arg)
			if err != nil {
				return err
			}
			lo, hi := iv.Bounds()
			addrs = append(addrs, lo)
			if hi != lo {
				addrs = append(addrs, hi)
			}
		} else {
			addr, err := netip.ParseAddr(arg)
			if err != nil {
				return fmt.Errorf("%q: %w", arg, lookup.ErrInvalidAddress)
			}
			addrs = append(addrs, addr)
		}
		for _, addr := range addrs {
			res := snap.LookupAddr(addr)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.IP, orDash(res.Code), res.Source, orDash(res.Range))
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func serve() error {
	// Initial log message
	fmt.Printf("Starting %s:\n=====\nBuild version: %s\nBuild date: %s\n\n", filepath.Base(os.Args[0]), buildVersion, buildDate)

	cfg, err := config.ParseConfig(&opts)
	if err != nil {
		log.Errorf("error in parsing config: %v", err)
		return err
	}
	dumpConfig(&cfg)

	// Setup (threads) exit manager
	stopCh := utils.SetupElegantExit()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := operational.NewMetrics(reg)

	srv := server.New(cfg.Server, reg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve()
	}()

	snap, err := lookup.Build(&cfg, metrics)
	if err != nil {
		log.Errorf("failed to load lookup data: %v", err)
		_ = srv.Shutdown(context.Background())
		return err
	}
	defer snap.Close()
	srv.SetSnapshot(snap)

	select {
	case <-stopCh:
		log.Info("exit signal received, stopping server")
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	log.Debugf("exiting main run")
	return nil
}
