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
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/heptiolabs/healthcheck"
	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/ip2code/pkg/config"
	"github.com/netobserv/ip2code/pkg/lookup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNotLoaded = errors.New("lookup snapshot not loaded yet")

// Server exposes lookups over HTTP, next to the metrics and health endpoints.
// It reports not ready until SetSnapshot is called.
type Server struct {
	Addr     string
	server   *http.Server
	health   healthcheck.Handler
	snapshot atomic.Pointer[lookup.Snapshot]
}

func New(cfg config.Server, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		Addr:   cfg.Addr(),
		health: healthcheck.NewHandler(),
	}
	s.health.AddLivenessCheck("ServerCheck", func() error { return nil })
	s.health.AddReadinessCheck("SnapshotCheck", func() error {
		if s.snapshot.Load() == nil {
			return errNotLoaded
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/lookup", s.lookup)
	mux.HandleFunc("/live", s.health.LiveEndpoint)
	mux.HandleFunc("/ready", s.health.ReadyEndpoint)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.server = &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// SetSnapshot makes s answer lookups from snap. It may be called again to
// swap in a reloaded snapshot.
func (s *Server) SetSnapshot(snap *lookup.Snapshot) {
	s.snapshot.Store(snap)
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Serve listens until Shutdown is called.
func (s *Server) Serve() error {
	log.Infof("lookup server: addr = %s", s.Addr)
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("error in http.ListenAndServe: %v", err)
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "only GET is supported"})
		return
	}
	snap := s.snapshot.Load()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: errNotLoaded.Error()})
		return
	}
	res, err := snap.Lookup(r.URL.Query().Get("ip"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("can't marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		log.Debugf("can't write response: %v", err)
	}
}
