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

package operational

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "ip2code_"

type metricType string

const (
	typeCounter metricType = "counter"
	typeGauge   metricType = "gauge"
)

type metricDefinition struct {
	Name   string
	Help   string
	Type   metricType
	Labels []string
}

var allMetrics []metricDefinition

func define(name, help string, t metricType, labels ...string) metricDefinition {
	def := metricDefinition{
		Name:   prefix + name,
		Help:   help,
		Type:   t,
		Labels: labels,
	}
	allMetrics = append(allMetrics, def)
	return def
}

var (
	recordsLoaded = define(
		"records_loaded_total",
		"Number of registry records inserted into the index",
		typeCounter,
		"family",
	)
	linesSkipped = define(
		"lines_skipped_total",
		"Number of registry lines dropped as comments, summaries or malformed records",
		typeCounter,
	)
	filesLoaded = define(
		"files_loaded_total",
		"Number of registry files fully loaded",
		typeCounter,
	)
	loadErrors = define(
		"load_errors_total",
		"Number of aborted loads, by reason",
		typeCounter,
		"reason",
	)
	indexSize = define(
		"index_intervals",
		"Number of intervals stored in the index",
		typeGauge,
		"family",
	)
	lookups = define(
		"lookups_total",
		"Number of address lookups, by answering source",
		typeCounter,
		"source",
	)
)

func (def *metricDefinition) counterOpts() prometheus.CounterOpts {
	return prometheus.CounterOpts{Name: def.Name, Help: def.Help}
}

func (def *metricDefinition) gaugeOpts() prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Name: def.Name, Help: def.Help}
}

// Metrics holds the operational metrics of one process. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	recordsLoaded *prometheus.CounterVec
	linesSkipped  prometheus.Counter
	filesLoaded   prometheus.Counter
	loadErrors    *prometheus.CounterVec
	indexSize     *prometheus.GaugeVec
	lookups       *prometheus.CounterVec
}

// NewMetrics registers the metrics into reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		recordsLoaded: f.NewCounterVec(recordsLoaded.counterOpts(), recordsLoaded.Labels),
		linesSkipped:  f.NewCounter(linesSkipped.counterOpts()),
		filesLoaded:   f.NewCounter(filesLoaded.counterOpts()),
		loadErrors:    f.NewCounterVec(loadErrors.counterOpts(), loadErrors.Labels),
		indexSize:     f.NewGaugeVec(indexSize.gaugeOpts(), indexSize.Labels),
		lookups:       f.NewCounterVec(lookups.counterOpts(), lookups.Labels),
	}
}

func (m *Metrics) RecordLoaded(family string) {
	if m != nil {
		m.recordsLoaded.WithLabelValues(family).Inc()
	}
}

func (m *Metrics) LineSkipped() {
	if m != nil {
		m.linesSkipped.Inc()
	}
}

func (m *Metrics) FileLoaded() {
	if m != nil {
		m.filesLoaded.Inc()
	}
}

func (m *Metrics) LoadError(reason string) {
	if m != nil {
		m.loadErrors.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SetIndexSize(family string, n int) {
	if m != nil {
		m.indexSize.WithLabelValues(family).Set(float64(n))
	}
}

func (m *Metrics) Lookup(source string) {
	if m != nil {
		m.lookups.WithLabelValues(source).Inc()
	}
}

// GetDocumentation renders the metric definitions as markdown.
func GetDocumentation() string {
	doc := ""
	for _, opts := range allMetrics {
		labels := ""
		if len(opts.Labels) > 0 {
			labels = fmt.Sprintf("\n| **Labels** | %s |", strings.Join(opts.Labels, ", "))
		}
		doc += fmt.Sprintf(
			`
### %s
| **Name** | %s |
|:---|:---|
| **Description** | %s |
| **Type** | %s |%s

`,
			opts.Name,
			opts.Name,
			opts.Help,
			opts.Type,
			labels,
		)
	}

	return doc
}
