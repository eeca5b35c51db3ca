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
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/netobserv/ip2code/pkg/itree"
	"github.com/netobserv/ip2code/pkg/operational"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	fileSuffix    = ".txt"
	maxLineLength = 1024 * 1024
)

// LoadStats counts what a Loader has processed so far.
type LoadStats struct {
	Files   int
	Records int
	Skipped int
}

// Loader feeds registry files into an Index. Files and lines are processed
// strictly in order since whether a record conflicts depends on the records
// inserted before it.
type Loader struct {
	Index   *Index
	Metrics *operational.Metrics
	Stats   LoadStats
}

func NewLoader(index *Index, metrics *operational.Metrics) *Loader {
	return &Loader{Index: index, Metrics: metrics}
}

// LoadDir loads every regular *.txt file of dir, in name order. Any error,
// including an entry whose metadata cannot be read, aborts the whole load.
func (l *Loader) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.Metrics.LoadError("io")
		return errors.Wrapf(err, "reading registry directory %s", dir)
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			l.Metrics.LoadError("io")
			return errors.Wrapf(err, "reading metadata of %s", e.Name())
		}
		if info.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			log.Debugf("skipping directory entry %s", e.Name())
			continue
		}
		if err := l.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	log.WithFields(log.Fields{
		"dir":     dir,
		"files":   l.Stats.Files,
		"records": l.Stats.Records,
		"skipped": l.Stats.Skipped,
	}).Info("registry directory loaded")
	return nil
}

func (l *Loader) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		l.Metrics.LoadError("io")
		return errors.Wrap(err, "opening registry file")
	}
	defer f.Close()
	return l.LoadReader(path, f)
}

// LoadReader loads the registry records read from r; name is only used in
// error messages. It stops at the first record that cannot be inserted.
func (l *Loader) LoadReader(name string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		rec, ok := ParseLine(scanner.Text())
		if !ok {
			l.Stats.Skipped++
			l.Metrics.LineSkipped()
			continue
		}
		if err := l.Index.Add(rec); err != nil {
			l.Metrics.LoadError(reason(err))
			return errors.Wrapf(err, "%s:%d", name, lineNo)
		}
		l.Stats.Records++
		l.Metrics.RecordLoaded(rec.Family.String())
	}
	if err := scanner.Err(); err != nil {
		l.Metrics.LoadError("io")
		return errors.Wrapf(err, "reading %s", name)
	}
	l.Stats.Files++
	l.Metrics.FileLoaded()
	l.Metrics.SetIndexSize(IPv4.String(), l.Index.V4.Len())
	l.Metrics.SetIndexSize(IPv6.String(), l.Index.V6.Len())
	log.Debugf("loaded %s: %d lines", name, lineNo)
	return nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, itree.ErrConflict):
		return "conflict"
	case errors.Is(err, itree.ErrInvalid):
		return "invalid"
	}
	return "other"
}
