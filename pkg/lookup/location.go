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

package lookup

import (
	"archive/zip"
	"fmt"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/ip2location/ip2location-go/v9"
	"github.com/netobserv/ip2code/pkg/rir"
	log "github.com/sirupsen/logrus"
)

const (
	zipSuffix = ".zip"
	binSuffix = ".bin"
	// returned by ip2location for addresses it has no data about
	unknownCountry = "-"
)

// locationDB is the part of *ip2location.DB the fallback source needs.
type locationDB interface {
	Get_all(ipaddress string) (ip2location.IP2Locationrecord, error)
	Close()
}

// openLocationDB opens an ip2location BIN database. A .zip archive is first
// extracted next to itself and the first .BIN file it contains is opened.
func openLocationDB(path string) (*ip2location.DB, error) {
	if strings.EqualFold(filepath.Ext(path), zipSuffix) {
		dest := strings.TrimSuffix(path, filepath.Ext(path))
		files, err := unzip(path, dest)
		if err != nil {
			return nil, fmt.Errorf("failed unzip %v ", err)
		}
		bin := ""
		for _, f := range files {
			if strings.EqualFold(filepath.Ext(f), binSuffix) {
				bin = f
				break
			}
		}
		if bin == "" {
			return nil, fmt.Errorf("no BIN file in %s", path)
		}
		path = bin
	}

	log.Debugf("Loading location DB %s", path)
	db, err := ip2location.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("OpenDB err - %v ", err)
	}
	return db, nil
}

// locate returns the country code db has for addr, if it is a usable one.
func locate(db locationDB, addr netip.Addr) (rir.Code, bool) {
	res, err := db.Get_all(addr.String())
	if err != nil {
		log.Debugf("location lookup of %s failed: %v", addr, err)
		return rir.Code{}, false
	}
	if res.Country_short == unknownCountry {
		return rir.Code{}, false
	}
	return rir.NewCode(res.Country_short)
}

// unzip extracts src into dest and returns the paths of the extracted files.
func unzip(src, dest string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	var files []string
	for _, f := range r.File {
		filePath := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(filePath, root) {
			return nil, fmt.Errorf("illegal file path %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(filePath, 0o755); err != nil {
				return nil, err
			}
			continue
		}
		if err := extract(f, filePath); err != nil {
			return nil, err
		}
		files = append(files, filePath)
	}
	return files, nil
}

func extract(f *zip.File, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	df, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer df.Close()

	_, err = io.Copy(df, rc)
	return err
}
