// Package store persists ETF data on disk: raw payloads as JSON and
// processed series and descriptors as Parquet files, one pair per ETF.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	rawDir       = "raw"
	processedDir = "processed"

	dataSuffix  = "_data.parquet"
	infosSuffix = "_infos.parquet"
)

// Store reads and writes the data directory layout:
//
//	<dir>/raw/<etf>_raw_prices.json
//	<dir>/raw/<etf>_raw_infos.json
//	<dir>/processed/<etf>_data.parquet
//	<dir>/processed/<etf>_infos.parquet
type Store struct {
	dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Init creates the raw and processed directories.
func (s *Store) Init() error {
	for _, d := range []string{rawDir, processedDir} {
		if err := os.MkdirAll(filepath.Join(s.dir, d), 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", d, err)
		}
	}
	return nil
}

// ProcessedIDs lists the ETFs having a processed price file, sorted.
func (s *Store) ProcessedIDs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, processedDir, "*"+dataSuffix))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), dataSuffix))
	}
	return ids, nil
}

func (s *Store) dataPath(etf string) string {
	return filepath.Join(s.dir, processedDir, etf+dataSuffix)
}

func (s *Store) infosPath(etf string) string {
	return filepath.Join(s.dir, processedDir, etf+infosSuffix)
}

func (s *Store) rawPath(etf, kind string) string {
	return filepath.Join(s.dir, rawDir, fmt.Sprintf("%s_raw_%s.json", etf, kind))
}
