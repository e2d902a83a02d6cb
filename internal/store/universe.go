package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/phuslu/log"

	"Prisme/internal/model"
)

// Universe is the loaded input of an analysis run. It is owned by the
// caller and passed into each computation; nothing keeps a reference to it.
type Universe struct {
	Prices      map[string]model.PriceSeries
	Descriptors map[string]model.ETFDescriptor
}

// IDs returns the identifiers having a price series, sorted.
func (u *Universe) IDs() []string {
	ids := make([]string, 0, len(u.Prices))
	for id := range u.Prices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Window returns a universe whose price series start on or after start.
// Descriptors are shared.
func (u *Universe) Window(start time.Time) *Universe {
	out := &Universe{
		Prices:      make(map[string]model.PriceSeries, len(u.Prices)),
		Descriptors: u.Descriptors,
	}
	for id, s := range u.Prices {
		out.Prices[id] = s.Since(start)
	}
	return out
}

// Load reads the processed files of ids, or of every processed ETF when ids
// is empty. An ETF whose price file cannot be read is skipped with a warning;
// a missing descriptor falls back to the identifier alone.
func (s *Store) Load(ids []string) (*Universe, error) {
	if len(ids) == 0 {
		found, err := s.ProcessedIDs()
		if err != nil {
			return nil, fmt.Errorf("list processed files: %w", err)
		}
		ids = found
	}

	u := &Universe{
		Prices:      make(map[string]model.PriceSeries, len(ids)),
		Descriptors: make(map[string]model.ETFDescriptor, len(ids)),
	}
	var errs []error
	for _, id := range ids {
		series, err := s.ReadPrices(id)
		if err != nil {
			log.Warn().Str("etf", id).Err(err).Msg("skipping etf, price file unreadable")
			errs = append(errs, err)
			continue
		}
		u.Prices[id] = series

		desc, err := s.ReadDescriptor(id)
		if err != nil {
			log.Debug().Str("etf", id).Err(err).Msg("no descriptor, using identifier")
			desc = model.ETFDescriptor{ETF: id}
		}
		u.Descriptors[id] = desc
	}

	if len(u.Prices) == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("no etf could be loaded from %s: %w", s.dir, errors.Join(errs...))
		}
		return nil, fmt.Errorf("no processed data in %s", s.dir)
	}
	return u, nil
}
