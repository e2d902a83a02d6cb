package store

import (
	"encoding/json"
	"os"
)

// WriteRaw saves an untouched source payload as indented JSON under raw/.
// kind is "prices" or "infos".
func (s *Store) WriteRaw(etf, kind string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.rawPath(etf, kind), data, 0644)
}

// ReadRaw decodes a raw payload into v.
func (s *Store) ReadRaw(etf, kind string, v any) error {
	data, err := os.ReadFile(s.rawPath(etf, kind))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
