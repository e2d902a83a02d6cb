package model

import (
	"fmt"
	"strings"
	"time"
)

// Horizon is a look-back window applied to price series before analysis.
type Horizon string

const (
	Horizon1M  Horizon = "1m"
	Horizon3M  Horizon = "3m"
	Horizon6M  Horizon = "6m"
	Horizon1Y  Horizon = "1y"
	Horizon5Y  Horizon = "5y"
	HorizonMax Horizon = "max"
)

// ParseHorizon validates a horizon label.
func ParseHorizon(s string) (Horizon, error) {
	h := Horizon(strings.ToLower(strings.TrimSpace(s)))
	switch h {
	case Horizon1M, Horizon3M, Horizon6M, Horizon1Y, Horizon5Y, HorizonMax:
		return h, nil
	}
	return "", fmt.Errorf("unknown horizon %q", s)
}

// Days returns the calendar days covered by the horizon, 0 for max.
func (h Horizon) Days() int {
	switch h {
	case Horizon1M:
		return 30
	case Horizon3M:
		return 90
	case Horizon6M:
		return 180
	case Horizon1Y:
		return 365
	case Horizon5Y:
		return 5 * 365
	}
	return 0
}

// Start returns the first date included in the horizon ending at now.
// A zero time means no lower bound.
func (h Horizon) Start(now time.Time) time.Time {
	d := h.Days()
	if d == 0 {
		return time.Time{}
	}
	return DayKey(now).AddDate(0, 0, -d)
}
