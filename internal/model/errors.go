package model

import (
	"fmt"
	"strings"
	"time"
)

// InsufficientDataError reports a series too short for the requested computation.
type InsufficientDataError struct {
	ETF      string
	Points   int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: %d price points, need at least %d", label(e.ETF), e.Points, e.Required)
}

// InvalidPriceError reports a zero or negative price.
type InvalidPriceError struct {
	ETF   string
	Date  time.Time
	Price float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("%s: invalid price %g on %s", label(e.ETF), e.Price, e.Date.Format("2006-01-02"))
}

// ConfigurationError reports an invalid configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// AlignmentError reports too few overlapping dates across compared ETFs.
type AlignmentError struct {
	ETFs    []string
	Overlap int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("cannot align [%s]: %d overlapping dates, need at least 2", strings.Join(e.ETFs, ", "), e.Overlap)
}

func label(etf string) string {
	if etf == "" {
		return "series"
	}
	return etf
}
