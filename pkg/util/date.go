package util

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProviderDateLayout is the DD/MM/YYYY layout used by the SGS API.
const ProviderDateLayout = "02/01/2006"

// ISODateLayout is used for every date rendered in API payloads.
const ISODateLayout = time.DateOnly

var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvertedRange     = errors.New("end date before start date")
)

// fromLayouts are tried in order; the first one that parses wins.
var fromLayouts = []string{
	"2006-01-02",
	"2006-01",
	ProviderDateLayout,
}

// TruncateDay drops the clock part, keeping the calendar day at UTC midnight.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseFromDate parses a user supplied start date. A blank value yields
// today minus fallbackMonths*30 days.
func ParseFromDate(raw string, fallbackMonths int, today time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TruncateDay(today).AddDate(0, 0, -30*fallbackMonths), nil
	}
	for _, layout := range fromLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return TruncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (use YYYY-MM-DD, YYYY-MM or DD/MM/YYYY)", ErrInvalidDateFormat, raw)
}

// BuildRange returns the inclusive [start, end] window, end defaulting to today.
func BuildRange(start time.Time, end *time.Time, today time.Time) (time.Time, time.Time, error) {
	s := TruncateDay(start)
	e := TruncateDay(today)
	if end != nil {
		e = TruncateDay(*end)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s > %s", ErrInvertedRange, s.Format(ISODateLayout), e.Format(ISODateLayout))
	}
	return s, e, nil
}

func FormatProviderDate(t time.Time) string {
	return t.Format(ProviderDateLayout)
}

func ParseProviderDate(s string) (time.Time, error) {
	t, err := time.Parse(ProviderDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return TruncateDay(t), nil
}

// FormatDates renders each date as YYYY-MM-DD.
func FormatDates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(ISODateLayout)
	}
	return out
}
