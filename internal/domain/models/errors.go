package models

import (
	"errors"

	"MacroCast/pkg/util"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownSeries     = errors.New("unknown series")
	ErrInvalidDateFormat = util.ErrInvalidDateFormat
	ErrInvertedRange     = util.ErrInvertedRange
	ErrInvalidHorizon    = errors.New("invalid horizon")
	ErrEmptySeries       = errors.New("empty series")

	ErrEmptySeriesFromSource   = errors.New("no data returned for series")
	ErrSourceUnavailable       = errors.New("macro source unavailable")
	ErrMalformedSourceResponse = errors.New("malformed macro source response")
)

// IsClientError reports errors caused by the caller's input.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		ErrUnknownSeries,
		ErrInvalidDateFormat,
		ErrInvertedRange,
		ErrInvalidHorizon,
		ErrEmptySeries,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsSourceError reports errors caused by the upstream provider.
func IsSourceError(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) ||
		errors.Is(err, ErrMalformedSourceResponse) ||
		errors.Is(err, ErrEmptySeriesFromSource)
}
