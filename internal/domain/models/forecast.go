package models

import (
	"fmt"
	"time"
)

// ForecastResult is the payload returned to callers and stored in both
// cache tiers. JSON names are part of the public API.
type ForecastResult struct {
	HistoricalValues     []float64 `json:"serie"`
	ForecastValues       []float64 `json:"forecast"`
	HistoricalTimestamps []Date    `json:"historicoTimestamps"`
	ForecastTimestamps   []Date    `json:"forecastTimestamps"`
	Horizon              int       `json:"horizonte"`
	Source               string    `json:"fonte"`
	SeriesID             string    `json:"serieId"`
	SeriesDescription    string    `json:"descricao"`
	LastUpdated          Date      `json:"ultimaAtualizacao"`
}

// Clone returns a deep copy; cached results are never shared with callers.
func (r ForecastResult) Clone() ForecastResult {
	out := r
	out.HistoricalValues = cloneSlice(r.HistoricalValues)
	out.ForecastValues = cloneSlice(r.ForecastValues)
	out.HistoricalTimestamps = cloneSlice(r.HistoricalTimestamps)
	out.ForecastTimestamps = cloneSlice(r.ForecastTimestamps)
	return out
}

// Validate checks the length invariants between values and timestamps.
func (r ForecastResult) Validate() error {
	if len(r.HistoricalValues) != len(r.HistoricalTimestamps) {
		return fmt.Errorf("historical values/timestamps mismatch: %d != %d",
			len(r.HistoricalValues), len(r.HistoricalTimestamps))
	}
	if len(r.ForecastValues) != r.Horizon || len(r.ForecastTimestamps) != r.Horizon {
		return fmt.Errorf("forecast length mismatch: values=%d timestamps=%d horizon=%d",
			len(r.ForecastValues), len(r.ForecastTimestamps), r.Horizon)
	}
	return nil
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// CacheKey identifies a cached forecast. Dates are calendar days at UTC
// midnight so the struct is usable directly as a map key.
type CacheKey struct {
	Alias     string
	StartDate time.Time
	EndDate   time.Time
	Horizon   int
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%d", k.Alias, k.StartDate.Format(time.DateOnly), k.EndDate.Format(time.DateOnly), k.Horizon)
}

// CacheEntry is a cached forecast with its lifetime.
type CacheEntry struct {
	Payload   ForecastResult
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// RawRecord is one element of the provider's JSON array.
type RawRecord struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}
