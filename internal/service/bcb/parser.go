package bcb

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MacroCast/internal/domain/models"
	"MacroCast/pkg/util"
)

// DefaultStep is used when the cadence of a series cannot be inferred.
const DefaultStep = 30 * 24 * time.Hour

// ParseRecords converts provider records into parallel date and value slices,
// keeping input order. Records with a blank or unparseable field are skipped.
func ParseRecords(records []models.RawRecord) ([]time.Time, []float64) {
	dates := make([]time.Time, 0, len(records))
	values := make([]float64, 0, len(records))

	for _, r := range records {
		rawDate := strings.TrimSpace(r.Data)
		rawValue := strings.TrimSpace(r.Valor)
		if rawDate == "" || rawValue == "" {
			continue
		}

		d, err := util.ParseProviderDate(rawDate)
		if err != nil {
			continue
		}
		v, err := ParseDecimal(rawValue)
		if err != nil {
			continue
		}

		dates = append(dates, d)
		values = append(values, v)
	}
	return dates, values
}

// ParseDecimal reads a pt-BR formatted number: comma as decimal separator and
// dot as thousands separator. Plain dot decimals are accepted as well.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// GenerateFutureDates extends last by horizon steps. The step is the gap
// between the last two known dates, or DefaultStep when that is unknown or
// not positive.
func GenerateFutureDates(last time.Time, horizon int, known []time.Time) []time.Time {
	if horizon <= 0 {
		return []time.Time{}
	}

	step := DefaultStep
	if n := len(known); n >= 2 {
		step = known[n-1].Sub(known[n-2])
	}
	// Sub-day gaps count as zero days.
	if step < 24*time.Hour {
		step = DefaultStep
	}
	days := int(step / (24 * time.Hour))

	out := make([]time.Time, 0, horizon)
	cursor := last
	for i := 0; i < horizon; i++ {
		cursor = cursor.AddDate(0, 0, days)
		out = append(out, cursor)
	}
	return out
}
