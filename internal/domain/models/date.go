package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"MacroCast/pkg/util"
)

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	return Date{Time: util.TruncateDay(t)}
}

func (d Date) String() string {
	return d.Format(util.ISODateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	t, err := time.Parse(util.ISODateLayout, s)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	d.Time = t
	return nil
}

// NewDates converts a slice of times to calendar days.
func NewDates(ts []time.Time) []Date {
	out := make([]Date, len(ts))
	for i, t := range ts {
		out[i] = NewDate(t)
	}
	return out
}
