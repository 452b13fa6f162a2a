package util

import (
	"errors"
	"testing"
	"time"
)

var today = time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)

func TestParseFromDateISO(t *testing.T) {
	got, err := ParseFromDate("2024-01-10", 24, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseFromDateMonthOnly(t *testing.T) {
	got, err := ParseFromDate("2023-07", 24, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected first day of month, got %v", got)
	}
}

func TestParseFromDateProviderLayout(t *testing.T) {
	got, err := ParseFromDate("05/02/2022", 24, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2022, 2, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseFromDateBlankUsesFallback(t *testing.T) {
	got, err := ParseFromDate("  ", 24, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -720)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseFromDateInvalid(t *testing.T) {
	_, err := ParseFromDate("yesterday", 24, today)
	if !errors.Is(err, ErrInvalidDateFormat) {
		t.Fatalf("expected ErrInvalidDateFormat, got %v", err)
	}
}

func TestBuildRangeDefaultsEndToToday(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, e, err := BuildRange(start, nil, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Equal(start) || !e.Equal(TruncateDay(today)) {
		t.Fatalf("unexpected range %v..%v", s, e)
	}
}

func TestBuildRangeInverted(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := BuildRange(start, nil, today)
	if !errors.Is(err, ErrInvertedRange) {
		t.Fatalf("expected ErrInvertedRange, got %v", err)
	}
}

func TestBuildRangeSameDay(t *testing.T) {
	if _, _, err := BuildRange(today, nil, today); err != nil {
		t.Fatalf("same day range must be valid: %v", err)
	}
}

func TestFormatProviderDate(t *testing.T) {
	if got := FormatProviderDate(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)); got != "09/03/2024" {
		t.Fatalf("unexpected %s", got)
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" SELIC, ,ipca ,pib,")
	if len(got) != 3 || got[0] != "selic" || got[1] != "ipca" || got[2] != "pib" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault("abc", 7) != 7 || ParseIntDefault("", 7) != 7 || ParseIntDefault(" 12 ", 7) != 12 {
		t.Fatalf("unexpected ParseIntDefault behaviour")
	}
}

func TestParseFloatDefault(t *testing.T) {
	if ParseFloatDefault("x", 10) != 10 || ParseFloatDefault("", 10) != 10 || ParseFloatDefault("Inf", 10) != 10 || ParseFloatDefault(" 2.5 ", 10) != 2.5 {
		t.Fatalf("unexpected ParseFloatDefault behaviour")
	}
}
