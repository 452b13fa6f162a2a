package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroCast/internal/domain/models"
)

type scriptedForecaster struct {
	failures map[string]error
	calls    []string
	from     string
	horizon  int
}

func (s *scriptedForecaster) GetMacroForecast(_ context.Context, series, from string, horizon *int) (models.ForecastResult, error) {
	s.calls = append(s.calls, series)
	s.from, s.horizon = from, *horizon
	if err := s.failures[series]; err != nil {
		return models.ForecastResult{}, err
	}
	return models.ForecastResult{
		HistoricalValues: make([]float64, 10),
		ForecastValues:   make([]float64, *horizon),
		Horizon:          *horizon,
		Source:           "BCB " + series,
	}, nil
}

type recordingPublisher struct {
	reports []models.PrewarmReport
	err     error
}

func (r *recordingPublisher) PublishReport(_ context.Context, report models.PrewarmReport) error {
	r.reports = append(r.reports, report)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func TestPrewarmParams_Normalize(t *testing.T) {
	p := PrewarmParams{}.Normalize()
	assert.Equal(t, []string{"selic", "ipca", "pib"}, p.Series)
	assert.Equal(t, MinPrewarmMonths, p.Months)
	assert.Equal(t, MinPrewarmHorizon, p.Horizon)

	p = PrewarmParams{Series: []string{" SELIC", "", "  ", "433"}, Months: 3, Horizon: -2}.Normalize()
	assert.Equal(t, []string{"selic", "433"}, p.Series)
	assert.Equal(t, MinPrewarmMonths, p.Months)
	assert.Equal(t, MinPrewarmHorizon, p.Horizon)

	for _, months := range []int{-12, 0, 5} {
		assert.Equal(t, 6, PrewarmParams{Months: months}.Normalize().Months, "months=%d", months)
	}
	assert.Equal(t, 48, PrewarmParams{Months: 48, Horizon: 6}.Normalize().Months)
	assert.Equal(t, 6, PrewarmParams{Months: 48, Horizon: 6}.Normalize().Horizon)
}

func TestPrewarmer_Run(t *testing.T) {
	fc := &scriptedForecaster{failures: map[string]error{
		"pib": models.ErrSourceUnavailable,
	}}
	pub := &recordingPublisher{}
	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)

	pw := NewPrewarmer(fc, PrewarmParams{Months: 12, Horizon: 4},
		WithReportPublisher(pub),
		WithPrewarmClock(func() time.Time { return now }),
	)
	report := pw.Run(context.Background())

	assert.Equal(t, []string{"selic", "ipca", "pib"}, fc.calls)
	assert.Equal(t, "2023-06-16", fc.from)
	assert.Equal(t, 4, fc.horizon)

	require.Len(t, report.Items, 3)
	assert.True(t, report.Items[0].OK)
	assert.Equal(t, 10, report.Items[0].Historical)
	assert.Equal(t, 4, report.Items[0].Forecast)
	assert.Equal(t, "BCB selic", report.Items[0].Source)
	assert.False(t, report.Items[2].OK)
	assert.Equal(t, models.ErrSourceUnavailable.Error(), report.Items[2].Error)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, "2023-06-16", report.From)
	assert.Equal(t, now, report.StartedAt)

	require.Len(t, pub.reports, 1)
	assert.Equal(t, report, pub.reports[0])
}

func TestPrewarmer_PublishFailureKeepsReport(t *testing.T) {
	fc := &scriptedForecaster{}
	pub := &recordingPublisher{err: errors.New("broker down")}

	report := NewPrewarmer(fc, PrewarmParams{Series: []string{"selic"}}, WithReportPublisher(pub)).
		Run(context.Background())

	assert.Equal(t, 0, report.Failed())
	assert.Len(t, pub.reports, 1)
}
