package usecase

import (
	"context"
	"strings"
	"time"

	"MacroCast/internal/domain/models"
	drepo "MacroCast/internal/domain/repository"
	applogger "MacroCast/pkg/logger"
	"MacroCast/pkg/util"
)

const (
	MinPrewarmMonths  = 6
	MinPrewarmHorizon = 1
)

// DefaultPrewarmSeries is warmed when no list is configured.
var DefaultPrewarmSeries = []string{"selic", "ipca", "pib"}

// PrewarmParams selects what the job warms.
type PrewarmParams struct {
	Series  []string
	Months  int
	Horizon int
}

// Normalize cleans the alias list and raises months and horizon to their
// floors. Defaults come from config, not from here.
func (p PrewarmParams) Normalize() PrewarmParams {
	out := PrewarmParams{Months: p.Months, Horizon: p.Horizon}
	for _, s := range p.Series {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out.Series = append(out.Series, s)
		}
	}
	if len(out.Series) == 0 {
		out.Series = append([]string(nil), DefaultPrewarmSeries...)
	}
	if out.Months < MinPrewarmMonths {
		out.Months = MinPrewarmMonths
	}
	if out.Horizon < MinPrewarmHorizon {
		out.Horizon = MinPrewarmHorizon
	}
	return out
}

// Prewarmer fills the caches for a fixed list of series.
type Prewarmer struct {
	forecasts MacroForecaster
	params    PrewarmParams
	publisher drepo.ReportPublisher
	metrics   drepo.Metrics
	log       *applogger.Logger
	now       func() time.Time
}

type PrewarmOption func(*Prewarmer)

// WithReportPublisher ships the finished report downstream.
func WithReportPublisher(p drepo.ReportPublisher) PrewarmOption {
	return func(pw *Prewarmer) {
		pw.publisher = p
	}
}

func WithPrewarmLogger(l *applogger.Logger) PrewarmOption {
	return func(pw *Prewarmer) {
		if l != nil {
			pw.log = l
		}
	}
}

func WithPrewarmMetrics(m drepo.Metrics) PrewarmOption {
	return func(pw *Prewarmer) {
		pw.metrics = m
	}
}

func WithPrewarmClock(now func() time.Time) PrewarmOption {
	return func(pw *Prewarmer) {
		if now != nil {
			pw.now = now
		}
	}
}

func NewPrewarmer(forecasts MacroForecaster, params PrewarmParams, opts ...PrewarmOption) *Prewarmer {
	pw := &Prewarmer{
		forecasts: forecasts,
		params:    params.Normalize(),
		log:       applogger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(pw)
	}
	return pw
}

// Params returns the normalized parameters in effect.
func (pw *Prewarmer) Params() PrewarmParams {
	return pw.params
}

// Run warms every series in order. Failures are recorded per item and never
// abort the run. A publish failure is logged and does not change the report.
func (pw *Prewarmer) Run(ctx context.Context) models.PrewarmReport {
	startedAt := pw.now()
	from := util.TruncateDay(startedAt).AddDate(0, 0, -30*pw.params.Months).Format(util.ISODateLayout)
	horizon := pw.params.Horizon

	report := models.PrewarmReport{
		StartedAt: startedAt,
		From:      from,
		Horizon:   horizon,
		Items:     make([]models.PrewarmItem, 0, len(pw.params.Series)),
	}

	for _, alias := range pw.params.Series {
		item := models.PrewarmItem{Series: alias}

		res, err := pw.forecasts.GetMacroForecast(ctx, alias, from, &horizon)
		if err != nil {
			item.Error = err.Error()
			pw.log.Warn("prewarm failed", applogger.String("series", alias), applogger.Error(err))
		} else {
			item.OK = true
			item.Historical = len(res.HistoricalValues)
			item.Forecast = len(res.ForecastValues)
			item.Source = res.Source
			pw.log.Info("prewarm ok",
				applogger.String("series", alias),
				applogger.Int("historical", item.Historical),
				applogger.Int("forecast", item.Forecast),
			)
		}
		if pw.metrics != nil {
			pw.metrics.RecordPrewarm(alias, item.OK)
		}
		report.Items = append(report.Items, item)
	}
	report.FinishedAt = pw.now()

	if pw.publisher != nil {
		if err := pw.publisher.PublishReport(ctx, report); err != nil {
			pw.log.Warn("prewarm report publish failed", applogger.Error(err))
		}
	}
	return report
}
