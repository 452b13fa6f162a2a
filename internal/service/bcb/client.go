package bcb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"MacroCast/internal/domain/models"
	drepo "MacroCast/internal/domain/repository"
	xhttp "MacroCast/pkg/http"
	applogger "MacroCast/pkg/logger"
	"MacroCast/pkg/util"
)

const DefaultBaseURL = "https://api.bcb.gov.br"

// Fetch outcomes used as metric labels.
const (
	outcomeOK        = "ok"
	outcomeHTTP      = "http_error"
	outcomeTransport = "transport_error"
	outcomeMalformed = "malformed"
)

// Option configures Client.
type Option func(*Client)

// Client implements repository.SeriesSource against the BCB SGS REST API.
type Client struct {
	http    *xhttp.Client
	baseURL string
	log     *applogger.Logger
	metrics drepo.Metrics
}

// New creates an SGS client on top of a configured HTTP client.
func New(httpClient *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		http:    httpClient,
		baseURL: DefaultBaseURL,
		log:     applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Fetch downloads the raw observations of series between start and end,
// both inclusive.
func (c *Client) Fetch(ctx context.Context, series models.MacroSeries, start, end time.Time) ([]models.RawRecord, error) {
	begin := time.Now()
	records, outcome, err := c.fetch(ctx, series, start, end)
	if c.metrics != nil {
		c.metrics.RecordSourceFetch(series.Alias, outcome, time.Since(begin).Seconds())
	}
	if err != nil {
		c.log.Warn("sgs fetch failed",
			applogger.String("series", series.Alias),
			applogger.Int("code", series.ProviderCode),
			applogger.String("outcome", outcome),
			applogger.Error(err),
		)
		return nil, err
	}

	c.log.Debug("sgs fetch",
		applogger.String("series", series.Alias),
		applogger.Int("records", len(records)),
		applogger.Duration("duration_ms", time.Since(begin)),
	)
	return records, nil
}

func (c *Client) fetch(ctx context.Context, series models.MacroSeries, start, end time.Time) ([]models.RawRecord, string, error) {
	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados", c.baseURL, series.ProviderCode),
		QueryParams: map[string][]string{
			"formato":     {"json"},
			"dataInicial": {util.FormatProviderDate(start)},
			"dataFinal":   {util.FormatProviderDate(end)},
		},
	}, &body)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return nil, outcomeHTTP, fmt.Errorf("%w: sgs %d answered %d: %w", models.ErrSourceUnavailable, series.ProviderCode, se.StatusCode, err)
		}
		return nil, outcomeTransport, fmt.Errorf("%w: sgs %d unreachable: %w", models.ErrSourceUnavailable, series.ProviderCode, err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, outcomeMalformed, fmt.Errorf("%w: sgs %d: %w", models.ErrMalformedSourceResponse, series.ProviderCode, err)
	}
	return records, outcomeOK, nil
}

// decodeRecords accepts only a JSON array. Elements that are not objects are
// dropped; scalar fields are stringified so numeric values survive.
func decodeRecords(body []byte) ([]models.RawRecord, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("expected a JSON array, got null")
	}

	records := make([]models.RawRecord, 0, len(items))
	for _, raw := range items {
		var obj map[string]interface{}
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			continue
		}
		records = append(records, models.RawRecord{
			Data:  scalar(obj["data"]),
			Valor: scalar(obj["valor"]),
		})
	}
	return records, nil
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprint(t)
	}
}
