package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroCast/internal/domain/models"
	xhttp "MacroCast/pkg/http"
	"MacroCast/pkg/http/middleware"
)

type stubForecaster struct {
	res     models.ForecastResult
	err     error
	series  string
	from    string
	horizon *int
	calls   int
}

func (s *stubForecaster) GetMacroForecast(_ context.Context, series, from string, horizon *int) (models.ForecastResult, error) {
	s.calls++
	s.series, s.from, s.horizon = series, from, horizon
	return s.res, s.err
}

func sampleResult() models.ForecastResult {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.ForecastResult{
		HistoricalValues:     []float64{10.5},
		ForecastValues:       []float64{10.5},
		HistoricalTimestamps: models.NewDates([]time.Time{jan}),
		ForecastTimestamps:   models.NewDates([]time.Time{jan.AddDate(0, 0, 30)}),
		Horizon:              1,
		Source:               "Banco Central do Brasil - SGS 432 (SELIC meta anual (%))",
		SeriesID:             "selic",
		SeriesDescription:    "SELIC meta anual (%)",
		LastUpdated:          models.NewDate(jan),
	}
}

func serve(h *MacroEchoHandler, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMacro_OK(t *testing.T) {
	stub := &stubForecaster{res: sampleResult()}
	rec := serve(NewMacroEchoHandler(nil, stub, nil), "/ml/v1/macro/selic?from=2024-01-01&horizonte=1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "selic", stub.series)
	assert.Equal(t, "2024-01-01", stub.from)
	require.NotNil(t, stub.horizon)
	assert.Equal(t, 1, *stub.horizon)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{10.5}, body["serie"])
	assert.Equal(t, []interface{}{"2024-01-31"}, body["forecastTimestamps"])
	assert.Equal(t, "selic", body["serieId"])
	assert.Equal(t, "2024-01-01", body["ultimaAtualizacao"])
	assert.EqualValues(t, 1, body["horizonte"])
}

func TestMacro_OmittedHorizonIsNil(t *testing.T) {
	stub := &stubForecaster{res: sampleResult()}
	rec := serve(NewMacroEchoHandler(nil, stub, nil), "/ml/v1/macro/ipca")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, stub.horizon)
	assert.Equal(t, "", stub.from)
}

func TestMacro_InvalidHorizonParam(t *testing.T) {
	cases := map[string]string{
		"abc": "ERR_INTEGER",
		"1.5": "ERR_INTEGER",
		"500": "ERR_MAX",
	}
	for q, code := range cases {
		t.Run(q, func(t *testing.T) {
			stub := &stubForecaster{}
			rec := serve(NewMacroEchoHandler(nil, stub, nil), "/ml/v1/macro/selic?horizonte="+q)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, stub.calls)

			var body struct {
				Status int                     `json:"status"`
				Data   []xhttp.ValidationError `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, http.StatusBadRequest, body.Status)
			require.Len(t, body.Data, 1)
			assert.Equal(t, code, body.Data[0].Code)
			assert.Equal(t, "horizonte", body.Data[0].Field)
		})
	}
}

func TestMacro_NegativeHorizonReachesUseCase(t *testing.T) {
	stub := &stubForecaster{err: fmt.Errorf("%w: -1", models.ErrInvalidHorizon)}
	rec := serve(NewMacroEchoHandler(nil, stub, nil), "/ml/v1/macro/selic?horizonte=-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, stub.horizon)
	assert.Equal(t, -1, *stub.horizon)
	assert.Contains(t, rec.Body.String(), "ERR_INVALID_HORIZON")
}

func TestMacro_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: %q", models.ErrUnknownSeries, "dolar"), http.StatusBadRequest, "ERR_UNKNOWN_SERIES"},
		{models.ErrInvalidDateFormat, http.StatusBadRequest, "ERR_INVALID_DATE"},
		{models.ErrInvertedRange, http.StatusBadRequest, "ERR_INVERTED_RANGE"},
		{models.ErrInvalidHorizon, http.StatusBadRequest, "ERR_INVALID_HORIZON"},
		{fmt.Errorf("%w: status 503", models.ErrSourceUnavailable), http.StatusBadGateway, "ERR_BAD_GATEWAY"},
		{models.ErrMalformedSourceResponse, http.StatusBadGateway, "ERR_BAD_GATEWAY"},
		{models.ErrEmptySeriesFromSource, http.StatusBadGateway, "ERR_BAD_GATEWAY"},
		{errors.New("boom"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code+"/"+tc.err.Error(), func(t *testing.T) {
			stub := &stubForecaster{err: tc.err}
			rec := serve(NewMacroEchoHandler(nil, stub, nil), "/ml/v1/macro/selic")

			require.Equal(t, tc.status, rec.Code)
			var body struct {
				Status int `json:"status"`
				Data   []struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			require.Len(t, body.Data, 1)
			assert.Equal(t, tc.code, body.Data[0].Code)
		})
	}
}

func TestMacro_RateLimited(t *testing.T) {
	stub := &stubForecaster{res: sampleResult()}
	h := NewMacroEchoHandler(nil, stub, middleware.NewLimiter(1, 0.0001))

	e := echo.New()
	h.RegisterRoutes(e)

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ml/v1/macro/selic", nil))
	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ml/v1/macro/selic", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1, stub.calls)
}
