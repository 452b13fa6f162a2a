package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() ForecastResult {
	d := func(m time.Month) Date { return NewDate(time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC)) }
	return ForecastResult{
		HistoricalValues:     []float64{10.5, 10.75},
		ForecastValues:       []float64{11},
		HistoricalTimestamps: []Date{d(1), d(2)},
		ForecastTimestamps:   []Date{d(3)},
		Horizon:              1,
		SeriesID:             "selic",
		LastUpdated:          d(2),
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := sample()
	cp := orig.Clone()
	cp.HistoricalValues[0] = 0
	cp.ForecastTimestamps[0] = Date{}

	assert.Equal(t, 10.5, orig.HistoricalValues[0])
	assert.Equal(t, "2024-03-01", orig.ForecastTimestamps[0].String())
}

func TestValidate(t *testing.T) {
	r := sample()
	require.NoError(t, r.Validate())

	r.Horizon = 2
	assert.Error(t, r.Validate())

	r = sample()
	r.HistoricalTimestamps = r.HistoricalTimestamps[:1]
	assert.Error(t, r.Validate())
}

func TestJSONWireNames(t *testing.T) {
	b, err := json.Marshal(sample())
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"serie", "forecast", "historicoTimestamps", "forecastTimestamps", "horizonte", "fonte", "serieId", "descricao", "ultimaAtualizacao"} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, "2024-02-01", m["ultimaAtualizacao"])

	var back ForecastResult
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.LastUpdated.Equal(sample().LastUpdated.Time))
}

func TestErrorClasses(t *testing.T) {
	assert.True(t, IsClientError(fmt.Errorf("resolve: %w", ErrUnknownSeries)))
	assert.True(t, IsClientError(ErrInvertedRange))
	assert.False(t, IsClientError(ErrSourceUnavailable))
	assert.True(t, IsSourceError(fmt.Errorf("x: %w", ErrEmptySeriesFromSource)))
	assert.False(t, IsSourceError(errors.New("boom")))
}

func TestSourceDescription(t *testing.T) {
	s := MacroSeries{Alias: "selic", ProviderCode: 432, Description: "SELIC meta anual (%)"}
	assert.Equal(t, "Banco Central do Brasil - SGS 432 (SELIC meta anual (%))", s.SourceDescription())
}
