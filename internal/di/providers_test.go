package di

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"MacroCast/internal/domain/models"
	"MacroCast/pkg/cache"
	"MacroCast/pkg/config"
	applogger "MacroCast/pkg/logger"
)

type downStore struct{}

func (downStore) Get(context.Context, models.CacheKey) (cache.Entry[models.ForecastResult], error) {
	return cache.Entry[models.ForecastResult]{}, cache.ErrCacheMiss
}
func (downStore) Set(context.Context, models.CacheKey, models.ForecastResult) error { return nil }
func (downStore) Delete(context.Context, models.CacheKey) error                     { return nil }
func (downStore) Clear(context.Context) error                                       { return nil }
func (downStore) Close() error                                                      { return nil }
func (downStore) Health(context.Context) error                                      { return errors.New("pool closed") }

func TestProvideAppAddsStoreHealth(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendDatabase

	rec := httptest.NewRecorder()
	app := ProvideApp(cfg, applogger.Nop(), nil, downStore{})
	app.Server().Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), `"cache_database":"pool closed"`)

	rec = httptest.NewRecorder()
	app = ProvideApp(cfg, applogger.Nop(), nil, nil)
	app.Server().Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotContains(t, rec.Body.String(), "checks")
}
