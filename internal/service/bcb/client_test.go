package bcb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroCast/internal/domain/models"
	xhttp "MacroCast/pkg/http"
)

var selic = models.MacroSeries{Alias: "selic", ProviderCode: 432, Description: "SELIC meta anual (%)"}

var (
	start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
)

func newTestClient(url string) *Client {
	return New(xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), WithBaseURL(url))
}

func TestFetchBuildsProviderRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dados/serie/bcdata.sgs.432/dados", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("formato"))
		assert.Equal(t, "01/01/2024", r.URL.Query().Get("dataInicial"))
		assert.Equal(t, "15/06/2024", r.URL.Query().Get("dataFinal"))
		_, _ = w.Write([]byte(`[{"data":"01/01/2024","valor":"10,50"},{"data":"01/02/2024","valor":10.75},"junk"]`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL).Fetch(context.Background(), selic, start, end)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.RawRecord{Data: "01/01/2024", Valor: "10,50"}, records[0])
	assert.Equal(t, "10.75", records[1].Valor)
}

func TestFetchHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), selic, start, end)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSourceUnavailable))

	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se), "http failures keep the status detail")
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Fetch(context.Background(), selic, start, end)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSourceUnavailable))

	var se *xhttp.StatusError
	assert.False(t, errors.As(err, &se))
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(xhttp.NewClient(xhttp.WithTimeout(50*time.Millisecond)), WithBaseURL(srv.URL))
	_, err := c.Fetch(context.Background(), selic, start, end)
	assert.True(t, errors.Is(err, models.ErrSourceUnavailable))
}

func TestFetchMalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"object":  `{"erro":"serie inexistente"}`,
		"invalid": `<html>`,
		"null":    `null`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Fetch(context.Background(), selic, start, end)
			assert.True(t, errors.Is(err, models.ErrMalformedSourceResponse))
		})
	}
}
