package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-event-companion/internal/logger"
)

func TestHTTPRemoteSource_FetchTable_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tables/event/agenda", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a-1","title":"Opening keynote"}]`))
	}))
	defer srv.Close()

	src := NewHTTPRemoteSource(HTTPSourceConfig{BaseURL: srv.URL}, logger.Nop())

	data, err := src.FetchTable(context.Background(), "event/agenda")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a-1","title":"Opening keynote"}]`, string(data))
}

func TestHTTPRemoteSource_FetchTable_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such table", http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewHTTPRemoteSource(HTTPSourceConfig{BaseURL: srv.URL}, logger.Nop())

	_, err := src.FetchTable(context.Background(), "event/unknown")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestHTTPRemoteSource_FetchTable_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := NewHTTPRemoteSource(HTTPSourceConfig{BaseURL: srv.URL}, logger.Nop())

	_, err := src.FetchTable(context.Background(), "event/agenda")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPRemoteSource_FetchTable_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"broken":`))
	}))
	defer srv.Close()

	src := NewHTTPRemoteSource(HTTPSourceConfig{BaseURL: srv.URL}, logger.Nop())

	_, err := src.FetchTable(context.Background(), "event/agenda")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestHTTPRemoteSource_FetchTable_ContextCanceled(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	src := NewHTTPRemoteSource(HTTPSourceConfig{BaseURL: srv.URL}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := src.FetchTable(ctx, "event/agenda")
	require.ErrorIs(t, err, context.Canceled)
}
