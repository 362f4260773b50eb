package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumptrack/pumptrack/internal/adapters/fetch"
)

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results/highscores", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"players": {"p1": {"nickname": "ACE", "arcade_name": "ACE"}},
			"shared_charts": {"c1": {"track_name": "Test Track", "chart_label": "S20"}},
			"results": [{"id": "r1", "shared_chart": "c1", "player": "p1", "score": 800000, "grade": "A"}]
		}`))
	}))
	defer srv.Close()

	// Trailing slash on the base URL must not produce a double slash.
	client := fetch.New(srv.URL + "/")
	data, err := client.Fetch(context.Background())
	require.NoError(t, err)

	assert.Len(t, data.Players, 1)
	assert.Len(t, data.SharedCharts, 1)
	require.Len(t, data.Results, 1)
	assert.Equal(t, "r1", data.Results[0].ID)
	assert.Equal(t, 800000, data.Results[0].Score)
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fetch.New(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrBadStatus)
}

func TestFetchBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": "scraper offline"}`))
	}))
	defer srv.Close()

	_, err := fetch.New(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrBackend)
	assert.Contains(t, err.Error(), "scraper offline")
}

func TestFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"players": `))
	}))
	defer srv.Close()

	_, err := fetch.New(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding snapshot")
}

func TestFetchContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetch.New(srv.URL).Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
