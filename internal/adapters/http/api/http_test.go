package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumptrack/pumptrack/internal/adapters/dispatch"
	"github.com/pumptrack/pumptrack/internal/adapters/http/api"
	"github.com/pumptrack/pumptrack/internal/domain/model"
)

type stubDeps struct {
	ranking    []model.RankingEntry
	charts     map[string]*model.Chart
	chartOrder []string
	profiles   map[string]*model.Profile
	logText    string

	runID      string
	refreshErr error
}

func (s *stubDeps) Ranking(context.Context) []model.RankingEntry { return s.ranking }

func (s *stubDeps) Chart(_ context.Context, id string) (*model.Chart, bool) {
	chart, ok := s.charts[id]
	return chart, ok
}

func (s *stubDeps) Charts(context.Context) []*model.Chart {
	charts := make([]*model.Chart, 0, len(s.chartOrder))
	for _, id := range s.chartOrder {
		charts = append(charts, s.charts[id])
	}
	return charts
}

func (s *stubDeps) Profile(_ context.Context, id string) (*model.Profile, bool) {
	p, ok := s.profiles[id]
	return p, ok
}

func (s *stubDeps) LogText(context.Context) string { return s.logText }

func (s *stubDeps) Refresh(context.Context) (string, error) {
	if s.refreshErr != nil {
		return "", s.refreshErr
	}
	return s.runID, nil
}

func (s *stubDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"charts": len(s.charts)}
}

func newMux(deps *stubDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, 100).Register(context.Background(), mux)
	return mux
}

func doRequest(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func testDeps() *stubDeps {
	return &stubDeps{
		ranking: []model.RankingEntry{
			{PlayerID: "p1", Name: "ACE", Rating: 1250, RatingRaw: 1250.2},
			{PlayerID: "p2", Name: "BOLT", Rating: 1100, RatingRaw: 1100.4},
		},
		charts: map[string]*model.Chart{
			"c1": {SharedChartID: "c1", Song: "Test Track", Label: "S20", Type: model.ChartSingle, Level: 20},
		},
		chartOrder: []string{"c1"},
		profiles: map[string]*model.Profile{
			"p1": {ID: "p1", Name: "ACE", Rating: 1250.2},
		},
		logText: "replay log line\n",
		runID:   "run-123",
	}
}

func TestGetRanking(t *testing.T) {
	mux := newMux(testDeps())

	t.Run("full list", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/ranking")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []model.RankingEntry
		decode(t, rec, &got)
		require.Len(t, got, 2)
		assert.Equal(t, "p1", got[0].PlayerID)
	})

	t.Run("limit truncates", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/ranking?limit=1")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []model.RankingEntry
		decode(t, rec, &got)
		assert.Len(t, got, 1)
	})

	t.Run("invalid limit", func(t *testing.T) {
		for _, target := range []string{"/ranking?limit=0", "/ranking?limit=abc"} {
			rec := doRequest(mux, http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("limit above the configured maximum", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/ranking?limit=101")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "limit_exceeded")
	})

	t.Run("empty ranking encodes as an array", func(t *testing.T) {
		rec := doRequest(newMux(&stubDeps{}), http.MethodGet, "/ranking")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})
}

func TestGetCharts(t *testing.T) {
	mux := newMux(testDeps())

	t.Run("summaries", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/charts")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]any
		decode(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, "c1", got[0]["shared_chart_id"])
		assert.Equal(t, "Test Track", got[0]["song"])
		// Summaries never embed the full leaderboard.
		assert.NotContains(t, got[0], "results")
	})

	t.Run("limit truncates", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/charts?limit=1")
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]any
		decode(t, rec, &got)
		assert.Len(t, got, 1)
	})

	t.Run("limit above the configured maximum", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/charts?limit=101")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "limit_exceeded")
	})
}

func TestGetLeaderboard(t *testing.T) {
	mux := newMux(testDeps())

	t.Run("existing chart", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/leaderboard/c1")
		require.Equal(t, http.StatusOK, rec.Code)

		var got model.Chart
		decode(t, rec, &got)
		assert.Equal(t, "Test Track", got.Song)
	})

	t.Run("unknown chart", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/leaderboard/nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing or nested id", func(t *testing.T) {
		for _, target := range []string{"/leaderboard/", "/leaderboard/c1/extra"} {
			rec := doRequest(mux, http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		}
	})
}

func TestGetProfile(t *testing.T) {
	mux := newMux(testDeps())

	t.Run("existing player", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/profiles/p1")
		require.Equal(t, http.StatusOK, rec.Code)

		var got model.Profile
		decode(t, rec, &got)
		assert.Equal(t, "ACE", got.Name)
	})

	t.Run("unknown player", func(t *testing.T) {
		rec := doRequest(mux, http.MethodGet, "/profiles/ghost")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostRefresh(t *testing.T) {
	t.Run("queues a run", func(t *testing.T) {
		rec := doRequest(newMux(testDeps()), http.MethodPost, "/refresh")
		require.Equal(t, http.StatusAccepted, rec.Code)

		var got map[string]string
		decode(t, rec, &got)
		assert.Equal(t, "queued", got["status"])
		assert.Equal(t, "run-123", got["run_id"])
	})

	t.Run("rejects GET", func(t *testing.T) {
		rec := doRequest(newMux(testDeps()), http.MethodGet, "/refresh")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("full queue answers 429", func(t *testing.T) {
		deps := testDeps()
		deps.refreshErr = dispatch.ErrQueueFull
		rec := doRequest(newMux(deps), http.MethodPost, "/refresh")

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "backpressure")
	})

	t.Run("other failures answer 503", func(t *testing.T) {
		deps := testDeps()
		deps.refreshErr = errors.New("service stopped")
		rec := doRequest(newMux(deps), http.MethodPost, "/refresh")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGetReplayLog(t *testing.T) {
	rec := doRequest(newMux(testDeps()), http.MethodGet, "/debug/replay")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "replay log line\n", rec.Body.String())
}

func TestGetStats(t *testing.T) {
	rec := doRequest(newMux(testDeps()), http.MethodGet, "/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	decode(t, rec, &got)
	assert.EqualValues(t, 1, got["charts"])
}

func TestGetHealth(t *testing.T) {
	rec := doRequest(newMux(testDeps()), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
