package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devpulse/pulse-collector/internal/collect"
	"github.com/devpulse/pulse-collector/internal/metrics"
	"github.com/devpulse/pulse-collector/internal/storage/memory"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

func newTestServer(t *testing.T) (*Server, *memory.RunStore, *memory.PostStore) {
	t.Helper()
	runs := memory.NewRunStore()
	posts := memory.NewPostStore()
	return NewServer(runs, posts, []string{"devto", "medium"}, nil), runs, posts
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

type failingCounter struct{}

func (failingCounter) CountPosts(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestReadyzReportsDatabaseOutage(t *testing.T) {
	t.Parallel()

	srv := NewServer(memory.NewRunStore(), failingCounter{}, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListRunsReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	srv, runs, _ := newTestServer(t)
	at := time.Unix(1700000000, 0).UTC()
	require.NoError(t, runs.RecordRun(context.Background(), collect.Run{
		RunID: "run-1", Source: "devto", CollectedAt: at,
		PostsFound: 3, PostsNew: 2, Status: collect.StatusSucceeded,
	}))
	require.NoError(t, runs.RecordRun(context.Background(), collect.Run{
		RunID: "run-1", Source: "github", CollectedAt: at,
		Status: collect.StatusFailed, ErrorMessage: "rate limited",
	}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Runs []collect.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 2)
	require.Equal(t, "github", body.Runs[0].Source)
	require.Equal(t, collect.StatusFailed, body.Runs[0].Status)
	require.Equal(t, 2, body.Runs[1].PostsNew)
}

func TestListRunsRejectsBadLimit(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=nope", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSources(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sources", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"sources":["devto","medium"]}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
