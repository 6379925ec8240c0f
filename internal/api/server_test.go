package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"goimpact/domain/core"
	"goimpact/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) SaveRun(ctx context.Context, results ports.RunResults) error {
	return m.Called(ctx, results).Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*ports.RunRecord)
	return rec, args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]ports.RunRecord), args.Error(1)
}

func (m *mockStore) ListScenarios(ctx context.Context, id core.RunID) ([]ports.ScenarioRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]ports.ScenarioRecord), args.Error(1)
}

func (m *mockStore) ListHealthOutcomes(ctx context.Context, id core.RunID) ([]ports.HealthOutcomeRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]ports.HealthOutcomeRecord), args.Error(1)
}

const runID = "0190c3a2-7d4e-7a10-8b3c-1f2e3d4c5b6a"

func do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	srv := NewServer(&mockStore{}, nil, zerolog.Nop())
	rec := do(t, srv, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "goimpact_runs_total 1")
	})
	srv := NewServer(&mockStore{}, metrics, zerolog.Nop())
	rec := do(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goimpact_runs_total")

	assert.Equal(t, http.StatusNotFound, do(t, NewServer(&mockStore{}, nil, zerolog.Nop()), "/metrics").Code)
}

func TestGetRun(t *testing.T) {
	store := &mockStore{}
	store.On("GetRun", mock.Anything, core.RunID(runID)).Return(&ports.RunRecord{ID: runID, ReportYear: 2024}, nil)

	rec := do(t, NewServer(store, nil, zerolog.Nop()), "/api/v1/runs/"+runID)
	require.Equal(t, http.StatusOK, rec.Code)

	var got ports.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2024, got.ReportYear)
	store.AssertExpectations(t)
}

func TestGetRunNotFound(t *testing.T) {
	store := &mockStore{}
	store.On("GetRun", mock.Anything, core.RunID(runID)).Return(nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID))

	rec := do(t, NewServer(store, nil, zerolog.Nop()), "/api/v1/runs/"+runID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidRunID(t *testing.T) {
	rec := do(t, NewServer(&mockStore{}, nil, zerolog.Nop()), "/api/v1/runs/not-a-uuid/scenarios")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListScenarios(t *testing.T) {
	v := 500.0
	store := &mockStore{}
	store.On("ListScenarios", mock.Anything, core.RunID(runID)).Return([]ports.ScenarioRecord{
		{ScenarioID: "AUS10F", Market: "Australia", NewCustomers: &v},
		{ScenarioID: "AUS10M", Market: "Australia", Error: "missing reference data"},
	}, nil)

	rec := do(t, NewServer(store, nil, zerolog.Nop()), "/api/v1/runs/"+runID+"/scenarios")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 500.0, rows[0]["new_customers"])
	assert.Nil(t, rows[1]["new_customers"])
	assert.Equal(t, "missing reference data", rows[1]["error"])
}

func TestListHealthOutcomesStoreError(t *testing.T) {
	store := &mockStore{}
	store.On("ListHealthOutcomes", mock.Anything, core.RunID(runID)).Return([]ports.HealthOutcomeRecord(nil), fmt.Errorf("connection reset"))

	rec := do(t, NewServer(store, nil, zerolog.Nop()), "/api/v1/runs/"+runID+"/health-outcomes")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestListRunsLimit(t *testing.T) {
	store := &mockStore{}
	store.On("ListRuns", mock.Anything, 5).Return([]ports.RunRecord{{ID: runID}}, nil)

	srv := NewServer(store, nil, zerolog.Nop())
	assert.Equal(t, http.StatusOK, do(t, srv, "/api/v1/runs?limit=5").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, "/api/v1/runs?limit=x").Code)
	store.AssertExpectations(t)
}
