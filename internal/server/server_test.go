package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/fitscore/internal/config"
	"github.com/jonathan/fitscore/internal/embedding"
	"github.com/jonathan/fitscore/internal/engine"
	"github.com/jonathan/fitscore/internal/metrics"
	"github.com/jonathan/fitscore/internal/server/ratelimit"
	"github.com/jonathan/fitscore/internal/types"
)

// memoryStore is an in-memory Store for handler tests
type memoryStore struct {
	mu         sync.Mutex
	profiles   map[string]*types.EntityProfile
	leads      map[string]*types.LeadProfile
	results    map[uuid.UUID]*types.MatchResult
	outcomes   map[uuid.UUID]float64
	leadScores []*types.LeadScore
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		profiles: make(map[string]*types.EntityProfile),
		leads:    make(map[string]*types.LeadProfile),
		results:  make(map[uuid.UUID]*types.MatchResult),
		outcomes: make(map[uuid.UUID]float64),
	}
}

func (m *memoryStore) SaveProfile(_ context.Context, p *types.EntityProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	return nil
}

func (m *memoryStore) GetProfile(_ context.Context, id string) (*types.EntityProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[id], nil
}

func (m *memoryStore) SaveLead(_ context.Context, l *types.LeadProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[l.ID] = l
	return nil
}

func (m *memoryStore) GetLead(_ context.Context, id string) (*types.LeadProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leads[id], nil
}

func (m *memoryStore) SaveMatchResult(_ context.Context, r *types.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.ID] = r
	return nil
}

func (m *memoryStore) GetMatchResult(_ context.Context, id uuid.UUID) (*types.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[id], nil
}

func (m *memoryStore) RecordOutcome(_ context.Context, id uuid.UUID, actual float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[id]; !ok {
		return false, nil
	}
	m.outcomes[id] = actual
	return true, nil
}

func (m *memoryStore) CalibrationHistory(_ context.Context, _ int) ([]types.HistoricalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := make([]types.HistoricalRecord, 0, len(m.outcomes))
	for id, actual := range m.outcomes {
		history = append(history, types.HistoricalRecord{
			OverallScore:  float64(m.results[id].OverallScore),
			ActualSuccess: actual,
		})
	}
	return history, nil
}

func (m *memoryStore) SaveLeadScore(_ context.Context, s *types.LeadScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leadScores = append(m.leadScores, s)
	return nil
}

type testServerOptions struct {
	store     Store
	rateLimit *ratelimit.Config
	metrics   *metrics.Metrics
}

func newTestServer(t *testing.T, o testServerOptions) http.Handler {
	t.Helper()
	e, err := engine.New(embedding.NewStubProvider(64))
	require.NoError(t, err)

	rl := o.rateLimit
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	cfg := config.Default().Server
	cfg.MaxBatchSize = 3

	s, err := New(Options{
		Engine:       e,
		Store:        o.store,
		Metrics:      o.metrics,
		Logger:       zaptest.NewLogger(t),
		RateLimit:    rl,
		Config:       cfg,
		LeadMinScore: 70,
	})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const matchBody = `{
	"candidate": {"id": "c-1", "experience_level": "expert", "country": "DE", "skills": ["Go", "SQL"], "description": "Go backend engineer"},
	"opportunity": {"id": "o-1", "experience_level": "intermediate", "country": "DE", "skills": ["go", "sql"], "description": "Go backend engineer"}
}`

func TestNew_RequiresEngine(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, testServerOptions{})

	w := doRequest(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, testServerOptions{})

	w := doRequest(t, h, http.MethodOptions, "/v1/match", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMatch_Inline(t *testing.T) {
	store := newMemoryStore()
	h := newTestServer(t, testServerOptions{store: store})

	w := doRequest(t, h, http.MethodPost, "/v1/match", matchBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decode[types.MatchResult](t, w)
	assert.Equal(t, "c-1", result.CandidateID)
	assert.Equal(t, "o-1", result.OpportunityID)
	assert.Equal(t, types.ModeBasic, result.Mode)
	assert.Equal(t, 100, result.Factors["skill"])
	assert.Nil(t, result.CalibratedScore)

	stored, err := store.GetMatchResult(context.Background(), result.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestMatch_AdvancedModeAndHistory(t *testing.T) {
	h := newTestServer(t, testServerOptions{})

	body := strings.TrimSuffix(strings.TrimSpace(matchBody), "}") +
		`, "history": [{"overall_score": 80, "actual_success": 60}]}`
	w := doRequest(t, h, http.MethodPost, "/v1/match?mode=advanced", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decode[types.MatchResult](t, w)
	assert.Equal(t, types.ModeAdvanced, result.Mode)
	require.NotNil(t, result.CalibratedScore)
}

func TestMatch_ByStoredID(t *testing.T) {
	store := newMemoryStore()
	h := newTestServer(t, testServerOptions{store: store})

	require.Equal(t, http.StatusOK, doRequest(t, h, http.MethodPut, "/v1/profiles/c-1", `{"id": "c-1", "country": "DE"}`).Code)
	require.Equal(t, http.StatusOK, doRequest(t, h, http.MethodPut, "/v1/profiles/o-1", `{"id": "o-1", "country": "FR"}`).Code)

	w := doRequest(t, h, http.MethodPost, "/v1/match", `{"candidate_id": "c-1", "opportunity_id": "o-1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "o-1", decode[types.MatchResult](t, w).OpportunityID)

	w = doRequest(t, h, http.MethodPost, "/v1/match", `{"candidate_id": "c-1", "opportunity_id": "missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatch_ByIDWithoutStore(t *testing.T) {
	h := newTestServer(t, testServerOptions{})

	w := doRequest(t, h, http.MethodPost, "/v1/match", `{"candidate_id": "c-1", "opportunity_id": "o-1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMatch_BadRequests(t *testing.T) {
	h := newTestServer(t, testServerOptions{})

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "invalid json", body: `{"candidate":`},
		{name: "missing opportunity", body: `{"candidate": {"id": "c-1"}}`},
		{name: "empty id", body: `{"candidate": {"id": ""}, "opportunity": {"id": "o"}}`},
		{name: "unknown field", body: `{"candidate": {"id": "c"}, "opportunity": {"id": "o"}, "extra": 1}`},
		{name: "score out of range", body: `{"candidate": {"id": "c"}, "opportunity": {"id": "o"}, "history": [{"overall_score": 120, "actual_success": 1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, "/v1/match", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestMatchBatch(t *testing.T) {
	store := newMemoryStore()
	h := newTestServer(t, testServerOptions{store: store})

	body := `{"mode": "advanced", "pairs": [
		{"candidate": {"id": "c-1"}, "opportunity": {"id": "o-1"}},
		{"candidate": {"id": "c-2", "country": "DE"}, "opportunity": {"id": "o-2", "country": "FR"}}
	]}`
	w := doRequest(t, h, http.MethodPost, "/v1/match/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[BatchResponse](t, w)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 0, resp.Failed)
	for i, item := range resp.Results {
		assert.Equal(t, i, item.Index)
		require.NotNil(t, item.Result)
		assert.Equal(t, types.ModeAdvanced, item.Result.Mode)
	}
	assert.Equal(t, "c-2", resp.Results[1].Result.CandidateID)
	assert.Len(t, store.results, 2)
}

func TestMatchBatch_TooLarge(t *testing.T) {
	h := newTestServer(t, testServerOptions{})

	pair := `{"candidate": {"id": "c"}, "opportunity": {"id": "o"}}`
	body := `{"pairs": [` + strings.Join([]string{pair, pair, pair, pair}, ",") + `]}`
	w := doRequest(t, h, http.MethodPost, "/v1/match/batch", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at most 3 pairs")
}

func TestScoreLeads(t *testing.T) {
	store := newMemoryStore()
	h := newTestServer(t, testServerOptions{store: store})

	body := `{"leads": [
		{"id": "l-1", "industry": "healthcare", "size": "medium", "annual_revenue": 50000000, "open_positions": 20, "avg_response_hours": 12, "offers_relocation": true, "provides_housing": true, "helps_with_visa": true},
		{"id": "l-2"}
	]}`

	w := doRequest(t, h, http.MethodPost, "/v1/leads/score?min_score=0", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[LeadBatchResponse](t, w)
	assert.Equal(t, 0, resp.MinScore)
	assert.Equal(t, 2, resp.Qualified)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "l-1", resp.Results[0].Score.LeadID)
	assert.Greater(t, resp.Results[0].Score.OverallFit, resp.Results[1].Score.OverallFit)
	assert.Len(t, store.leadScores, 2)

	w = doRequest(t, h, http.MethodPost, "/v1/leads/score", body)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[LeadBatchResponse](t, w)
	assert.Equal(t, 70, resp.MinScore)
	assert.False(t, resp.Results[1].Qualified)

	w = doRequest(t, h, http.MethodPost, "/v1/leads/score?min_score=101", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalibrate(t *testing.T) {
	h := newTestServer(t, testServerOptions{})

	w := doRequest(t, h, http.MethodPost, "/v1/calibrate", `{"raw_score": 50}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[CalibrateResponse](t, w)
	assert.InDelta(t, 50.0, resp.CalibratedScore, 1e-9)
	assert.Equal(t, historyNone, resp.HistorySource)

	w = doRequest(t, h, http.MethodPost, "/v1/calibrate", `{"raw_score": 80, "history": [{"overall_score": 82, "actual_success": 100}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[CalibrateResponse](t, w)
	assert.InDelta(t, 84.0, resp.CalibratedScore, 1e-9)
	assert.Equal(t, historyFromRequest, resp.HistorySource)
	assert.Equal(t, 1, resp.HistorySize)
}

func TestMatchOutcomeAndStoredCalibration(t *testing.T) {
	store := newMemoryStore()
	h := newTestServer(t, testServerOptions{store: store})

	w := doRequest(t, h, http.MethodPost, "/v1/match", matchBody)
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[types.MatchResult](t, w)

	w = doRequest(t, h, http.MethodGet, "/v1/matches/"+result.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, result.ID, decode[types.MatchResult](t, w).ID)

	w = doRequest(t, h, http.MethodPost, "/v1/matches/"+result.ID.String()+"/outcome", `{"actual_success": 100}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, h, http.MethodPost, "/v1/calibrate", `{"raw_score": `+jsonNumber(result.OverallScore)+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[CalibrateResponse](t, w)
	assert.Equal(t, historyFromStore, resp.HistorySource)
	assert.Equal(t, 1, resp.HistorySize)
	assert.InDelta(t, 0.8*float64(result.OverallScore)+20, resp.CalibratedScore, 1e-9)
}

func TestMatchLookups_Errors(t *testing.T) {
	h := newTestServer(t, testServerOptions{store: newMemoryStore()})

	assert.Equal(t, http.StatusBadRequest, doRequest(t, h, http.MethodGet, "/v1/matches/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, h, http.MethodGet, "/v1/matches/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusNotFound,
		doRequest(t, h, http.MethodPost, "/v1/matches/"+uuid.NewString()+"/outcome", `{"actual_success": 10}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		doRequest(t, h, http.MethodPost, "/v1/matches/"+uuid.NewString()+"/outcome", `{"actual_success": 200}`).Code)
}

func TestProfiles(t *testing.T) {
	store := newMemoryStore()
	h := newTestServer(t, testServerOptions{store: store})

	w := doRequest(t, h, http.MethodPut, "/v1/profiles/c-9", `{"id": "c-9", "skills": ["go"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, h, http.MethodGet, "/v1/profiles/c-9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"go"}, decode[types.EntityProfile](t, w).Skills)

	assert.Equal(t, http.StatusNotFound, doRequest(t, h, http.MethodGet, "/v1/profiles/none", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, h, http.MethodPut, "/v1/profiles/c-9", `{"id": "other"}`).Code)
	w = doRequest(t, h, http.MethodPut, "/v1/profiles/c-9", `{"description": "go dev"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "id")
	assert.Equal(t, http.StatusBadRequest, doRequest(t, h, http.MethodPut, "/v1/profiles/c-9", `{"id": "  "}`).Code)

	w = doRequest(t, h, http.MethodPut, "/v1/leads/l-9", `{"id": "l-9", "size": "small"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.SizeSmall, store.leads["l-9"].Size)

	w = doRequest(t, h, http.MethodGet, "/v1/leads/l-9", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.SizeSmall, decode[types.LeadProfile](t, w).Size)
	assert.Equal(t, http.StatusNotFound, doRequest(t, h, http.MethodGet, "/v1/leads/none", "").Code)
}

func TestScoreLeads_ByStoredID(t *testing.T) {
	store := newMemoryStore()
	h := newTestServer(t, testServerOptions{store: store})

	w := doRequest(t, h, http.MethodPut, "/v1/leads/acme", `{"id": "acme", "industry": "healthcare", "open_positions": 20}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, h, http.MethodPost, "/v1/leads/score?min_score=0", `{"leads": [{"id": "inline"}], "lead_ids": ["acme"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[LeadBatchResponse](t, w)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "inline", resp.Results[0].Score.LeadID)
	assert.Equal(t, "acme", resp.Results[1].Score.LeadID)
	assert.Len(t, store.leadScores, 2)

	w = doRequest(t, h, http.MethodPost, "/v1/leads/score", `{"lead_ids": ["missing"]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "lead not found: missing")
}

func TestProfiles_WithoutStore(t *testing.T) {
	h := newTestServer(t, testServerOptions{})

	assert.Equal(t, http.StatusServiceUnavailable, doRequest(t, h, http.MethodGet, "/v1/profiles/x", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(t, h, http.MethodPut, "/v1/leads/x", `{"id": "x"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(t, h, http.MethodGet, "/v1/leads/x", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(t, h, http.MethodPost, "/v1/leads/score", `{"lead_ids": ["x"]}`).Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, testServerOptions{rateLimit: &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
	}})

	w := doRequest(t, h, http.MethodGet, "/v1/profiles/x", "")
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = doRequest(t, h, http.MethodGet, "/v1/profiles/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decode[map[string]any](t, w)["error"])

	// Health checks are exempt
	assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/health", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	h := newTestServer(t, testServerOptions{metrics: m})

	require.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/health", "").Code)

	w := doRequest(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fitscore_http_requests_total{method="GET",path="GET /health",status="200"} 1`)
}

func jsonNumber(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}
