package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/fitscore/internal/db"
	"github.com/jonathan/fitscore/internal/engine"
	"github.com/jonathan/fitscore/internal/schemas"
	"github.com/jonathan/fitscore/internal/types"
	schemafiles "github.com/jonathan/fitscore/schemas"
)

// MatchRequest is the body of POST /v1/match. Each side is either inline or a stored profile id.
type MatchRequest struct {
	Candidate     *types.EntityProfile     `json:"candidate,omitempty"`
	Opportunity   *types.EntityProfile     `json:"opportunity,omitempty"`
	CandidateID   string                   `json:"candidate_id,omitempty"`
	OpportunityID string                   `json:"opportunity_id,omitempty"`
	History       []types.HistoricalRecord `json:"history,omitempty"`
}

// BatchRequest is the body of POST /v1/match/batch
type BatchRequest struct {
	Mode  types.Mode        `json:"mode,omitempty"`
	Pairs []types.MatchPair `json:"pairs"`
}

// BatchResultItem is one entry of a batch response, aligned with the request's pairs
type BatchResultItem struct {
	Index  int                `json:"index"`
	Result *types.MatchResult `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// BatchResponse is the response of POST /v1/match/batch
type BatchResponse struct {
	Results   []BatchResultItem `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// LeadBatchRequest is the body of POST /v1/leads/score. Leads are inline, stored ids, or both.
type LeadBatchRequest struct {
	Leads   []types.LeadProfile `json:"leads,omitempty"`
	LeadIDs []string            `json:"lead_ids,omitempty"`
}

// LeadSource loads stored leads by id
type LeadSource interface {
	GetLead(ctx context.Context, id string) (*types.LeadProfile, error)
}

// Resolve returns the inline leads followed by the stored leads named in LeadIDs.
// src may be nil when no ids are given.
func (req LeadBatchRequest) Resolve(ctx context.Context, src LeadSource) ([]types.LeadProfile, error) {
	leads := make([]types.LeadProfile, 0, len(req.Leads)+len(req.LeadIDs))
	leads = append(leads, req.Leads...)
	if len(req.LeadIDs) == 0 {
		return leads, nil
	}
	if src == nil {
		return nil, &ErrStoreUnavailable{}
	}
	for _, id := range req.LeadIDs {
		l, err := src.GetLead(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load lead %s: %w", id, err)
		}
		if l == nil {
			return nil, &ErrNotFound{Resource: "lead", ID: id}
		}
		leads = append(leads, *l)
	}
	return leads, nil
}

// LeadResult pairs a lead score with the threshold decision
type LeadResult struct {
	Score     *types.LeadScore `json:"score"`
	Qualified bool             `json:"qualified"`
}

// LeadBatchResponse is the response of POST /v1/leads/score
type LeadBatchResponse struct {
	MinScore  int          `json:"min_score"`
	Qualified int          `json:"qualified"`
	Results   []LeadResult `json:"results"`
}

// CalibrateRequest is the body of POST /v1/calibrate. Without history, stored outcomes are used.
type CalibrateRequest struct {
	RawScore float64                  `json:"raw_score"`
	History  []types.HistoricalRecord `json:"history"`
}

// CalibrateResponse is the response of POST /v1/calibrate
type CalibrateResponse struct {
	RawScore        float64 `json:"raw_score"`
	CalibratedScore float64 `json:"calibrated_score"`
	HistorySize     int     `json:"history_size"`
	HistorySource   string  `json:"history_source"`
}

// OutcomeRequest is the body of POST /v1/matches/{id}/outcome
type OutcomeRequest struct {
	ActualSuccess float64 `json:"actual_success"`
}

// History sources reported by the calibrate endpoint
const (
	historyFromRequest = "request"
	historyFromStore   = "stored"
	historyNone        = "none"
)

// decodeBody reads the request body, validates it against the named schema and decodes it into v
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, schemaName string, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)}
		}
		return &ErrValidation{Field: "body", Message: "failed to read request body"}
	}
	if len(body) == 0 {
		return &ErrValidation{Field: "body", Message: "request body is required"}
	}
	if !json.Valid(body) {
		return &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := schemas.Validate(schemaName, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleMatch scores one pair
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := s.decodeBody(w, r, schemafiles.MatchRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := r.Context()
	candidate, err := s.resolveProfile(ctx, req.Candidate, req.CandidateID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opportunity, err := s.resolveProfile(ctx, req.Opportunity, req.OpportunityID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	mode := types.ParseMode(r.URL.Query().Get("mode"))
	result, err := s.engine.Score(ctx, mode, candidate, opportunity, req.History)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.saveMatchResult(ctx, result)

	s.jsonResponse(w, http.StatusOK, result)
}

// handleMatchBatch scores many pairs concurrently; one failing pair does not fail the request
func (s *Server) handleMatchBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := s.decodeBody(w, r, schemafiles.BatchRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if s.maxBatchSize > 0 && len(req.Pairs) > s.maxBatchSize {
		s.fail(w, r, &ErrValidation{Field: "pairs", Message: fmt.Sprintf("at most %d pairs per batch", s.maxBatchSize)})
		return
	}

	mode := req.Mode
	if q := r.URL.Query().Get("mode"); q != "" {
		mode = types.Mode(q)
	}

	ctx := r.Context()
	items := s.engine.ScoreBatch(ctx, req.Pairs, types.ParseMode(string(mode)))
	for _, item := range items {
		s.saveMatchResult(ctx, item.Result)
	}

	s.jsonResponse(w, http.StatusOK, NewBatchResponse(items))
}

// NewBatchResponse converts engine batch items to the wire format
func NewBatchResponse(items []engine.BatchItem) BatchResponse {
	resp := BatchResponse{Results: make([]BatchResultItem, len(items))}
	for i, item := range items {
		resp.Results[i] = BatchResultItem{Index: item.Index, Result: item.Result}
		if item.Err != nil {
			resp.Results[i].Result = nil
			resp.Results[i].Error = errorMessage(item.Err)
			resp.Failed++
			continue
		}
		resp.Succeeded++
	}
	return resp
}

// handleScoreLeads scores leads and applies the qualification threshold
func (s *Server) handleScoreLeads(w http.ResponseWriter, r *http.Request) {
	minScore := s.leadMinScore
	if q := r.URL.Query().Get("min_score"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 0 || v > 100 {
			s.fail(w, r, &ErrValidation{Field: "min_score", Message: "must be an integer between 0 and 100"})
			return
		}
		minScore = v
	}

	var req LeadBatchRequest
	if err := s.decodeBody(w, r, schemafiles.LeadBatch, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := r.Context()
	var src LeadSource
	if s.store != nil {
		src = s.store
	}
	leads, err := req.Resolve(ctx, src)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	scores := make([]*types.LeadScore, 0, len(leads))
	for i := range leads {
		score, err := s.engine.ScoreLead(ctx, &leads[i])
		if err != nil {
			s.fail(w, r, fmt.Errorf("lead %d: %w", i, err))
			return
		}
		scores = append(scores, score)

		if s.store != nil {
			if err := s.store.SaveLeadScore(ctx, score); err != nil {
				s.logger.Warn("failed to persist lead score", zap.String("lead_id", score.LeadID), zap.Error(err))
			}
		}
	}

	s.jsonResponse(w, http.StatusOK, NewLeadBatchResponse(scores, minScore))
}

// NewLeadBatchResponse applies the qualification threshold to scored leads
func NewLeadBatchResponse(scores []*types.LeadScore, minScore int) LeadBatchResponse {
	resp := LeadBatchResponse{MinScore: minScore, Results: make([]LeadResult, 0, len(scores))}
	for _, score := range scores {
		qualified := score.OverallFit >= minScore
		if qualified {
			resp.Qualified++
		}
		resp.Results = append(resp.Results, LeadResult{Score: score, Qualified: qualified})
	}
	return resp
}

// handleCalibrate adjusts a raw score against supplied or stored history
func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req CalibrateRequest
	if err := s.decodeBody(w, r, schemafiles.CalibrateRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	history, source := req.History, historyFromRequest
	if req.History == nil {
		source = historyNone
		if s.store != nil {
			stored, err := s.store.CalibrationHistory(r.Context(), db.DefaultHistoryLimit)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			history, source = stored, historyFromStore
		}
	}

	s.jsonResponse(w, http.StatusOK, CalibrateResponse{
		RawScore:        req.RawScore,
		CalibratedScore: s.engine.Calibrate(req.RawScore, history),
		HistorySize:     len(history),
		HistorySource:   source,
	})
}

// handleGetMatch returns a stored match result
func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.store == nil {
		s.fail(w, r, &ErrStoreUnavailable{})
		return
	}

	result, err := s.store.GetMatchResult(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if result == nil {
		s.fail(w, r, &ErrNotFound{Resource: "match result", ID: id.String()})
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleRecordOutcome stores the observed success of a past match
func (s *Server) handleRecordOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.store == nil {
		s.fail(w, r, &ErrStoreUnavailable{})
		return
	}

	var req OutcomeRequest
	if err := s.decodeBody(w, r, schemafiles.OutcomeRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	found, err := s.store.RecordOutcome(r.Context(), id, req.ActualSuccess)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !found {
		s.fail(w, r, &ErrNotFound{Resource: "match result", ID: id.String()})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"id":             id,
		"actual_success": req.ActualSuccess,
		"status":         "recorded",
	})
}

// handlePutProfile creates or replaces a stored profile
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, &ErrStoreUnavailable{})
		return
	}

	var profile types.EntityProfile
	if err := s.decodeBody(w, r, schemafiles.EntityProfile, &profile); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := matchPathID(r, profile.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := profile.Validate(); err != nil {
		s.fail(w, r, &ErrValidation{Field: "profile", Message: err.Error()})
		return
	}

	if err := s.store.SaveProfile(r.Context(), &profile); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, &profile)
}

// handleGetProfile returns a stored profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, &ErrStoreUnavailable{})
		return
	}

	id := r.PathValue("id")
	profile, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if profile == nil {
		s.fail(w, r, &ErrNotFound{Resource: "profile", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handlePutLead creates or replaces a stored lead
func (s *Server) handlePutLead(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, &ErrStoreUnavailable{})
		return
	}

	var l types.LeadProfile
	if err := s.decodeBody(w, r, schemafiles.LeadProfile, &l); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := matchPathID(r, l.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := l.Validate(); err != nil {
		s.fail(w, r, &ErrValidation{Field: "lead", Message: err.Error()})
		return
	}

	if err := s.store.SaveLead(r.Context(), &l); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, &l)
}

// handleGetLead returns a stored lead
func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.fail(w, r, &ErrStoreUnavailable{})
		return
	}

	id := r.PathValue("id")
	l, err := s.store.GetLead(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if l == nil {
		s.fail(w, r, &ErrNotFound{Resource: "lead", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, l)
}

// resolveProfile returns the inline profile, or loads the stored one by id
func (s *Server) resolveProfile(ctx context.Context, inline *types.EntityProfile, id string) (*types.EntityProfile, error) {
	if inline != nil {
		return inline, nil
	}
	if s.store == nil {
		return nil, &ErrStoreUnavailable{}
	}
	profile, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &ErrNotFound{Resource: "profile", ID: id}
	}
	return profile, nil
}

// saveMatchResult persists a result when a store is configured. Failures are logged only.
func (s *Server) saveMatchResult(ctx context.Context, result *types.MatchResult) {
	if s.store == nil || result == nil {
		return
	}
	if err := s.store.SaveMatchResult(ctx, result); err != nil {
		s.logger.Warn("failed to persist match result", zap.Stringer("id", result.ID), zap.Error(err))
	}
}

func pathUUID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// matchPathID rejects a body id that differs from the path id
func matchPathID(r *http.Request, bodyID string) error {
	if bodyID != r.PathValue("id") {
		return &ErrValidation{Field: "id", Message: "body id does not match path"}
	}
	return nil
}
