package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"skillbridge/internal/assessment"
	"skillbridge/internal/generation"
	"skillbridge/internal/resolver"
	"skillbridge/internal/store"
	"skillbridge/pkg/logging"
)

// ResultResolver is the part of resolver.Resolver the handlers use.
type ResultResolver interface {
	Resolve(ctx context.Context, id string) resolver.LookupResult
	Prime(ctx context.Context, a assessment.Assessment) error
}

// Recommender is the part of generation.Service the handlers use.
type Recommender interface {
	GetOrGenerate(ctx context.Context, in generation.Input) (generation.Result, error)
}

// AssessmentHandler serves the /v1/assessments endpoints.
type AssessmentHandler struct {
	Store       store.Store
	Resolver    ResultResolver
	Recommender Recommender
	now         func() time.Time
}

func NewAssessmentHandler(s store.Store, r ResultResolver, rec Recommender) *AssessmentHandler {
	return &AssessmentHandler{
		Store:       s,
		Resolver:    r,
		Recommender: rec,
		now:         time.Now,
	}
}

type createRequest struct {
	RawInput string `json:"rawInput"`
}

type resultResponse struct {
	assessment.Assessment
	Origin resolver.Origin `json:"origin"`
}

type recommendationsRequest struct {
	Role  string `json:"role"`
	Steps int    `json:"steps"`
}

type recommendationsResponse struct {
	generation.RecommendationSet
	Outcome generation.Outcome `json:"outcome"`
}

// Create handles POST /v1/assessments.
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req createRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RawInput) == "" {
		writeError(w, http.StatusBadRequest, "raw_input_required")
		return
	}

	rec, err := h.Store.Create(ctx, req.RawInput)
	if err != nil {
		logger.Error("create_assessment_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_server_error")
		return
	}

	logger.Info("assessment created", zap.String("assessment_id", rec.ID))
	writeJSON(w, http.StatusCreated, rec)
}

// Analyze handles POST /v1/assessments/{id}/analyze. It builds the
// structured artifact from the stored raw input and refreshes the
// resolver cache so a placeholder served earlier is replaced.
func (h *AssessmentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	logger := logging.L(ctx).With(zap.String("assessment_id", id))

	rec, ok := h.record(w, r, id)
	if !ok {
		return
	}

	a := assessment.Analyze(rec.ID, rec.RawInput, h.now())
	if err := h.Store.AttachArtifact(ctx, rec.ID, a); err != nil {
		logger.Error("attach_artifact_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_server_error")
		return
	}
	if err := h.Resolver.Prime(ctx, a); err != nil {
		logger.Warn("result_cache_prime_error", zap.Error(err))
	}

	logger.Info("assessment analyzed",
		zap.Int("skills", len(a.Skills)),
		zap.Int("overall_score", a.OverallScore),
	)
	writeJSON(w, http.StatusOK, a)
}

// Result handles GET /v1/assessments/{id}/result. It never 404s: an
// unknown id gets a placeholder.
func (h *AssessmentHandler) Result(w http.ResponseWriter, r *http.Request) {
	res := h.Resolver.Resolve(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, resultResponse{Assessment: res.Artifact, Origin: res.Origin})
}

// TestResults handles PUT /v1/assessments/{id}/test-results.
func (h *AssessmentHandler) TestResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	logger := logging.L(ctx).With(zap.String("assessment_id", id))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	err = h.Store.AttachSecondary(ctx, id, json.RawMessage(body))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "assessment_not_found")
		return
	case err != nil:
		logger.Error("attach_secondary_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_server_error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Recommendations handles POST /v1/assessments/{id}/recommendations.
func (h *AssessmentHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req recommendationsRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	in := generation.Input{AssessmentID: id, Role: req.Role, Steps: req.Steps}
	if res := h.Resolver.Resolve(ctx, id); res.Artifact.IsRealAssessment {
		in.Assessment = &res.Artifact
	}

	res, err := h.Recommender.GetOrGenerate(ctx, in)
	switch {
	case errors.Is(err, generation.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input")
		return
	case err != nil:
		logging.L(ctx).Error("recommendations_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_server_error")
		return
	}

	writeJSON(w, http.StatusOK, recommendationsResponse{RecommendationSet: res.Set, Outcome: res.Outcome})
}

// record loads id or writes the error response.
func (h *AssessmentHandler) record(w http.ResponseWriter, r *http.Request, id string) (assessment.Record, bool) {
	rec, err := h.Store.GetExact(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "assessment_not_found")
		return rec, false
	case err != nil:
		logging.L(r.Context()).Error("get_assessment_error", zap.String("assessment_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_server_error")
		return rec, false
	}
	return rec, true
}
