package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claim-router/internal/extract"
	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/monitoring"
	"github.com/sells-group/claim-router/internal/store"
)

// errorBody mirrors the {"detail": ...} error shape clients already parse.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": WelcomeMessage,
		"endpoints": map[string]string{
			"submit_claim":       "/submit-claim",
			"adjuster_dashboard": "/adjuster-dashboard",
			"get_claim":          "/claim/{claim_id}",
			"stats":              "/stats",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	var in model.ClaimInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decision, err := s.pipeline.Submit(r.Context(), in)
	switch {
	case errors.Is(err, extract.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, extract.ErrInvalidInput.Error())
		return
	case err != nil:
		zap.L().Error("api: submit claim failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "An error occurred while routing the claim")
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	offset, err := intParam(q.Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	all, err := s.store.ListDecisions(r.Context(), store.DecisionFilter{})
	if err != nil {
		zap.L().Error("api: list decisions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "An error occurred while listing claims")
		return
	}

	// A re-routed claim shows up only under its latest team.
	team := q.Get("team")
	out := []model.DecisionRecord{}
	for _, d := range monitoring.Latest(all) {
		if team == "" || d.AssignedTeam == team {
			out = append(out, d)
		}
	}
	writeJSON(w, http.StatusOK, page(out, limit, offset))
}

func page(decs []model.DecisionRecord, limit, offset int) []model.DecisionRecord {
	if offset >= len(decs) {
		return []model.DecisionRecord{}
	}
	decs = decs[offset:]
	if limit > 0 && limit < len(decs) {
		decs = decs[:limit]
	}
	return decs
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, eris.Errorf("api: invalid integer %q", raw)
	}
	return n, nil
}

func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claimID")

	decision, err := s.store.GetDecision(r.Context(), claimID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Claim with ID %s not found", claimID))
		return
	case err != nil:
		zap.L().Error("api: get decision failed", zap.String("claim_id", claimID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "An error occurred while loading the claim")
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Collect(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		zap.L().Error("api: collect stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "An error occurred while collecting stats")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
