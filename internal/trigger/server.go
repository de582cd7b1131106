package trigger

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sourceplane/gateci/internal/model"
	"github.com/sourceplane/gateci/internal/report"
)

// triggerRequest is the body of POST /api/v1/runs.
type triggerRequest struct {
	ChangeRef string `json:"change_ref"`
}

// triggerResponse acknowledges an accepted trigger.
type triggerResponse struct {
	RunID  string `json:"run_id"`
	Cached bool   `json:"cached"`
}

// verdictResponse is the gate result consumed by the review system.
type verdictResponse struct {
	RunID   string        `json:"run_id"`
	Verdict model.Verdict `json:"verdict"`
}

// Handler returns the HTTP surface of the trigger service.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", s.handleTrigger)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Get("/runs/{runID}/verdict", s.handleGetVerdict)
	})

	return r
}

// POST /api/v1/runs -> start (or deduplicate) a run for a proposed change
func (s *Service) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ChangeRef == "" {
		http.Error(w, "change_ref is required", http.StatusBadRequest)
		return
	}

	runID, cached := s.OnChangeProposed(req.ChangeRef)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(triggerResponse{RunID: runID, Cached: cached})
}

// GET /api/v1/runs/{runID} -> full per-job report once the run completed
func (s *Service) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, completed, found := s.Get(runID)
	if !found {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !completed {
		// The run is still mutating; only its identity is safe to report.
		json.NewEncoder(w).Encode(verdictResponse{RunID: runID, Verdict: model.VerdictPending})
		return
	}

	data, err := report.RenderJSON(run)
	if err != nil {
		http.Error(w, "failed to render run", http.StatusInternalServerError)
		return
	}
	w.Write(data)
}

// GET /api/v1/runs/{runID}/verdict -> the pass/fail gate for the reviewer
func (s *Service) handleGetVerdict(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, completed, found := s.Get(runID)
	if !found {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if !completed {
		http.Error(w, "run still in progress", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(verdictResponse{RunID: run.ID, Verdict: run.Verdict})
}
