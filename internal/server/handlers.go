package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// estimateResult is the body of /estimate.
type estimateResult struct {
	Weight      decimal.Decimal `json:"weight"`
	Reps        int             `json:"reps"`
	OneRepMax   decimal.Decimal `json:"one_rep_max"`
	TrainingMax decimal.Decimal `json:"training_max"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleScheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cycle.WeeklyScheme().Numbered())
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	weight, err := decimal.NewFromString(r.URL.Query().Get("weight"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight parameter must be a number"})
		return
	}
	reps, err := strconv.Atoi(r.URL.Query().Get("reps"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps parameter must be an integer"})
		return
	}

	res, err := estimate(weight, reps)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// estimate computes the one-rep max and training max for one set.
func estimate(weight decimal.Decimal, reps int) (*estimateResult, error) {
	orm, err := cycle.EstimateOneRepMax(weight, reps)
	if err != nil {
		return nil, err
	}
	tm, err := cycle.TrainingMax(orm)
	if err != nil {
		return nil, err
	}
	return &estimateResult{Weight: weight, Reps: reps, OneRepMax: orm, TrainingMax: tm}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps cycle errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cycle.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, cycle.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrStaleBase):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "request_id", requestIDFromContext(r), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pathInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func pathLift(r *http.Request) (cycle.Lift, error) {
	raw := chi.URLParam(r, "lift")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return cycle.ParseLift(raw)
}
