package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/export"
	"github.com/shopspring/decimal"
)

type overrideRequest struct {
	Override *cycle.Override `json:"override"`
}

type repsRequest struct {
	Week int    `json:"week"`
	Lift string `json:"lift"`
	Set  int    `json:"set"`
	Reps int    `json:"reps"`
}

type incrementRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleListIncrements(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListLiftIncrements(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSetIncrement(w http.ResponseWriter, r *http.Request) {
	lift, err := pathLift(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req incrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		return
	}
	if err := cycle.CheckScale(req.Amount); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.SetLiftIncrement(r.Context(), lift, req.Amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("lift increment set", "lift", lift, "amount", req.Amount.String())
	writeJSON(w, http.StatusOK, map[string]any{"lift": lift, "amount": req.Amount})
}

// handleSetOverride records {"override": "deload"} or {"override": 2.5} for
// a lift on a cycle. It applies when the next cycle is derived from it.
func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	index, ok := pathInt(r, "index")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cycle index"})
		return
	}
	lift, err := pathLift(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Override == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "override is required"})
		return
	}

	if err := s.store.SetCycleOverride(r.Context(), index, lift, *req.Override); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("cycle override set", "cycle_index", index, "lift", lift, "override", req.Override.String())
	writeJSON(w, http.StatusOK, map[string]any{"cycle_index": index, "lift": lift, "override": req.Override})
}

func (s *Server) handleRecordReps(w http.ResponseWriter, r *http.Request) {
	index, ok := pathInt(r, "index")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cycle index"})
		return
	}
	var req repsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	lift, err := cycle.ParseLift(req.Lift)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := cycle.CheckSetRef(req.Week, req.Set, req.Reps); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.RecordReps(r.Context(), index, req.Week, lift, req.Set, req.Reps); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cycle_index": index, "week": req.Week, "lift": lift, "set": req.Set, "reps": req.Reps,
	})
}

// handleImportMaxes creates one cycle per entry of a maxes dump. The dump is
// stored atomically, so a failed import leaves no cycles behind and may be
// resent.
func (s *Server) handleImportMaxes(w http.ResponseWriter, r *http.Request) {
	sets, err := export.DecodeMaxes(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.planner.Import(r.Context(), sets)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("importing %d cycles: %w", len(sets), err))
		return
	}
	created := make([]int, 0, len(saved))
	for _, c := range saved {
		created = append(created, c.Index)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": created})
}

// handleExportMaxes returns every cycle's training maxes as a maxes dump.
func (s *Server) handleExportMaxes(w http.ResponseWriter, r *http.Request) {
	cycles, err := s.store.ListCycles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries := make([]export.IndexedMaxes, 0, len(cycles))
	for _, c := range cycles {
		entries = append(entries, export.IndexedMaxes{Index: c.Index, TrainingMaxes: c.TrainingMaxes})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := export.EncodeMaxes(w, entries); err != nil {
		s.log.Error("writing maxes dump", "error", err)
	}
}
