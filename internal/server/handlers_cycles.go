package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/export"
	"github.com/claude/liftcycle/internal/models"
)

func (s *Server) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := s.store.ListCycles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cycles == nil {
		cycles = []models.CycleSummary{}
	}
	writeJSON(w, http.StatusOK, cycles)
}

func (s *Server) handleLatestCycle(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.LatestCycle(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no cycles yet"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCycle(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePreviewCycle(w http.ResponseWriter, r *http.Request) {
	prop, err := s.planner.Preview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

func (s *Server) handleAdvanceCycle(w http.ResponseWriter, r *http.Request) {
	c, err := s.planner.Advance(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleBootstrapCycle starts a cycle from one observed set per lift:
// {"Squat": {"weight": 100, "reps": 5}, ...}
func (s *Server) handleBootstrapCycle(w http.ResponseWriter, r *http.Request) {
	var body map[string]cycle.Performance
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	perfs := make(map[cycle.Lift]cycle.Performance, len(body))
	for name, p := range body {
		lift, err := cycle.ParseLift(name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		perfs[lift] = p
	}

	c, err := s.planner.Bootstrap(r.Context(), perfs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleWeekCSV(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCycle(w, r)
	if !ok {
		return
	}
	week, ok := pathInt(r, "week")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week"})
		return
	}
	plan, err := c.Plan()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wp, found := plan.Week(week)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("cycle %d has no week %d", c.Index, week)})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cycle_%d_week_%d.csv"`, c.Index, week))
	if err := export.WriteWeekCSV(w, wp); err != nil {
		s.log.Error("writing csv", "cycle_index", c.Index, "week", week, "error", err)
	}
}

func (s *Server) handleCycleXLSX(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCycle(w, r)
	if !ok {
		return
	}
	plan, err := c.Plan()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cycle_%d.xlsx"`, c.Index))
	if err := export.WriteXLSX(w, c.Index, plan); err != nil {
		s.log.Error("writing xlsx", "cycle_index", c.Index, "error", err)
	}
}

// loadCycle resolves the {index} path parameter, writing the error response
// itself when the cycle cannot be returned.
func (s *Server) loadCycle(w http.ResponseWriter, r *http.Request) (*models.Cycle, bool) {
	index, ok := pathInt(r, "index")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cycle index"})
		return nil, false
	}
	c, err := s.store.GetCycle(r.Context(), index)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if c == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("cycle %d not found", index)})
		return nil, false
	}
	return c, true
}
