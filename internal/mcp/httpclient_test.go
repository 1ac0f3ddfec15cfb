package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/claude/liftcycle/internal/planner"
	"github.com/shopspring/decimal"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"no cycles yet"}`))
}

// TestLatestCycle verifies the cycle JSON is decoded with exact decimals.
func TestLatestCycle(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/cycles/latest": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.Cycle{
				Index:         3,
				TrainingMaxes: cycle.TrainingMaxSet{cycle.Squat: decimal.RequireFromString("152.35")},
				Overrides:     map[cycle.Lift]cycle.Override{cycle.Squat: cycle.Deload()},
			})
		},
	})
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL + "/").LatestCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c.Index != 3 || !c.TrainingMaxes[cycle.Squat].Equal(decimal.RequireFromString("152.35")) {
		t.Errorf("cycle = %+v", c)
	}
	if !c.Overrides[cycle.Squat].IsDeload() {
		t.Error("override should decode as deload")
	}
}

// TestNotFoundMapping verifies a 404 means "no cycle" for lookups and
// ErrNotFound for previews.
func TestNotFoundMapping(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/cycles/latest":  notFound,
		"/api/v1/cycles/7":       notFound,
		"/api/v1/cycles/preview": notFound,
	})
	defer ts.Close()
	client := NewHTTPClient(ts.URL)
	ctx := context.Background()

	if c, err := client.LatestCycle(ctx); c != nil || err != nil {
		t.Errorf("LatestCycle = %v, %v; want nil, nil", c, err)
	}
	if c, err := client.GetCycle(ctx, 7); c != nil || err != nil {
		t.Errorf("GetCycle = %v, %v; want nil, nil", c, err)
	}
	if _, err := client.PreviewCycle(ctx); !errors.Is(err, cycle.ErrNotFound) {
		t.Errorf("PreviewCycle err = %v, want ErrNotFound", err)
	}
}

func TestListCyclesAndPreview(t *testing.T) {
	plan, err := cycle.Generate(cycle.TrainingMaxSet{cycle.Press: decimal.RequireFromString("60")})
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/cycles": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.CycleSummary{{Index: 1}, {Index: 2}})
		},
		"/api/v1/cycles/preview": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, planner.Proposal{FromIndex: 2, Plan: plan})
		},
	})
	defer ts.Close()
	client := NewHTTPClient(ts.URL)

	list, err := client.ListCycles(context.Background())
	if err != nil || len(list) != 2 || list[1].Index != 2 {
		t.Errorf("ListCycles = %+v, %v", list, err)
	}

	prop, err := client.PreviewCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	wp, ok := prop.Plan.Week(3)
	if !ok || len(wp.Sets(cycle.Press)) != cycle.SetsPerWeek {
		t.Fatalf("preview week 3 = %+v", wp)
	}
	if prop.FromIndex != 2 || wp.Sets(cycle.Press)[2].Reps.String() != "1+" {
		t.Errorf("preview = %+v", prop)
	}
}

// TestServerError verifies non-404 failures are reported as errors.
func TestServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/cycles": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()
	if _, err := NewHTTPClient(ts.URL).ListCycles(context.Background()); err == nil {
		t.Error("expected error for 500")
	}
}
