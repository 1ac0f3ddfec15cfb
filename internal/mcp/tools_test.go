package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/claude/liftcycle/internal/planner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
)

// staticSource serves a fixed set of cycles.
type staticSource struct {
	cycles []*models.Cycle
}

func (s staticSource) LatestCycle(context.Context) (*models.Cycle, error) {
	if len(s.cycles) == 0 {
		return nil, nil
	}
	return s.cycles[len(s.cycles)-1], nil
}

func (s staticSource) GetCycle(_ context.Context, index int) (*models.Cycle, error) {
	for _, c := range s.cycles {
		if c.Index == index {
			return c, nil
		}
	}
	return nil, nil
}

func (s staticSource) ListCycles(context.Context) ([]models.CycleSummary, error) {
	var out []models.CycleSummary
	for _, c := range s.cycles {
		out = append(out, c.Summary())
	}
	return out, nil
}

func (s staticSource) PreviewCycle(context.Context) (*planner.Proposal, error) {
	return nil, cycle.ErrNotFound
}

func testHandlers(t *testing.T) *handlers {
	t.Helper()
	plan, err := cycle.Generate(cycle.TrainingMaxSet{cycle.Squat: decimal.RequireFromString("100")})
	if err != nil {
		t.Fatal(err)
	}
	c := &models.Cycle{Index: 1, TrainingMaxes: plan.TrainingMaxes, Weekly: models.WeeklyRows(plan)}
	return &handlers{
		ds:  staticSource{cycles: []*models.Cycle{c}},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestEstimateTrainingMaxTool verifies the estimate tool returns exact values
// and rejects invalid input as a tool error.
func TestEstimateTrainingMaxTool(t *testing.T) {
	h := testHandlers(t)
	tests := []struct {
		name    string
		args    map[string]any
		wantORM string
		wantTM  string
		wantErr bool
	}{
		{name: "decimal string", args: map[string]any{"weight": "102.35", "reps": 3.0}, wantORM: "112.48", wantTM: "101.23"},
		{name: "json number", args: map[string]any{"weight": json.Number("102.35"), "reps": 3.0}, wantORM: "112.48", wantTM: "101.23"},
		{name: "plain number", args: map[string]any{"weight": 100.0, "reps": 5.0}, wantORM: "116.5", wantTM: "104.85"},
		{name: "zero reps", args: map[string]any{"weight": "100", "reps": 0.0}, wantErr: true},
		{name: "missing weight", args: map[string]any{"reps": 3.0}, wantErr: true},
		{name: "weight not a number", args: map[string]any{"weight": "heavy", "reps": 3.0}, wantErr: true},
		{name: "weight of wrong type", args: map[string]any{"weight": true, "reps": 3.0}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.estimateTrainingMax(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantErr {
				if !res.IsError {
					t.Errorf("expected tool error, got %s", resultText(t, res))
				}
				return
			}
			if res.IsError {
				t.Fatalf("tool error: %s", resultText(t, res))
			}
			var out struct {
				OneRepMax   decimal.Decimal `json:"one_rep_max"`
				TrainingMax decimal.Decimal `json:"training_max"`
			}
			if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
				t.Fatal(err)
			}
			if !out.OneRepMax.Equal(decimal.RequireFromString(tt.wantORM)) || !out.TrainingMax.Equal(decimal.RequireFromString(tt.wantTM)) {
				t.Errorf("estimate = %s / %s, want %s / %s", out.OneRepMax, out.TrainingMax, tt.wantORM, tt.wantTM)
			}
		})
	}
}

func TestGetCycleTool(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	res, _ := h.getCycle(ctx, callRequest(map[string]any{"index": 1.0, "week": 3.0}))
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var out struct {
		CycleIndex int            `json:"cycle_index"`
		Week       cycle.WeekPlan `json:"week"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	sets := out.Week.Sets(cycle.Squat)
	if out.Week.Week != 3 || len(sets) != 3 || !sets[2].Weight.Equal(decimal.NewFromInt(95)) {
		t.Errorf("week 3 = %+v", out.Week)
	}

	for _, args := range []map[string]any{
		{"index": 2.0},
		{"index": 1.0, "week": 5.0},
		{},
	} {
		if res, _ := h.getCycle(ctx, callRequest(args)); !res.IsError {
			t.Errorf("args %v: expected tool error", args)
		}
	}
}

func TestPreviewWithoutHistory(t *testing.T) {
	h := testHandlers(t)
	res, err := h.previewNextCycle(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error when nothing to advance from")
	}
}

func TestSchemeResource(t *testing.T) {
	h := testHandlers(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "liftcycle://scheme"
	contents, err := h.scheme(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	var weeks []cycle.SchemeWeek
	if err := json.Unmarshal([]byte(text), &weeks); err != nil {
		t.Fatal(err)
	}
	if len(weeks) != cycle.Weeks || weeks[3].Sets[2].Percentile != 60 {
		t.Errorf("scheme = %+v", weeks)
	}
}

func TestNewRegistersTools(t *testing.T) {
	s := New(testHandlers(t).ds, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if s == nil {
		t.Fatal("New returned nil")
	}
}
