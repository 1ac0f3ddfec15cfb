package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
)

// --- Tool definitions ---

var toolGetWeeklyScheme = mcp.NewTool("get_weekly_scheme",
	mcp.WithDescription("Return the fixed four-week scheme: for each week three sets of (percentile of training max, reps). A trailing '+' means as many reps as possible with that minimum."),
)

var toolEstimateTrainingMax = mcp.NewTool("estimate_training_max",
	mcp.WithDescription("Estimate a one-rep max from one set (weight*reps*0.033 + weight) and the training max (90% of it), both rounded to 2 decimals."),
	mcp.WithString("weight", mcp.Required(), mcp.Description(`Weight lifted as a decimal string, e.g. "102.5"`)),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Reps completed")),
)

var toolGetLatestCycle = mcp.NewTool("get_latest_cycle",
	mcp.WithDescription("Get the most recent cycle: index, start date, training maxes, deltas applied, overrides recorded for the next cycle, and every prescribed set."),
)

var toolGetCycle = mcp.NewTool("get_cycle",
	mcp.WithDescription("Get one cycle by its index, with every prescribed set."),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Cycle index (1 is the first cycle)")),
	mcp.WithNumber("week", mcp.Description("Only return sets of this week (1-4)")),
)

var toolListCycles = mcp.NewTool("list_cycles",
	mcp.WithDescription("List every cycle with its start date and training maxes, oldest first. Useful to see how training maxes progressed."),
)

var toolPreviewNextCycle = mcp.NewTool("preview_next_cycle",
	mcp.WithDescription("Compute the next cycle from the latest one (default increments, manual increments or deloads) without saving it."),
)

// --- Tool handlers ---

func (h *handlers) getWeeklyScheme(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(cycle.WeeklyScheme().Numbered())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// decimalArg reads a required decimal argument. Strings and json.Number are
// parsed as written. A bare JSON number has already been decoded to float64
// by the transport, so its shortest round-trip digits are parsed instead.
func decimalArg(req mcp.CallToolRequest, name string) (decimal.Decimal, error) {
	var raw string
	switch v := req.GetArguments()[name].(type) {
	case string:
		raw = strings.TrimSpace(v)
	case json.Number:
		raw = v.String()
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return decimal.Zero, fmt.Errorf("%s parameter is required", name)
	default:
		return decimal.Zero, fmt.Errorf("%s must be a decimal string, got %T", name, v)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %q is not a decimal number", name, raw)
	}
	return d, nil
}

func (h *handlers) estimateTrainingMax(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, err := decimalArg(req, "weight")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}

	orm, err := cycle.EstimateOneRepMax(w, reps)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tm, err := cycle.TrainingMax(orm)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"weight":       w,
		"reps":         reps,
		"one_rep_max":  orm,
		"training_max": tm,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLatestCycle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c, err := h.ds.LatestCycle(ctx)
	if err != nil {
		h.log.Error("mcp get_latest_cycle", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if c == nil {
		return mcp.NewToolResultError("no cycles yet"), nil
	}

	result, err := mcp.NewToolResultJSON(c)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCycle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("index parameter is required"), nil
	}
	week := req.GetInt("week", 0)
	if week < 0 || week > cycle.Weeks {
		return mcp.NewToolResultError(fmt.Sprintf("week must be between 1 and %d", cycle.Weeks)), nil
	}

	c, err := h.ds.GetCycle(ctx, index)
	if err != nil {
		h.log.Error("mcp get_cycle", "cycle_index", index, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if c == nil {
		return mcp.NewToolResultError(fmt.Sprintf("cycle %d not found", index)), nil
	}

	var payload any = c
	if week > 0 {
		plan, err := c.Plan()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		wp, ok := plan.Week(week)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("cycle %d has no week %d", index, week)), nil
		}
		payload = map[string]any{"cycle_index": c.Index, "week": wp}
	}

	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listCycles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cycles, err := h.ds.ListCycles(ctx)
	if err != nil {
		h.log.Error("mcp list_cycles", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"cycles": cycles, "count": len(cycles)})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewNextCycle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prop, err := h.ds.PreviewCycle(ctx)
	if errors.Is(err, cycle.ErrNotFound) {
		return mcp.NewToolResultError("no cycle to advance from; bootstrap a first cycle instead"), nil
	}
	if err != nil {
		h.log.Error("mcp preview_next_cycle", "error", err)
		return mcp.NewToolResultError("preview failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(prop)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
