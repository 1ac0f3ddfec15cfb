package mcp

import (
	"context"

	"github.com/claude/liftcycle/internal/models"
	"github.com/claude/liftcycle/internal/planner"
)

// DataSource abstracts the data layer for MCP tools. Both StoreSource (local)
// and HTTPClient (remote via REST API) satisfy this interface.
//
// LatestCycle and GetCycle return nil, nil when the cycle does not exist.
type DataSource interface {
	LatestCycle(ctx context.Context) (*models.Cycle, error)
	GetCycle(ctx context.Context, index int) (*models.Cycle, error)
	ListCycles(ctx context.Context) ([]models.CycleSummary, error)
	PreviewCycle(ctx context.Context) (*planner.Proposal, error)
}

// CycleReader is the store side of StoreSource.
type CycleReader interface {
	LatestCycle(ctx context.Context) (*models.Cycle, error)
	GetCycle(ctx context.Context, index int) (*models.Cycle, error)
	ListCycles(ctx context.Context) ([]models.CycleSummary, error)
}

// StoreSource serves MCP tools straight from a store and planner in the
// same process.
type StoreSource struct {
	CycleReader
	Planner *planner.Planner
}

// PreviewCycle computes the next cycle without saving it.
func (s StoreSource) PreviewCycle(ctx context.Context) (*planner.Proposal, error) {
	return s.Planner.Preview(ctx)
}

// Compile-time checks.
var (
	_ DataSource = StoreSource{}
	_ DataSource = (*HTTPClient)(nil)
)
