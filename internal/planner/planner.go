// Package planner wires the cycle computations to a store. It owns the
// read-latest, compute, save sequence so that two progression runs against
// the same history never interleave. Within a process the sequence is
// serialized by a mutex; across processes the store refuses a save whose
// base is no longer the latest cycle.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/claude/liftcycle/internal/storage"
	"github.com/shopspring/decimal"
)

// Store is the persistence the planner needs.
type Store interface {
	LatestCycle(ctx context.Context) (*models.Cycle, error)
	LiftIncrements(ctx context.Context) (map[cycle.Lift]decimal.Decimal, error)
	SaveCycles(ctx context.Context, base int, batch []models.NewCycle) ([]*models.Cycle, error)
}

var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*storage.LocalDB)(nil)
)

// Proposal is a computed but unsaved next cycle.
type Proposal struct {
	FromIndex int                            `json:"from_index"`
	Plan      cycle.CyclePlan                `json:"plan"`
	Deltas    map[cycle.Lift]decimal.Decimal `json:"deltas"`
}

// Planner runs progression and bootstrap against a Store.
type Planner struct {
	store  Store
	logger *slog.Logger

	mu sync.Mutex
}

// New creates a Planner.
func New(store Store, logger *slog.Logger) *Planner {
	return &Planner{store: store, logger: logger}
}

// Preview computes the cycle that Advance would save, without saving it.
func (p *Planner) Preview(ctx context.Context) (*Proposal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.propose(ctx)
}

// Advance derives the next cycle from the latest stored one and saves it.
// It fails with cycle.ErrNotFound when there is no cycle to advance from;
// callers then fall back to Bootstrap. If another writer stored a cycle
// after the latest one was read, the save fails with storage.ErrStaleBase.
func (p *Planner) Advance(ctx context.Context) (*models.Cycle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prop, err := p.propose(ctx)
	if err != nil {
		return nil, err
	}
	saved, err := p.save(ctx, prop.FromIndex, models.NewCycle{Plan: prop.Plan, Deltas: prop.Deltas})
	if err != nil {
		return nil, err
	}
	c := saved[0]
	p.logger.Info("cycle advanced",
		"from_index", prop.FromIndex, "cycle_index", c.Index, "lifts", len(prop.Plan.TrainingMaxes))
	return c, nil
}

// Bootstrap estimates training maxes from one observed set per lift and
// saves the resulting cycle.
func (p *Planner) Bootstrap(ctx context.Context, perfs map[cycle.Lift]cycle.Performance) (*models.Cycle, error) {
	maxes, err := cycle.TrainingMaxes(perfs)
	if err != nil {
		return nil, err
	}
	return p.Start(ctx, maxes)
}

// Start saves a cycle generated directly from maxes.
func (p *Planner) Start(ctx context.Context, maxes cycle.TrainingMaxSet) (*models.Cycle, error) {
	plan, err := cycle.Generate(maxes)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	saved, err := p.save(ctx, storage.AnyBase, models.NewCycle{Plan: plan})
	if err != nil {
		return nil, err
	}
	c := saved[0]
	p.logger.Info("cycle started", "cycle_index", c.Index, "lifts", len(maxes))
	return c, nil
}

// Import saves one cycle per training max set, in order, after the latest
// stored cycle. Every set is validated before anything is written and the
// batch is stored atomically: either all cycles are saved or none are.
func (p *Planner) Import(ctx context.Context, sets []cycle.TrainingMaxSet) ([]*models.Cycle, error) {
	batch := make([]models.NewCycle, 0, len(sets))
	for i, maxes := range sets {
		plan, err := cycle.Generate(maxes)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		batch = append(batch, models.NewCycle{Plan: plan})
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	saved, err := p.save(ctx, storage.AnyBase, batch...)
	if err != nil {
		return nil, err
	}
	p.logger.Info("cycles imported", "count", len(saved))
	return saved, nil
}

func (p *Planner) propose(ctx context.Context) (*Proposal, error) {
	latest, err := p.store.LatestCycle(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading latest cycle: %w", cycle.ErrPersistence, err)
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: no previous cycle to advance from", cycle.ErrNotFound)
	}

	defaults, err := p.store.LiftIncrements(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading lift increments: %w", cycle.ErrPersistence, err)
	}

	next, deltas, err := cycle.Advance(latest.TrainingMaxes, latest.Overrides, defaults)
	if err != nil {
		return nil, fmt.Errorf("advancing cycle %d: %w", latest.Index, err)
	}
	plan, err := cycle.Generate(next)
	if err != nil {
		return nil, fmt.Errorf("generating cycle after %d: %w", latest.Index, err)
	}
	return &Proposal{FromIndex: latest.Index, Plan: plan, Deltas: deltas}, nil
}

// save must be called with p.mu held.
func (p *Planner) save(ctx context.Context, base int, batch ...models.NewCycle) ([]*models.Cycle, error) {
	for i, nc := range batch {
		finalMissing, err := nc.Plan.CheckComplete()
		if err != nil {
			if len(batch) > 1 {
				return nil, fmt.Errorf("entry %d: %w", i+1, err)
			}
			return nil, err
		}
		if finalMissing {
			p.logger.Warn("saving cycle without final week", "week", cycle.Weeks)
		}
	}

	saved, err := p.store.SaveCycles(ctx, base, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: saving cycle: %w", cycle.ErrPersistence, err)
	}
	return saved, nil
}
