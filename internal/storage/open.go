package storage

import (
	"context"
	"fmt"

	"github.com/claude/liftcycle/internal/config"
	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/shopspring/decimal"
)

// Backend is the repository surface shared by DB and LocalDB.
type Backend interface {
	Seed(ctx context.Context) error
	LiftIncrements(ctx context.Context) (map[cycle.Lift]decimal.Decimal, error)
	ListLiftIncrements(ctx context.Context) ([]models.LiftIncrementRow, error)
	SetLiftIncrement(ctx context.Context, lift cycle.Lift, amount decimal.Decimal) error
	LatestCycle(ctx context.Context) (*models.Cycle, error)
	GetCycle(ctx context.Context, index int) (*models.Cycle, error)
	ListCycles(ctx context.Context) ([]models.CycleSummary, error)
	SaveCycles(ctx context.Context, base int, batch []models.NewCycle) ([]*models.Cycle, error)
	SetCycleOverride(ctx context.Context, index int, lift cycle.Lift, o cycle.Override) error
	RecordReps(ctx context.Context, index, week int, lift cycle.Lift, setNumber, reps int) error
}

var (
	_ Backend = (*DB)(nil)
	_ Backend = (*LocalDB)(nil)
)

// Open connects the configured backend, applies the schema and seeds the
// lifts. For PostgreSQL the migrations in migrationsPath are run first.
// The returned func releases the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, migrationsPath string) (Backend, func(), error) {
	var (
		b       Backend
		closeFn func()
	)
	if cfg.IsSQLite() {
		local, err := OpenLocal(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		b, closeFn = local, func() { local.Close() }
	} else {
		dsn := cfg.DSN()
		if err := RunMigrations(dsn, migrationsPath); err != nil {
			return nil, nil, err
		}
		db, err := New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		b, closeFn = db, db.Close
	}

	if err := b.Seed(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("seeding lifts: %w", err)
	}
	return b, closeFn, nil
}
