package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/claude/liftcycle/internal/planner"
	"github.com/claude/liftcycle/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Store is the read and administration side of the cycle history.
type Store interface {
	LatestCycle(ctx context.Context) (*models.Cycle, error)
	GetCycle(ctx context.Context, index int) (*models.Cycle, error)
	ListCycles(ctx context.Context) ([]models.CycleSummary, error)
	ListLiftIncrements(ctx context.Context) ([]models.LiftIncrementRow, error)
	SetLiftIncrement(ctx context.Context, lift cycle.Lift, amount decimal.Decimal) error
	SetCycleOverride(ctx context.Context, index int, lift cycle.Lift, o cycle.Override) error
	RecordReps(ctx context.Context, index, week int, lift cycle.Lift, setNumber, reps int) error
}

var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*storage.LocalDB)(nil)
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   Store
	planner *planner.Planner
	log     *slog.Logger
	apiKey  string
	whois   WhoIsClient
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, pl *planner.Planner, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		planner: pl,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read endpoints (no auth; tsnet handles access)
		r.Get("/me", s.handleMe)
		r.Get("/scheme", s.handleScheme)
		r.Get("/estimate", s.handleEstimate)
		r.Get("/increments", s.handleListIncrements)
		r.Get("/export", s.handleExportMaxes)
		r.Get("/cycles", s.handleListCycles)
		r.Get("/cycles/latest", s.handleLatestCycle)
		r.Get("/cycles/preview", s.handlePreviewCycle)
		r.Get("/cycles/{index}", s.handleGetCycle)
		r.Get("/cycles/{index}/weeks/{week}/csv", s.handleWeekCSV)
		r.Get("/cycles/{index}/xlsx", s.handleCycleXLSX)

		// Write endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/cycles/advance", s.handleAdvanceCycle)
			r.Post("/cycles/bootstrap", s.handleBootstrapCycle)
			r.Post("/import", s.handleImportMaxes)
			r.Put("/cycles/{index}/overrides/{lift}", s.handleSetOverride)
			r.Put("/cycles/{index}/reps", s.handleRecordReps)
			r.Put("/increments/{lift}", s.handleSetIncrement)
		})
	})
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp behind the API key.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", h)
}

// SetTailscale enables per-request identity lookups against the tailnet.
func (s *Server) SetTailscale(wc WhoIsClient) {
	s.whois = wc
}
