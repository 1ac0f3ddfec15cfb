package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("liftcycle", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("liftcycle 5/3/1 training server. Look up the weekly scheme, estimate training maxes, read stored cycles with their prescribed sets, and preview the next cycle. Weights are exact decimals encoded as strings."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWeeklyScheme, Handler: h.getWeeklyScheme},
		server.ServerTool{Tool: toolEstimateTrainingMax, Handler: h.estimateTrainingMax},
		server.ServerTool{Tool: toolGetLatestCycle, Handler: h.getLatestCycle},
		server.ServerTool{Tool: toolGetCycle, Handler: h.getCycle},
		server.ServerTool{Tool: toolListCycles, Handler: h.listCycles},
		server.ServerTool{Tool: toolPreviewNextCycle, Handler: h.previewNextCycle},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resScheme, Handler: h.scheme},
		server.ServerResource{Resource: resLatestCycle, Handler: h.latestCycle},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resScheme = mcp.NewResource(
	"liftcycle://scheme",
	"Weekly Scheme",
	mcp.WithResourceDescription("The four-week 5/3/1 table of percentiles and rep schemes"),
	mcp.WithMIMEType("application/json"),
)

var resLatestCycle = mcp.NewResource(
	"liftcycle://latest_cycle",
	"Latest Cycle",
	mcp.WithResourceDescription("The most recent cycle with its training maxes and prescribed sets"),
	mcp.WithMIMEType("application/json"),
)
