package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) scheme(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, cycle.WeeklyScheme().Numbered())
}

func (h *handlers) latestCycle(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	c, err := h.ds.LatestCycle(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.New("no cycles yet")
	}
	return jsonResource(req.Params.URI, c)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
