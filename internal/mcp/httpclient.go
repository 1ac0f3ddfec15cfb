package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftcycle/internal/cycle"
	"github.com/claude/liftcycle/internal/models"
	"github.com/claude/liftcycle/internal/planner"
)

// HTTPClient implements DataSource by calling the liftcycle REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// errNotFound marks a 404 from the API.
var errNotFound = errors.New("httpclient: not found")

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s: %s", errNotFound, path, body)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) getCycle(ctx context.Context, path string) (*models.Cycle, error) {
	body, err := c.get(ctx, path)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cy models.Cycle
	if err := json.Unmarshal(body, &cy); err != nil {
		return nil, fmt.Errorf("httpclient: decode cycle: %w", err)
	}
	return &cy, nil
}

func (c *HTTPClient) LatestCycle(ctx context.Context) (*models.Cycle, error) {
	return c.getCycle(ctx, "/api/v1/cycles/latest")
}

func (c *HTTPClient) GetCycle(ctx context.Context, index int) (*models.Cycle, error) {
	return c.getCycle(ctx, "/api/v1/cycles/"+strconv.Itoa(index))
}

func (c *HTTPClient) ListCycles(ctx context.Context) ([]models.CycleSummary, error) {
	body, err := c.get(ctx, "/api/v1/cycles")
	if err != nil {
		return nil, err
	}

	var cycles []models.CycleSummary
	if err := json.Unmarshal(body, &cycles); err != nil {
		return nil, fmt.Errorf("httpclient: decode cycles: %w", err)
	}
	return cycles, nil
}

func (c *HTTPClient) PreviewCycle(ctx context.Context) (*planner.Proposal, error) {
	body, err := c.get(ctx, "/api/v1/cycles/preview")
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: %v", cycle.ErrNotFound, err)
	}
	if err != nil {
		return nil, err
	}

	var prop planner.Proposal
	if err := json.Unmarshal(body, &prop); err != nil {
		return nil, fmt.Errorf("httpclient: decode preview: %w", err)
	}
	return &prop, nil
}
