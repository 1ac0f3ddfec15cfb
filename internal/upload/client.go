package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Client sends maxes dumps to a liftcycle server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the liftcycle server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// importResponse is the server's reply to POST /api/v1/import.
type importResponse struct {
	Created []int  `json:"created"`
	Error   string `json:"error"`
}

// SendDump POSTs a maxes dump to the server's import endpoint and returns
// the indexes of the cycles it created. The server stores a dump atomically,
// so a 5xx it produced means nothing was created and the dump is resent, up
// to 3 attempts with exponential backoff. Failures after which the dump may
// already be stored are final: a connection lost once the request was sent,
// and 502 or 504 from a gateway in front of the server. A 4xx is final too.
func (c *Client) SendDump(ctx context.Context, dump []byte) ([]int, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		created, retry, err := c.post(ctx, dump)
		if err == nil {
			return created, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, dump []byte) (created []int, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/import", bytes.NewReader(dump))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var opErr *net.OpError
		return nil, errors.As(err, &opErr) && opErr.Op == "dial", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var out importResponse
	_ = json.Unmarshal(body, &out)

	switch {
	case resp.StatusCode == http.StatusCreated:
		return out.Created, false, nil
	case resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusGatewayTimeout:
		return nil, false, fmt.Errorf("import outcome unknown (status %d): %s", resp.StatusCode, body)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	default:
		return nil, false, fmt.Errorf("import rejected (status %d): %s", resp.StatusCode, out.Error)
	}
}
