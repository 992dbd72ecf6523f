package drill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client and retries requests the service throttles.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any) (int, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		status, data, err := c.once(ctx, method, path, payload)
		if err != nil {
			return 0, err
		}
		if status == StatusTooManyRequests && attempt < maxRetries {
			select {
			case <-ctx.Done():
				return status, ctx.Err()
			case <-time.After(retryDelay):
			}
			continue
		}
		if out != nil && len(data) > 0 && status < 300 {
			if err := json.Unmarshal(data, out); err != nil {
				return status, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
			}
		}
		return status, nil
	}
}

func (c *HTTPClient) once(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var r io.Reader
	if payload != nil {
		r = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
