// Package fetch performs the single bounded GET each checker run needs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultMaxBody   = 5 << 20 // 5 MB
	defaultUserAgent = "arcadecheck/1.0"
)

type Client struct {
	HTTP        *http.Client
	UserAgent   string
	MaxBodySize int64
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		HTTP:        &http.Client{Timeout: timeout},
		UserAgent:   defaultUserAgent,
		MaxBodySize: defaultMaxBody,
	}
}

// Get fetches url and returns the body. Any non-200 status is an error;
// there are no retries, a failed run just reports and waits for the next
// tick. Bodies are capped at MaxBodySize.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected http status %d", resp.StatusCode)
	}

	max := c.MaxBodySize
	if max <= 0 {
		max = defaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, max))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
