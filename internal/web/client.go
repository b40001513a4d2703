// Package web fetches remote pages on behalf of the web UI, which cannot do so
// itself because of browser CORS rules.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/renflow/renflow-desktop/internal/logging"
)

// Redirect resolution limits
const (
	DefaultRedirectTimeout = 10 * time.Second
	DefaultMaxRedirects    = 100
)

// ErrNotJSON is returned by GetAPI when the response is not JSON
var ErrNotJSON = errors.New("Response is not JSON")

// Client performs the fetch helpers
type Client struct {
	http            *http.Client
	redirectTimeout time.Duration
	maxRedirects    int
	log             *slog.Logger
}

// NewClient creates a client. Zero limits fall back to the defaults.
func NewClient(redirectTimeout time.Duration, maxRedirects int, logger *slog.Logger) *Client {
	if redirectTimeout <= 0 {
		redirectTimeout = DefaultRedirectTimeout
	}
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	return &Client{
		http:            &http.Client{},
		redirectTimeout: redirectTimeout,
		maxRedirects:    maxRedirects,
		log:             logging.Component(logger, "web"),
	}
}

// FinalRedirectURL follows redirects from url and returns where they end.
// After maxRedirects hops the last location reached is returned.
func (c *Client) FinalRedirectURL(ctx context.Context, url string) (string, error) {
	client := &http.Client{
		Transport: c.http.Transport,
		Timeout:   c.redirectTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	resp, err := c.get(ctx, client, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	c.log.Debug("resolved redirect", "from", url, "to", final)
	return final, nil
}

// GetHTML returns the body of url when it is served as text/html, else ""
func (c *Client) GetHTML(ctx context.Context, url string) (string, error) {
	resp, err := c.get(ctx, c.http, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// GetAPI returns the decoded JSON body of url
func (c *Client) GetAPI(ctx context.Context, url string) (any, error) {
	resp, err := c.get(ctx, c.http, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil, ErrNotJSON
	}

	var value any
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return value, nil
}

func (c *Client) get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	return resp, nil
}
