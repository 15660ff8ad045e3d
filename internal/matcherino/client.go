package matcherino

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	BaseURL   = "https://api.matcherino.com"
	statsPath = "/__api/games/brawlstars/match/stats"

	// cap on how much of an error body ends up in logs
	maxErrorBody = 512
)

var ErrEmptyResponse = errors.New("empty response body")

// Client fetches raw match stats from Matcherino
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// New creates a new Matcherino API client
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:   BaseURL,
		userAgent: "brawl-draft-tracker/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchMatchStats returns the decoded JSON for one bounty/match pair. The
// shape is left untouched; the draft package deals with it.
func (c *Client) FetchMatchStats(ctx context.Context, bountyID, matchID string) (any, error) {
	q := url.Values{}
	q.Set("bountyId", bountyID)
	q.Set("matchIds", matchID)

	return c.fetch(ctx, c.baseURL+statsPath+"?"+q.Encode())
}

// fetch makes an HTTP GET request and returns parsed JSON
func (c *Client) fetch(ctx context.Context, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("matcherino API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyResponse
	}

	var result any
	if err := jsoniter.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result == nil {
		return nil, ErrEmptyResponse
	}

	return result, nil
}
