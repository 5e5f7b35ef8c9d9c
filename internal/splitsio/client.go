// Package splitsio is a read-only client for the splits.io v4 API.
package splitsio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://splits.io/api/v4"

// ErrNotFound is returned when splits.io answers 404.
var ErrNotFound = errors.New("not found on splits.io")

// Client talks to splits.io.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a splits.io client.
// baseURL is used for testing; pass empty string to use the real API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// GetRun fetches a run with its segments. historic adds attempt histories.
func (c *Client) GetRun(ctx context.Context, id string, historic bool) (Run, error) {
	endpoint := "/runs/" + url.PathEscape(id)
	if historic {
		endpoint += "?historic=1"
	}
	var result struct {
		Run Run `json:"run"`
	}
	if err := c.get(ctx, endpoint, &result); err != nil {
		return Run{}, err
	}
	return result.Run, nil
}

// RunnerPBs lists the personal-best runs of a runner.
func (c *Client) RunnerPBs(ctx context.Context, name string) ([]Run, error) {
	var result struct {
		PBs []Run `json:"pbs"`
	}
	if err := c.get(ctx, "/runners/"+url.PathEscape(name)+"/pbs", &result); err != nil {
		return nil, err
	}
	return result.PBs, nil
}

// RunnerRuns lists every run uploaded by a runner.
func (c *Client) RunnerRuns(ctx context.Context, name string) ([]Run, error) {
	var result struct {
		Runs []Run `json:"runs"`
	}
	if err := c.get(ctx, "/runners/"+url.PathEscape(name)+"/runs", &result); err != nil {
		return nil, err
	}
	return result.Runs, nil
}

// SearchGames finds games by name or shortname.
func (c *Client) SearchGames(ctx context.Context, query string) ([]Game, error) {
	var result struct {
		Games []Game `json:"games"`
	}
	if err := c.get(ctx, "/games?search="+url.QueryEscape(query), &result); err != nil {
		return nil, err
	}
	return result.Games, nil
}

// GameCategories lists the categories of a game by its shortname.
func (c *Client) GameCategories(ctx context.Context, shortname string) ([]Category, error) {
	var result struct {
		Categories []Category `json:"categories"`
	}
	if err := c.get(ctx, "/games/"+url.PathEscape(shortname)+"/categories", &result); err != nil {
		return nil, err
	}
	return result.Categories, nil
}

func (c *Client) get(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("splits.io API error: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
