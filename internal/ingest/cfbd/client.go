package cfbd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// BaseURL is the production College Football Data API host.
const BaseURL = "https://api.collegefootballdata.com"

// Client handles College Football Data API requests.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client with a custom base URL. An empty apiKey sends
// unauthenticated requests, which the API rate-limits aggressively.
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Games fetches all games for a season. seasonType is "regular",
// "postseason" or "both"; empty fetches the API default (regular).
func (c *Client) Games(ctx context.Context, year int, seasonType string) ([]Game, error) {
	query := url.Values{"year": {fmt.Sprintf("%d", year)}}
	if seasonType != "" {
		query.Set("seasonType", seasonType)
	}

	var games []Game
	if err := c.get(ctx, "/games", query, &games); err != nil {
		return nil, fmt.Errorf("fetching games for %d: %w", year, err)
	}
	return games, nil
}

// Teams fetches all FBS teams for a season.
func (c *Client) Teams(ctx context.Context, year int) ([]Team, error) {
	query := url.Values{"year": {fmt.Sprintf("%d", year)}}

	var teams []Team
	if err := c.get(ctx, "/teams/fbs", query, &teams); err != nil {
		return nil, fmt.Errorf("fetching teams for %d: %w", year, err)
	}
	return teams, nil
}

// Rankings fetches every published poll week for a season.
func (c *Client) Rankings(ctx context.Context, year int) ([]PollWeek, error) {
	query := url.Values{"year": {fmt.Sprintf("%d", year)}}

	var weeks []PollWeek
	if err := c.get(ctx, "/rankings", query, &weeks); err != nil {
		return nil, fmt.Errorf("fetching rankings for %d: %w", year, err)
	}
	return weeks, nil
}

// get performs an authenticated GET and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, path string, query url.Values, v interface{}) error {
	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[cfbd-client] %s returned %d: %s", path, resp.StatusCode, string(body))
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
