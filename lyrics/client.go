// Package lyrics wraps the public lyrics lookup API. A track without
// lyrics is a normal outcome, reported as (nil, nil).
package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Zianiwarhead/MyMusicApp/cache"
	"github.com/Zianiwarhead/MyMusicApp/model"
)

// Client talks to an lrclib-style lyrics service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a lyrics client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// SetTimeout overrides the request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// Lookup fetches lyrics for an artist/title pair. The Redis cache is
// consulted first; cache failures silently fall through to the API.
func (c *Client) Lookup(ctx context.Context, artist, title string) (*model.LyricsResult, error) {
	if cached, ok := cache.GetLyrics(ctx, artist, title); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/api/get?artist_name=%s&track_name=%s",
		c.baseURL, url.QueryEscape(artist), url.QueryEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lyrics request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lyrics request failed: %w", err)
	}
	defer resp.Body.Close()

	// Not found means no lyrics exist for this track, not an error.
	if resp.StatusCode == http.StatusNotFound {
		empty := &model.LyricsResult{}
		cache.SetLyrics(ctx, artist, title, empty)
		return empty, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lyrics service returned status %d", resp.StatusCode)
	}

	var result model.LyricsResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode lyrics response: %w", err)
	}

	cache.SetLyrics(ctx, artist, title, &result)
	return &result, nil
}
