// Package radio wraps the public station-directory API. Stations come back
// as radio-provenance tracks: always handle-bearing, never persisted.
package radio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode"

	"github.com/Zianiwarhead/MyMusicApp/model"
)

// fallbackIcon is used for stations without a favicon.
const fallbackIcon = "https://cdn-icons-png.flaticon.com/512/3075/3075836.png"

// Client talks to a radio-browser style directory.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a directory client.
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

// StationsByTag fetches the top-voted stations for a genre tag and maps
// them into radio tracks.
func (c *Client) StationsByTag(ctx context.Context, tag string, limit int) ([]model.Track, error) {
	if limit <= 0 {
		limit = 15
	}
	endpoint := fmt.Sprintf("%s/json/stations/bytag/%s?limit=%d&order=votes&reverse=true",
		c.baseURL, url.PathEscape(tag), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build station request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("station directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("station directory returned status %d", resp.StatusCode)
	}

	var stations []model.Station
	if err := json.NewDecoder(resp.Body).Decode(&stations); err != nil {
		return nil, fmt.Errorf("failed to decode station response: %w", err)
	}

	genre := capitalize(tag)
	tracks := make([]model.Track, 0, len(stations))
	for _, s := range stations {
		icon := s.Favicon
		if icon == "" {
			icon = fallbackIcon
		}
		tracks = append(tracks, model.Track{
			ID:        s.StationUUID,
			Title:     s.Name,
			Artist:    "Live Radio",
			Genre:     genre,
			ArtURL:    icon,
			Source:    model.SourceRadio,
			StreamURL: s.URLResolved,
		})
	}
	return tracks, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
