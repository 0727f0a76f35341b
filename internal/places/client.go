package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/trip-albums/internal/geo"
)

const defaultPlacesURL = "http://localhost:8100"

// Client talks to the place lookup service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a new place lookup client.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultPlacesURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// candidatesResponse represents the response from the lookup service.
type candidatesResponse struct {
	Candidates []struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Types    []string `json:"types"`
		Lat      float64  `json:"lat"`
		Lon      float64  `json:"lon"`
	} `json:"candidates"`
}

// FetchCandidates returns categorized places near the coordinate.
func (c *Client) FetchCandidates(ctx context.Context, coord geo.Coordinate) ([]Candidate, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/nearby?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var cr candidatesResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	candidates := make([]Candidate, 0, len(cr.Candidates))
	for _, raw := range cr.Candidates {
		candidates = append(candidates, Candidate{
			ID:           raw.ID,
			Name:         raw.Name,
			CategoryTags: raw.Types,
			Location:     geo.Coordinate{Lat: raw.Lat, Lon: raw.Lon},
		})
	}

	return candidates, nil
}
