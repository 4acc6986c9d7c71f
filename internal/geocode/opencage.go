// Package geocode resolves free-text place names to structured locations
// using the OpenCage forward-geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-advisor/internal/upstream"
)

const minQueryLen = 3

var (
	// ErrQueryTooShort is returned before any network call for short queries.
	ErrQueryTooShort = fmt.Errorf("please provide a search query of at least %d characters", minQueryLen)
	// ErrMissingAPIKey signals a configuration problem, not a user error.
	ErrMissingAPIKey = errors.New("opencage api key is not configured")
)

// Components holds the address components OpenCage returns for a result.
type Components struct {
	City         string `json:"city,omitempty"`
	Town         string `json:"town,omitempty"`
	Village      string `json:"village,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	District     string `json:"district,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Geometry is a coordinate pair.
type Geometry struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Result is a single geocoding candidate.
type Result struct {
	Formatted  string     `json:"formatted"`
	Geometry   Geometry   `json:"geometry"`
	Components Components `json:"components"`
}

// Envelope is the provider-shaped response returned to the client verbatim.
type Envelope struct {
	Results []Result `json:"results"`
	Status  Status   `json:"status,omitempty"`
}

// Status carries the provider status message when relevant.
type Status struct {
	Message string `json:"message,omitempty"`
}

// Client calls the OpenCage API with resilience and a static fallback table
// for a handful of well-known cities.
type Client struct {
	apiKey  string
	baseURL string
	httpCfg upstream.ClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates an OpenCage client sharing the given HTTP client.
func NewClient(client *http.Client, apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.opencagedata.com/geocode/v1/json",
		httpCfg: upstream.ClientConfig{
			Client:  client,
			Backoff: upstream.DefaultBackoff,
		},
		circuit: upstream.NewBreaker("opencage"),
	}
}

// Search resolves query to a ranked list of candidate locations. Queries
// shorter than three characters are rejected before any network call. On
// provider failure or an empty result set, a static fallback record is
// returned for known city names instead of an error.
func (c *Client) Search(ctx context.Context, query string) (Envelope, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLen {
		return Envelope{}, ErrQueryTooShort
	}
	if c.apiKey == "" {
		return Envelope{}, ErrMissingAPIKey
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("key", c.apiKey)
		values.Set("limit", "10")
		values.Set("no_annotations", "1")

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := upstream.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		if fb, ok := fallbackFor(query); ok {
			return fb, nil
		}
		return Envelope{}, fmt.Errorf("opencage request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Envelope{}, fmt.Errorf("decoding opencage response: %w", err)
	}

	if len(envelope.Results) == 0 {
		if fb, ok := fallbackFor(query); ok {
			return fb, nil
		}
	}

	return envelope, nil
}
