/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"climategpt.dev/climatetools/retry"
)

// DefaultBaseURL is the OpenWeather current-conditions endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// ErrNotFound reports that the API has no data for the requested city.
var ErrNotFound = errors.New("city not found")

// Conditions is the subset of the OpenWeather response the analyses use.
// Temperatures are Kelvin, wind speed m/s, sunrise and sunset epoch
// seconds UTC with Timezone holding the local offset in seconds.
type Conditions struct {
	Main struct {
		Temp      float64 `json:"temp"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int64 `json:"timezone"`
}

// Client fetches current conditions with a bounded timeout and retries on
// transient failures.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different endpoint. Tests use this
// to target a local server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig replaces the retry configuration.
func WithRetryConfig(cfg retry.Config) ClientOption {
	return func(c *Client) { c.retryCfg = cfg }
}

// NewClient builds a weather client for the given API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retryCfg: retry.Config{
			MaxRetries:  2,
			BaseBackoff: 500 * time.Millisecond,
			MaxBackoff:  5 * time.Second,
			MaxJitter:   250 * time.Millisecond,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves current conditions for a city. It returns ErrNotFound
// when the API does not know the city, and retries server-side and
// network failures.
func (c *Client) Fetch(ctx context.Context, city string) (*Conditions, error) {
	return retry.Do(ctx, c.retryCfg, "weather_fetch", transient, func() (*Conditions, error) {
		return c.fetchOnce(ctx, city)
	})
}

func (c *Client) fetchOnce(ctx context.Context, city string) (*Conditions, error) {
	q := url.Values{}
	q.Set("appid", c.apiKey)
	q.Set("q", city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching weather: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, &serverError{status: resp.StatusCode}
	default:
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var cond Conditions
	if err := json.NewDecoder(resp.Body).Decode(&cond); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}
	return &cond, nil
}

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("weather API returned status %d", e.status)
}

// transient classifies retryable failures: server errors and network
// issues, but never a missing city.
func transient(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return false
	}
	var se *serverError
	if errors.As(err, &se) {
		return true
	}
	// Request-level failures (timeouts, connection resets) surface as
	// wrapped url.Error values.
	var ue *url.Error
	return errors.As(err, &ue)
}
