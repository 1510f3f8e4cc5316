// Package aerodatabox implements the schedule provider against the
// Aerodatabox FIDS API (local-time range endpoint).
package aerodatabox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/runwayready/runwayready/internal/provider/resilience"
	"github.com/runwayready/runwayready/internal/schedule"
)

const (
	// ProviderName identifies this schedule provider.
	ProviderName = "aerodatabox"

	// DefaultHost is the RapidAPI host for Aerodatabox.
	DefaultHost = "aerodatabox.p.rapidapi.com"
)

// ClientConfig holds configuration for the Aerodatabox client.
type ClientConfig struct {
	// APIKey is the RapidAPI key (required).
	APIKey string

	// Host is the RapidAPI host header value (optional).
	Host string

	// BaseURL overrides the API base URL, mainly for tests (optional).
	BaseURL string

	// HTTPClient is the resilient HTTP client (optional).
	HTTPClient *resilience.Client

	// Limiter throttles outbound calls to stay inside the API quota
	// (optional, defaults to 10 req/s with a burst of 20).
	Limiter *rate.Limiter

	// Logger for client operations.
	Logger zerolog.Logger
}

// ConfigFromEnv reads the API key from AERODATABOX_RAPIDAPI_KEY, falling
// back to RAPIDAPI_KEY.
func ConfigFromEnv() ClientConfig {
	key := os.Getenv("AERODATABOX_RAPIDAPI_KEY")
	if key == "" {
		key = os.Getenv("RAPIDAPI_KEY")
	}
	return ClientConfig{APIKey: key}
}

// Client is an Aerodatabox FIDS client.
type Client struct {
	apiKey     string
	host       string
	baseURL    string
	httpClient *resilience.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new Aerodatabox client.
func NewClient(cfg ClientConfig) *Client {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + host
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(10), 20)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		host:       host,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchDepartures queries the FIDS endpoint for departures between two local
// wall times. The API caps range queries at 12 hours, which is why callers
// keep the window at ±355 minutes.
func (c *Client) FetchDepartures(ctx context.Context, icao, fromLocal, toLocal string) ([]schedule.FlightRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("aerodatabox: missing API key")
	}
	if icao == "" || fromLocal == "" || toLocal == "" {
		return nil, fmt.Errorf("aerodatabox: missing query parameters")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/flights/airports/icao/%s/%s/%s?%s",
		c.baseURL,
		url.PathEscape(icao),
		url.PathEscape(fromLocal),
		url.PathEscape(toLocal),
		"direction=Departure&withLeg=true&withCodeshared=true&withCancelled=true&withCargo=false&withPrivate=false&withLocation=false")

	header := http.Header{
		"X-RapidAPI-Key":  []string{c.apiKey},
		"X-RapidAPI-Host": []string{c.host},
		"Accept":          []string{"application/json"},
	}

	resp, err := c.httpClient.Get(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	records, err := decodeDepartures(body)
	if err != nil {
		c.logger.Warn().
			Str("icao", icao).
			Str("from", fromLocal).
			Str("to", toLocal).
			Err(err).
			Msg("unrecognized aerodatabox response shape")
		return nil, err
	}

	return records, nil
}

// decodeDepartures tolerates the response envelopes Aerodatabox uses across
// endpoints and plan tiers: a bare array, or an object wrapping the list
// under departures, flights, or items.
func decodeDepartures(body []byte) ([]schedule.FlightRecord, error) {
	var bare []schedule.FlightRecord
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	for _, key := range []string{"departures", "flights", "items"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var list []schedule.FlightRecord
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}

	return nil, fmt.Errorf("no departure list in response")
}
