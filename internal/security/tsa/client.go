// Package tsa implements live security wait sources for US airports: a
// RapidAPI aggregator and a proxied TSA checkpoint feed.
package tsa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/runwayready/runwayready/internal/provider/resilience"
	"github.com/runwayready/runwayready/internal/security"
)

const (
	// RapidAPIProviderName identifies the aggregator source.
	RapidAPIProviderName = "tsa-rapidapi"

	// DefaultRapidAPIHost is the RapidAPI host for the TSA aggregator.
	DefaultRapidAPIHost = "tsa-wait-times.p.rapidapi.com"
)

// RapidAPIConfig holds configuration for the aggregator client.
type RapidAPIConfig struct {
	// APIKey is the RapidAPI key (required).
	APIKey string

	// Host is the RapidAPI host header value (optional).
	Host string

	// BaseURL overrides the API base URL, mainly for tests (optional).
	BaseURL string

	// HTTPClient is the resilient HTTP client (optional).
	HTTPClient *resilience.Client

	// Limiter throttles outbound calls (optional, defaults to 5 req/s
	// with a burst of 10).
	Limiter *rate.Limiter

	// Logger for client operations.
	Logger zerolog.Logger
}

// RapidAPIConfigFromEnv reads the key from TSA_RAPIDAPI_KEY, falling back
// to RAPIDAPI_KEY, and the host from RAPIDAPI_TSA_HOST.
func RapidAPIConfigFromEnv() RapidAPIConfig {
	key := os.Getenv("TSA_RAPIDAPI_KEY")
	if key == "" {
		key = os.Getenv("RAPIDAPI_KEY")
	}
	return RapidAPIConfig{
		APIKey: key,
		Host:   os.Getenv("RAPIDAPI_TSA_HOST"),
	}
}

// RapidAPIClient fetches live waits from the RapidAPI TSA aggregator.
type RapidAPIClient struct {
	apiKey     string
	host       string
	baseURL    string
	httpClient *resilience.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewRapidAPIClient creates a new aggregator client.
func NewRapidAPIClient(cfg RapidAPIConfig) *RapidAPIClient {
	host := cfg.Host
	if host == "" {
		host = DefaultRapidAPIHost
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + host
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(RapidAPIProviderName))
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(5), 10)
	}

	return &RapidAPIClient{
		apiKey:     cfg.APIKey,
		host:       host,
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     cfg.Logger,
	}
}

// Name returns the source name.
func (c *RapidAPIClient) Name() string {
	return RapidAPIProviderName
}

// Fetch tries the aggregator's known URL shapes in order and returns the
// worst wait it can extract, clamped to [5,120]. Canadian airports are not
// covered.
func (c *RapidAPIClient) Fetch(ctx context.Context, iata string) (*security.LiveWait, error) {
	code := strings.ToUpper(iata)
	if strings.HasPrefix(code, "Y") {
		return nil, security.ErrUnsupportedAirport
	}
	if c.apiKey == "" {
		return nil, security.ErrUnsupportedAirport
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	// Aggregator deployments differ in routing, so probe each variant.
	ap := url.QueryEscape(code)
	variants := []string{
		c.baseURL + "/airport?iata=" + ap,
		c.baseURL + "/airport/" + ap,
		c.baseURL + "/waittimes?airport=" + ap,
	}

	header := http.Header{
		"X-RapidAPI-Key":  []string{c.apiKey},
		"X-RapidAPI-Host": []string{c.host},
		"Accept":          []string{"application/json"},
	}

	var lastErr error = security.ErrNoWaitData
	for _, endpoint := range variants {
		minutes, err := c.fetchVariant(ctx, endpoint, header)
		if err != nil {
			lastErr = err
			continue
		}
		return &security.LiveWait{
			Minutes: minutes,
			Source:  security.SourceTSARapidAPI,
			Detail:  c.host,
		}, nil
	}
	return nil, lastErr
}

func (c *RapidAPIClient) fetchVariant(ctx context.Context, endpoint string, header http.Header) (int, error) {
	resp, err := c.httpClient.Get(ctx, endpoint, header)
	if err != nil {
		return 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading response: %w", err)
	}

	minutes := extractAggregatorMinutes(body)
	if minutes == 0 {
		return 0, security.ErrNoWaitData
	}
	return clampInt(minutes, 5, 120), nil
}

// extractAggregatorMinutes probes the common response shapes: a bare array
// of records, a single record, or a record wrapping a list under data,
// result, items, or checkpoints. Returns the worst candidate, or 0.
func extractAggregatorMinutes(body []byte) int {
	var candidates []int
	collect := func(rec map[string]any) {
		for _, key := range []string{"waitTime", "minutes", "estimated", "value"} {
			if n, ok := asMinutes(rec[key]); ok {
				candidates = append(candidates, n)
				return
			}
		}
	}

	var list []map[string]any
	if err := json.Unmarshal(body, &list); err == nil {
		for _, rec := range list {
			collect(rec)
		}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		var flat map[string]any
		if err := json.Unmarshal(body, &flat); err == nil {
			collect(flat)
		}
		for _, key := range []string{"data", "result", "items", "checkpoints"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			var nested []map[string]any
			if err := json.Unmarshal(raw, &nested); err == nil {
				for _, rec := range nested {
					collect(rec)
				}
			}
		}
	}

	worst := 0
	for _, n := range candidates {
		if n > worst {
			worst = n
		}
	}
	return worst
}

// asMinutes coerces a JSON value to a plausible wait in minutes.
func asMinutes(v any) (int, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n <= 0 || n >= 180 {
		return 0, false
	}
	return int(math.Round(n)), true
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
