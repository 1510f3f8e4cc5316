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
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/runwayready/runwayready/internal/provider/resilience"
	"github.com/runwayready/runwayready/internal/security"
)

// ProxyProviderName identifies the proxied TSA checkpoint feed.
const ProxyProviderName = "tsa-proxy"

// ProxyConfig holds configuration for the proxied TSA feed client.
type ProxyConfig struct {
	// BaseURL is the proxy endpoint (required; the source is disabled
	// without it).
	BaseURL string

	// HTTPClient is the resilient HTTP client (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger

	// Now is the clock used for staleness penalties, injectable for
	// tests. Defaults to time.Now.
	Now func() time.Time
}

// ProxyConfigFromEnv reads the proxy base URL from TSA_PROXY_BASE.
func ProxyConfigFromEnv() ProxyConfig {
	return ProxyConfig{BaseURL: os.Getenv("TSA_PROXY_BASE")}
}

// ProxyClient fetches checkpoint waits through a relay in front of the TSA
// feed, which blocks some origins directly.
type ProxyClient struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewProxyClient creates a new proxy client.
func NewProxyClient(cfg ProxyConfig) *ProxyClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProxyProviderName))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ProxyClient{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Name returns the source name.
func (c *ProxyClient) Name() string {
	return ProxyProviderName
}

// waitItem is one checkpoint observation from the feed. Field casing varies
// between feed versions.
type waitItem struct {
	Created         any    `json:"Created"`
	CreatedLower    any    `json:"created"`
	CreatedDatetime any    `json:"Created_Datetime"`
	Timestamp       any    `json:"Timestamp"`
	WaitTime        any    `json:"WaitTime"`
	WaitTimeLower   any    `json:"waitTime"`
	Status          string `json:"Status"`
	CheckpointWait  any    `json:"CheckpointWaitTime"`
	AverageWaitTime any    `json:"AverageWaitTime"`
	AvgWaitTime     any    `json:"AvgWaitTime"`
	Minutes         any    `json:"Minutes"`
}

// Fetch queries the proxy for the newest checkpoint observation, converting
// category codes or status labels to minutes and penalizing stale data.
// Canadian airports are not covered.
func (c *ProxyClient) Fetch(ctx context.Context, iata string) (*security.LiveWait, error) {
	code := strings.ToUpper(iata)
	if strings.HasPrefix(code, "Y") || c.baseURL == "" {
		return nil, security.ErrUnsupportedAirport
	}

	header := http.Header{
		"Accept":     []string{"application/json,text/javascript,*/*"},
		"User-Agent": []string{"Mozilla/5.0"},
	}

	resp, err := c.httpClient.Get(ctx, c.baseURL+"?ap="+url.QueryEscape(code), header)
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

	items, err := decodeWaitItems(body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, security.ErrNoWaitData
	}

	// Newest observation wins.
	sort.SliceStable(items, func(i, j int) bool {
		return itemTimestamp(items[i]).After(itemTimestamp(items[j]))
	})
	chosen := items[0]

	minutes := directMinutes(chosen)
	if minutes == 0 {
		if cat, ok := asMinutes(firstSet(chosen.WaitTime, chosen.WaitTimeLower)); ok {
			minutes = categoryMinutes(cat)
		}
	}
	if minutes == 0 {
		minutes = statusMinutes(chosen.Status)
	}
	if minutes == 0 {
		return nil, security.ErrNoWaitData
	}

	ageMin := 0
	if ts := itemTimestamp(chosen); !ts.IsZero() {
		ageMin = int(math.Round(c.now().Sub(ts).Minutes()))
		if ageMin < 0 {
			ageMin = 0
		}
	}
	minutes = security.ClampMinutes(minutes + stalenessPenalty(ageMin))

	return &security.LiveWait{
		Minutes: minutes,
		Source:  security.SourceTSA,
		Detail:  fmt.Sprintf("worker · age=%dm", ageMin),
	}, nil
}

var jsonpPattern = regexp.MustCompile(`(?s)^[^(]+\((.+)\)\s*;?\s*$`)

// decodeWaitItems parses the feed body, unwrapping a JSONP callback if
// present, and pulls the observation list out of whichever envelope the
// feed version uses.
func decodeWaitItems(body []byte) ([]waitItem, error) {
	text := strings.TrimPrefix(strings.TrimSpace(string(body)), "\uFEFF")
	if m := jsonpPattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var bare []waitItem
	if err := json.Unmarshal([]byte(text), &bare); err == nil {
		return bare, nil
	}

	var envelope struct {
		WaitTimes []waitItem `json:"WaitTimes"`
		Items     []waitItem `json:"Items"`
		Airport   struct {
			WaitTimes []waitItem `json:"WaitTimes"`
		} `json:"Airport"`
		Data   []waitItem `json:"Data"`
		Result []waitItem `json:"Result"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	for _, list := range [][]waitItem{
		envelope.WaitTimes, envelope.Items, envelope.Airport.WaitTimes,
		envelope.Data, envelope.Result,
	} {
		if len(list) > 0 {
			return list, nil
		}
	}
	return nil, nil
}

// itemTimestamp resolves the observation time from whichever field carries
// it. Numeric values may be seconds or milliseconds since epoch.
func itemTimestamp(it waitItem) time.Time {
	v := firstSet(it.Created, it.CreatedLower, it.CreatedDatetime, it.Timestamp)
	switch t := v.(type) {
	case float64:
		if t > 2e10 {
			return time.UnixMilli(int64(t))
		}
		return time.Unix(int64(t), 0)
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "1/2/2006 3:04:05 PM"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}

func directMinutes(it waitItem) int {
	for _, v := range []any{it.AverageWaitTime, it.AvgWaitTime, it.CheckpointWait, it.Minutes} {
		if n, ok := asMinutes(v); ok {
			return n
		}
	}
	return 0
}

// categoryMinutes maps the TSA 1-6 wait category to minutes.
func categoryMinutes(cat int) int {
	table := []int{0, 10, 20, 30, 45, 60, 75}
	if cat >= 1 && cat < len(table) {
		return table[cat]
	}
	return 0
}

// statusMinutes maps a free-text status label to minutes. "busy" is checked
// after "not busy" and "very busy" since those contain it.
func statusMinutes(status string) int {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "not busy"):
		return 10
	case strings.Contains(s, "very busy"):
		return 45
	case strings.Contains(s, "moderate"):
		return 20
	case strings.Contains(s, "busy"):
		return 30
	}
	return 0
}

// stalenessPenalty pads old observations since waits drift over hours.
func stalenessPenalty(ageMin int) int {
	switch {
	case ageMin > 720:
		return 12
	case ageMin > 360:
		return 8
	case ageMin > 180:
		return 5
	}
	return 0
}

func firstSet(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
