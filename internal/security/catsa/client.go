// Package catsa scrapes published checkpoint wait times from the CATSA
// (Canadian Air Transport Security Authority) airport pages.
package catsa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/runwayready/runwayready/internal/provider/resilience"
	"github.com/runwayready/runwayready/internal/security"
)

const (
	// ProviderName identifies this live wait source.
	ProviderName = "catsa"

	// DefaultBaseURL is the CATSA airport page root.
	DefaultBaseURL = "https://www.catsa-acsta.gc.ca/en/airport"
)

// airportSlugs maps IATA codes to CATSA page slugs. Only these airports
// publish wait times.
var airportSlugs = map[string]string{
	"YYZ": "toronto-pearson-international-airport",
	"YOW": "ottawa-international-airport",
	"YUL": "montreal-trudeau-international-airport",
	"YVR": "vancouver-international-airport",
	"YYC": "calgary-international-airport",
	"YHZ": "halifax-stanfield-international-airport",
	"YEG": "edmonton-international-airport",
	"YWG": "winnipeg-james-armstrong-richardson-international-airport",
	"YQB": "quebec-city-jean-lesage-international-airport",
	"YTZ": "billy-bishop-toronto-city-airport",
}

// ClientConfig holds configuration for the CATSA client.
type ClientConfig struct {
	// BaseURL overrides the page root, mainly for tests (optional).
	BaseURL string

	// HTTPClient is the resilient HTTP client (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches live waits from CATSA airport pages.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new CATSA client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return ProviderName
}

// Wait-time extraction patterns. The pages render wait rows as a th label
// followed by a td value; a flat-text sweep covers layout changes.
var (
	waitRowPattern   = regexp.MustCompile(`(?is)(?:Wait\s*time|Temps d['\x60\x{2019}]attente)[^<]*</th>\s*<td[^>]*>(.*?)</td>`)
	rangePattern     = regexp.MustCompile(`(?i)(\d+)\s*[\x{2013}-]\s*(\d+)\s*min`)
	singleMinPattern = regexp.MustCompile(`(?i)(\d+)\s*min`)
	flatRangePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:\x{2013}|-)\s*(\d+)\s*min`)
	flatMinPattern   = regexp.MustCompile(`(?i)(\d+)\s*min([^a-z]|$)`)

	scriptPattern = regexp.MustCompile(`(?is)<script.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// Fetch scrapes the CATSA page for the airport's checkpoint wait rows and
// returns the worst (highest) one. Airports without a CATSA page return
// security.ErrUnsupportedAirport.
func (c *Client) Fetch(ctx context.Context, iata string) (*security.LiveWait, error) {
	slug, ok := airportSlugs[strings.ToUpper(iata)]
	if !ok {
		return nil, security.ErrUnsupportedAirport
	}

	header := http.Header{
		"User-Agent": []string{"Mozilla/5.0"},
		"Accept":     []string{"text/html,application/xhtml+xml"},
	}

	resp, err := c.httpClient.Get(ctx, c.baseURL+"/"+slug, header)
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

	minutes := extractMinutes(string(body))
	if minutes == 0 {
		return nil, security.ErrNoWaitData
	}

	return &security.LiveWait{
		Minutes: minutes,
		Source:  security.SourceCATSA,
		Detail:  "catsa-acsta.gc.ca",
	}, nil
}

// extractMinutes returns the highest wait found in the page, or 0 when no
// usable wait row exists.
func extractMinutes(html string) int {
	var mins []int
	for _, row := range waitRowPattern.FindAllStringSubmatch(html, -1) {
		if m := minutesFromLabel(stripHTML(row[1])); m > 0 {
			mins = append(mins, m)
		}
	}

	if len(mins) == 0 {
		flat := stripHTML(html)
		for _, m := range flatRangePattern.FindAllStringSubmatch(flat, -1) {
			lo, _ := strconv.Atoi(m[1])
			hi, _ := strconv.Atoi(m[2])
			if v := max(lo, hi); v > 0 && v < 180 {
				mins = append(mins, v)
			}
		}
		for _, m := range flatMinPattern.FindAllStringSubmatch(flat, -1) {
			if v, _ := strconv.Atoi(m[1]); v > 0 && v < 180 {
				mins = append(mins, v)
			}
		}
	}

	worst := 0
	for _, m := range mins {
		if m > worst {
			worst = m
		}
	}
	return worst
}

// minutesFromLabel parses a wait label like "15–20 min" or "10 min",
// returning the upper bound of a range.
func minutesFromLabel(label string) int {
	t := normalizeEntities(label)
	if m := rangePattern.FindStringSubmatch(t); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return max(lo, hi)
	}
	if m := singleMinPattern.FindStringSubmatch(t); m != nil {
		v, _ := strconv.Atoi(m[1])
		return v
	}
	return 0
}

func stripHTML(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	s = stylePattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, " ")
	s = normalizeEntities(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// normalizeEntities resolves the handful of HTML entities the CATSA pages
// use inside wait labels.
func normalizeEntities(s string) string {
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&#160;", " ",
		"&ndash;", "–",
		"&#8211;", "–",
	)
	return replacer.Replace(s)
}
