package security

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/runwayready/runwayready/internal/schedule"
)

// ServiceConfig holds configuration for the security wait estimator.
type ServiceConfig struct {
	// Busyness supplies schedule-derived busyness scores. Required for
	// the schedule-plus-load path.
	Busyness BusynessService

	// LiveSources are tried in order for near-term departures. Each
	// source gets a single attempt.
	LiveSources []LiveSource

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records live-source calls and cache outcomes (optional).
	Metrics CallMetrics

	// LiveCacheTTL is the revalidation window for live wait results
	// (default: 60 seconds, matching the upstream pages' cache headers).
	LiveCacheTTL time.Duration

	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// CallMetrics records outbound live-source activity.
type CallMetrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// Service estimates security screening waits.
type Service struct {
	busyness    BusynessService
	liveSources []LiveSource
	logger      zerolog.Logger
	metrics     CallMetrics
	ttl         time.Duration
	now         func() time.Time

	mu        sync.Mutex
	liveCache map[string]cachedWait
}

type cachedWait struct {
	wait      *LiveWait
	expiresAt time.Time
}

// NewService creates a new security wait estimator.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.LiveCacheTTL
	if ttl == 0 {
		ttl = 60 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		busyness:    cfg.Busyness,
		liveSources: cfg.LiveSources,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		ttl:         ttl,
		now:         now,
		liveCache:   make(map[string]cachedWait),
	}
}

// PredictWithLoad estimates the wait from the hour-of-day baseline scaled by
// schedule busyness. Never fails: a degraded busyness score still yields an
// estimate.
func (s *Service) PredictWithLoad(ctx context.Context, iata string, dep time.Time, trustedTraveler bool) Prediction {
	const windowMin = schedule.DefaultWindowMin

	base := EstimateByHour(iata, dep, trustedTraveler)

	var b schedule.Busyness
	if s.busyness != nil {
		b = s.busyness.Busyness(ctx, iata, dep, windowMin)
	} else {
		b = schedule.Busyness{Percent: 50, Source: schedule.SourceHeuristic, WindowMin: windowMin}
	}

	// Busyness nudges the baseline by 0.9x-1.3x. Normal traffic should
	// not dramatically move a planning estimate.
	factor := 0.9 + float64(b.Percent)/100*0.4
	minutes := ClampMinutes(int(math.Round(float64(base) * factor)))

	label := busynessLabel(b.Percent)
	lo, hi := waitRange(minutes, label)

	delta := minutes - base
	deltaPhrase := "about the typical wait"
	switch {
	case delta > 3:
		deltaPhrase = fmt.Sprintf("%d min longer than typical", delta)
	case delta < -3:
		deltaPhrase = fmt.Sprintf("%d min shorter than typical", -delta)
	}

	detail := fmt.Sprintf("heuristic (%d%% by hour-of-day)", b.Percent)
	if b.Source == schedule.SourceScheduleLoad {
		detail = fmt.Sprintf("schedule+load (%d%% · %d deps in ±%dm)",
			b.Percent, b.DeparturesInWindow, b.WindowMin)
	}

	return Prediction{
		Minutes:           minutes,
		Detail:            detail,
		Busyness:          b,
		Label:             label,
		RangeLowMin:       lo,
		RangeHighMin:      hi,
		DeltaVsTypicalMin: delta,
		Summary:           fmt.Sprintf("Security looks %s; expect about %d-%d min (%s).", label, lo, hi, deltaPhrase),
	}
}

// busynessLabel buckets a busyness percent into a display label.
func busynessLabel(percent int) string {
	switch {
	case percent >= 91:
		return "peak"
	case percent >= 71:
		return "heavy"
	case percent >= 41:
		return "moderate"
	default:
		return "light"
	}
}

// waitRange derives the display range around a final estimate using
// label-specific multiplier pairs.
func waitRange(minutes int, label string) (lo, hi int) {
	var mul [2]float64
	switch label {
	case "peak":
		mul = [2]float64{0.8, 1.4}
	case "heavy":
		mul = [2]float64{0.8, 1.3}
	case "moderate":
		mul = [2]float64{0.7, 1.2}
	default:
		mul = [2]float64{0.6, 1.0}
	}

	lo = clampInt(int(math.Round(float64(minutes)*mul[0])), 5, 150)
	hi = clampInt(int(math.Round(float64(minutes)*mul[1])), 8, 180)
	if hi < lo+2 {
		hi = lo + 2
	}
	return lo, hi
}

// Live walks the live-source chain and returns the first usable wait, or
// nil when every source fails or declines. Results are cached briefly so a
// burst of requests does not hammer the upstream pages.
func (s *Service) Live(ctx context.Context, iata string) *LiveWait {
	s.mu.Lock()
	if cached, ok := s.liveCache[iata]; ok && s.now().Before(cached.expiresAt) {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordCacheHit("live-wait", iata)
		}
		return cached.wait
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCacheMiss("live-wait", iata)
	}

	var wait *LiveWait
	for _, src := range s.liveSources {
		start := s.now()
		w, err := src.Fetch(ctx, iata)
		if err != nil {
			if !errors.Is(err, ErrUnsupportedAirport) {
				if s.metrics != nil {
					s.metrics.RecordRequest(src.Name(), "fetch", s.now().Sub(start), err)
				}
				s.logger.Warn().
					Str("source", src.Name()).
					Str("iata", iata).
					Err(err).
					Msg("live wait source failed")
			}
			continue
		}
		if s.metrics != nil {
			s.metrics.RecordRequest(src.Name(), "fetch", s.now().Sub(start), nil)
		}
		if w != nil && w.Minutes > 0 {
			wait = w
			break
		}
	}

	s.mu.Lock()
	s.liveCache[iata] = cachedWait{wait: wait, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return wait
}

// SourceStates reports each live source's name for the ops status surface.
func (s *Service) SourceStates() []string {
	names := make([]string, 0, len(s.liveSources))
	for _, src := range s.liveSources {
		names = append(names, src.Name())
	}
	return names
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
