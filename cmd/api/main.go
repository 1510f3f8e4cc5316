// Package main provides the entrypoint for the RunwayReady API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/runwayready/runwayready/internal/api"
	"github.com/runwayready/runwayready/internal/api/middleware"
	"github.com/runwayready/runwayready/internal/api/models"
	"github.com/runwayready/runwayready/internal/provider/resilience"
	"github.com/runwayready/runwayready/internal/recommend"
	"github.com/runwayready/runwayready/internal/schedule"
	"github.com/runwayready/runwayready/internal/schedule/aerodatabox"
	"github.com/runwayready/runwayready/internal/security"
	"github.com/runwayready/runwayready/internal/security/catsa"
	"github.com/runwayready/runwayready/internal/security/tsa"
	"github.com/runwayready/runwayready/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "runwayready-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RunwayReady API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Per-provider HTTP clients, kept here so their breaker state feeds
	// the ops status endpoint.
	httpClients := map[string]*resilience.Client{
		aerodatabox.ProviderName: resilience.NewClient(resilience.DefaultClientConfig(aerodatabox.ProviderName)),
		catsa.ProviderName:       resilience.NewClient(resilience.DefaultClientConfig(catsa.ProviderName)),
		tsa.RapidAPIProviderName: resilience.NewClient(resilience.DefaultClientConfig(tsa.RapidAPIProviderName)),
		tsa.ProxyProviderName:    resilience.NewClient(resilience.DefaultClientConfig(tsa.ProxyProviderName)),
	}

	// Schedule provider (optional: without an API key the busyness service
	// degrades to its hour-of-day heuristic)
	var scheduleProvider schedule.Provider
	adbConfig := aerodatabox.ConfigFromEnv()
	if adbConfig.APIKey != "" {
		adbConfig.HTTPClient = httpClients[aerodatabox.ProviderName]
		adbConfig.Logger = log
		scheduleProvider = aerodatabox.NewClient(adbConfig)
		log.Info().Msg("aerodatabox schedule provider initialized")
	} else {
		log.Warn().Msg("no aerodatabox API key - busyness falls back to heuristic")
	}

	scheduleService := schedule.NewService(schedule.ServiceConfig{
		Provider: scheduleProvider,
		Logger:   log,
	})

	// Live wait sources, tried in order
	rapidAPIConfig := tsa.RapidAPIConfigFromEnv()
	rapidAPIConfig.HTTPClient = httpClients[tsa.RapidAPIProviderName]
	rapidAPIConfig.Logger = log

	proxyConfig := tsa.ProxyConfigFromEnv()
	proxyConfig.HTTPClient = httpClients[tsa.ProxyProviderName]
	proxyConfig.Logger = log

	securityService := security.NewService(security.ServiceConfig{
		Busyness: scheduleService,
		LiveSources: []security.LiveSource{
			catsa.NewClient(catsa.ClientConfig{
				HTTPClient: httpClients[catsa.ProviderName],
				Logger:     log,
			}),
			tsa.NewRapidAPIClient(rapidAPIConfig),
			tsa.NewProxyClient(proxyConfig),
		},
		Logger:  log,
		Metrics: providerMetrics,
	})
	log.Info().
		Strs("live_sources", securityService.SourceStates()).
		Msg("security wait estimator initialized")

	engine := recommend.NewEngine(recommend.EngineConfig{
		Security: securityService,
		Logger:   log,
	})
	log.Info().Msg("recommendation engine initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		Engine:         engine,
		Busyness:       scheduleService,
		ProviderStatus: providerStatusFunc(httpClients),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// providerStatusFunc maps each provider's circuit breaker state onto the
// ops status surface.
func providerStatusFunc(clients map[string]*resilience.Client) func() []models.ProviderStatus {
	order := []string{
		aerodatabox.ProviderName,
		catsa.ProviderName,
		tsa.RapidAPIProviderName,
		tsa.ProxyProviderName,
	}

	return func() []models.ProviderStatus {
		statuses := make([]models.ProviderStatus, 0, len(order))
		for _, name := range order {
			client, ok := clients[name]
			if !ok {
				continue
			}

			status := models.HealthStatusOK
			var message *string
			switch client.State() {
			case gobreaker.StateOpen:
				status = models.HealthStatusFail
				msg := "circuit breaker open"
				message = &msg
			case gobreaker.StateHalfOpen:
				status = models.HealthStatusDegraded
				msg := "circuit breaker half-open"
				message = &msg
			}

			statuses = append(statuses, models.ProviderStatus{
				Provider: name,
				Status:   status,
				Message:  message,
			})
		}
		return statuses
	}
}
