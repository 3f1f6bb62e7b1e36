package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farescout-service/internal/infrastructure/config"
	"farescout-service/internal/infrastructure/persistence"
	"farescout-service/internal/interface/repository"
	"farescout-service/internal/interface/scraper"
	"farescout-service/internal/ratelimit"
	"farescout-service/internal/usecase"
	"farescout-service/pkg/logger"
	"farescout-service/pkg/metrics"

	domainRepo "farescout-service/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Farescout Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up PostgreSQL
	log.Info("Connecting to PostgreSQL")
	db, err := persistence.NewPostgresDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate schema", "error", err)
	}

	// Set up Redis for the shared rate-limit counters
	log.Info("Connecting to Redis")
	redisClient, err := persistence.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		// The limiter fails open, so a missing Redis degrades instead of aborting.
		log.Error("Failed to connect to Redis, rate limiting will fail open", "error", err)
	}

	// Set up the optional Mongo offer archive
	var archiveRepo domainRepo.OfferArchiveRepository
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		mongoClient, mongoDB, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Error("Failed to connect to MongoDB, offer archive disabled", "error", err)
		} else {
			archiveRepo = repository.NewMongoOfferArchiveRepository(mongoDB)
			defer mongoClient.Disconnect(context.Background())
		}
	}

	// Set up metrics
	m := metrics.NewMetrics("farescout")

	// Set up the rate limiter
	limiter := ratelimit.NewLimiter(persistence.NewRedisCounterStore(redisClient), cfg.SourceLimits, log)

	// Set up repositories
	airportRepo := repository.NewGormAirportRepository(db)
	flightRepo := repository.NewGormFlightRepository(db)
	runRepo := repository.NewGormScrapeRunRepository(db)

	// Set up the enabled source adapters
	adapters := buildAdapters(cfg, log)
	if len(adapters) == 0 {
		log.Fatal("No scrape sources enabled")
	}

	travelers := scraper.TravelerCounts{Adults: cfg.Adults, Children: cfg.Children}
	coordinator := usecase.NewCoordinator(adapters, limiter, travelers, cfg.TaskTimeout, cfg.MaxRetries, log, m)
	deduplicator := usecase.NewDeduplicator(log, m)
	persister := usecase.NewPersister(airportRepo, flightRepo, runRepo, cfg.BatchSize, log, m)
	pipeline := usecase.NewPipeline(coordinator, deduplicator, persister, archiveRepo, log, m)

	// Start the scrape loop in a goroutine
	go func() {
		runOnce(ctx, pipeline, cfg, log)

		scrapeTicker := time.NewTicker(cfg.ScrapeInterval)
		defer scrapeTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Scrape loop stopped")
				return
			case <-scrapeTicker.C:
				runOnce(ctx, pipeline, cfg, log)
			}
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop the scrape loop

	log.Info("Farescout Service stopped")
}

// runOnce executes one orchestration run over the configured search window.
func runOnce(ctx context.Context, pipeline *usecase.Pipeline, cfg *config.Config, log logger.Logger) {
	departure := time.Now().AddDate(0, 0, cfg.DaysAhead)
	ret := departure.AddDate(0, 0, cfg.TripLengthDays)
	dateRanges := []usecase.DateRange{{Departure: departure, Return: &ret}}

	if _, err := pipeline.Run(ctx, cfg.Origins, cfg.Destinations, dateRanges); err != nil {
		log.Error("Orchestration run failed", "error", err)
	}
}

// buildAdapters instantiates the adapters named in ENABLED_SOURCES.
func buildAdapters(cfg *config.Config, log logger.Logger) []scraper.Adapter {
	var adapters []scraper.Adapter
	for _, source := range cfg.EnabledSources {
		switch source {
		case "kiwi":
			adapters = append(adapters, scraper.NewKiwiAdapter(cfg.KiwiBaseURL, cfg.KiwiAPIKey, log))
		case "ryanair":
			adapters = append(adapters, scraper.NewRyanairAdapter(cfg.RyanairBaseURL, log))
		case "wizzair":
			adapters = append(adapters, scraper.NewWizzairAdapter(cfg.WizzairBaseURL, log))
		case "amadeus":
			adapters = append(adapters, scraper.NewAmadeusAdapter(
				cfg.AmadeusBaseURL, cfg.AmadeusTokenURL, cfg.AmadeusClientID, cfg.AmadeusClientSecret, log))
		case "skyscanner":
			adapters = append(adapters, scraper.NewSkyscannerAdapter(cfg.SkyscannerBaseURL, log))
		default:
			log.Warn("Unknown scrape source in config", "source", source)
		}
	}
	return adapters
}
