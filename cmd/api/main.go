package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"videogen/internal/feedback"
	"videogen/internal/http/handlers"
	httpapi "videogen/internal/http/httpapi"
	"videogen/internal/infra"
	"videogen/internal/infra/geoip"
	"videogen/internal/jobs"
	"videogen/internal/prompt"
	"videogen/internal/providers/video"
	"videogen/internal/storage"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := video.New(video.Config{
		Name:           cfg.VideoProvider,
		ReplicateToken: cfg.ReplicateAPIToken,
		ReplicateModel: cfg.ReplicateModel,
		ReplicateURL:   cfg.ReplicateBaseURL,
		MockReadyAfter: cfg.MockReadyAfter,
		Logger:         &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure video provider")
	}

	store, closeStore := newJobStore(ctx, cfg, logger)
	defer closeStore()
	cache := jobs.NewCache(store, provider, logger)

	media, err := storage.NewFileStore(cfg.StaticDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open static directory")
	}

	fb, closeFeedback := newFeedbackStore(ctx, cfg, logger)
	defer closeFeedback()

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := &handlers.App{
		Jobs:             cache,
		Media:            media,
		FeedbackStore:    fb,
		Optimizer:        newOptimizer(cfg, logger),
		PlaceholderVideo: cfg.PlaceholderVideo,
		Logger:           logger,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins: strings.Split(cfg.AppOrigin, ","),
		CountryLookup:  resolver.Lookup(),
		GeneratePerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("provider", provider.Name()).
			Str("job_store", cfg.JobStore).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newJobStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (jobs.Store, func()) {
	if cfg.JobStore != infra.JobStoreRedis {
		return jobs.NewMemoryStore(), func() {}
	}
	client, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	return jobs.NewRedisStore(client, cfg.RedisPrefix, cfg.JobTTL), func() { _ = client.Close() }
}

func newFeedbackStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (feedback.Store, func()) {
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		pg := feedback.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			logger.Fatal().Err(err).Msg("failed to prepare feedback table")
		}
		return pg, pool.Close
	}
	files, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open data directory")
	}
	return feedback.NewFileStore(files, cfg.FeedbackFile), func() {}
}

func newOptimizer(cfg *infra.Config, logger zerolog.Logger) prompt.Optimizer {
	if cfg.OpenAIAPIKey == "" {
		return prompt.NewStaticOptimizer()
	}
	opt, err := prompt.NewOpenAIOptimizer(prompt.OpenAIOptions{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("openai optimizer disabled")
		return prompt.NewStaticOptimizer()
	}
	return opt
}
