package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"smartshopper/internal/assistant/intent"
	"smartshopper/internal/assistant/planner"
	"smartshopper/internal/assistant/session"
	"smartshopper/internal/catalog"
	"smartshopper/internal/common/config"
	"smartshopper/internal/common/database"
	"smartshopper/internal/common/logger"
	"smartshopper/internal/common/observability"
	"smartshopper/internal/interaction"
	transport "smartshopper/internal/transport/http"
	"smartshopper/pkg/vocabulary"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("catalogAdapter", cfg.Catalog.Adapter),
	)

	obs := observability.New("assistant-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis (session store) with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL (interaction log) with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	checks := map[string]transport.HealthChecker{
		"redis":    redisClient.Ping,
		"postgres": pg.Ping,
	}

	// --- Init catalog backend ---
	querier, esClient, err := buildCatalog(cfg, zapLog, log)
	if err != nil {
		zapLog.Fatal("catalog init failed", zap.Error(err))
	}
	if esClient != nil {
		checks["elasticsearch"] = func(context.Context) error { return esClient.Ping() }
	}

	// --- Build the dialogue core ---
	vocab, err := buildVocabulary(cfg)
	if err != nil {
		zapLog.Fatal("vocabulary load failed", zap.Error(err))
	}

	extractor, err := intent.NewExtractor(vocab)
	if err != nil {
		zapLog.Fatal("extractor init failed", zap.Error(err))
	}

	pl := planner.New(planner.Questions{
		Category: cfg.Assistant.Questions.Category,
		Color:    cfg.Assistant.Questions.Color,
		Size:     cfg.Assistant.Questions.Size,
		PriceMax: cfg.Assistant.Questions.PriceMax,
	})

	recorder := interaction.NewPostgresRecorder(pg.DB)

	engine := session.NewEngine(
		&session.Config{
			Greeting:    cfg.Assistant.Greeting,
			AdapterName: cfg.Catalog.Adapter,
		},
		extractor, pl, querier, recorder, obs, log,
	)

	store := session.NewRedisStore(
		redisClient.Client,
		cfg.Session.KeyPrefix,
		time.Duration(cfg.Session.TTL)*time.Minute,
	)

	server := transport.NewServer(
		&transport.Config{AllowedOrigins: cfg.Server.AllowedOrigins},
		engine, store, checks, log,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}

// buildCatalog wires the configured catalog backend. The Elasticsearch client
// is returned separately so the health endpoint can ping it.
func buildCatalog(cfg *config.Config, zapLog *zap.Logger, log logger.Logger) (catalog.Querier, *database.ElasticsearchClient, error) {
	switch cfg.Catalog.Adapter {
	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return nil, nil, err
		}
		zapLog.Info("Elasticsearch connected successfully")
		timeout := time.Duration(cfg.Catalog.Timeout) * time.Millisecond
		return catalog.NewElasticsearch(esClient.Client, cfg.Catalog.Index, cfg.Catalog.PageSize, timeout, log), esClient, nil

	case "shopify":
		return catalog.NewShopify(
			cfg.Catalog.Shopify.StoreURL,
			cfg.Catalog.Shopify.AccessToken,
			cfg.Catalog.Shopify.APIVersion,
			cfg.Catalog.PageSize,
			log,
		), nil, nil

	case "memory":
		var items []catalog.Item
		if cfg.Catalog.ItemsFile != "" {
			var err error
			items, err = catalog.LoadItems(cfg.Catalog.ItemsFile)
			if err != nil {
				return nil, nil, err
			}
		}
		return catalog.NewMemory(items, cfg.Catalog.PageSize), nil, nil
	}

	return nil, nil, fmt.Errorf("unknown catalog adapter %q", cfg.Catalog.Adapter)
}

// buildVocabulary resolves the extraction vocabulary: a pack file when
// configured, otherwise the inline config vocabularies, otherwise the
// built-in defaults.
func buildVocabulary(cfg *config.Config) (intent.Vocabulary, error) {
	vc := cfg.Assistant.Vocabulary

	if vc.PackPath != "" {
		pack, err := vocabulary.Load(vc.PackPath)
		if err != nil {
			return intent.Vocabulary{}, err
		}
		return intent.Vocabulary{
			Categories: pack.Categories,
			Styles:     pack.Styles,
			Colors:     pack.Colors,
			Sizes:      pack.Sizes,
		}, nil
	}

	if len(vc.Categories) > 0 || len(vc.Colors) > 0 {
		return intent.Vocabulary{
			Categories: vc.Categories,
			Styles:     vc.Styles,
			Colors:     vc.Colors,
			Sizes:      vc.Sizes,
		}, nil
	}

	return intent.DefaultVocabulary(), nil
}
