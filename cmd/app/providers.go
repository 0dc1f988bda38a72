package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/gopher-digest/internal/domain/digest"
	"github.com/yanqian/gopher-digest/internal/domain/extraction"
	"github.com/yanqian/gopher-digest/internal/domain/summarizer"
	"github.com/yanqian/gopher-digest/internal/infra/articlerepo"
	"github.com/yanqian/gopher-digest/internal/infra/config"
	"github.com/yanqian/gopher-digest/internal/infra/fetcher"
	"github.com/yanqian/gopher-digest/internal/infra/llm/chatgpt"
	"github.com/yanqian/gopher-digest/internal/infra/snapshot"
	"github.com/yanqian/gopher-digest/internal/infra/summarycache"
)

func provideExtractionConfig(cfg *config.Config) extraction.Config {
	return extraction.Config{
		MinContentLength:  cfg.Extraction.MinContentLength,
		StructuredTimeout: cfg.Extraction.StructuredTimeout,
		MarkupTimeout:     cfg.Extraction.MarkupTimeout,
		UserAgent:         cfg.Extraction.UserAgent,
	}
}

func provideFetcher(cfg *config.Config, logger *slog.Logger) (*fetcher.Client, error) {
	return fetcher.NewClient(cfg.Extraction, logger)
}

func provideSummaryConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		MaxInputChars: cfg.Summary.MaxInputChars,
		MinTags:       cfg.Summary.MinTags,
		MaxTags:       cfg.Summary.MaxTags,
		SystemPrompt:  cfg.Summary.SystemPrompt,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM)
}

func provideDigestConfig(cfg *config.Config) digest.Config {
	return digest.Config{CacheTTL: cfg.Cache.TTL}
}

func provideSummaryCache(cfg *config.Config, logger *slog.Logger) (digest.Cache, func()) {
	noop := func() {}
	if !cfg.Cache.Enabled {
		logger.Info("summary cache disabled")
		return nil, noop
	}
	fallback := summarycache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL)
	if strings.TrimSpace(cfg.Cache.Valkey.Addr) == "" {
		logger.Info("valkey addr not set, using memory cache")
		return fallback, noop
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return fallback, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return fallback, noop
	}
	logger.Info("valkey summary cache enabled", "addr", cfg.Cache.Valkey.Addr)
	return summarycache.NewValkeyCache(client, cfg.Cache.Valkey.Prefix), client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Valkey.Addr}}, nil
}

func provideArticleArchive(cfg *config.Config, logger *slog.Logger) (digest.Archive, func()) {
	noop := func() {}
	fallback := articlerepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Archive.Postgres.DSN)
	if dsn == "" {
		logger.Info("archive postgres dsn not set, using memory repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback, noop
	}
	if cfg.Archive.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Archive.Postgres.MaxConns
	}
	if cfg.Archive.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Archive.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	repo := articlerepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("archive schema setup failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("archive postgres repository enabled")
	return repo, pool.Close
}

func provideSnapshotStore(cfg *config.Config, logger *slog.Logger) (digest.SnapshotStore, error) {
	if !cfg.Snapshot.Enabled {
		return nil, nil
	}
	store, err := snapshot.NewS3Store(cfg.Snapshot, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("extracted text snapshots enabled", "bucket", cfg.Snapshot.Bucket)
	return store, nil
}
