package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/storylingo/storylingo/internal/async"
	"github.com/storylingo/storylingo/internal/blob"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/llm/openai"
	pipeline "github.com/storylingo/storylingo/internal/pipeline"
	"github.com/storylingo/storylingo/internal/repository"
)

func main() {
	// Structured logger that prints messages and fields but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.ValidateDatabase(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateBlob(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateLLM(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entc, pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(entc, pool, logger)

	if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	store, err := blob.NewAzureStore(ctx, cfg.Blob.ConnectionString, cfg.Blob.Container, logger)
	if err != nil {
		logger.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}

	jobs := repository.NewGenerationJobRepository(entc, logger)
	books := repository.NewBookRepository(entc, logger)

	gen := openai.NewClient(openai.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	outline := pipeline.NewOutlineStage(jobs, store, gen, logger)
	chunks := pipeline.NewChunkStage(jobs, store, gen, logger)
	assemble := pipeline.NewAssembleStage(jobs, books, store, logger)
	proc := pipeline.NewProcessor(logger, jobs, outline, chunks, assemble)

	queue := async.NewJobQueue(proc, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithJobTimeout(cfg.Worker.JobTimeout),
	)

	loop := pipeline.NewClaimLoop(jobs, queue, logger, cfg.Worker.ClaimEvery, cfg.Worker.ClaimBatch)
	logger.Info("story worker started",
		"workers", cfg.Worker.Workers,
		"claim_every", cfg.Worker.ClaimEvery.String(),
		"claim_batch", cfg.Worker.ClaimBatch)

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("claim loop failed", "error", err)
	}

	// Let in-flight generations finish before exiting.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.JobTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
}
