package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	v1 "github.com/storylingo/storylingo/gen/proto/auth/v1"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/export"
	"github.com/storylingo/storylingo/internal/repository"
	"github.com/storylingo/storylingo/internal/server"
	"github.com/storylingo/storylingo/internal/translate"
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
	httpAddr := listenAddr(cfg.Server.HTTPAddr, ":8004")

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

	conn, err := grpc.NewClient(cfg.Auth.VerifyAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Error("failed to dial auth service", "addr", cfg.Auth.VerifyAddr, "error", err)
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()
	resolver := server.NewGRPCResolver(v1.NewAuthServiceClient(conn), logger)

	upstream := translate.NewLingueeClient(cfg.Translate.LingueeURL, cfg.Translate.Timeout, logger)
	cache := translate.NewTTLCache(cfg.Translate.CacheSize, cfg.Translate.CacheTTL)
	service := translate.NewService(upstream, cache, logger)

	vocab := repository.NewVocabularyRepository(entc, logger)
	exporter := export.NewService(vocab, logger)
	handlers := server.NewTranslateHandlers(service, vocab, exporter, resolver, logger)

	httpSrv := server.NewHTTPServer(httpAddr, server.WithRequestLog(logger, server.WithCORS(handlers.Routes())), logger)
	if err := httpSrv.Start(ctx); err != nil {
		logger.Error("failed to start http server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func listenAddr(addr, def string) string {
	if addr == "" {
		addr = def
	}
	if !strings.HasPrefix(addr, ":") && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return addr
}
