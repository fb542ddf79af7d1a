package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	v1 "github.com/storylingo/storylingo/gen/proto/auth/v1"
	"github.com/storylingo/storylingo/internal/authn"
	"github.com/storylingo/storylingo/internal/common"
	"github.com/storylingo/storylingo/internal/repository"
	"github.com/storylingo/storylingo/internal/server"
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
	httpAddr := listenAddr(cfg.Server.HTTPAddr, ":8001")
	grpcAddr := listenAddr(cfg.Server.GRPCAddr, ":9001")

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

	verifier, err := authn.NewFirebaseVerifier(ctx, cfg.Auth.CredentialsFile, logger)
	if err != nil {
		logger.Error("failed to init token verifier", "error", err)
		os.Exit(1)
	}
	users := repository.NewUserRepository(entc, logger)

	// gRPC surface: token verification for the sibling services
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", grpcAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	v1.RegisterAuthServiceServer(grpcServer, server.NewAuthService(verifier, users, logger))

	// Register gRPC health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	logger.Info("authd grpc listening", "addr", grpcAddr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	// HTTP surface: verify-and-sync plus the profile bootstrap endpoints
	handlers := server.NewAuthHandlers(verifier, verifier, users, logger)
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
	grpcServer.GracefulStop()
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
