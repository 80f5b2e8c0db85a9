package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"absensi/internal/app/server"
	"absensi/internal/platform/config"
	"absensi/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	zl := logger.New(cfg.LogLevel, cfg.Environment)
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, zl)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
