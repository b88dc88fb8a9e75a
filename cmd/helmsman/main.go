package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"helmsman/internal/app"
	"helmsman/internal/config"
	"helmsman/internal/logger"
)

func main() {
	cfgPath := os.Getenv("HELMSMAN_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config failed: %v", err)
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		log.Fatalf("initializing log file failed: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.App.LogLevel)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("initializing application failed: %v", err)
	}
	defer application.Close()

	mode := "supervise"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "supervise":
		outcome := application.Supervise(ctx)
		logger.Infof("startup outcome: phase=%s exit=%d degraded=%v reason=%s",
			outcome.Phase, outcome.ExitCode, outcome.Degraded, outcome.Reason)
		// os.Exit skips deferred cleanup, so release resources here.
		application.Close()
		if logFile != nil {
			logFile.Close()
		}
		os.Exit(outcome.ExitCode)
	case "run":
		if err := application.RunBot(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("session failed: %v", err)
		}
	default:
		log.Fatalf("unknown mode %q (expected supervise or run)", mode)
	}
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
