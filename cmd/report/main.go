package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/brightops/adpulse/internal/config"
	"github.com/brightops/adpulse/internal/pkg/logger"
	"github.com/brightops/adpulse/internal/runner"
	"github.com/brightops/adpulse/internal/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	serve := flag.Bool("serve", false, "Serve previously generated reports instead of running one")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "path", *configPath, "error", err.Error())
		os.Exit(1)
	}

	if *serve {
		serveReports(cfg)
		return
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	r, err := runner.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize", "error", err.Error())
		os.Exit(1)
	}

	if err := r.Run(ctx); err != nil {
		logger.Error("report run failed", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("report run complete")
}

func serveReports(cfg *config.Config) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := server.New(cfg.Storage.LocalPath)

	logger.Info("serving reports", "addr", addr, "dir", cfg.Storage.LocalPath)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		logger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}
