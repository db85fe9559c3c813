package main

import (
	"context"
	"fmt"
	"os"

	"github.com/talentradar/signal-engine/internal/api"
	"github.com/talentradar/signal-engine/internal/bootstrap"
	"github.com/talentradar/signal-engine/internal/config"
	"github.com/talentradar/signal-engine/internal/logger"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "signal-engine: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.GetConfigPath(defaultConfigPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting signal engine",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.String("pipeline", cfg.Service.Pipeline),
		logger.Int("port", cfg.Service.Port),
	)

	ctx := context.Background()
	comps, err := bootstrap.NewComponents(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer comps.Close()

	server := api.NewServer(api.ServerConfig{
		Name:      cfg.Service.Name,
		Version:   cfg.Service.Version,
		Port:      cfg.Service.Port,
		Debug:     cfg.Service.Debug,
		JWTSecret: cfg.Auth.JWTSecret,
	}, comps.Handler, log)

	return server.RunWithGracefulShutdown(ctx)
}
