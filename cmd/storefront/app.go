package main

import (
	"fmt"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/logger"
	"github.com/deppfellow/storefront/internal/repository"
	"github.com/deppfellow/storefront/internal/server"
	"github.com/deppfellow/storefront/internal/service"
	"github.com/rs/zerolog"
)

// app is the wired application shared by the commands.
type app struct {
	cfg           *config.Config
	log           *zerolog.Logger
	loggerService *logger.LoggerService
	server        *server.Server
	services      *service.Services
}

// loadLogging reads the configuration and builds the logger.
func loadLogging() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)
	return cfg, &log, loggerService, nil
}

// newApp connects to Postgres and Redis and builds every service.
func newApp() (*app, error) {
	cfg, log, loggerService, err := loadLogging()
	if err != nil {
		return nil, err
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	return &app{
		cfg:           cfg,
		log:           log,
		loggerService: loggerService,
		server:        srv,
		services:      services,
	}, nil
}
