// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/pdm/internal/info"
	"github.com/mia-platform/pdm/internal/logger"
)

const (
	loggerName = "pdm:server"
)

type Server interface {
	App() *fiber.App
	Start() error
	Stop() error
	StartAsync(ctx context.Context)
}

type impServer struct {
	config

	app *fiber.App
}

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// NewServer returns a Server exposing the destinations of services over HTTP.
func NewServer(ctx context.Context, services Services) (Server, error) {
	cfg, err := LoadServerConfig()
	if err != nil {
		return nil, err
	}

	return &impServer{
		app:    newApp(ctx, cfg.DisableStartupMessage, services),
		config: *cfg,
	}, nil
}

func newApp(ctx context.Context, disableStartupMessage bool, services Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               info.AppName,
		DisableStartupMessage: disableStartupMessage,
		ErrorHandler:          errorHandler,
	})

	log := logger.FromContext(ctx)
	app.Use(logger.RequestMiddlewareLogger(log, []string{"/-/"}))

	var ready func() bool
	if services.Destinations != nil {
		ready = services.Destinations.Ready
	}
	statusRoutes(app, info.AppName, info.Version, ready)
	apiRoutes(app.Group("/api"), services)

	return app
}

func (s *impServer) App() *fiber.App {
	return s.app
}

func (s *impServer) Start() error {
	if err := s.app.Listen(fmt.Sprintf("%s:%d", s.HTTPHost, s.HTTPPort)); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *impServer) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *impServer) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}
