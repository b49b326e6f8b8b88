// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package fake provides a Server that never listens, to use in tests of the commands.
package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/pdm/internal/server"
)

var _ server.Server = &Server{}

type Server struct {
	tb  testing.TB
	app *fiber.App

	startedChan chan struct{}
	closedChan  chan struct{}
	startOnce   sync.Once
	stopOnce    sync.Once
}

func NewFakeServer(tb testing.TB) *Server {
	tb.Helper()

	return &Server{
		tb:          tb,
		app:         fiber.New(fiber.Config{DisableStartupMessage: true}),
		startedChan: make(chan struct{}),
		closedChan:  make(chan struct{}),
	}
}

func (s *Server) App() *fiber.App {
	s.tb.Helper()
	return s.app
}

func (s *Server) Start() error {
	s.tb.Helper()
	s.startOnce.Do(func() { close(s.startedChan) })
	<-s.closedChan
	return nil
}

func (s *Server) Stop() error {
	s.tb.Helper()
	s.stopOnce.Do(func() { close(s.closedChan) })
	return nil
}

func (s *Server) StartAsync(_ context.Context) {
	s.tb.Helper()
	go func() { _ = s.Start() }()
}

func (s *Server) StartedServer() <-chan struct{} {
	s.tb.Helper()
	return s.startedChan
}

func (s *Server) StoppedServer() <-chan struct{} {
	s.tb.Helper()
	return s.closedChan
}
