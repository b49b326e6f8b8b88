// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/mia-platform/pdm/internal/api"
	"github.com/mia-platform/pdm/internal/config"
	"github.com/mia-platform/pdm/internal/destination"
	"github.com/mia-platform/pdm/internal/dispatcher"
	"github.com/mia-platform/pdm/internal/notify"
	"github.com/mia-platform/pdm/internal/pipeline"
	"github.com/mia-platform/pdm/internal/server"
	"github.com/mia-platform/pdm/internal/telemetry"
	"github.com/mia-platform/pdm/internal/undo"
)

var (
	errNoArguments    = errors.New("no destination provided")
	errInvalidBackend = errors.New("invalid backend provided")
	errSessionConfig  = errors.New("error parsing session configuration from environment variables")

	// availableBackends holds the list of backends and their description
	// for command completion and help messages.
	availableBackends = map[destination.Backend]string{
		destination.BackendPlugin:      "Plugin destination",
		destination.BackendBatchExport: "Batch export",
		destination.BackendHogFunction: "Hog function",
	}
)

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errNoArguments):
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return nil
	case errors.Is(err, errInvalidBackend):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

// noArgs rejects any positional argument printing the command usage.
func noArgs(cmd *cobra.Command, args []string) error {
	err := cobra.NoArgs(cmd, args)
	if err != nil {
		cmd.PrintErrln(err)
		_ = cmd.Usage()
	}

	return err
}

// validArgsFunc provides shell completion of the backend argument.
func validArgsFunc(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var comps []string
	if len(args) == 0 {
		for _, backend := range destination.Backends {
			if strings.HasPrefix(string(backend), toComplete) {
				comps = append(comps, cobra.CompletionWithDesc(string(backend), availableBackends[backend]))
			}
		}
	}

	return comps, cobra.ShellCompDirectiveNoFileComp
}

// platform is everything the commands need from the remote platform.
type platform interface {
	pipeline.Remote
	dispatcher.Remote
	undo.Marker
}

func remoteFromEnv() (platform, error) {
	client, err := api.NewClient()
	if err != nil {
		return nil, err
	}
	return client, nil
}

func serverFromEnv(ctx context.Context, services server.Services) (server.Server, error) {
	return server.NewServer(ctx, services)
}

// sessionConfig holds the environment settings of a session.
type sessionConfig struct {
	UndoWindow time.Duration `env:"UNDO_WINDOW" envDefault:"5s"`
	Telemetry  telemetry.Config
}

// session wires the components managing the destinations of a project.
type session struct {
	pipeline   *pipeline.Pipeline
	dispatcher *dispatcher.Dispatcher
	undo       *undo.Manager
	center     *notify.Center

	closeTelemetry func() error
}

func newSession(remote platform, access config.Access, cfg sessionConfig) *session {
	center := notify.NewCenter(0)
	capturer, closeTelemetry := telemetry.New(cfg.Telemetry)

	p := pipeline.New(remote, center, access.Viewer)
	manager := undo.NewManager(remote, center, cfg.UndoWindow)

	return &session{
		pipeline:       p,
		dispatcher:     dispatcher.New(remote, p, manager, access, capturer, center),
		undo:           manager,
		center:         center,
		closeTelemetry: closeTelemetry,
	}
}

// services returns the components backing the HTTP routes.
func (s *session) services() server.Services {
	return server.Services{
		Destinations:  s.pipeline,
		Dispatcher:    s.dispatcher,
		Undo:          s.undo,
		Notifications: s.center,
	}
}

// close makes pending deletions final and releases the telemetry sink.
func (s *session) close() error {
	s.undo.Close()
	return s.closeTelemetry()
}

func loadSessionConfig() (sessionConfig, error) {
	cfg, err := env.ParseAs[sessionConfig]()
	if err != nil {
		var aggregateErr env.AggregateError
		if errors.As(err, &aggregateErr) && len(aggregateErr.Errors) > 0 {
			err = aggregateErr.Errors[0]
		}
		return sessionConfig{}, fmt.Errorf("%w: %w", errSessionConfig, err)
	}

	return cfg, nil
}

func loadAccess(path string) (config.Access, error) {
	if path == "" {
		return config.DefaultAccess(), nil
	}

	return config.NewAccessFromPath(path)
}
