// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mia-platform/pdm/internal/destination"
	"github.com/mia-platform/pdm/internal/destination/writer"
	"github.com/mia-platform/pdm/internal/logger"
	"github.com/mia-platform/pdm/internal/server"
)

const (
	loggerName = "pdm:cmd"
)

// options holds the settings shared by every command.
type options struct {
	accessFile   string
	remoteGetter func() (platform, error)
}

// session builds a new session from the environment, the access file and the remote.
func (o *options) session() (*session, error) {
	cfg, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	access, err := loadAccess(o.accessFile)
	if err != nil {
		return nil, err
	}

	remote, err := o.remoteGetter()
	if err != nil {
		return nil, err
	}

	return newSession(remote, access, cfg), nil
}

// serveOptions holds the options set for the "serve" command.
type serveOptions struct {
	options
	serverGetter func(context.Context, server.Services) (server.Server, error)

	lock sync.Mutex
}

// execute serves the destinations until ctx is cancelled.
func (o *serveOptions) execute(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	log := logger.FromContext(ctx).WithName(loggerName)
	session, err := o.session()
	if err != nil {
		return err
	}
	defer session.close()

	srv, err := o.serverGetter(ctx, session.services())
	if err != nil {
		return err
	}

	session.pipeline.Start(ctx)
	srv.StartAsync(ctx)
	log.Info("serving destinations")

	<-ctx.Done()
	log.Info("stopping server")
	return srv.Stop()
}

// listOptions holds the options set for the "list" command.
type listOptions struct {
	options
	enabledOnly bool
	writer      *writer.Writer
	errOut      io.Writer
}

// execute prints the destinations that could be loaded. The load error, if
// any, is returned after printing.
func (o *listOptions) execute(ctx context.Context) error {
	session, err := o.session()
	if err != nil {
		return err
	}
	defer session.close()

	loadErr := session.pipeline.Load(ctx)

	destinations := session.pipeline.Destinations()
	if o.enabledOnly {
		enabled := make([]destination.Destination, 0, len(destinations))
		for _, d := range destinations {
			if d.Enabled {
				enabled = append(enabled, d)
			}
		}
		destinations = enabled
	}

	if err := o.writer.WriteList(destinations); err != nil {
		return err
	}

	if loadErr != nil {
		fmt.Fprintln(o.errOut, "the list is partial, some destinations could not be loaded")
	}
	return loadErr
}

// targetOptions holds the options of the commands acting on a single destination.
type targetOptions struct {
	options
	args []string

	backend destination.Backend
	id      string
}

// validate validates the target arguments and returns an error if something is wrong.
func (o *targetOptions) validate() error {
	if len(o.args) < 2 {
		return errNoArguments
	}

	backend, ok := destination.ParseBackend(o.args[0])
	if !ok {
		return fmt.Errorf("%w: %s", errInvalidBackend, o.args[0])
	}

	o.backend = backend
	o.id = o.args[1]
	return nil
}

// target loads the destinations and returns the one addressed by the arguments.
func (o *targetOptions) target(ctx context.Context, s *session) (destination.Destination, error) {
	loadErr := s.pipeline.Load(ctx)
	target, err := s.pipeline.Find(o.backend, o.id)
	if err != nil {
		return destination.Destination{}, errors.Join(err, loadErr)
	}
	return target, nil
}

// toggleOptions holds the options set for the "toggle" command.
type toggleOptions struct {
	targetOptions
	enabled bool
	out     io.Writer
}

// execute toggles the target destination.
func (o *toggleOptions) execute(ctx context.Context) error {
	session, err := o.session()
	if err != nil {
		return err
	}
	defer session.close()

	target, err := o.target(ctx, session)
	if err != nil {
		return err
	}

	if err := session.dispatcher.Toggle(ctx, target, o.enabled); err != nil {
		return err
	}

	state := "disabled"
	if o.enabled {
		state = "enabled"
	}
	fmt.Fprintf(o.out, "%s has been %s\n", target.Name, state)
	return nil
}

// deleteOptions holds the options set for the "delete" command.
type deleteOptions struct {
	targetOptions
	in  io.Reader
	out io.Writer
}

// execute deletes the target destination. When the deletion can be undone it
// waits for the undo window, restoring the destination if a line is read from in.
func (o *deleteOptions) execute(ctx context.Context) error {
	session, err := o.session()
	if err != nil {
		return err
	}
	defer session.close()

	target, err := o.target(ctx, session)
	if err != nil {
		return err
	}

	if err := session.dispatcher.Delete(ctx, target); err != nil {
		return err
	}

	pending := session.undo.Pending()
	if len(pending) == 0 {
		fmt.Fprintf(o.out, "%s has been deleted\n", target.Name)
		return nil
	}

	deleted := pending[0]
	window := time.Until(deleted.ExpiresAt)
	fmt.Fprintf(o.out, "%s has been deleted, press enter within %s to undo\n", target.Name, window.Round(time.Second))

	if !o.waitForUndo(ctx, window) {
		return nil
	}

	if err := session.undo.Undo(ctx, deleted.Token); err != nil {
		return err
	}
	fmt.Fprintf(o.out, "%s has been restored\n", target.Name)
	return nil
}

// waitForUndo reports whether a line was read from in before window elapsed.
func (o *deleteOptions) waitForUndo(ctx context.Context, window time.Duration) bool {
	lines := make(chan bool, 1)
	go func() {
		_, err := bufio.NewReader(o.in).ReadString('\n')
		lines <- err == nil
	}()

	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case read := <-lines:
		return read
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
