// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package undo implements deletions that take effect immediately but can be
// reverted for a limited time window.
package undo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mia-platform/pdm/internal/logger"
	"github.com/mia-platform/pdm/internal/notify"
)

const (
	loggerName = "pdm:undo"

	// DefaultWindow is used when a non positive window is configured.
	DefaultWindow = 5 * time.Second
)

var (
	// ErrExpired is returned when undoing a token that is unknown or past its window.
	ErrExpired = errors.New("undo window expired")
	// ErrClosed is returned by DeleteWithUndo after Close.
	ErrClosed = errors.New("undo manager closed")
)

// Marker flips the soft delete flag of a remote resource.
type Marker interface {
	SetDeleted(ctx context.Context, endpoint, id string, deleted bool) error
}

// Request describes a resource to delete.
type Request struct {
	// Endpoint is the collection the resource belongs to.
	Endpoint string
	ID       string
	// Name is shown to the user in the notification.
	Name string
	// Callback is invoked once with true if the deletion was undone, false when it became final.
	Callback func(undone bool)
}

// Pending is a deletion that can still be undone.
type Pending struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type entry struct {
	request Request
	pending Pending
	timer   *time.Timer
}

// Manager performs undoable deletions and tracks their undo windows.
type Manager struct {
	marker   Marker
	notifier notify.Notifier
	window   time.Duration

	lock    sync.Mutex
	pending map[string]*entry
	closed  bool
}

// NewManager returns a Manager deleting through marker and announcing undo tokens on notifier.
func NewManager(marker Marker, notifier notify.Notifier, window time.Duration) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Manager{
		marker:   marker,
		notifier: notifier,
		window:   window,
		pending:  make(map[string]*entry),
	}
}

// DeleteWithUndo marks the resource as deleted and opens its undo window.
// The callback is never invoked if the deletion itself fails.
func (m *Manager) DeleteWithUndo(ctx context.Context, request Request) (Pending, error) {
	log := logger.Named(ctx, loggerName, "endpoint", request.Endpoint, "id", request.ID)

	m.lock.Lock()
	closed := m.closed
	m.lock.Unlock()
	if closed {
		return Pending{}, ErrClosed
	}

	if err := m.marker.SetDeleted(ctx, request.Endpoint, request.ID, true); err != nil {
		return Pending{}, err
	}

	pending := Pending{
		Token:     uuid.NewString(),
		Name:      request.Name,
		ExpiresAt: time.Now().Add(m.window).UTC(),
	}

	m.lock.Lock()
	item := &entry{request: request, pending: pending}
	item.timer = time.AfterFunc(m.window, func() { m.expire(pending.Token) })
	m.pending[pending.Token] = item
	m.lock.Unlock()

	log.Debug("resource deleted, undo window open", "token", pending.Token, "expiresAt", pending.ExpiresAt)

	notification := notify.New(notify.LevelSuccess, fmt.Sprintf("%s has been deleted", request.Name))
	notification.UndoToken = pending.Token
	notification.ExpiresAt = pending.ExpiresAt
	m.notifier.Notify(ctx, notification)

	return pending, nil
}

// Undo restores the resource deleted with token if its window is still open.
func (m *Manager) Undo(ctx context.Context, token string) error {
	item, ok := m.take(token)
	if !ok {
		return ErrExpired
	}

	log := logger.Named(ctx, loggerName, "endpoint", item.request.Endpoint, "id", item.request.ID)
	if err := m.marker.SetDeleted(ctx, item.request.Endpoint, item.request.ID, false); err != nil {
		log.Error("restoring deleted resource failed", "error", err)
		notify.Errorf(ctx, m.notifier, "Restoring %s failed: %s", item.request.Name, err)
		m.finalize(item, false)
		return err
	}

	log.Debug("deletion undone")
	notify.Successf(ctx, m.notifier, "%s has been restored", item.request.Name)
	m.finalize(item, true)
	return nil
}

// Pending returns the deletions that can still be undone.
func (m *Manager) Pending() []Pending {
	m.lock.Lock()
	defer m.lock.Unlock()

	result := make([]Pending, 0, len(m.pending))
	for _, item := range m.pending {
		result = append(result, item.pending)
	}
	return result
}

// Close makes every pending deletion final and rejects new ones.
func (m *Manager) Close() {
	m.lock.Lock()
	m.closed = true
	items := make([]*entry, 0, len(m.pending))
	for token, item := range m.pending {
		item.timer.Stop()
		delete(m.pending, token)
		items = append(items, item)
	}
	m.lock.Unlock()

	for _, item := range items {
		m.finalize(item, false)
	}
}

func (m *Manager) expire(token string) {
	if item, ok := m.take(token); ok {
		m.finalize(item, false)
	}
}

// take removes the entry for token, stopping its timer.
func (m *Manager) take(token string) (*entry, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	item, ok := m.pending[token]
	if !ok {
		return nil, false
	}

	item.timer.Stop()
	delete(m.pending, token)
	return item, true
}

func (m *Manager) finalize(item *entry, undone bool) {
	if item.request.Callback != nil {
		item.request.Callback(undone)
	}
}
