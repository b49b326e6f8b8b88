// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package notify is the side channel used to report the outcome of loads and
// user intents back to whoever is presenting the destinations.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mia-platform/pdm/internal/logger"
)

const (
	loggerName = "pdm:notify"

	defaultCapacity = 100
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a message for the user.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	UndoToken string    `json:"undoToken,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	Time      time.Time `json:"time"`
}

// Notifier publishes notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification)
}

// New returns a Notification with a fresh id and the current time.
func New(level Level, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		Time:    time.Now().UTC(),
	}
}

// Errorf publishes an error notification on n.
func Errorf(ctx context.Context, n Notifier, format string, args ...any) {
	n.Notify(ctx, New(LevelError, fmt.Sprintf(format, args...)))
}

// Successf publishes a success notification on n.
func Successf(ctx context.Context, n Notifier, format string, args ...any) {
	n.Notify(ctx, New(LevelSuccess, fmt.Sprintf(format, args...)))
}

var _ Notifier = &Center{}

// Center logs every notification and keeps the most recent ones in memory.
type Center struct {
	capacity int

	lock   sync.RWMutex
	recent []Notification
}

// NewCenter returns a Center keeping at most capacity notifications.
// A non positive capacity uses the default.
func NewCenter(capacity int) *Center {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &Center{
		capacity: capacity,
		recent:   make([]Notification, 0, capacity),
	}
}

// Notify implements Notifier.
func (c *Center) Notify(ctx context.Context, notification Notification) {
	log := logger.FromContext(ctx).WithName(loggerName)
	switch notification.Level {
	case LevelError:
		log.Error(notification.Message, "notificationId", notification.ID)
	default:
		log.Info(notification.Message, "notificationId", notification.ID, "level", notification.Level)
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.recent) == c.capacity {
		c.recent = append(c.recent[:0], c.recent[1:]...)
	}
	c.recent = append(c.recent, notification)
}

// Recent returns the kept notifications, oldest first.
func (c *Center) Recent() []Notification {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return append([]Notification(nil), c.recent...)
}
