// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package telemetry captures the product analytics events emitted when
// destinations change state.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mia-platform/pdm/internal/logger"
)

const loggerName = "pdm:telemetry"

// Event is a single analytics event.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"event"`
	Properties map[string]any `json:"properties,omitempty"`
	Time       time.Time      `json:"timestamp"`
}

// NewEvent returns an Event with a fresh id and the current time.
func NewEvent(name string, properties map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		Properties: properties,
		Time:       time.Now().UTC(),
	}
}

// Capturer records analytics events. Capturing never fails the caller.
type Capturer interface {
	Capture(ctx context.Context, event Event)
}

var _ Capturer = LogCapturer{}

// LogCapturer writes every event to the context logger.
type LogCapturer struct{}

func (LogCapturer) Capture(ctx context.Context, event Event) {
	logger.FromContext(ctx).WithName(loggerName).Info("event captured", "event", event.Name, "eventId", event.ID, "properties", event.Properties)
}
