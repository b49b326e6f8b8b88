// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"context"
)

type loggerKey struct{}

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger carried by ctx or a null logger.
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return nullLogger
	}

	if logger, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return logger
	}
	return nullLogger
}

// Named returns the logger carried by ctx renamed to name. The optional
// key/value pairs are attached to every line it emits.
func Named(ctx context.Context, name string, args ...any) Logger {
	log := FromContext(ctx).WithName(name)
	if len(args) > 0 {
		log = log.With(args...)
	}
	return log
}
