// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps hclog behind a small leveled interface and carries loggers
// through context values and fiber request handlers.
package logger
