// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server exposes the destinations of a project over HTTP.
// It sets up the HTTP server using the Fiber framework, configures middleware for logging,
// and defines routes for health checks, the destination list and the user intents.
package server
