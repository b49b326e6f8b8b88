// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package dispatcher turns user intents on a destination into the operation of
// the backend owning it. It enforces the access policy before calling the
// remote and reconciles the cached state only after the remote confirmed the
// change. Every failure is also published on the notification side channel.
package dispatcher
