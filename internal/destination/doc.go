// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package destination defines the raw resources backing a data export destination
// and the pure functions that turn them into a single ordered list.
//
// A Destination can be backed by a plugin config, a batch export or a hog function.
// Normalize converts any of them into the common shape and Aggregate builds the
// list presented to a viewer: internal batch exports hidden, enabled destinations first.
package destination
