// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package loader keeps the in-memory copy of a remote collection.
// A Loader owns an ordered mapping from resource id to resource that is replaced
// as a whole by a successful fetch and mutated item by item after confirmed
// remote operations.
package loader
