// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pipeline keeps the cached state of every destination backend of a
// project. It owns one loader per remote collection, loads them concurrently
// and projects their current content into the ordered destination list.
package pipeline
