// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package writer prints destination lists as a text table, JSON or YAML.
package writer
