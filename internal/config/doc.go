// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config reads the access file describing who is looking at the
// destinations and what they are allowed to do with them.
package config
