// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package api is the REST client for the analytics platform resources backing
// destinations: plugins, plugin configs, batch exports, hog functions and their
// templates. Collections are fetched draining every page; mutations are sent once.
package api
