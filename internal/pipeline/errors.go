// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"errors"

	"github.com/mia-platform/pdm/internal/destination"
)

// ErrDestinationNotFound is wrapped by the error returned when a destination is not in the cached state.
var ErrDestinationNotFound = errors.New("destination not found")

type notFoundError struct {
	Backend destination.Backend
	ID      string
}

func (e *notFoundError) Error() string {
	return "destination " + destination.DestinationKey(e.Backend, e.ID) + " not found"
}

func (e *notFoundError) Unwrap() error {
	return ErrDestinationNotFound
}
