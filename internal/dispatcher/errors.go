// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package dispatcher

import (
	"errors"
	"fmt"

	"github.com/mia-platform/pdm/internal/destination"
)

// ErrInvalidDestination is returned for destinations whose identifier cannot address their backend.
var ErrInvalidDestination = errors.New("invalid destination")

// PermissionError is returned when the access policy forbids an intent. No remote call is made.
type PermissionError struct {
	Action  string
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func (e *PermissionError) Is(target error) bool {
	pe, ok := target.(*PermissionError)
	if !ok {
		return false
	}

	return e.Action == pe.Action && e.Message == pe.Message
}

// RemoteOperationError wraps the failure of the remote call backing an intent.
type RemoteOperationError struct {
	Action  string
	Backend destination.Backend
	ID      string
	err     error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Action, destination.DestinationKey(e.Backend, e.ID), e.err)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.err
}

// UnsupportedOperationError is returned for intents the backend of a destination cannot perform.
type UnsupportedOperationError struct {
	Action  string
	Backend destination.Backend
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s is not supported for %s destinations", e.Action, e.Backend)
}

func (e *UnsupportedOperationError) Unwrap() error {
	return errors.ErrUnsupported
}
