// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package api

import (
	"errors"
	"net/http"
	"strconv"
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("invalid token or insufficient permissions")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")
	// ErrUnexpected is returned when the platform error carries no message.
	ErrUnexpected = errors.New("unexpected error")
)

// APIError wraps errors produced while talking with the platform.
type APIError struct {
	StatusCode int
	err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return "api: " + e.err.Error()
	}
	return "api: " + strconv.Itoa(e.StatusCode) + " " + e.err.Error()
}

func (e *APIError) Unwrap() error {
	return e.err
}

func (e *APIError) Is(target error) bool {
	ae, ok := target.(*APIError)
	if !ok {
		return false
	}

	return e.StatusCode == ae.StatusCode && e.err.Error() == ae.err.Error()
}

func handleError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return &APIError{err: err}
}

func statusError(statusCode int, message string) error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &APIError{StatusCode: statusCode, err: ErrUnauthorized}
	case statusCode == http.StatusNotFound:
		return &APIError{StatusCode: statusCode, err: ErrNotFound}
	case message != "":
		return &APIError{StatusCode: statusCode, err: errors.New(message)}
	default:
		return &APIError{StatusCode: statusCode, err: ErrUnexpected}
	}
}
