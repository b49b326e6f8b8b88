// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/pdm/internal/destination"
	"github.com/mia-platform/pdm/internal/dispatcher"
	"github.com/mia-platform/pdm/internal/logger"
	"github.com/mia-platform/pdm/internal/notify"
	"github.com/mia-platform/pdm/internal/pipeline"
	"github.com/mia-platform/pdm/internal/undo"
)

// DestinationStore is the cached destination state served by the API.
type DestinationStore interface {
	Destinations() []destination.Destination
	Find(backend destination.Backend, id string) (destination.Destination, error)
	Loading() bool
	Ready() bool
	Load(ctx context.Context) error
}

// Dispatcher performs the user intents.
type Dispatcher interface {
	Toggle(ctx context.Context, dest destination.Destination, enabled bool) error
	Delete(ctx context.Context, dest destination.Destination) error
	Availability(dest destination.Destination) dispatcher.Availability
}

// Undoer restores deletions within their undo window.
type Undoer interface {
	Undo(ctx context.Context, token string) error
	Pending() []undo.Pending
}

// NotificationSource returns the notifications to show to the user.
type NotificationSource interface {
	Recent() []notify.Notification
}

// Services are the components backing the API routes.
type Services struct {
	Destinations  DestinationStore
	Dispatcher    Dispatcher
	Undo          Undoer
	Notifications NotificationSource
}

type listedDestination struct {
	destination.Destination
	Actions dispatcher.Availability `json:"actions"`
}

type listResponse struct {
	Loading bool                `json:"loading"`
	Results []listedDestination `json:"results"`
	Errors  []string            `json:"errors,omitempty"`
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func apiRoutes(router fiber.Router, services Services) {
	h := &handlers{Services: services}

	router.Get("/destinations", h.list)
	router.Post("/destinations/:backend/:id/toggle", h.toggle)
	router.Delete("/destinations/:backend/:id", h.delete)
	router.Get("/undo", h.pending)
	router.Post("/undo/:token", h.undo)
	router.Post("/reload", h.reload)
	router.Get("/notifications", h.notifications)
}

type handlers struct {
	Services
}

func (h *handlers) list(c *fiber.Ctx) error {
	return c.JSON(h.snapshot(c.QueryBool("enabled")))
}

func (h *handlers) snapshot(enabledOnly bool) listResponse {
	destinations := h.Destinations.Destinations()
	results := make([]listedDestination, 0, len(destinations))
	for _, d := range destinations {
		if enabledOnly && !d.Enabled {
			continue
		}
		results = append(results, listedDestination{Destination: d, Actions: h.Dispatcher.Availability(d)})
	}

	return listResponse{Loading: h.Destinations.Loading(), Results: results}
}

func (h *handlers) toggle(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return err
	}

	var body toggleRequest
	if err := c.BodyParser(&body); err != nil || body.Enabled == nil {
		return fiber.NewError(http.StatusBadRequest, "body must contain the enabled boolean field")
	}

	if err := h.Dispatcher.Toggle(c.UserContext(), target, *body.Enabled); err != nil {
		return err
	}

	updated, err := h.Destinations.Find(target.Backend, target.ID)
	if err != nil {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.JSON(listedDestination{Destination: updated, Actions: h.Dispatcher.Availability(updated)})
}

func (h *handlers) delete(c *fiber.Ctx) error {
	target, err := h.target(c)
	if err != nil {
		return err
	}

	if err := h.Dispatcher.Delete(c.UserContext(), target); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *handlers) target(c *fiber.Ctx) (destination.Destination, error) {
	backend, ok := destination.ParseBackend(c.Params("backend"))
	if !ok {
		return destination.Destination{}, fiber.NewError(http.StatusBadRequest, "unknown backend "+c.Params("backend"))
	}

	return h.Destinations.Find(backend, c.Params("id"))
}

func (h *handlers) pending(c *fiber.Ctx) error {
	return c.JSON(h.Undo.Pending())
}

func (h *handlers) undo(c *fiber.Ctx) error {
	if err := h.Undo.Undo(c.UserContext(), c.Params("token")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *handlers) reload(c *fiber.Ctx) error {
	var loadErrs []string
	if err := h.Destinations.Load(c.UserContext()); err != nil {
		loadErrs = append(loadErrs, splitJoined(err)...)
	}

	response := h.snapshot(false)
	response.Errors = loadErrs
	return c.JSON(response)
}

func (h *handlers) notifications(c *fiber.Ctx) error {
	return c.JSON(h.Notifications.Recent())
}

func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		messages := make([]string, 0, len(joined.Unwrap()))
		for _, inner := range joined.Unwrap() {
			messages = append(messages, inner.Error())
		}
		return messages
	}
	return []string{err.Error()}
}

// errorStatus maps the errors of the destination components to HTTP statuses.
func errorStatus(err error) int {
	var fiberErr *fiber.Error
	var permissionErr *dispatcher.PermissionError
	var remoteErr *dispatcher.RemoteOperationError

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &permissionErr):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrDestinationNotFound):
		return http.StatusNotFound
	case errors.Is(err, dispatcher.ErrInvalidDestination):
		return http.StatusBadRequest
	case errors.Is(err, undo.ErrExpired):
		return http.StatusGone
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.UserContext()).WithName(loggerName).Error("request failed", "error", err)
	}

	return c.Status(status).JSON(errorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    err.Error(),
	})
}
