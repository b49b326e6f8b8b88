// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

type statusResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// statusRoutes registers the liveness and readiness probes.
func statusRoutes(app *fiber.App, serviceName, serviceVersion string, ready func() bool) {
	app.Get("/-/healthz", func(c *fiber.Ctx) error {
		return c.JSON(statusResponse{Status: "OK", Name: serviceName, Version: serviceVersion})
	})

	app.Get("/-/ready", func(c *fiber.Ctx) error {
		if ready != nil && !ready() {
			return c.Status(http.StatusServiceUnavailable).JSON(statusResponse{Status: "KO", Name: serviceName, Version: serviceVersion})
		}
		return c.JSON(statusResponse{Status: "OK", Name: serviceName, Version: serviceVersion})
	})
}
