// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	forwardedHostHeaderKey = "x-forwarded-host"
	forwardedForHeaderKey  = "x-forwarded-for"
	requestIDHeaderName    = "x-request-id"

	IncomingRequestMessage  = "incoming request"
	RequestCompletedMessage = "request completed"
)

// httpInfo is the structured http section of a request log line.
type httpInfo struct {
	Method     string `json:"method,omitempty"`
	UserAgent  string `json:"userAgent,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	BodyBytes  int    `json:"bodyBytes,omitempty"`
}

// hostInfo has the host information.
type hostInfo struct {
	Hostname      string `json:"hostname,omitempty"`
	ForwardedHost string `json:"forwardedHost,omitempty"`
	IP            string `json:"ip,omitempty"`
}

func removePort(host string) string {
	return strings.Split(host, ":")[0]
}

// requestID returns the request id received from the caller or a new random one.
func requestID(c *fiber.Ctx) string {
	if id := c.Get(requestIDHeaderName); id != "" {
		return id
	}

	return uuid.NewString()
}

func host(c *fiber.Ctx) hostInfo {
	return hostInfo{
		ForwardedHost: c.Get(forwardedHostHeaderKey),
		Hostname:      removePort(c.Hostname()),
		IP:            c.Get(forwardedForHeaderKey),
	}
}

// statusCode returns the status that fiber will send for err, or the one already set.
func statusCode(c *fiber.Ctx, err error) int {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return fiberErr.Code
	}

	return c.Response().StatusCode()
}

// RequestMiddlewareLogger is a fiber middleware to log all requests.
// It logs the incoming request and, when completed, its status and latency.
// Requests whose path starts with one of excludedPrefix are not logged.
func RequestMiddlewareLogger(logger Logger, excludedPrefix []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, prefix := range excludedPrefix {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		start := time.Now()
		log := logger.WithName("request").With("requestId", requestID(c))
		c.SetUserContext(WithContext(c.UserContext(), log))

		log.Trace(IncomingRequestMessage,
			"http", httpInfo{Method: c.Method(), UserAgent: c.Get(fiber.HeaderUserAgent)},
			"url", path,
			"host", host(c),
		)

		err := c.Next()

		log.Info(RequestCompletedMessage,
			"http", httpInfo{
				Method:     c.Method(),
				UserAgent:  c.Get(fiber.HeaderUserAgent),
				StatusCode: statusCode(c, err),
				BodyBytes:  len(c.Response().Body()),
			},
			"url", path,
			"host", host(c),
			"responseTime", float64(time.Since(start).Milliseconds()),
		)

		return err
	}
}
