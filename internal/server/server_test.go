// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	t.Run("successfully creates app with valid config", func(t *testing.T) {
		ctx := t.Context()
		t.Setenv("HTTP_PORT", "3000")

		srv, err := NewServer(ctx, newTestServices(t).Services)
		require.NoError(t, err)
		require.NotNil(t, srv)

		app := srv.App()
		require.NotNil(t, app)
		defer app.Shutdown()

		request := httptest.NewRequest(http.MethodGet, "/-/healthz", nil)
		response, err := app.Test(request)
		require.NoError(t, err)

		defer response.Body.Close()
		require.Equal(t, http.StatusOK, response.StatusCode)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "0")

		srv, err := NewServer(t.Context(), Services{})
		require.ErrorIs(t, err, ErrEnvVariablesNotValid)
		require.Nil(t, srv)
	})
}

func TestStartServer(t *testing.T) {
	t.Run("starts and stops the server successfully", func(t *testing.T) {
		ctx := t.Context()
		t.Setenv("HTTP_PORT", "3001")
		t.Setenv("HTTP_HOST", "127.0.0.1")

		srv, err := NewServer(ctx, newTestServices(t).Services)
		require.NoError(t, err)
		require.NotNil(t, srv)

		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.Start()
		}()

		require.Eventually(t, func() bool {
			response, err := http.Get("http://127.0.0.1:3001/-/healthz")
			if err != nil {
				return false
			}
			defer response.Body.Close()
			return response.StatusCode == http.StatusOK
		}, 5*time.Second, 50*time.Millisecond)

		require.NoError(t, srv.Stop())
		require.NoError(t, <-errChan)
	})
}

func TestStartAsyncServer(t *testing.T) {
	t.Run("starts the server asynchronously", func(t *testing.T) {
		ctx := t.Context()
		t.Setenv("HTTP_PORT", "3002")
		t.Setenv("HTTP_HOST", "127.0.0.1")

		srv, err := NewServer(ctx, newTestServices(t).Services)
		require.NoError(t, err)
		require.NotNil(t, srv)

		srv.StartAsync(ctx)

		require.Eventually(t, func() bool {
			response, err := http.Get("http://127.0.0.1:3002/-/healthz")
			if err != nil {
				return false
			}
			defer response.Body.Close()
			return response.StatusCode == http.StatusOK
		}, 5*time.Second, 50*time.Millisecond)

		require.NoError(t, srv.Stop())
	})
}
