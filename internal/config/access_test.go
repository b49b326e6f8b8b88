// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/pdm/internal/destination"
)

func TestNewAccessFromPath(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testCases := map[string]struct {
		path           string
		expectedAccess Access
		expectedError  error
	}{
		"yaml file": {
			path: filepath.Join("testdata", "access.yaml"),
			expectedAccess: Access{
				Viewer:      destination.Viewer{ID: 7, Email: "support@example.com", Impersonated: true},
				Permissions: Permissions{ConfigureDestinations: true},
			},
		},
		"json file": {
			path: filepath.Join("testdata", "access.json"),
			expectedAccess: Access{
				Viewer:      destination.Viewer{ID: 12, Email: "viewer@example.com"},
				Permissions: Permissions{EnableNewDestinations: true},
			},
		},
		"missing permissions keep the defaults": {
			path: filepath.Join("testdata", "partial.yaml"),
			expectedAccess: Access{
				Viewer:      destination.Viewer{Email: "partial@example.com"},
				Permissions: Permissions{ConfigureDestinations: true, EnableNewDestinations: true},
			},
		},
		"permissions section grants only the listed permissions": {
			path: filepath.Join("testdata", "configure-only.yaml"),
			expectedAccess: Access{
				Viewer:      destination.Viewer{ID: 3},
				Permissions: Permissions{ConfigureDestinations: true},
			},
		},
		"empty file": {
			path:           filepath.Join("testdata", "empty.yaml"),
			expectedAccess: DefaultAccess(),
		},
		"unknown fields are rejected": {
			path:          filepath.Join("testdata", "unknown.yaml"),
			expectedError: ErrParsing,
		},
		"invalid value": {
			path:          filepath.Join("testdata", "invalid.yaml"),
			expectedError: ErrParsing,
		},
		"missing file return error": {
			path:          filepath.Join(tempDir, "missing"),
			expectedError: syscall.ENOENT,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			access, err := NewAccessFromPath(test.path)
			if test.expectedError != nil {
				assert.ErrorIs(t, err, test.expectedError)
				assert.Empty(t, access)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedAccess, access)
		})
	}
}

func TestAccessPolicy(t *testing.T) {
	t.Parallel()

	access := Access{Permissions: Permissions{ConfigureDestinations: true}}
	assert.True(t, access.CanConfigure())
	assert.False(t, access.CanEnableNewDestinations())

	defaults := DefaultAccess()
	assert.True(t, defaults.CanConfigure())
	assert.True(t, defaults.CanEnableNewDestinations())
	assert.False(t, defaults.Viewer.Impersonated)
}
