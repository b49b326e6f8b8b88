// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/pdm/internal/logger"
)

func TestCenter(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	ctx := logger.WithContext(t.Context(), logger.NewLogger(buffer))

	center := NewCenter(2)
	Successf(ctx, center, "destination %q deleted", "hook")
	Errorf(ctx, center, "loading %s failed", "plugins")
	center.Notify(ctx, New(LevelInfo, "third"))

	recent := center.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, LevelError, recent[0].Level)
	assert.Equal(t, "loading plugins failed", recent[0].Message)
	assert.Equal(t, "third", recent[1].Message)
	assert.NotEmpty(t, recent[1].ID)

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"@level":"error"`)
}

func TestCenterDefaultCapacity(t *testing.T) {
	t.Parallel()

	center := NewCenter(0)
	for range defaultCapacity + 5 {
		center.Notify(t.Context(), New(LevelInfo, "message"))
	}
	assert.Len(t, center.Recent(), defaultCapacity)
}
