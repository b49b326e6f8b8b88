// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	t.Parallel()

	webhook := &Plugin{ID: 3, Name: "Webhook", Description: "Send events to a webhook"}
	template := &HogFunctionTemplate{ID: "template-slack", Name: "Slack", Description: "Post to Slack", IconURL: "/static/slack.png"}

	testCases := map[string]struct {
		raw      Raw
		expected Destination
	}{
		"plugin config keeps its own name": {
			raw: PluginConfigWithInfo{
				Config: PluginConfig{ID: 7, Plugin: 3, Enabled: true, Name: "My hook", Description: "custom", UpdatedAt: testTime},
				Info:   webhook,
			},
			expected: Destination{
				Backend:     BackendPlugin,
				ID:          "7",
				Name:        "My hook",
				Description: "custom",
				Enabled:     true,
				UpdatedAt:   testTime,
				Interval:    "realtime",
				Plugin: &PluginDestination{
					Config: PluginConfig{ID: 7, Plugin: 3, Enabled: true, Name: "My hook", Description: "custom", UpdatedAt: testTime},
					Info:   webhook,
				},
			},
		},
		"plugin config falls back to plugin metadata": {
			raw: PluginConfigWithInfo{
				Config: PluginConfig{ID: 8, Plugin: 3},
				Info:   webhook,
			},
			expected: Destination{
				Backend:     BackendPlugin,
				ID:          "8",
				Name:        "Webhook",
				Description: "Send events to a webhook",
				Interval:    "realtime",
				Plugin: &PluginDestination{
					Config: PluginConfig{ID: 8, Plugin: 3, Name: "Webhook", Description: "Send events to a webhook"},
					Info:   webhook,
				},
			},
		},
		"plugin config without metadata is an unknown app": {
			raw: PluginConfigWithInfo{Config: PluginConfig{ID: 9, Plugin: 42}},
			expected: Destination{
				Backend:  BackendPlugin,
				ID:       "9",
				Name:     "Unknown app",
				Interval: "realtime",
				Plugin: &PluginDestination{
					Config: PluginConfig{ID: 9, Plugin: 42, Name: "Unknown app"},
				},
			},
		},
		"paused batch export is disabled": {
			raw: BatchExport{
				ID:            "be1",
				Name:          "S3 export",
				Destination:   BatchExportDestination{Type: "S3"},
				Interval:      "hour",
				Paused:        true,
				LastUpdatedAt: testTime,
			},
			expected: Destination{
				Backend:     BackendBatchExport,
				ID:          "be1",
				Name:        "S3 export",
				Description: "S3 batch export",
				Enabled:     false,
				UpdatedAt:   testTime,
				Interval:    "hour",
				BatchExport: &BatchExport{
					ID:            "be1",
					Name:          "S3 export",
					Destination:   BatchExportDestination{Type: "S3"},
					Interval:      "hour",
					Paused:        true,
					LastUpdatedAt: testTime,
				},
			},
		},
		"hog function enriched from template": {
			raw: HogFunctionWithTemplate{
				Function: HogFunction{ID: "hf1", Enabled: true, TemplateID: "template-slack", UpdatedAt: testTime},
				Template: template,
			},
			expected: Destination{
				Backend:     BackendHogFunction,
				ID:          "hf1",
				Name:        "Slack",
				Description: "Post to Slack",
				Enabled:     true,
				UpdatedAt:   testTime,
				Interval:    "realtime",
				HogFunction: &HogFunction{
					ID:          "hf1",
					Name:        "Slack",
					Description: "Post to Slack",
					Enabled:     true,
					IconURL:     "/static/slack.png",
					TemplateID:  "template-slack",
					UpdatedAt:   testTime,
				},
			},
		},
		"hog function keeps its own fields and uses the embedded template": {
			raw: HogFunctionWithTemplate{
				Function: HogFunction{ID: "hf2", Name: "Alerts", IconURL: "/own.png", Template: template},
			},
			expected: Destination{
				Backend:     BackendHogFunction,
				ID:          "hf2",
				Name:        "Alerts",
				Description: "Post to Slack",
				Interval:    "realtime",
				HogFunction: &HogFunction{
					ID:          "hf2",
					Name:        "Alerts",
					Description: "Post to Slack",
					IconURL:     "/own.png",
					Template:    template,
				},
			},
		},
		"hog function without template": {
			raw: HogFunctionWithTemplate{Function: HogFunction{ID: "hf3", TemplateID: "missing"}},
			expected: Destination{
				Backend:     BackendHogFunction,
				ID:          "hf3",
				Interval:    "realtime",
				HogFunction: &HogFunction{ID: "hf3", TemplateID: "missing"},
			},
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			first := Normalize(test.raw)
			second := Normalize(test.raw)
			assert.Equal(t, test.expected, first)
			assert.Equal(t, first, second)
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	template := &HogFunctionTemplate{ID: "t", Name: "Template"}
	raw := HogFunctionWithTemplate{Function: HogFunction{ID: "hf"}, Template: template}
	normalized := Normalize(raw)

	require.NotNil(t, normalized.HogFunction)
	assert.Equal(t, "Template", normalized.HogFunction.Name)
	assert.Empty(t, raw.Function.Name)
}

func TestParseBackend(t *testing.T) {
	t.Parallel()

	for _, backend := range Backends {
		parsed, ok := ParseBackend(string(backend))
		assert.True(t, ok)
		assert.Equal(t, backend, parsed)
	}

	_, ok := ParseBackend("webhook")
	assert.False(t, ok)
}

func TestDestinationKey(t *testing.T) {
	t.Parallel()

	plugin := Destination{Backend: BackendPlugin, ID: "7"}
	batchExport := Destination{Backend: BackendBatchExport, ID: "7"}
	assert.Equal(t, "plugin/7", plugin.Key())
	assert.NotEqual(t, plugin.Key(), batchExport.Key())
}
