// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"fmt"
	"strconv"
)

// Raw is a resource that can be normalized into a Destination.
// It is implemented only by PluginConfigWithInfo, BatchExport and HogFunctionWithTemplate.
type Raw interface {
	backend() Backend
}

// PluginConfigWithInfo pairs a plugin config with the metadata of its plugin, if known.
type PluginConfigWithInfo struct {
	Config PluginConfig
	Info   *Plugin
}

// HogFunctionWithTemplate pairs a hog function with the template it was created from, if known.
type HogFunctionWithTemplate struct {
	Function HogFunction
	Template *HogFunctionTemplate
}

func (PluginConfigWithInfo) backend() Backend    { return BackendPlugin }
func (BatchExport) backend() Backend             { return BackendBatchExport }
func (HogFunctionWithTemplate) backend() Backend { return BackendHogFunction }

// Normalize converts raw into a Destination. It performs no I/O and always
// returns the same value for the same input.
func Normalize(raw Raw) Destination {
	switch raw := raw.(type) {
	case PluginConfigWithInfo:
		return normalizePluginConfig(raw)
	case BatchExport:
		return normalizeBatchExport(raw)
	case HogFunctionWithTemplate:
		return normalizeHogFunction(raw)
	default:
		// Raw is sealed: only the types above can implement it.
		panic(fmt.Sprintf("destination: unexpected raw resource %T", raw))
	}
}

func normalizePluginConfig(raw PluginConfigWithInfo) Destination {
	config := BackfillPluginConfig(raw.Config, raw.Info)

	var info *Plugin
	if raw.Info != nil {
		copied := *raw.Info
		info = &copied
	}

	return Destination{
		Backend:     BackendPlugin,
		ID:          strconv.Itoa(config.ID),
		Name:        config.Name,
		Description: config.Description,
		Enabled:     config.Enabled,
		UpdatedAt:   config.UpdatedAt,
		Interval:    intervalRealtime,
		Filters:     config.Filters,
		Plugin: &PluginDestination{
			Config: config,
			Info:   info,
		},
	}
}

// BackfillPluginConfig fills the name and description of config from its plugin
// metadata when they are empty. A config without any name is called "Unknown app".
func BackfillPluginConfig(config PluginConfig, plugin *Plugin) PluginConfig {
	if config.Name == "" && plugin != nil {
		config.Name = plugin.Name
	}
	if config.Name == "" {
		config.Name = unknownAppName
	}
	if config.Description == "" && plugin != nil {
		config.Description = plugin.Description
	}

	return config
}

func normalizeBatchExport(raw BatchExport) Destination {
	return Destination{
		Backend:     BackendBatchExport,
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Destination.Type + " batch export",
		Enabled:     !raw.Paused,
		UpdatedAt:   raw.LastUpdatedAt,
		Interval:    raw.Interval,
		Filters:     raw.Filters,
		BatchExport: &raw,
	}
}

func normalizeHogFunction(raw HogFunctionWithTemplate) Destination {
	function := raw.Function
	template := raw.Template
	if template == nil {
		template = function.Template
	}

	if template != nil {
		if function.Name == "" {
			function.Name = template.Name
		}
		if function.Description == "" {
			function.Description = template.Description
		}
		if function.IconURL == "" {
			function.IconURL = template.IconURL
		}
	}

	return Destination{
		Backend:     BackendHogFunction,
		ID:          function.ID,
		Name:        function.Name,
		Description: function.Description,
		Enabled:     function.Enabled,
		UpdatedAt:   function.UpdatedAt,
		Interval:    intervalRealtime,
		Filters:     function.Filters,
		HogFunction: &function,
	}
}
