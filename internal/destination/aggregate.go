// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"slices"
)

// Input is the state Aggregate projects into the destination list.
// Slices must be in their loader order; maps are used only for lookups.
type Input struct {
	Plugins       map[int]Plugin
	PluginConfigs []PluginConfig
	BatchExports  []BatchExport
	HogFunctions  []HogFunction
	Templates     map[string]HogFunctionTemplate
	Viewer        Viewer
}

// Aggregate builds the ordered destination list for in.Viewer.
// Hog functions come first, then plugin configs, then batch exports; batch exports
// delivering to HTTP are visible only to impersonating viewers. The result is stably
// sorted with enabled destinations first.
func Aggregate(in Input) []Destination {
	raw := make([]Raw, 0, len(in.HogFunctions)+len(in.PluginConfigs)+len(in.BatchExports))

	for _, function := range in.HogFunctions {
		raw = append(raw, HogFunctionWithTemplate{
			Function: function,
			Template: lookupTemplate(in.Templates, function),
		})
	}

	for _, config := range in.PluginConfigs {
		item := PluginConfigWithInfo{Config: config}
		if plugin, ok := in.Plugins[config.Plugin]; ok {
			item.Info = &plugin
		}
		raw = append(raw, item)
	}

	for _, batchExport := range in.BatchExports {
		if batchExport.Destination.Type == BatchExportTypeHTTP && !in.Viewer.Impersonated {
			continue
		}
		raw = append(raw, batchExport)
	}

	destinations := make([]Destination, 0, len(raw))
	for _, item := range raw {
		destinations = append(destinations, Normalize(item))
	}

	slices.SortStableFunc(destinations, func(a, b Destination) int {
		return enabledRank(a) - enabledRank(b)
	})

	return destinations
}

func enabledRank(d Destination) int {
	if d.Enabled {
		return 0
	}
	return 1
}

func lookupTemplate(templates map[string]HogFunctionTemplate, function HogFunction) *HogFunctionTemplate {
	id := function.TemplateID
	if id == "" && function.Template != nil {
		id = function.Template.ID
	}
	if id == "" {
		return nil
	}

	if template, ok := templates[id]; ok {
		return &template
	}
	return nil
}
