// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"strconv"
	"time"
)

// Backend discriminates the resource kind backing a Destination.
type Backend string

const (
	BackendPlugin      Backend = "plugin"
	BackendBatchExport Backend = "batch_export"
	BackendHogFunction Backend = "hog_function"
)

// Backends lists every known backend in presentation order.
var Backends = []Backend{BackendHogFunction, BackendPlugin, BackendBatchExport}

// ParseBackend returns the Backend named by value and whether it is known.
func ParseBackend(value string) (Backend, bool) {
	switch backend := Backend(value); backend {
	case BackendPlugin, BackendBatchExport, BackendHogFunction:
		return backend, true
	default:
		return "", false
	}
}

const (
	// BatchExportTypeHTTP is the internal delivery target hidden from regular viewers.
	BatchExportTypeHTTP = "HTTP"

	intervalRealtime = "realtime"
	unknownAppName   = "Unknown app"
)

// Plugin is the static metadata of an installable plugin.
type Plugin struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	PluginType  string `json:"plugin_type,omitempty" yaml:"pluginType,omitempty"`
}

// PluginConfig is an instance of a plugin configured for a project.
type PluginConfig struct {
	ID          int            `json:"id" yaml:"id"`
	Plugin      int            `json:"plugin" yaml:"plugin"`
	Team        int            `json:"team_id,omitempty" yaml:"teamId,omitempty"`
	Enabled     bool           `json:"enabled" yaml:"enabled"`
	Order       int            `json:"order" yaml:"order"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Filters     map[string]any `json:"filters,omitempty" yaml:"filters,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updatedAt"`
}

// Key returns the mapping key of the plugin config.
func (p PluginConfig) Key() int { return p.ID }

// BatchExportDestination describes where a batch export delivers its data.
type BatchExportDestination struct {
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// BatchExport is a scheduled batch export configuration.
type BatchExport struct {
	ID            string                 `json:"id" yaml:"id"`
	Name          string                 `json:"name" yaml:"name"`
	Destination   BatchExportDestination `json:"destination" yaml:"destination"`
	Interval      string                 `json:"interval" yaml:"interval"`
	Paused        bool                   `json:"paused" yaml:"paused"`
	Model         string                 `json:"model,omitempty" yaml:"model,omitempty"`
	Filters       map[string]any         `json:"filters,omitempty" yaml:"filters,omitempty"`
	CreatedAt     time.Time              `json:"created_at" yaml:"createdAt"`
	LastUpdatedAt time.Time              `json:"last_updated_at" yaml:"lastUpdatedAt"`
}

// Key returns the mapping key of the batch export.
func (b BatchExport) Key() string { return b.ID }

// HogFunctionTemplate holds the display metadata shared by functions created from it.
type HogFunctionTemplate struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	IconURL     string `json:"icon_url,omitempty" yaml:"iconUrl,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Key returns the mapping key of the template.
func (t HogFunctionTemplate) Key() string { return t.ID }

// HogFunction is a scriptable function instance.
type HogFunction struct {
	ID          string               `json:"id" yaml:"id"`
	Type        string               `json:"type,omitempty" yaml:"type,omitempty"`
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool                 `json:"enabled" yaml:"enabled"`
	IconURL     string               `json:"icon_url,omitempty" yaml:"iconUrl,omitempty"`
	Filters     map[string]any       `json:"filters,omitempty" yaml:"filters,omitempty"`
	Inputs      map[string]any       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	TemplateID  string               `json:"template_id,omitempty" yaml:"templateId,omitempty"`
	Template    *HogFunctionTemplate `json:"template,omitempty" yaml:"template,omitempty"`
	CreatedAt   time.Time            `json:"created_at" yaml:"createdAt"`
	UpdatedAt   time.Time            `json:"updated_at" yaml:"updatedAt"`
}

// Key returns the mapping key of the hog function.
func (h HogFunction) Key() string { return h.ID }

// PluginDestination is the plugin variant payload.
type PluginDestination struct {
	Config PluginConfig `json:"config" yaml:"config"`
	Info   *Plugin      `json:"info,omitempty" yaml:"info,omitempty"`
}

// Destination is the normalized view of an export target. Exactly one of
// Plugin, BatchExport and HogFunction is set, matching Backend.
type Destination struct {
	Backend     Backend        `json:"backend" yaml:"backend"`
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool           `json:"enabled" yaml:"enabled"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updatedAt"`
	Interval    string         `json:"interval" yaml:"interval"`
	Filters     map[string]any `json:"filters,omitempty" yaml:"filters,omitempty"`

	Plugin      *PluginDestination `json:"plugin,omitempty" yaml:"plugin,omitempty"`
	BatchExport *BatchExport       `json:"batch_export,omitempty" yaml:"batchExport,omitempty"`
	HogFunction *HogFunction       `json:"hog_function,omitempty" yaml:"hogFunction,omitempty"`
}

// Key identifies the destination across backends.
func (d Destination) Key() string {
	return DestinationKey(d.Backend, d.ID)
}

// DestinationKey builds the key of the destination with id backed by backend.
func DestinationKey(backend Backend, id string) string {
	return string(backend) + "/" + id
}

// PluginConfigID parses a plugin destination id.
func PluginConfigID(id string) (int, error) {
	return strconv.Atoi(id)
}

// Viewer is the identity the list is computed for.
type Viewer struct {
	ID           int    `json:"id,omitempty" yaml:"id,omitempty"`
	Email        string `json:"email,omitempty" yaml:"email,omitempty"`
	Impersonated bool   `json:"impersonated,omitempty" yaml:"impersonated,omitempty"`
}
