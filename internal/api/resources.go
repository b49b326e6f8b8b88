// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mia-platform/pdm/internal/destination"
)

const (
	pluginsPath              = "api/organizations/@current/pipeline_destinations"
	pluginConfigsResource    = "pipeline_destination_configs"
	batchExportsResource     = "batch_exports"
	hogFunctionsResource     = "hog_functions"
	hogFunctionTemplatesPath = "hog_function_templates"
	pluginConfigPath         = "api/plugin_config/"

	// PluginConfigsEndpoint is the undoable delete endpoint of plugin configs.
	PluginConfigsEndpoint = "plugin_configs"
	// HogFunctionsEndpoint is the undoable delete endpoint of hog functions.
	HogFunctionsEndpoint = "hog_functions"
)

// PluginConfigPatch is a partial update of a plugin config.
type PluginConfigPatch struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// ListPlugins returns the metadata of every destination plugin of the organization.
func (c *Client) ListPlugins(ctx context.Context) ([]destination.Plugin, error) {
	return listAll[destination.Plugin](ctx, c, pluginsPath)
}

// ListPluginConfigs returns every destination plugin config of the project.
func (c *Client) ListPluginConfigs(ctx context.Context) ([]destination.PluginConfig, error) {
	return listAll[destination.PluginConfig](ctx, c, c.projectPath(pluginConfigsResource))
}

// UpdatePluginConfig patches the plugin config with id and returns the stored representation.
func (c *Client) UpdatePluginConfig(ctx context.Context, id int, patch PluginConfigPatch) (destination.PluginConfig, error) {
	var updated destination.PluginConfig
	err := c.do(ctx, http.MethodPatch, c.url(pluginConfigPath+strconv.Itoa(id)), patch, &updated)
	return updated, err
}

// ListBatchExports returns every batch export of the project.
func (c *Client) ListBatchExports(ctx context.Context) ([]destination.BatchExport, error) {
	return listAll[destination.BatchExport](ctx, c, c.projectPath(batchExportsResource))
}

// PauseBatchExport pauses the batch export with id.
func (c *Client) PauseBatchExport(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, c.batchExportURL(id)+"/pause", nil, nil)
}

// UnpauseBatchExport resumes the batch export with id.
func (c *Client) UnpauseBatchExport(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, c.batchExportURL(id)+"/unpause", nil, nil)
}

// DeleteBatchExport permanently deletes the batch export with id.
func (c *Client) DeleteBatchExport(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.batchExportURL(id), nil, nil)
}

func (c *Client) batchExportURL(id string) string {
	return c.url(c.projectPath(batchExportsResource) + "/" + url.PathEscape(id))
}

// ListHogFunctions returns every hog function of the project.
func (c *Client) ListHogFunctions(ctx context.Context) ([]destination.HogFunction, error) {
	return listAll[destination.HogFunction](ctx, c, c.projectPath(hogFunctionsResource))
}

// ListHogFunctionTemplates returns every available hog function template.
func (c *Client) ListHogFunctionTemplates(ctx context.Context) ([]destination.HogFunctionTemplate, error) {
	return listAll[destination.HogFunctionTemplate](ctx, c, c.projectPath(hogFunctionTemplatesPath))
}

// SetDeleted flips the soft delete flag of the resource with id under endpoint,
// an endpoint relative to the project such as PluginConfigsEndpoint.
func (c *Client) SetDeleted(ctx context.Context, endpoint, id string, deleted bool) error {
	target := c.url(c.projectPath(endpoint) + "/" + url.PathEscape(id))
	return c.do(ctx, http.MethodPatch, target, map[string]bool{"deleted": deleted}, nil)
}
