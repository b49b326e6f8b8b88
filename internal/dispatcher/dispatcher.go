// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package dispatcher

import (
	"context"
	"fmt"

	"github.com/mia-platform/pdm/internal/api"
	"github.com/mia-platform/pdm/internal/destination"
	"github.com/mia-platform/pdm/internal/logger"
	"github.com/mia-platform/pdm/internal/notify"
	"github.com/mia-platform/pdm/internal/telemetry"
	"github.com/mia-platform/pdm/internal/undo"
)

const (
	loggerName = "pdm:dispatcher"

	actionToggle = "toggle"
	actionDelete = "delete"

	toggleDeniedMessage = "You do not have permission to toggle destinations."
	deleteDeniedMessage = "You do not have permission to delete destinations."
	addonRequiredReason = "Data pipelines add-on is required for enabling new destinations"
)

// AccessPolicy answers the permission and entitlement questions of the current viewer.
type AccessPolicy interface {
	// CanConfigure reports whether the viewer may change destinations at all.
	CanConfigure() bool
	// CanEnableNewDestinations reports whether the organization is entitled to enable destinations.
	CanEnableNewDestinations() bool
}

// Remote performs the backend operations that are not soft deletions.
type Remote interface {
	UpdatePluginConfig(ctx context.Context, id int, patch api.PluginConfigPatch) (destination.PluginConfig, error)
	PauseBatchExport(ctx context.Context, id string) error
	UnpauseBatchExport(ctx context.Context, id string) error
	DeleteBatchExport(ctx context.Context, id string) error
}

// Store is the cached state reconciled after successful operations.
type Store interface {
	StorePluginConfig(config destination.PluginConfig)
	RemovePluginConfig(id int)
	SetBatchExportPaused(id string, paused bool)
	RemoveBatchExport(id string)
	RemoveHogFunction(id string)
	ReloadPluginConfigs(ctx context.Context) error
	ReloadHogFunctions(ctx context.Context) error
}

// UndoableDeleter deletes resources that can be restored for a limited time.
type UndoableDeleter interface {
	DeleteWithUndo(ctx context.Context, request undo.Request) (undo.Pending, error)
}

// Dispatcher routes toggle and delete intents to the backend owning a destination.
type Dispatcher struct {
	remote   Remote
	store    Store
	deleter  UndoableDeleter
	access   AccessPolicy
	capturer telemetry.Capturer
	notifier notify.Notifier
}

// New returns a Dispatcher.
func New(remote Remote, store Store, deleter UndoableDeleter, access AccessPolicy, capturer telemetry.Capturer, notifier notify.Notifier) *Dispatcher {
	return &Dispatcher{
		remote:   remote,
		store:    store,
		deleter:  deleter,
		access:   access,
		capturer: capturer,
		notifier: notifier,
	}
}

// Toggle enables or disables d. The remote call is issued even when d is
// already in the requested state. Hog functions cannot be toggled.
func (d *Dispatcher) Toggle(ctx context.Context, dest destination.Destination, enabled bool) error {
	log := logger.Named(ctx, loggerName, "backend", dest.Backend, "id", dest.ID, "enabled", enabled)

	if !d.access.CanConfigure() {
		return d.fail(ctx, log, &PermissionError{Action: actionToggle, Message: toggleDeniedMessage})
	}
	if enabled && !d.access.CanEnableNewDestinations() {
		return d.fail(ctx, log, &PermissionError{Action: actionToggle, Message: addonRequiredReason + "."})
	}

	var event telemetry.Event
	switch dest.Backend {
	case destination.BackendPlugin:
		config, err := d.togglePlugin(ctx, dest, enabled)
		if err != nil {
			return d.fail(ctx, log, err)
		}
		event = telemetry.NewEvent("plugin "+stateName(enabled), pluginProperties(dest, config))
	case destination.BackendBatchExport:
		if err := d.toggleBatchExport(ctx, dest, enabled); err != nil {
			return d.fail(ctx, log, err)
		}
		event = telemetry.NewEvent("batch export "+stateName(enabled), batchExportProperties(dest))
	default:
		return d.fail(ctx, log, &UnsupportedOperationError{Action: actionToggle, Backend: dest.Backend})
	}

	d.capturer.Capture(ctx, event)
	log.Info("destination toggled")
	notify.Successf(ctx, d.notifier, "%s has been %s", dest.Name, stateName(enabled))
	return nil
}

func (d *Dispatcher) togglePlugin(ctx context.Context, dest destination.Destination, enabled bool) (destination.PluginConfig, error) {
	id, err := destination.PluginConfigID(dest.ID)
	if err != nil {
		return destination.PluginConfig{}, fmt.Errorf("%w: plugin config id %q", ErrInvalidDestination, dest.ID)
	}

	updated, err := d.remote.UpdatePluginConfig(ctx, id, api.PluginConfigPatch{Enabled: &enabled})
	if err != nil {
		return destination.PluginConfig{}, &RemoteOperationError{Action: actionToggle, Backend: dest.Backend, ID: dest.ID, err: err}
	}

	d.store.StorePluginConfig(updated)
	return updated, nil
}

func (d *Dispatcher) toggleBatchExport(ctx context.Context, dest destination.Destination, enabled bool) error {
	operation := d.remote.PauseBatchExport
	if enabled {
		operation = d.remote.UnpauseBatchExport
	}

	if err := operation(ctx, dest.ID); err != nil {
		return &RemoteOperationError{Action: actionToggle, Backend: dest.Backend, ID: dest.ID, err: err}
	}

	d.store.SetBatchExportPaused(dest.ID, !enabled)
	return nil
}

// Delete removes d. Plugin and hog function deletions can be undone within
// the undo window; batch export deletions are immediate.
func (d *Dispatcher) Delete(ctx context.Context, dest destination.Destination) error {
	log := logger.Named(ctx, loggerName, "backend", dest.Backend, "id", dest.ID)

	if !d.access.CanConfigure() {
		return d.fail(ctx, log, &PermissionError{Action: actionDelete, Message: deleteDeniedMessage})
	}

	var err error
	switch dest.Backend {
	case destination.BackendPlugin:
		err = d.deletePlugin(ctx, dest)
	case destination.BackendHogFunction:
		err = d.deleteHogFunction(ctx, dest)
	case destination.BackendBatchExport:
		err = d.deleteBatchExport(ctx, dest)
	default:
		err = &UnsupportedOperationError{Action: actionDelete, Backend: dest.Backend}
	}
	if err != nil {
		return d.fail(ctx, log, err)
	}

	log.Info("destination deleted")
	return nil
}

func (d *Dispatcher) deletePlugin(ctx context.Context, dest destination.Destination) error {
	id, err := destination.PluginConfigID(dest.ID)
	if err != nil {
		return fmt.Errorf("%w: plugin config id %q", ErrInvalidDestination, dest.ID)
	}

	if err := d.deleteWithUndo(ctx, dest, api.PluginConfigsEndpoint, d.store.ReloadPluginConfigs); err != nil {
		return err
	}

	d.store.RemovePluginConfig(id)
	return nil
}

func (d *Dispatcher) deleteHogFunction(ctx context.Context, dest destination.Destination) error {
	if err := d.deleteWithUndo(ctx, dest, api.HogFunctionsEndpoint, d.store.ReloadHogFunctions); err != nil {
		return err
	}

	d.store.RemoveHogFunction(dest.ID)
	return nil
}

// deleteWithUndo soft deletes dest; reload runs only if the deletion is undone.
func (d *Dispatcher) deleteWithUndo(ctx context.Context, dest destination.Destination, endpoint string, reload func(context.Context) error) error {
	reloadCtx := context.WithoutCancel(ctx)
	_, err := d.deleter.DeleteWithUndo(ctx, undo.Request{
		Endpoint: endpoint,
		ID:       dest.ID,
		Name:     dest.Name,
		Callback: func(undone bool) {
			if undone {
				_ = reload(reloadCtx)
			}
		},
	})
	if err != nil {
		return &RemoteOperationError{Action: actionDelete, Backend: dest.Backend, ID: dest.ID, err: err}
	}
	return nil
}

func (d *Dispatcher) deleteBatchExport(ctx context.Context, dest destination.Destination) error {
	if err := d.remote.DeleteBatchExport(ctx, dest.ID); err != nil {
		return &RemoteOperationError{Action: actionDelete, Backend: dest.Backend, ID: dest.ID, err: err}
	}

	d.store.RemoveBatchExport(dest.ID)
	notify.Successf(ctx, d.notifier, "%s has been deleted", dest.Name)
	return nil
}

func (d *Dispatcher) fail(ctx context.Context, log logger.Logger, err error) error {
	log.Warn("intent failed", "error", err)
	notify.Errorf(ctx, d.notifier, "%s", err)
	return err
}

func stateName(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func pluginProperties(dest destination.Destination, config destination.PluginConfig) map[string]any {
	properties := map[string]any{
		"plugin_config_id": config.ID,
		"plugin_id":        config.Plugin,
	}
	if dest.Plugin != nil && dest.Plugin.Info != nil {
		properties["plugin_name"] = dest.Plugin.Info.Name
	}
	return properties
}

func batchExportProperties(dest destination.Destination) map[string]any {
	properties := map[string]any{
		"batch_export_id": dest.ID,
		"interval":        dest.Interval,
	}
	if dest.BatchExport != nil {
		properties["destination_type"] = dest.BatchExport.Destination.Type
	}
	return properties
}
