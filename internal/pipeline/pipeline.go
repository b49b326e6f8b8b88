// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/mia-platform/pdm/internal/destination"
	"github.com/mia-platform/pdm/internal/loader"
	"github.com/mia-platform/pdm/internal/logger"
	"github.com/mia-platform/pdm/internal/notify"
)

const (
	loggerName = "pdm:pipeline"

	resourcePlugins       = "plugins"
	resourcePluginConfigs = "plugin configs"
	resourceBatchExports  = "batch exports"
	resourceTemplates     = "hog function templates"
	resourceHogFunctions  = "hog functions"
)

// Remote lists the collections backing the destinations of a project.
type Remote interface {
	ListPlugins(ctx context.Context) ([]destination.Plugin, error)
	ListPluginConfigs(ctx context.Context) ([]destination.PluginConfig, error)
	ListBatchExports(ctx context.Context) ([]destination.BatchExport, error)
	ListHogFunctions(ctx context.Context) ([]destination.HogFunction, error)
	ListHogFunctionTemplates(ctx context.Context) ([]destination.HogFunctionTemplate, error)
}

// Pipeline caches the destination backends of a project for a viewer.
type Pipeline struct {
	notifier notify.Notifier
	viewer   atomic.Pointer[destination.Viewer]

	plugins       *loader.Loader[int, destination.Plugin]
	pluginConfigs *loader.Loader[int, destination.PluginConfig]
	batchExports  *loader.Loader[string, destination.BatchExport]
	templates     *loader.Loader[string, destination.HogFunctionTemplate]
	hogFunctions  *loader.Loader[string, destination.HogFunction]

	pending atomic.Int32
	settled atomic.Bool
}

// New returns a Pipeline reading from remote and reporting load failures on notifier.
func New(remote Remote, notifier notify.Notifier, viewer destination.Viewer) *Pipeline {
	p := &Pipeline{notifier: notifier}
	p.viewer.Store(&viewer)

	p.plugins = loader.New[int, destination.Plugin](resourcePlugins, remote.ListPlugins, func(plugin destination.Plugin) int { return plugin.ID })
	p.pluginConfigs = loader.New[int, destination.PluginConfig](resourcePluginConfigs, func(ctx context.Context) ([]destination.PluginConfig, error) {
		configs, err := remote.ListPluginConfigs(ctx)
		if err != nil {
			return nil, err
		}

		for idx, config := range configs {
			configs[idx] = p.backfill(config)
		}
		return configs, nil
	}, destination.PluginConfig.Key)
	p.batchExports = loader.New[string, destination.BatchExport](resourceBatchExports, remote.ListBatchExports, destination.BatchExport.Key)
	p.templates = loader.New[string, destination.HogFunctionTemplate](resourceTemplates, remote.ListHogFunctionTemplates, destination.HogFunctionTemplate.Key)
	p.hogFunctions = loader.New[string, destination.HogFunction](resourceHogFunctions, remote.ListHogFunctions, destination.HogFunction.Key)

	return p
}

// Viewer returns the identity the destination list is computed for.
func (p *Pipeline) Viewer() destination.Viewer {
	return *p.viewer.Load()
}

// SetViewer changes the identity the destination list is computed for.
func (p *Pipeline) SetViewer(viewer destination.Viewer) {
	p.viewer.Store(&viewer)
}

// Load fetches every collection and waits for all of them. Plugins are loaded
// before plugin configs so that the configs can be enriched with their metadata;
// the other collections are loaded concurrently. A failed collection keeps its
// previous content and its error is both notified and returned.
func (p *Pipeline) Load(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	log.Debug("loading destinations")

	errs := make([]error, 4)
	var wg sync.WaitGroup
	wg.Go(func() {
		errs[0] = errors.Join(p.load(ctx, p.plugins), p.load(ctx, p.pluginConfigs))
	})
	wg.Go(func() { errs[1] = p.load(ctx, p.batchExports) })
	wg.Go(func() { errs[2] = p.load(ctx, p.templates) })
	wg.Go(func() { errs[3] = p.load(ctx, p.hogFunctions) })
	wg.Wait()

	p.settled.Store(true)
	err := errors.Join(errs...)
	if err != nil {
		log.Warn("destinations loaded with errors", "error", err)
		return err
	}

	log.Debug("destinations loaded")
	return nil
}

// Start launches Load without waiting for it. Loading reports true as soon as Start returns.
func (p *Pipeline) Start(ctx context.Context) {
	p.pending.Add(1)
	go func() {
		defer p.pending.Add(-1)
		_ = p.Load(ctx)
	}()
}

// ReloadPluginConfigs fetches the plugin configs again.
func (p *Pipeline) ReloadPluginConfigs(ctx context.Context) error {
	return p.load(ctx, p.pluginConfigs)
}

// ReloadHogFunctions fetches the hog functions again.
func (p *Pipeline) ReloadHogFunctions(ctx context.Context) error {
	return p.load(ctx, p.hogFunctions)
}

type loadable interface {
	Load(ctx context.Context) error
	Resource() string
}

func (p *Pipeline) load(ctx context.Context, l loadable) error {
	log := logger.Named(ctx, loggerName, "resource", l.Resource())

	if err := l.Load(ctx); err != nil {
		log.Error("loading failed", "error", err)
		notify.Errorf(ctx, p.notifier, "Error loading %s: %s", l.Resource(), errors.Unwrap(err))
		return err
	}

	log.Trace("loaded")
	return nil
}

// Loading reports whether any collection is still being fetched.
func (p *Pipeline) Loading() bool {
	return p.pending.Load() > 0 ||
		p.plugins.Loading() ||
		p.pluginConfigs.Loading() ||
		p.batchExports.Loading() ||
		p.templates.Loading() ||
		p.hogFunctions.Loading()
}

// Ready reports whether a full load has completed at least once, successfully or not.
func (p *Pipeline) Ready() bool {
	return p.settled.Load()
}

// Destinations returns the ordered destination list built from the current
// content of every collection, even while some of them are still loading.
func (p *Pipeline) Destinations() []destination.Destination {
	return destination.Aggregate(destination.Input{
		Plugins:       p.plugins.Map(),
		PluginConfigs: p.pluginConfigs.Values(),
		BatchExports:  p.batchExports.Values(),
		HogFunctions:  p.hogFunctions.Values(),
		Templates:     p.templates.Map(),
		Viewer:        p.Viewer(),
	})
}

// Find returns the listed destination with backend and id.
func (p *Pipeline) Find(backend destination.Backend, id string) (destination.Destination, error) {
	key := destination.DestinationKey(backend, id)
	for _, d := range p.Destinations() {
		if d.Key() == key {
			return d, nil
		}
	}

	return destination.Destination{}, &notFoundError{Backend: backend, ID: id}
}

// StorePluginConfig replaces the cached plugin config with the same id, as is.
func (p *Pipeline) StorePluginConfig(config destination.PluginConfig) {
	p.pluginConfigs.Set(config)
}

// RemovePluginConfig drops the cached plugin config with id.
func (p *Pipeline) RemovePluginConfig(id int) {
	p.pluginConfigs.Remove(id)
}

// SetBatchExportPaused flips only the paused flag of the cached batch export with id.
func (p *Pipeline) SetBatchExportPaused(id string, paused bool) {
	export, ok := p.batchExports.Get(id)
	if !ok {
		return
	}

	export.Paused = paused
	p.batchExports.Set(export)
}

// RemoveBatchExport drops the cached batch export with id.
func (p *Pipeline) RemoveBatchExport(id string) {
	p.batchExports.Remove(id)
}

// RemoveHogFunction drops the cached hog function with id.
func (p *Pipeline) RemoveHogFunction(id string) {
	p.hogFunctions.Remove(id)
}

func (p *Pipeline) backfill(config destination.PluginConfig) destination.PluginConfig {
	if plugin, ok := p.plugins.Get(config.Plugin); ok {
		return destination.BackfillPluginConfig(config, &plugin)
	}
	return destination.BackfillPluginConfig(config, nil)
}
