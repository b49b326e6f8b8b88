// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package fake provides an in-memory platform to use in tests in place of the api client.
package fake

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/mia-platform/pdm/internal/api"
	"github.com/mia-platform/pdm/internal/destination"
)

// Operation names used to record calls and to inject errors.
const (
	OpListPlugins              = "ListPlugins"
	OpListPluginConfigs        = "ListPluginConfigs"
	OpListBatchExports         = "ListBatchExports"
	OpListHogFunctions         = "ListHogFunctions"
	OpListHogFunctionTemplates = "ListHogFunctionTemplates"
	OpUpdatePluginConfig       = "UpdatePluginConfig"
	OpPauseBatchExport         = "PauseBatchExport"
	OpUnpauseBatchExport       = "UnpauseBatchExport"
	OpDeleteBatchExport        = "DeleteBatchExport"
	OpSetDeleted               = "SetDeleted"
)

// Call is a recorded invocation of the platform.
type Call struct {
	Op       string
	Endpoint string
	ID       string
	Enabled  *bool
	Deleted  bool
}

// Platform keeps the remote collections in memory. Its exported collections
// can be seeded before use; every method is safe for concurrent use.
type Platform struct {
	tb testing.TB

	lock sync.Mutex

	Plugins       []destination.Plugin
	PluginConfigs []destination.PluginConfig
	BatchExports  []destination.BatchExport
	HogFunctions  []destination.HogFunction
	Templates     []destination.HogFunctionTemplate

	// Errors makes the named operation fail with the given error.
	Errors map[string]error
	// Now is used to stamp server side fields on updates.
	Now func() time.Time

	calls          []Call
	trashedConfigs []destination.PluginConfig
	trashedHogs    []destination.HogFunction
}

// NewPlatform returns an empty Platform.
func NewPlatform(tb testing.TB) *Platform {
	tb.Helper()
	return &Platform{
		tb:     tb,
		Errors: make(map[string]error),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetError makes op fail with err; a nil err clears it.
func (p *Platform) SetError(op string, err error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if err == nil {
		delete(p.Errors, op)
		return
	}
	p.Errors[op] = err
}

// Calls returns the recorded calls in order.
func (p *Platform) Calls() []Call {
	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.calls)
}

// CallsTo returns the recorded calls of op.
func (p *Platform) CallsTo(op string) []Call {
	p.lock.Lock()
	defer p.lock.Unlock()

	var calls []Call
	for _, call := range p.calls {
		if call.Op == op {
			calls = append(calls, call)
		}
	}
	return calls
}

func (p *Platform) record(call Call) error {
	p.tb.Helper()
	p.lock.Lock()
	defer p.lock.Unlock()

	p.calls = append(p.calls, call)
	return p.Errors[call.Op]
}

func (p *Platform) ListPlugins(context.Context) ([]destination.Plugin, error) {
	if err := p.record(Call{Op: OpListPlugins}); err != nil {
		return nil, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.Plugins), nil
}

func (p *Platform) ListPluginConfigs(context.Context) ([]destination.PluginConfig, error) {
	if err := p.record(Call{Op: OpListPluginConfigs}); err != nil {
		return nil, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.PluginConfigs), nil
}

func (p *Platform) ListBatchExports(context.Context) ([]destination.BatchExport, error) {
	if err := p.record(Call{Op: OpListBatchExports}); err != nil {
		return nil, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.BatchExports), nil
}

func (p *Platform) ListHogFunctions(context.Context) ([]destination.HogFunction, error) {
	if err := p.record(Call{Op: OpListHogFunctions}); err != nil {
		return nil, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.HogFunctions), nil
}

func (p *Platform) ListHogFunctionTemplates(context.Context) ([]destination.HogFunctionTemplate, error) {
	if err := p.record(Call{Op: OpListHogFunctionTemplates}); err != nil {
		return nil, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	return slices.Clone(p.Templates), nil
}

// UpdatePluginConfig applies patch and returns the stored config with a fresh UpdatedAt.
func (p *Platform) UpdatePluginConfig(_ context.Context, id int, patch api.PluginConfigPatch) (destination.PluginConfig, error) {
	if err := p.record(Call{Op: OpUpdatePluginConfig, ID: strconv.Itoa(id), Enabled: patch.Enabled}); err != nil {
		return destination.PluginConfig{}, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	idx := slices.IndexFunc(p.PluginConfigs, func(c destination.PluginConfig) bool { return c.ID == id })
	if idx < 0 {
		return destination.PluginConfig{}, api.ErrNotFound
	}

	if patch.Enabled != nil {
		p.PluginConfigs[idx].Enabled = *patch.Enabled
	}
	p.PluginConfigs[idx].UpdatedAt = p.Now()
	return p.PluginConfigs[idx], nil
}

func (p *Platform) PauseBatchExport(_ context.Context, id string) error {
	return p.setPaused(OpPauseBatchExport, id, true)
}

func (p *Platform) UnpauseBatchExport(_ context.Context, id string) error {
	return p.setPaused(OpUnpauseBatchExport, id, false)
}

func (p *Platform) setPaused(op, id string, paused bool) error {
	if err := p.record(Call{Op: op, ID: id}); err != nil {
		return err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	idx := p.batchExportIndex(id)
	if idx < 0 {
		return api.ErrNotFound
	}
	p.BatchExports[idx].Paused = paused
	p.BatchExports[idx].LastUpdatedAt = p.Now()
	return nil
}

func (p *Platform) DeleteBatchExport(_ context.Context, id string) error {
	if err := p.record(Call{Op: OpDeleteBatchExport, ID: id}); err != nil {
		return err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	idx := p.batchExportIndex(id)
	if idx < 0 {
		return api.ErrNotFound
	}
	p.BatchExports = slices.Delete(p.BatchExports, idx, idx+1)
	return nil
}

func (p *Platform) batchExportIndex(id string) int {
	return slices.IndexFunc(p.BatchExports, func(b destination.BatchExport) bool { return b.ID == id })
}

// SetDeleted hides or restores a plugin config or hog function, so that the
// following list calls reflect the soft delete flag.
func (p *Platform) SetDeleted(_ context.Context, endpoint, id string, deleted bool) error {
	if err := p.record(Call{Op: OpSetDeleted, Endpoint: endpoint, ID: id, Deleted: deleted}); err != nil {
		return err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	switch endpoint {
	case api.PluginConfigsEndpoint:
		configID, err := strconv.Atoi(id)
		if err != nil {
			return api.ErrNotFound
		}
		match := func(c destination.PluginConfig) bool { return c.ID == configID }
		var ok bool
		if deleted {
			p.PluginConfigs, p.trashedConfigs, ok = move(p.PluginConfigs, p.trashedConfigs, match)
		} else {
			p.trashedConfigs, p.PluginConfigs, ok = move(p.trashedConfigs, p.PluginConfigs, match)
		}
		if !ok {
			return api.ErrNotFound
		}
	case api.HogFunctionsEndpoint:
		match := func(h destination.HogFunction) bool { return h.ID == id }
		var ok bool
		if deleted {
			p.HogFunctions, p.trashedHogs, ok = move(p.HogFunctions, p.trashedHogs, match)
		} else {
			p.trashedHogs, p.HogFunctions, ok = move(p.trashedHogs, p.HogFunctions, match)
		}
		if !ok {
			return api.ErrNotFound
		}
	default:
		return api.ErrNotFound
	}
	return nil
}

func move[T any](from, to []T, match func(T) bool) ([]T, []T, bool) {
	idx := slices.IndexFunc(from, match)
	if idx < 0 {
		return from, to, false
	}

	to = append(to, from[idx])
	return slices.Delete(from, idx, idx+1), to, true
}
