// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package loader

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// FetchFunc returns the complete remote collection in its presentation order.
type FetchFunc[V any] func(ctx context.Context) ([]V, error)

// KeyFunc returns the identifier of a resource.
type KeyFunc[K comparable, V any] func(V) K

// Loader owns the ordered mapping of one remote collection.
type Loader[K comparable, V any] struct {
	resource string
	fetch    FetchFunc[V]
	key      KeyFunc[K, V]

	lock     sync.RWMutex
	order    []K
	items    map[K]V
	inFlight int
	loaded   bool
	err      error
}

// New returns an empty Loader for resource.
func New[K comparable, V any](resource string, fetch FetchFunc[V], key KeyFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{
		resource: resource,
		fetch:    fetch,
		key:      key,
		items:    make(map[K]V),
	}
}

// Resource returns the name of the collection.
func (l *Loader[K, V]) Resource() string {
	return l.resource
}

// Load fetches the collection and replaces the mapping with it. On failure the
// mapping is left as it was and a *LoadError is returned.
func (l *Loader[K, V]) Load(ctx context.Context) error {
	l.lock.Lock()
	l.inFlight++
	l.lock.Unlock()

	values, err := l.fetch(ctx)

	l.lock.Lock()
	defer l.lock.Unlock()
	l.inFlight--
	if err != nil {
		l.err = &LoadError{Resource: l.resource, err: err}
		return l.err
	}

	order := make([]K, 0, len(values))
	items := make(map[K]V, len(values))
	for _, value := range values {
		key := l.key(value)
		if _, found := items[key]; !found {
			order = append(order, key)
		}
		items[key] = value
	}

	l.order = order
	l.items = items
	l.loaded = true
	l.err = nil
	return nil
}

// Values returns a copy of the resources in mapping order.
func (l *Loader[K, V]) Values() []V {
	l.lock.RLock()
	defer l.lock.RUnlock()

	values := make([]V, 0, len(l.order))
	for _, key := range l.order {
		values = append(values, l.items[key])
	}
	return values
}

// Map returns a copy of the mapping.
func (l *Loader[K, V]) Map() map[K]V {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return maps.Clone(l.items)
}

// Get returns the resource stored for key.
func (l *Loader[K, V]) Get(key K) (V, bool) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	value, ok := l.items[key]
	return value, ok
}

// Set stores value, keeping its position if its key is already present.
func (l *Loader[K, V]) Set(value V) {
	key := l.key(value)

	l.lock.Lock()
	defer l.lock.Unlock()

	if _, found := l.items[key]; !found {
		l.order = append(l.order, key)
	}
	l.items[key] = value
}

// Remove deletes the resource stored for key, if any.
func (l *Loader[K, V]) Remove(key K) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, found := l.items[key]; !found {
		return
	}

	delete(l.items, key)
	l.order = slices.DeleteFunc(l.order, func(k K) bool { return k == key })
}

// Loading reports whether a fetch is in flight.
func (l *Loader[K, V]) Loading() bool {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.inFlight > 0
}

// Loaded reports whether at least one fetch has succeeded.
func (l *Loader[K, V]) Loaded() bool {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.loaded
}

// Err returns the error of the last fetch, nil if it succeeded.
func (l *Loader[K, V]) Err() error {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.err
}
