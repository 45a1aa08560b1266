package registry

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/faultline/faultline/event"
)

// Factory builds a new entry for a name that has not been created yet.
// It runs outside any Registry lock so it may itself call back into the
// Registry (e.g. to read a configuration) without deadlocking.
type Factory[E any] func(name string) (E, error)

// Merge composes an effective configuration from a named base config and
// an overlay. overlay fields that were left at their zero value must not
// clobber base's fields; callers supply the merge policy because Registry
// has no knowledge of C's shape.
type Merge[C any] func(base, overlay C) C

// Registry is a concurrent name -> entry table with an associated
// name -> configuration store. One Registry instance should back exactly
// one primitive kind (CircuitBreaker, RateLimiter, Bulkhead, Retry); the
// per-primitive packages wrap it with a typed facade.
type Registry[E, C any] struct {
	merge Merge[C]
	pub   *event.Publisher
	sf    singleflight.Group

	entriesMu sync.RWMutex
	entries   map[string]E

	configsMu sync.RWMutex
	configs   map[string]C
}

// New creates a Registry seeded with defaultConfig under DefaultConfigName.
func New[E, C any](defaultConfig C, merge Merge[C]) *Registry[E, C] {
	return &Registry[E, C]{
		merge:   merge,
		pub:     event.NewPublisher(),
		entries: make(map[string]E),
		configs: map[string]C{DefaultConfigName: defaultConfig},
	}
}

// NewWithConfigs creates a Registry seeded with several named
// configurations; one of them must be DefaultConfigName.
func NewWithConfigs[E, C any](configs map[string]C, merge Merge[C]) (*Registry[E, C], error) {
	if _, ok := configs[DefaultConfigName]; !ok {
		return nil, errors.New("registry: configs map must include \"default\"")
	}
	cp := make(map[string]C, len(configs))
	for k, v := range configs {
		cp[k] = v
	}
	return &Registry[E, C]{
		merge:   merge,
		pub:     event.NewPublisher(),
		entries: make(map[string]E),
		configs: cp,
	}, nil
}

// Events returns the Publisher emitting KindEntryAdded/Removed/Replaced
// for this registry.
func (r *Registry[E, C]) Events() *event.Publisher { return r.pub }

// ComputeIfAbsent atomically returns the entry for name, creating it with
// factory on first demand. Concurrent callers for the same name are
// collapsed onto a single in-flight factory call via singleflight; a
// failed factory call is never cached, so a later call retries
// construction instead of remembering a permanent failure under name.
func (r *Registry[E, C]) ComputeIfAbsent(name string, factory Factory[E]) (E, error) {
	if e, ok := r.Find(name); ok {
		return e, nil
	}

	v, err, _ := r.sf.Do(name, func() (any, error) {
		if e, ok := r.Find(name); ok {
			return e, nil
		}

		e, err := factory(name)
		if err != nil {
			return nil, err
		}

		r.entriesMu.Lock()
		r.entries[name] = e
		r.entriesMu.Unlock()

		r.pub.Publish(event.Event{InstanceName: name, Kind: event.KindEntryAdded, Payload: e})
		return e, nil
	})
	if err != nil {
		var zero E
		return zero, err
	}
	return v.(E), nil
}

// Find returns the entry registered under name, if any.
func (r *Registry[E, C]) Find(name string) (E, bool) {
	r.entriesMu.RLock()
	defer r.entriesMu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Remove deletes the entry registered under name, publishing
// KindEntryRemoved only if one existed.
func (r *Registry[E, C]) Remove(name string) (E, bool) {
	r.entriesMu.Lock()
	e, ok := r.entries[name]
	if ok {
		delete(r.entries, name)
	}
	r.entriesMu.Unlock()

	if !ok {
		var zero E
		return zero, false
	}

	r.pub.Publish(event.Event{InstanceName: name, Kind: event.KindEntryRemoved, Payload: e})
	return e, true
}

// Replace swaps the entry registered under name for newEntry, publishing
// KindEntryReplaced with both values on success. Returns false if name
// was not present.
func (r *Registry[E, C]) Replace(name string, newEntry E) (E, bool) {
	r.entriesMu.Lock()
	old, ok := r.entries[name]
	if ok {
		r.entries[name] = newEntry
	}
	r.entriesMu.Unlock()

	if !ok {
		var zero E
		return zero, false
	}

	r.pub.Publish(event.Event{
		InstanceName: name,
		Kind:         event.KindEntryReplaced,
		Payload:      event.EntryReplaced{Old: old, New: newEntry},
	})
	return old, true
}

// GetAll returns a snapshot of every entry currently registered.
func (r *Registry[E, C]) GetAll() map[string]E {
	r.entriesMu.RLock()
	defer r.entriesMu.RUnlock()

	out := make(map[string]E, len(r.entries))
	for name, e := range r.entries {
		out[name] = e
	}
	return out
}

// AddConfiguration registers a named configuration for later reference as
// a baseConfig. Fails if name is the reserved "default".
func (r *Registry[E, C]) AddConfiguration(name string, cfg C) error {
	if name == DefaultConfigName {
		return fmt.Errorf("registry: %q is reserved and cannot be added or replaced", DefaultConfigName)
	}

	r.configsMu.Lock()
	defer r.configsMu.Unlock()
	r.configs[name] = cfg
	return nil
}

// GetConfiguration returns the named configuration, if registered.
func (r *Registry[E, C]) GetConfiguration(name string) (C, bool) {
	r.configsMu.RLock()
	defer r.configsMu.RUnlock()
	cfg, ok := r.configs[name]
	return cfg, ok
}

// DefaultConfig returns the registry's default configuration.
func (r *Registry[E, C]) DefaultConfig() C {
	r.configsMu.RLock()
	defer r.configsMu.RUnlock()
	return r.configs[DefaultConfigName]
}

// Resolve computes the effective configuration for an instance, given the
// instance's own (possibly partial) config and the name of a baseConfig it
// wants to inherit from ("" means inherit from "default" is the caller's
// choice, not implied here). If baseName is non-empty and unregistered,
// ConfigurationNotFoundError is returned.
func (r *Registry[E, C]) Resolve(baseName string, overlay C) (C, error) {
	if baseName == "" {
		return overlay, nil
	}
	base, ok := r.GetConfiguration(baseName)
	if !ok {
		var zero C
		return zero, &ConfigurationNotFoundError{Name: baseName}
	}
	return r.merge(base, overlay), nil
}
