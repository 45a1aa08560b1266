package bulkhead

import "github.com/faultline/faultline/registry"

// Registry is the named-instance store for Bulkheads.
type Registry struct {
	reg *registry.Registry[*Bulkhead, Config]
}

// NewRegistry creates a Registry seeded with defaultConfig under the
// reserved "default" configuration name.
func NewRegistry(defaultConfig Config) *Registry {
	return &Registry{reg: registry.New[*Bulkhead, Config](defaultConfig, mergeConfig)}
}

// NewRegistryWithConfigs creates a Registry from a name -> Config map,
// which must include "default".
func NewRegistryWithConfigs(configs map[string]Config) (*Registry, error) {
	r, err := registry.NewWithConfigs[*Bulkhead, Config](configs, mergeConfig)
	if err != nil {
		return nil, err
	}
	return &Registry{reg: r}, nil
}

// Get returns the Bulkhead for name, creating it from the registry's
// default configuration on first demand.
func (r *Registry) Get(name string) (*Bulkhead, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*Bulkhead, error) {
		return New(n, r.reg.DefaultConfig())
	})
}

// GetWithConfigName returns the Bulkhead for name, constructing it (on
// first demand) from the named configuration instead of "default".
func (r *Registry) GetWithConfigName(name, configName string) (*Bulkhead, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*Bulkhead, error) {
		cfg, ok := r.reg.GetConfiguration(configName)
		if !ok {
			return nil, &registry.ConfigurationNotFoundError{Name: configName}
		}
		return New(n, cfg)
	})
}

// GetWithConfig returns the Bulkhead for name, constructing it (on first
// demand) with cfg directly.
func (r *Registry) GetWithConfig(name string, cfg Config) (*Bulkhead, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*Bulkhead, error) {
		return New(n, cfg)
	})
}

// Find returns the Bulkhead registered under name, if any.
func (r *Registry) Find(name string) (*Bulkhead, bool) { return r.reg.Find(name) }

// Remove deletes the Bulkhead registered under name.
func (r *Registry) Remove(name string) (*Bulkhead, bool) { return r.reg.Remove(name) }

// GetAll returns a snapshot of every registered Bulkhead.
func (r *Registry) GetAll() map[string]*Bulkhead { return r.reg.GetAll() }

// AddConfiguration registers a named configuration usable as a baseConfig.
func (r *Registry) AddConfiguration(name string, cfg Config) error {
	return r.reg.AddConfiguration(name, cfg)
}

// Underlying exposes the generic registry.
func (r *Registry) Underlying() *registry.Registry[*Bulkhead, Config] { return r.reg }

// ThreadPoolRegistry is the named-instance store for ThreadPoolBulkheads.
type ThreadPoolRegistry struct {
	reg *registry.Registry[*ThreadPoolBulkhead, ThreadPoolConfig]
}

// NewThreadPoolRegistry creates a ThreadPoolRegistry seeded with
// defaultConfig under the reserved "default" configuration name.
func NewThreadPoolRegistry(defaultConfig ThreadPoolConfig) *ThreadPoolRegistry {
	return &ThreadPoolRegistry{
		reg: registry.New[*ThreadPoolBulkhead, ThreadPoolConfig](defaultConfig, mergeThreadPoolConfig),
	}
}

// Get returns the ThreadPoolBulkhead for name, creating it from the
// registry's default configuration on first demand.
func (r *ThreadPoolRegistry) Get(name string) (*ThreadPoolBulkhead, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*ThreadPoolBulkhead, error) {
		return NewThreadPool(n, r.reg.DefaultConfig())
	})
}

// Find returns the ThreadPoolBulkhead registered under name, if any.
func (r *ThreadPoolRegistry) Find(name string) (*ThreadPoolBulkhead, bool) {
	return r.reg.Find(name)
}

// Remove deletes the ThreadPoolBulkhead registered under name.
func (r *ThreadPoolRegistry) Remove(name string) (*ThreadPoolBulkhead, bool) {
	return r.reg.Remove(name)
}

// GetAll returns a snapshot of every registered ThreadPoolBulkhead.
func (r *ThreadPoolRegistry) GetAll() map[string]*ThreadPoolBulkhead { return r.reg.GetAll() }
