package circuitbreaker

import "github.com/faultline/faultline/registry"

// Registry is the named-instance store for CircuitBreakers (spec section
// 4.1 / 6: "Registry.of(defaultConfig)", "registry.get(name)").
type Registry struct {
	reg *registry.Registry[*CircuitBreaker, Config]
}

// NewRegistry creates a Registry seeded with defaultConfig under the
// reserved "default" configuration name.
func NewRegistry(defaultConfig Config) *Registry {
	return &Registry{reg: registry.New[*CircuitBreaker, Config](defaultConfig, mergeConfig)}
}

// NewRegistryWithConfigs creates a Registry from a name -> Config map,
// which must include "default".
func NewRegistryWithConfigs(configs map[string]Config) (*Registry, error) {
	r, err := registry.NewWithConfigs[*CircuitBreaker, Config](configs, mergeConfig)
	if err != nil {
		return nil, err
	}
	return &Registry{reg: r}, nil
}

// Get returns the CircuitBreaker for name, creating it from the registry's
// default configuration on first demand.
func (r *Registry) Get(name string) (*CircuitBreaker, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*CircuitBreaker, error) {
		return New(n, r.reg.DefaultConfig())
	})
}

// GetWithConfigName returns the CircuitBreaker for name, constructing it
// (on first demand) from the named configuration instead of "default".
func (r *Registry) GetWithConfigName(name, configName string) (*CircuitBreaker, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*CircuitBreaker, error) {
		cfg, ok := r.reg.GetConfiguration(configName)
		if !ok {
			return nil, &registry.ConfigurationNotFoundError{Name: configName}
		}
		return New(n, cfg)
	})
}

// GetWithConfig returns the CircuitBreaker for name, constructing it (on
// first demand) with cfg directly.
func (r *Registry) GetWithConfig(name string, cfg Config) (*CircuitBreaker, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*CircuitBreaker, error) {
		return New(n, cfg)
	})
}

// Find returns the CircuitBreaker registered under name, if any.
func (r *Registry) Find(name string) (*CircuitBreaker, bool) { return r.reg.Find(name) }

// Remove deletes the CircuitBreaker registered under name.
func (r *Registry) Remove(name string) (*CircuitBreaker, bool) { return r.reg.Remove(name) }

// Replace swaps the CircuitBreaker registered under name.
func (r *Registry) Replace(name string, cb *CircuitBreaker) (*CircuitBreaker, bool) {
	return r.reg.Replace(name, cb)
}

// GetAll returns a snapshot of every registered CircuitBreaker.
func (r *Registry) GetAll() map[string]*CircuitBreaker { return r.reg.GetAll() }

// AddConfiguration registers a named configuration usable as a baseConfig.
func (r *Registry) AddConfiguration(name string, cfg Config) error {
	return r.reg.AddConfiguration(name, cfg)
}

// Underlying exposes the generic registry, mainly so embedders can
// subscribe to entry-lifecycle events via Underlying().Events().
func (r *Registry) Underlying() *registry.Registry[*CircuitBreaker, Config] { return r.reg }
