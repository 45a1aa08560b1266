package retry

import "github.com/faultline/faultline/registry"

// Registry is the named-instance store for Retry policies.
type Registry struct {
	reg *registry.Registry[*Retry, Config]
}

// NewRegistry creates a Registry seeded with defaultConfig under the
// reserved "default" configuration name.
func NewRegistry(defaultConfig Config) *Registry {
	return &Registry{reg: registry.New[*Retry, Config](defaultConfig, mergeConfig)}
}

// NewRegistryWithConfigs creates a Registry from a name -> Config map,
// which must include "default".
func NewRegistryWithConfigs(configs map[string]Config) (*Registry, error) {
	r, err := registry.NewWithConfigs[*Retry, Config](configs, mergeConfig)
	if err != nil {
		return nil, err
	}
	return &Registry{reg: r}, nil
}

// Get returns the Retry for name, creating it from the registry's default
// configuration on first demand.
func (r *Registry) Get(name string) (*Retry, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*Retry, error) {
		return New(n, r.reg.DefaultConfig())
	})
}

// GetWithConfigName returns the Retry for name, constructing it (on first
// demand) from the named configuration instead of "default".
func (r *Registry) GetWithConfigName(name, configName string) (*Retry, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*Retry, error) {
		cfg, ok := r.reg.GetConfiguration(configName)
		if !ok {
			return nil, &registry.ConfigurationNotFoundError{Name: configName}
		}
		return New(n, cfg)
	})
}

// GetWithConfig returns the Retry for name, constructing it (on first
// demand) with cfg directly.
func (r *Registry) GetWithConfig(name string, cfg Config) (*Retry, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*Retry, error) {
		return New(n, cfg)
	})
}

// Find returns the Retry registered under name, if any.
func (r *Registry) Find(name string) (*Retry, bool) { return r.reg.Find(name) }

// Remove deletes the Retry registered under name.
func (r *Registry) Remove(name string) (*Retry, bool) { return r.reg.Remove(name) }

// GetAll returns a snapshot of every registered Retry.
func (r *Registry) GetAll() map[string]*Retry { return r.reg.GetAll() }

// AddConfiguration registers a named configuration usable as a baseConfig.
func (r *Registry) AddConfiguration(name string, cfg Config) error {
	return r.reg.AddConfiguration(name, cfg)
}

// Underlying exposes the generic registry.
func (r *Registry) Underlying() *registry.Registry[*Retry, Config] { return r.reg }
