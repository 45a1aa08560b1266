package timelimiter

import "github.com/faultline/faultline/registry"

// Registry is the named-instance store for TimeLimiters.
type Registry struct {
	reg *registry.Registry[*TimeLimiter, Config]
}

// NewRegistry creates a Registry seeded with defaultConfig under the
// reserved "default" configuration name.
func NewRegistry(defaultConfig Config) *Registry {
	return &Registry{reg: registry.New[*TimeLimiter, Config](defaultConfig, mergeConfig)}
}

// Get returns the TimeLimiter for name, creating it from the registry's
// default configuration on first demand.
func (r *Registry) Get(name string) (*TimeLimiter, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*TimeLimiter, error) {
		return New(n, r.reg.DefaultConfig())
	})
}

// GetWithConfig returns the TimeLimiter for name, constructing it (on
// first demand) with cfg directly.
func (r *Registry) GetWithConfig(name string, cfg Config) (*TimeLimiter, error) {
	return r.reg.ComputeIfAbsent(name, func(n string) (*TimeLimiter, error) {
		return New(n, cfg)
	})
}

// Find returns the TimeLimiter registered under name, if any.
func (r *Registry) Find(name string) (*TimeLimiter, bool) { return r.reg.Find(name) }

// Remove deletes the TimeLimiter registered under name.
func (r *Registry) Remove(name string) (*TimeLimiter, bool) { return r.reg.Remove(name) }

// GetAll returns a snapshot of every registered TimeLimiter.
func (r *Registry) GetAll() map[string]*TimeLimiter { return r.reg.GetAll() }

// AddConfiguration registers a named configuration usable as a baseConfig.
func (r *Registry) AddConfiguration(name string, cfg Config) error {
	return r.reg.AddConfiguration(name, cfg)
}

// Underlying exposes the generic registry.
func (r *Registry) Underlying() *registry.Registry[*TimeLimiter, Config] { return r.reg }
