package registry

import "fmt"

// ConfigurationNotFoundError is returned when an instance's properties
// name a baseConfig (or a caller requests a named config) that was never
// registered with AddConfiguration.
type ConfigurationNotFoundError struct {
	Name string
}

func (e *ConfigurationNotFoundError) Error() string {
	return fmt.Sprintf("registry: configuration %q not found", e.Name)
}

// DefaultConfigName is the reserved configuration name every Registry
// seeds at construction. It can be read but never replaced or removed.
const DefaultConfigName = "default"
