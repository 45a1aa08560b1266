package circuitbreaker

import "fmt"

// NotPermittedError is returned by AcquirePermission when the circuit
// breaker denies the call (spec's CallNotPermitted).
type NotPermittedError struct {
	Name  string
	State State
}

func (e *NotPermittedError) Error() string {
	return fmt.Sprintf("circuitbreaker %q: call not permitted, state is %s", e.Name, e.State)
}
