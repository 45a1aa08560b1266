package health

import (
	"fmt"
	"time"
)

// CheckerNotFoundError is returned by Aggregator.Check when name has no
// registered Checker.
type CheckerNotFoundError struct {
	Name string
}

func (e *CheckerNotFoundError) Error() string {
	return fmt.Sprintf("health: checker %q not registered", e.Name)
}

// CheckTimeoutError is recorded as a Result's Error when a Checker does
// not return within the owning Aggregator's configured timeout.
type CheckTimeoutError struct {
	Name    string
	Timeout time.Duration
}

func (e *CheckTimeoutError) Error() string {
	return fmt.Sprintf("health: checker %q exceeded timeout %s", e.Name, e.Timeout)
}
