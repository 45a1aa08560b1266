package timelimiter

import (
	"fmt"
	"time"
)

// TimeoutError is returned when a producer does not complete within
// Config.Timeout.
type TimeoutError struct {
	Name    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timelimiter %q: timed out after %s", e.Name, e.Timeout)
}
