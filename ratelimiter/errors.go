package ratelimiter

import "fmt"

// RequestNotPermittedError is returned by AcquirePermission when no permit
// could be reserved within Config.TimeoutDuration.
type RequestNotPermittedError struct {
	Name string
}

func (e *RequestNotPermittedError) Error() string {
	return fmt.Sprintf("ratelimiter %q: request not permitted, limiter is full", e.Name)
}
