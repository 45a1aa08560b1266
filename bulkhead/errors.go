package bulkhead

import "fmt"

// FullError is returned when a permit (Bulkhead) or task slot
// (ThreadPoolBulkhead) could not be obtained within the configured wait.
type FullError struct {
	Name string
}

func (e *FullError) Error() string {
	return fmt.Sprintf("bulkhead %q: full, no permit available", e.Name)
}
