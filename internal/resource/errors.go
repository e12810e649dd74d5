package resource

import "fmt"

// ExhaustedError reports that a soft cap on process-wide resource usage
// would be breached. It names the resource (e.g. "active_handles") and the
// cap that was hit so callers and logs can tell handles and matchers apart.
type ExhaustedError struct {
	Resource string
	Cap      int64
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("resource exhausted: %s would exceed cap %d", e.Resource, e.Cap)
}
