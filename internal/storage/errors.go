package storage

import "fmt"

// LifecycleError wraps a fatal failure of the embedded store's start/stop
// lifecycle. Callers must abort rather than retry: a store that failed to
// start is in an unknown state.
type LifecycleError struct {
	Op  string
	Err error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("store lifecycle: %s: %v", e.Op, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}
