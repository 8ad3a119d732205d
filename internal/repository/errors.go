package repository

import "fmt"

// StorageError wraps an underlying connectivity or query failure with the
// operation that hit it. It is always propagated, never swallowed, except for
// the two documented partial-skip policies (corrupt car rows during Load,
// invalid numbers during ListAll).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// AlreadyExistsError reports a registration attempt for a username that is
// already taken.
type AlreadyExistsError struct {
	Username string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("user %q already exists", e.Username)
}
