package fileService

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName = errors.New("invalid file name")
	// ErrConflict covers both a name already used by another file of the
	// owner and a lost race against a concurrent rename.
	ErrConflict    = errors.New("file name conflict")
	ErrNotFound    = errors.New("file not found")
	ErrRemoteStore = errors.New("object store failure")
)

// PartialFailureError reports a rename whose object-store move went further
// than its metadata update. Both keys may hold the file content; the one the
// metadata does not point at is an orphan to reconcile.
//
// NewKeyInUse means another file record owns NewKey: the copy overwrote that
// file's object, and NewKey must not be removed as an orphan.
type PartialFailureError struct {
	OldKey      string
	NewKey      string
	NewKeyInUse bool
	Err         error
}

func (e *PartialFailureError) Error() string {
	if e.NewKeyInUse {
		return fmt.Sprintf("rename %q -> %q partially applied, %q belongs to another file: %v", e.OldKey, e.NewKey, e.NewKey, e.Err)
	}
	return fmt.Sprintf("rename %q -> %q partially applied: %v", e.OldKey, e.NewKey, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

func remoteErr(err error) error {
	return fmt.Errorf("%w: %w", ErrRemoteStore, err)
}
