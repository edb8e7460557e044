// Package objectStore defines the blob storage boundary of the service: keyed
// put/get/copy/delete against one bucket chosen at startup, the key layout
// shared by every caller, and backend-neutral error values.
package objectStore

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is implemented by the MinIO, AWS and in-memory backends.
type ObjectStore interface {
	// Put stores r under key, replacing any existing object. size may be -1
	// when the length is not known up front.
	Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) error
	// Get returns ErrObjectNotFound when nothing is stored under key. The
	// caller closes Object.Body.
	Get(ctx context.Context, key string) (*Object, error)
	// Copy leaves dstKey untouched when it fails.
	Copy(ctx context.Context, srcKey, dstKey string) error
	// Delete succeeds when key does not exist.
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Object struct {
	Key         string
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// RemoteError wraps a transport or backend failure of one operation.
type RemoteError struct {
	Op  string
	Key string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("object store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func Remote(op, key string, err error) error {
	return &RemoteError{Op: op, Key: key, Err: err}
}
