// Package lock serializes lifecycle operations on a single task.
package lock

import (
	"context"
	"errors"
)

// Locker grants exclusive access to a key. The returned release function is safe
// to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

var ErrLockTimeout = errors.New("timed out waiting for lock")
