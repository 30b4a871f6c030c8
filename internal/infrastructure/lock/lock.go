// Package lock provides the keyed mutual exclusion used around number
// allocation: an in-process implementation and a Redis one for several
// server replicas.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// context ended.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker takes a named lock. The returned function releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
