// Package lock serializes work per key, so two messages for the same egg
// never interleave their read-modify-write.
package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrTimeout is returned when a lock could not be taken before the wait
// deadline.
var ErrTimeout = errors.New("lock wait timed out")

// Locker hands out exclusive ownership of a key until unlock is called.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func EggKey(id uint) string  { return fmt.Sprintf("egg:%d", id) }
func UserKey(id uint) string { return fmt.Sprintf("user:%d", id) }

// EmailKey guards first-time account creation.
func EmailKey(email string) string { return "email:" + email }
