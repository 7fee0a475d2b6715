// Package rlimit raises the process stack limit before deep C front end
// traversals.
package rlimit

import (
	"errors"
	"fmt"
	"math"
	"runtime/debug"
)

// Default stack limits requested by the volatilize pass.
const (
	DefaultStackCur uint64 = 256 << 20
	DefaultStackMax uint64 = 2 << 30
)

var (
	// ErrRaise is wrapped by every RaiseStack failure.
	ErrRaise = errors.New("failed to raise stack limit")

	// ErrUnsupportedPlatform is returned where stack limits cannot be set.
	ErrUnsupportedPlatform = errors.New("stack limits are not supported on this platform")
)

// Limit is a soft and hard resource limit pair, in bytes.
type Limit struct {
	Cur uint64
	Max uint64
}

func (l Limit) String() string {
	return fmt.Sprintf("cur=%d max=%d", l.Cur, l.Max)
}

// RaiseStack sets the stack limit to cur (soft) and max (hard) and lifts the
// Go goroutine stack ceiling to at least max.
func RaiseStack(cur, maxLimit uint64) error {
	if cur > maxLimit {
		return fmt.Errorf("%w: soft limit %d exceeds hard limit %d", ErrRaise, cur, maxLimit)
	}
	if err := setStack(Limit{Cur: cur, Max: maxLimit}); err != nil {
		return fmt.Errorf("%w: %w", ErrRaise, err)
	}
	raiseGoStack(maxLimit)
	return nil
}

// Current returns the stack limit in effect.
func Current() (Limit, error) {
	return getStack()
}

// raiseGoStack never lowers the runtime's existing ceiling.
func raiseGoStack(limit uint64) {
	want := int(min(limit, uint64(math.MaxInt)))
	if prev := debug.SetMaxStack(want); prev > want {
		debug.SetMaxStack(prev)
	}
}
