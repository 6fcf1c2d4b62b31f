// Package context provides functionality to clone an existing context
package context

import (
	"context"
	"time"
)

type DetachedContext struct {
	parent context.Context
}

// Detach clones a context, keeping its values but dropping the parent's
// cancellation and deadline. Used for work that must outlive the request,
// such as sending the confirmation email after a leave submission.
func Detach(ctx context.Context) context.Context {
	return DetachedContext{ctx}
}

// Deadline returns the time when work done on behalf of this context should be completed.
func (d DetachedContext) Deadline() (deadline time.Time, ok bool) {
	return time.Time{}, false
}

// Done returns a channel that's closed when work done on behalf of this context should be cancelled.
func (d DetachedContext) Done() <-chan struct{} {
	return nil
}

func (d DetachedContext) Err() error {
	return nil
}

func (d DetachedContext) Value(key any) any {
	return d.parent.Value(key)
}
