package state

import (
	"context"

	"github.com/go-drift/statekit/pkg/errors"
)

// Signal is closed once the work it stands for has finished.
// A nil Signal means the work finished synchronously.
type Signal <-chan struct{}

var settledSignal = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Settled returns a Signal that is already closed.
func Settled() Signal {
	return settledSignal
}

// Completion tracks one notification round. It settles after every
// listener of the round has finished and the round's settle callback
// has returned.
type Completion struct {
	done      chan struct{}
	container string
}

func newCompletion(container string) *Completion {
	return &Completion{done: make(chan struct{}), container: container}
}

// settle joins signals, runs onSettled and closes the completion.
//
// When every listener finished synchronously the callback runs on the
// calling goroutine, so its panics reach the caller of Mutate. Otherwise
// the join happens on a goroutine and a panicking callback is reported
// to the global error handler as a [errors.KindPanic] error naming the
// container.
func (c *Completion) settle(signals []Signal, onSettled func()) {
	if len(signals) == 0 {
		defer close(c.done)
		if onSettled != nil {
			onSettled()
		}
		return
	}

	go func() {
		defer close(c.done)
		defer errors.Recover("state.Completion", c.container)
		for _, sig := range signals {
			<-sig
		}
		if onSettled != nil {
			onSettled()
		}
	}()
}

// Done returns a channel closed when the round has settled.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Settled reports whether the round has settled.
func (c *Completion) Settled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the round settles or ctx ends, whichever comes first.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
