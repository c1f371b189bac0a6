package player

import (
	"context"
	"errors"
	"sync"
)

var ErrHandleReleased = errors.New("player handle released")

// clientGate guards a native client that becomes usable only once its
// asynchronous startup settles and must never be touched after release.
// Calls hold a read lock while they use the client; release takes the write
// lock, so destroy never runs under an in-flight call.
type clientGate struct {
	mu       sync.RWMutex
	settled  chan struct{}
	done     bool
	err      error
	deferred []func() error
}

func newClientGate() *clientGate {
	return &clientGate{settled: make(chan struct{})}
}

// open marks the client usable and applies the calls queued before it was.
func (g *clientGate) open() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.done {
		return
	}
	g.done = true
	close(g.settled)

	deferred := g.deferred
	g.deferred = nil
	for _, apply := range deferred {
		_ = apply()
	}
}

// release runs destroy once and fails every later call with cause, or with
// ErrHandleReleased when cause is nil. Queued calls are dropped.
func (g *clientGate) release(cause error, destroy func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return
	}
	if cause == nil {
		cause = ErrHandleReleased
	}
	g.err = cause
	g.deferred = nil
	if !g.done {
		g.done = true
		close(g.settled)
	}
	if destroy != nil {
		destroy()
	}
}

// call waits for startup to settle, then runs use against the client.
func (g *clientGate) call(ctx context.Context, use func() error) error {
	select {
	case <-g.settled:
	case <-ctx.Done():
		return ctx.Err()
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.err != nil {
		return g.err
	}
	return use()
}

// later runs use now when the client is usable, queues it while startup is
// still in progress, and fails it after release.
func (g *clientGate) later(use func() error) error {
	g.mu.RLock()
	if g.done {
		defer g.mu.RUnlock()
		if g.err != nil {
			return g.err
		}
		return use()
	}
	g.mu.RUnlock()

	g.mu.Lock()
	if !g.done {
		g.deferred = append(g.deferred, use)
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	return g.later(use)
}
