package vimeo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"reel/internal/player"
)

type ReadinessState int

const (
	Uninitialized ReadinessState = iota
	Creating
	Ready
	Failed
)

func (s ReadinessState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Creating:
		return "creating"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// UnhandledError carries a readiness failure that had no OnError callback.
type UnhandledError struct {
	Err error
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("unhandled player error: %v", e.Err)
}

func (e *UnhandledError) Unwrap() error {
	return e.Err
}

// Component keeps one player handle in step with the props it is rendered
// with. The zero value is not usable; construct with New.
type Component struct {
	newHandle player.Factory
	logger    *slog.Logger
	unhandled func(error)
	ctx       context.Context

	mu     sync.Mutex
	handle player.Handle
	state  ReadinessState

	props    atomic.Pointer[Props]
	snapshot atomic.Pointer[Props]
	pending  sync.WaitGroup
}

type Option func(*Component)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Component) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUnhandledReporter replaces the default reporter for readiness failures
// that have no OnError callback. The default logs and panics.
func WithUnhandledReporter(report func(error)) Option {
	return func(c *Component) {
		if report != nil {
			c.unhandled = report
		}
	}
}

func New(factory player.Factory, opts ...Option) *Component {
	component := &Component{
		newHandle: factory,
		logger:    slog.Default(),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(component)
	}
	if component.unhandled == nil {
		component.unhandled = component.panicUnhandled
	}

	return component
}

// Mount constructs the handle for props. Calls after the first are ignored,
// so mounting twice never creates a second handle.
func (c *Component) Mount(props Props) error {
	props = props.WithFallback(Defaults())

	c.mu.Lock()
	if c.state != Uninitialized {
		c.mu.Unlock()
		return nil
	}
	c.state = Creating
	c.props.Store(&props)
	c.snapshot.Store(&props)

	handle, err := c.newHandle(props.Container(), BuildOptions(props))
	if err != nil {
		c.state = Failed
		c.mu.Unlock()
		return fmt.Errorf("create player: %w", err)
	}
	c.handle = handle
	c.mu.Unlock()

	c.bridge(handle)
	c.awaitReady(handle, props.OnReady, props.OnError)

	if props.Start != nil {
		if err := handle.SetCurrentTime(*props.Start); err != nil {
			c.logger.Warn("initial seek failed", "start", *props.Start, "error", err)
		}
	}

	var initial []Key
	if props.Volume != nil {
		initial = append(initial, KeyVolume)
	}
	if props.PlaybackRate != nil {
		initial = append(initial, KeyPlaybackRate)
	}
	c.dispatch(handle, initial, &props)

	return nil
}

func (c *Component) awaitReady(handle player.Handle, onReady func(player.Handle), onError func(error)) {
	c.goPending(func() {
		err := handle.Ready(c.ctx)

		c.mu.Lock()
		if err != nil {
			c.state = Failed
		} else {
			c.state = Ready
		}
		c.mu.Unlock()

		if err != nil {
			if onError != nil {
				onError(err)
				return
			}
			c.unhandled(err)
			return
		}

		c.logger.Debug("player ready")
		if onReady != nil {
			onReady(handle)
		}
	})
}

func (c *Component) panicUnhandled(err error) {
	c.logger.Error("player failed to become ready", "error", err)
	panic(&UnhandledError{Err: err})
}

// State reports where the handle is in its lifecycle.
func (c *Component) State() ReadinessState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Handle returns the player handle, or nil before Mount.
func (c *Component) Handle() player.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Snapshot returns the props most recently dispatched.
func (c *Component) Snapshot() Props {
	if snapshot := c.snapshot.Load(); snapshot != nil {
		return *snapshot
	}
	return Props{}
}

// Wait blocks until every operation dispatched so far has finished.
func (c *Component) Wait() {
	c.pending.Wait()
}

func (c *Component) current() Props {
	if props := c.props.Load(); props != nil {
		return *props
	}
	return Props{}
}

func (c *Component) goPending(run func()) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		run()
	}()
}
