// Package playertest provides a recording player.Handle for tests.
package playertest

import (
	"context"
	"slices"
	"sync"

	"reel/internal/player"
)

type Call struct {
	Method string
	Args   []any
}

// Handle records every call it receives. Asynchronous methods resolve
// immediately unless a gate channel is set, in which case they block until
// the gate is closed or sent to.
type Handle struct {
	mu        sync.Mutex
	calls     []Call
	listeners map[player.EventName][]func(player.Event)
	element   *Element

	Container player.Container
	Options   player.Options

	ReadyErr  error
	ReadyGate chan struct{}

	PausedResult bool
	PausedErr    error
	PausedGate   chan struct{}

	LoadErr  error
	LoadGate chan struct{}
}

type Element struct {
	mu     sync.Mutex
	Width  string
	Height string
	handle *Handle
}

func NewHandle() *Handle {
	handle := &Handle{listeners: make(map[player.EventName][]func(player.Event))}
	handle.element = &Element{handle: handle}
	return handle
}

// Factory returns a player.Factory that hands out handle and records the
// construction arguments on it.
func (h *Handle) Factory() player.Factory {
	return func(container player.Container, options player.Options) (player.Handle, error) {
		h.mu.Lock()
		h.Container = container
		h.Options = options
		h.mu.Unlock()
		h.record("construct")
		return h, nil
	}
}

func (h *Handle) record(method string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of the recorded calls in order.
func (h *Handle) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// CallsTo returns the recorded calls of one method.
func (h *Handle) CallsTo(method string) []Call {
	var matched []Call
	for _, call := range h.Calls() {
		if call.Method == method {
			matched = append(matched, call)
		}
	}
	return matched
}

// Reset forgets recorded calls.
func (h *Handle) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

// Emit delivers event to every callback subscribed to its name.
func (h *Handle) Emit(event player.Event) {
	h.mu.Lock()
	listeners := slices.Clone(h.listeners[event.Name])
	h.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Subscriptions reports how many callbacks are registered for name.
func (h *Handle) Subscriptions(name player.EventName) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[name])
}

func (h *Handle) SetAutopause(enabled bool) error {
	h.record("SetAutopause", enabled)
	return nil
}

func (h *Handle) SetColor(color string) error {
	h.record("SetColor", color)
	return nil
}

func (h *Handle) SetLoop(enabled bool) error {
	h.record("SetLoop", enabled)
	return nil
}

func (h *Handle) SetVolume(volume float64) error {
	h.record("SetVolume", volume)
	return nil
}

func (h *Handle) SetPlaybackRate(rate float64) error {
	h.record("SetPlaybackRate", rate)
	return nil
}

func (h *Handle) SetQuality(quality string) error {
	h.record("SetQuality", quality)
	return nil
}

func (h *Handle) SetCurrentTime(seconds float64) error {
	h.record("SetCurrentTime", seconds)
	return nil
}

func (h *Handle) LoadVideo(ctx context.Context, source string) error {
	h.record("LoadVideo", source)
	if err := wait(ctx, h.LoadGate); err != nil {
		return err
	}
	return h.LoadErr
}

func (h *Handle) Unload() error {
	h.record("Unload")
	return nil
}

func (h *Handle) Paused(ctx context.Context) (bool, error) {
	h.record("Paused")
	if err := wait(ctx, h.PausedGate); err != nil {
		return false, err
	}
	return h.PausedResult, h.PausedErr
}

func (h *Handle) Play(_ context.Context) error {
	h.record("Play")
	return nil
}

func (h *Handle) Pause(_ context.Context) error {
	h.record("Pause")
	return nil
}

func (h *Handle) On(name player.EventName, callback func(player.Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners[name] = append(h.listeners[name], callback)
}

func (h *Handle) Ready(ctx context.Context) error {
	if err := wait(ctx, h.ReadyGate); err != nil {
		return err
	}
	return h.ReadyErr
}

func (h *Handle) Element() player.Surface {
	return h.element
}

func (e *Element) SetWidth(width string) {
	e.mu.Lock()
	e.Width = width
	e.mu.Unlock()
	e.handle.record("SetWidth", width)
}

func (e *Element) SetHeight(height string) {
	e.mu.Lock()
	e.Height = height
	e.mu.Unlock()
	e.handle.record("SetHeight", height)
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}

	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
