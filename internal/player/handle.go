package player

import (
	"context"
	"errors"
)

var ErrBackendDisabled = errors.New("libmpv backend is not enabled; build with -tags libmpv")

// Handle is the imperative control surface of an embedded player. Setters
// apply immediately; LoadVideo, Paused, Play, Pause and Ready block until the
// player answers.
type Handle interface {
	SetAutopause(enabled bool) error
	SetColor(color string) error
	SetLoop(enabled bool) error
	SetVolume(volume float64) error
	SetPlaybackRate(rate float64) error
	SetQuality(quality string) error
	SetCurrentTime(seconds float64) error
	LoadVideo(ctx context.Context, source string) error
	Unload() error
	Paused(ctx context.Context) (bool, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	On(name EventName, callback func(Event))
	Ready(ctx context.Context) error
	Element() Surface
}

// Surface is the presentation area the player renders into.
type Surface interface {
	SetWidth(width string)
	SetHeight(height string)
}

// Container identifies the element a handle is mounted into.
type Container struct {
	ID    string            `json:"id,omitempty"`
	Class string            `json:"className,omitempty"`
	Style map[string]string `json:"style,omitempty"`
}

// Factory constructs a handle inside container. It must not block on
// readiness; callers wait on Handle.Ready.
type Factory func(container Container, options Options) (Handle, error)
