package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"reel/internal/player"
	"reel/internal/vimeo"
)

const (
	EventStateChanged = "player:state"
	EventPlayer       = "player:event"
	EventReady        = "player:ready"
	EventError        = "player:error"
)

// positions closer than this to the last saved one are not written again
const savePositionEvery = 5 * time.Second

type Emitter func(eventName string, payload any)

// PositionStore remembers where each video was left off.
type PositionStore interface {
	SavePosition(ctx context.Context, video string, seconds float64) error
	Position(ctx context.Context, video string) (float64, error)
	ClearPosition(ctx context.Context, video string) error
}

type State struct {
	Readiness  string  `json:"readiness"`
	Video      string  `json:"video,omitempty"`
	Paused     bool    `json:"paused"`
	PositionMS int     `json:"positionMs"`
	DurationMS *int    `json:"durationMs,omitempty"`
	Volume     float64 `json:"volume"`
	LastError  string  `json:"lastError,omitempty"`
	EmbedURL   string  `json:"embedUrl,omitempty"`
	UpdatedAt  string  `json:"updatedAt"`
}

type Options struct {
	Defaults vimeo.Props
	Resume   bool
	Logger   *slog.Logger
}

// Service owns the single embedded player of the application. The frontend
// renders it by sending complete property sets; player events flow back out
// through the emitter.
type Service struct {
	renderMu  sync.Mutex
	mu        sync.Mutex
	component *vimeo.Component
	positions PositionStore
	defaults  vimeo.Props
	resume    bool
	logger    *slog.Logger
	emit      Emitter
	rendered  vimeo.Props
	hasRender bool
	mounted   bool

	video      string
	paused     bool
	positionMS int
	durationMS *int
	volume     float64
	lastError  string
	embedURL   string
	lastSaved  float64
	updatedAt  time.Time
}

func NewService(factory player.Factory, positions PositionStore, options Options) *Service {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	service := &Service{
		positions: positions,
		defaults:  options.Defaults,
		resume:    options.Resume,
		logger:    logger,
		paused:    true,
		volume:    1,
		lastSaved: -1,
	}
	service.component = vimeo.New(
		factory,
		vimeo.WithLogger(logger.With("component", "player")),
		vimeo.WithUnhandledReporter(service.onUnhandled),
	)

	return service
}

func (s *Service) SetEmitter(emitter Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit = emitter
}

// Render applies props to the player, mounting it on the first call.
func (s *Service) Render(props vimeo.Props) (State, error) {
	s.mu.Lock()
	s.rendered = props
	s.hasRender = true
	defaults := s.defaults
	s.mu.Unlock()

	return s.apply(props.WithFallback(defaults))
}

// SetDefaults replaces the configured defaults and re-renders the last props
// with them.
func (s *Service) SetDefaults(defaults vimeo.Props) (State, error) {
	s.mu.Lock()
	s.defaults = defaults
	rendered := s.rendered
	hasRender := s.hasRender
	s.mu.Unlock()

	if !hasRender {
		return s.GetState(), nil
	}

	return s.apply(rendered.WithFallback(defaults))
}

func (s *Service) apply(props vimeo.Props) (State, error) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	props = s.withResume(props)
	props.Callbacks = s.callbacks()

	s.mu.Lock()
	mounted := s.mounted
	s.mounted = true
	if props.Video != s.video {
		s.video = props.Video
		s.positionMS = 0
		s.durationMS = nil
		s.lastSaved = -1
	}
	s.embedURL = vimeo.BuildOptions(props).EmbedURL()
	if props.Paused != nil {
		s.paused = *props.Paused
	}
	if props.Volume != nil {
		s.volume = *props.Volume
	}
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()

	var err error
	if mounted {
		s.component.Update(props)
	} else if err = s.component.Mount(props); err != nil {
		s.setLastError(err)
	}

	state := s.GetState()
	s.emitState(state)
	return state, err
}

func (s *Service) withResume(props vimeo.Props) vimeo.Props {
	if !s.resume || s.positions == nil || props.Video == "" || props.Start != nil {
		return props
	}

	seconds, err := s.positions.Position(context.Background(), props.Video)
	if err != nil {
		return props
	}

	props.Start = vimeo.Float(seconds)
	return props
}

func (s *Service) callbacks() vimeo.Callbacks {
	forward := func(event player.Event) {
		s.emitEvent(EventPlayer, event)
	}

	return vimeo.Callbacks{
		OnReady: func(player.Handle) {
			state := s.GetState()
			s.emitEvent(EventReady, state)
			s.emitState(state)
		},
		OnError: func(err error) {
			s.setLastError(err)
			var eventErr *player.ErrorEvent
			if errors.As(err, &eventErr) {
				s.emitEvent(EventPlayer, eventErr.Event)
			}
			s.emitEvent(EventError, err.Error())
			s.emitState(s.GetState())
		},
		OnPlay: func(event player.Event) {
			s.setPaused(false)
			forward(event)
		},
		OnPlaying: forward,
		OnPause: func(event player.Event) {
			s.setPaused(true)
			s.savePosition(event.Seconds, true)
			forward(event)
		},
		OnEnd: func(event player.Event) {
			s.setPaused(true)
			s.clearPosition()
			forward(event)
		},
		OnTimeUpdate: func(event player.Event) {
			s.setPosition(event.Seconds, event.Duration)
			s.savePosition(event.Seconds, false)
			forward(event)
		},
		OnProgress: forward,
		OnSeeked: func(event player.Event) {
			s.setPosition(event.Seconds, event.Duration)
			forward(event)
		},
		OnTextTrackChange: forward,
		OnCueChange:       forward,
		OnCuePoint:        forward,
		OnVolumeChange: func(event player.Event) {
			s.mu.Lock()
			s.volume = event.Volume
			s.mu.Unlock()
			forward(event)
		},
		OnPlaybackRateChange: forward,
		OnLoaded:             forward,
	}
}

// onUnhandled logs readiness failures that reach the component without an
// OnError callback. Render always installs one, so this only fires if that
// invariant is broken.
func (s *Service) onUnhandled(err error) {
	s.logger.Error("unhandled player failure", "error", err)
	s.setLastError(err)
	s.emitEvent(EventError, err.Error())
}

func (s *Service) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		Readiness:  s.component.State().String(),
		Video:      s.video,
		Paused:     s.paused,
		PositionMS: s.positionMS,
		Volume:     s.volume,
		LastError:  s.lastError,
		EmbedURL:   s.embedURL,
	}
	if s.durationMS != nil {
		duration := *s.durationMS
		state.DurationMS = &duration
	}
	if !s.updatedAt.IsZero() {
		state.UpdatedAt = s.updatedAt.UTC().Format(time.RFC3339)
	}

	return state
}

// Wait blocks until every player operation issued so far has finished.
func (s *Service) Wait() {
	s.component.Wait()
}

// Close releases the player handle when it holds native resources. The
// component itself never destroys its handle.
func (s *Service) Close() error {
	handle := s.component.Handle()
	if closer, ok := handle.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Service) setPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Service) setPosition(seconds float64, duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positionMS = secondsToMS(seconds)
	if duration > 0 {
		durationMS := secondsToMS(duration)
		s.durationMS = &durationMS
	}
	s.updatedAt = time.Now().UTC()
}

func (s *Service) setLastError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Service) savePosition(seconds float64, force bool) {
	if s.positions == nil {
		return
	}

	s.mu.Lock()
	video := s.video
	due := force || s.lastSaved < 0 || math.Abs(seconds-s.lastSaved) >= savePositionEvery.Seconds()
	if due {
		s.lastSaved = seconds
	}
	s.mu.Unlock()

	if video == "" || !due {
		return
	}

	if err := s.positions.SavePosition(context.Background(), video, seconds); err != nil {
		s.logger.Warn("save resume position failed", "video", video, "error", err)
	}
}

func (s *Service) clearPosition() {
	if s.positions == nil {
		return
	}

	s.mu.Lock()
	video := s.video
	s.lastSaved = -1
	s.mu.Unlock()

	if video == "" {
		return
	}

	if err := s.positions.ClearPosition(context.Background(), video); err != nil {
		s.logger.Warn("clear resume position failed", "video", video, "error", err)
	}
}

func (s *Service) emitState(state State) {
	s.emitEvent(EventStateChanged, state)
}

func (s *Service) emitEvent(eventName string, payload any) {
	s.mu.Lock()
	emitter := s.emit
	s.mu.Unlock()

	if emitter != nil {
		emitter(eventName, payload)
	}
}

func secondsToMS(seconds float64) int {
	if math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	return int(math.Round(seconds * 1000))
}
