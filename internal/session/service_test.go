package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"reel/internal/history"
	"reel/internal/player"
	"reel/internal/player/playertest"
	"reel/internal/vimeo"
)

type memoryPositions struct {
	mu        sync.Mutex
	positions map[string]float64
	saves     int
}

func newMemoryPositions() *memoryPositions {
	return &memoryPositions{positions: make(map[string]float64)}
}

func (m *memoryPositions) SavePosition(_ context.Context, video string, seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[video] = seconds
	m.saves++
	return nil
}

func (m *memoryPositions) Position(_ context.Context, video string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seconds, ok := m.positions[video]
	if !ok {
		return 0, history.ErrNotFound
	}
	return seconds, nil
}

func (m *memoryPositions) ClearPosition(_ context.Context, video string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, video)
	return nil
}

type recordedEvent struct {
	name    string
	payload any
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) emit(name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: name, payload: payload})
}

func (r *eventRecorder) named(name string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []recordedEvent
	for _, event := range r.events {
		if event.name == name {
			matched = append(matched, event)
		}
	}
	return matched
}

func newServiceForTest(t *testing.T, positions PositionStore, options Options) (*Service, *playertest.Handle, *eventRecorder) {
	t.Helper()

	handle := playertest.NewHandle()
	options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(handle.Factory(), positions, options)
	recorder := &eventRecorder{}
	service.SetEmitter(recorder.emit)

	return service, handle, recorder
}

func TestRenderMountsThenUpdates(t *testing.T) {
	t.Parallel()

	service, handle, recorder := newServiceForTest(t, nil, Options{})

	state, err := service.Render(vimeo.Props{Video: "1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	service.Wait()
	if state.Video != "1" {
		t.Fatalf("expected video 1, got %q", state.Video)
	}
	readyEvents := recorder.named(EventReady)
	if len(readyEvents) != 1 {
		t.Fatalf("expected one ready event, got %d", len(readyEvents))
	}
	if ready, ok := readyEvents[0].payload.(State); !ok || ready.Readiness != vimeo.Ready.String() {
		t.Fatalf("expected ready event to carry the ready state, got %#v", readyEvents[0].payload)
	}
	if got := service.GetState().Readiness; got != vimeo.Ready.String() {
		t.Fatalf("expected ready, got %q", got)
	}

	if _, err := service.Render(vimeo.Props{Video: "1", Volume: vimeo.Float(0.2)}); err != nil {
		t.Fatalf("second render: %v", err)
	}
	service.Wait()

	if got := len(handle.CallsTo("construct")); got != 1 {
		t.Fatalf("expected one construction, got %d", got)
	}
	if calls := handle.CallsTo("SetVolume"); len(calls) != 1 || calls[0].Args[0] != 0.2 {
		t.Fatalf("expected SetVolume(0.2), got %+v", calls)
	}
	if len(recorder.named(EventStateChanged)) < 2 {
		t.Fatalf("expected a state event per render")
	}
}

func TestRenderAppliesConfiguredDefaults(t *testing.T) {
	t.Parallel()

	defaults := vimeo.Props{Color: "00adef", Volume: vimeo.Float(0.7)}
	service, handle, _ := newServiceForTest(t, nil, Options{Defaults: defaults})

	if _, err := service.Render(vimeo.Props{Video: "1"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	service.Wait()

	if handle.Options.Color != "00adef" {
		t.Fatalf("expected default color in options, got %q", handle.Options.Color)
	}
	if calls := handle.CallsTo("SetVolume"); len(calls) != 1 || calls[0].Args[0] != 0.7 {
		t.Fatalf("expected default volume applied at mount, got %+v", calls)
	}

	handle.Reset()
	if _, err := service.SetDefaults(vimeo.Props{Color: "ff0000", Volume: vimeo.Float(0.7)}); err != nil {
		t.Fatalf("set defaults: %v", err)
	}
	service.Wait()

	if calls := handle.CallsTo("SetColor"); len(calls) != 1 || calls[0].Args[0] != "ff0000" {
		t.Fatalf("expected new default color dispatched, got %+v", calls)
	}
	if got := len(handle.CallsTo("SetVolume")); got != 0 {
		t.Fatalf("expected unchanged volume not to be dispatched, got %d", got)
	}
}

func TestRenderResumesFromSavedPosition(t *testing.T) {
	t.Parallel()

	positions := newMemoryPositions()
	positions.positions["42"] = 73.5
	service, handle, _ := newServiceForTest(t, positions, Options{Resume: true})

	if _, err := service.Render(vimeo.Props{Video: "1"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	service.Wait()
	if got := len(handle.CallsTo("SetCurrentTime")); got != 0 {
		t.Fatalf("expected no seek without a saved position, got %d", got)
	}

	if _, err := service.Render(vimeo.Props{Video: "42"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	service.Wait()

	seeks := handle.CallsTo("SetCurrentTime")
	if len(seeks) != 1 || seeks[0].Args[0] != 73.5 {
		t.Fatalf("expected resume seek to 73.5, got %+v", seeks)
	}
}

func TestPlayerEventsAreForwardedAndPersisted(t *testing.T) {
	t.Parallel()

	positions := newMemoryPositions()
	service, handle, recorder := newServiceForTest(t, positions, Options{Resume: true})

	if _, err := service.Render(vimeo.Props{Video: "7"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	service.Wait()

	handle.Emit(player.Event{Name: player.EventPlay})
	handle.Emit(player.Event{Name: player.EventTimeUpdate, Seconds: 1, Duration: 100})
	handle.Emit(player.Event{Name: player.EventTimeUpdate, Seconds: 2, Duration: 100})
	handle.Emit(player.Event{Name: player.EventTimeUpdate, Seconds: 12, Duration: 100})

	state := service.GetState()
	if state.Paused || state.PositionMS != 12000 || state.DurationMS == nil || *state.DurationMS != 100000 {
		t.Fatalf("unexpected state %+v", state)
	}
	if positions.saves != 2 || positions.positions["7"] != 12 {
		t.Fatalf("expected throttled saves ending at 12, got %d saves and %v", positions.saves, positions.positions)
	}
	if got := len(recorder.named(EventPlayer)); got != 4 {
		t.Fatalf("expected four forwarded events, got %d", got)
	}

	handle.Emit(player.Event{Name: player.EventEnded})
	if _, err := positions.Position(context.Background(), "7"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected position cleared at the end, got %v", err)
	}
	if !service.GetState().Paused {
		t.Fatalf("expected paused after the video ended")
	}
}

func TestReadinessFailureIsEmitted(t *testing.T) {
	t.Parallel()

	service, handle, recorder := newServiceForTest(t, nil, Options{})
	handle.ReadyErr = errors.New("privacy settings block embedding")

	if _, err := service.Render(vimeo.Props{Video: "1"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	service.Wait()

	errorsEmitted := recorder.named(EventError)
	if len(errorsEmitted) != 1 || errorsEmitted[0].payload != "privacy settings block embedding" {
		t.Fatalf("expected one error event, got %+v", errorsEmitted)
	}
	state := service.GetState()
	if state.Readiness != vimeo.Failed.String() || state.LastError == "" {
		t.Fatalf("expected failed state with an error, got %+v", state)
	}
}

func TestRenderReportsFactoryFailure(t *testing.T) {
	t.Parallel()

	service := NewService(func(player.Container, player.Options) (player.Handle, error) {
		return nil, player.ErrBackendDisabled
	}, nil, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	state, err := service.Render(vimeo.Props{Video: "76979871", Color: "00adef"})
	if !errors.Is(err, player.ErrBackendDisabled) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if state.Readiness != vimeo.Failed.String() {
		t.Fatalf("expected failed readiness, got %q", state.Readiness)
	}
	if state.EmbedURL != "https://player.vimeo.com/video/76979871?color=00adef" {
		t.Fatalf("expected hosted player fallback, got %q", state.EmbedURL)
	}
	if err := service.Close(); err != nil {
		t.Fatalf("close without handle: %v", err)
	}
}
