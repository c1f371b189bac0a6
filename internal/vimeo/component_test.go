package vimeo

import (
	"errors"
	"sync"
	"testing"

	"reel/internal/player"
	"reel/internal/player/playertest"
)

func TestMountAppliesStartVolumeAndRate(t *testing.T) {
	t.Parallel()

	handle := playertest.NewHandle()
	component := New(handle.Factory())

	err := component.Mount(Props{
		Video:        "https://vimeo.com/76979871",
		ID:           "player",
		Class:        "hero",
		Style:        map[string]string{"border": "0"},
		Start:        Float(0),
		Volume:       Float(0),
		PlaybackRate: Float(1.25),
	})
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	component.Wait()

	if handle.Options.URL != "https://vimeo.com/76979871" {
		t.Fatalf("expected URL option, got %+v", handle.Options)
	}
	if handle.Container.ID != "player" || handle.Container.Class != "hero" || handle.Container.Style["border"] != "0" {
		t.Fatalf("expected container passthrough, got %+v", handle.Container)
	}

	seeks := handle.CallsTo("SetCurrentTime")
	if len(seeks) != 1 || seeks[0].Args[0] != 0.0 {
		t.Fatalf("expected a seek to zero, got %+v", seeks)
	}
	volumes := handle.CallsTo("SetVolume")
	if len(volumes) != 1 || volumes[0].Args[0] != 0.0 {
		t.Fatalf("expected SetVolume(0), got %+v", volumes)
	}
	rates := handle.CallsTo("SetPlaybackRate")
	if len(rates) != 1 || rates[0].Args[0] != 1.25 {
		t.Fatalf("expected SetPlaybackRate(1.25), got %+v", rates)
	}
	if got := len(handle.CallsTo("LoadVideo")); got != 0 {
		t.Fatalf("expected mount not to reload the video, got %d", got)
	}
}

func TestMountWithoutNumericPropsSkipsInitialCalls(t *testing.T) {
	t.Parallel()

	handle := playertest.NewHandle()
	component := New(handle.Factory())
	if err := component.Mount(Props{Video: "1"}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	component.Wait()

	for _, method := range []string{"SetCurrentTime", "SetVolume", "SetPlaybackRate"} {
		if got := len(handle.CallsTo(method)); got != 0 {
			t.Fatalf("expected no %s, got %d", method, got)
		}
	}
}

func TestMountTwiceCreatesOneHandle(t *testing.T) {
	t.Parallel()

	handle := playertest.NewHandle()
	component := New(handle.Factory())

	for i := 0; i < 2; i++ {
		if err := component.Mount(Props{Video: "1"}); err != nil {
			t.Fatalf("mount %d: %v", i, err)
		}
	}
	component.Wait()

	if got := len(handle.CallsTo("construct")); got != 1 {
		t.Fatalf("expected one construction, got %d", got)
	}
	if got := handle.Subscriptions(player.EventPlay); got != 1 {
		t.Fatalf("expected one play subscription, got %d", got)
	}
}

func TestMountFactoryFailure(t *testing.T) {
	t.Parallel()

	factoryErr := errors.New("no backend")
	component := New(func(player.Container, player.Options) (player.Handle, error) {
		return nil, factoryErr
	})

	err := component.Mount(Props{Video: "1"})
	if !errors.Is(err, factoryErr) {
		t.Fatalf("expected factory error, got %v", err)
	}
	if component.State() != Failed {
		t.Fatalf("expected failed state, got %s", component.State())
	}
	if component.Handle() != nil {
		t.Fatalf("expected no handle after failed construction")
	}
}

func TestReadyInvokesOnReadyOnce(t *testing.T) {
	t.Parallel()

	handle := playertest.NewHandle()
	handle.ReadyGate = make(chan struct{})
	component := New(handle.Factory())

	var mu sync.Mutex
	var readyHandles []player.Handle
	props := Props{Video: "1"}
	props.OnReady = func(h player.Handle) {
		mu.Lock()
		defer mu.Unlock()
		readyHandles = append(readyHandles, h)
	}

	if err := component.Mount(props); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if component.State() != Creating {
		t.Fatalf("expected creating state before readiness, got %s", component.State())
	}

	close(handle.ReadyGate)
	component.Wait()
	component.Update(props)
	component.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(readyHandles) != 1 || readyHandles[0] != player.Handle(handle) {
		t.Fatalf("expected OnReady once with the handle, got %d calls", len(readyHandles))
	}
	if component.State() != Ready {
		t.Fatalf("expected ready state, got %s", component.State())
	}
}

func TestReadyFailureWithoutOnErrorIsReported(t *testing.T) {
	t.Parallel()

	readyErr := errors.New("embed blocked")
	handle := playertest.NewHandle()
	handle.ReadyErr = readyErr

	var mu sync.Mutex
	var reported []error
	component := New(handle.Factory(), WithUnhandledReporter(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	}))

	if err := component.Mount(Props{Video: "1"}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	component.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || !errors.Is(reported[0], readyErr) {
		t.Fatalf("expected readiness failure to be reported once, got %v", reported)
	}
	if component.State() != Failed {
		t.Fatalf("expected failed state, got %s", component.State())
	}
}

func TestReadyFailureWithOnErrorIsNotReported(t *testing.T) {
	t.Parallel()

	readyErr := errors.New("embed blocked")
	handle := playertest.NewHandle()
	handle.ReadyErr = readyErr

	var mu sync.Mutex
	var reported, handled []error
	component := New(handle.Factory(), WithUnhandledReporter(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, err)
	}))

	props := Props{Video: "1"}
	props.OnError = func(err error) {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, err)
	}
	if err := component.Mount(props); err != nil {
		t.Fatalf("mount: %v", err)
	}
	component.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 1 || !errors.Is(handled[0], readyErr) {
		t.Fatalf("expected OnError once with the failure, got %v", handled)
	}
	if len(reported) != 0 {
		t.Fatalf("expected nothing unhandled, got %v", reported)
	}
}

func TestDefaultUnhandledReporterPanics(t *testing.T) {
	t.Parallel()

	component := New(playertest.NewHandle().Factory())
	readyErr := errors.New("embed blocked")

	defer func() {
		recovered := recover()
		unhandled, ok := recovered.(*UnhandledError)
		if !ok {
			t.Fatalf("expected *UnhandledError panic, got %#v", recovered)
		}
		if !errors.Is(unhandled, readyErr) {
			t.Fatalf("expected panic to wrap the failure, got %v", unhandled)
		}
	}()

	component.unhandled(readyErr)
}
