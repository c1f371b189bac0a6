//go:build libmpv

package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"slices"
	"strings"
	"sync"

	mpv "github.com/gen2brain/go-mpv"
)

const (
	mpvPauseProperty     = "pause"
	mpvPositionProperty  = "time-pos"
	mpvDurationProperty  = "duration"
	mpvVolumeProperty    = "volume"
	mpvSpeedProperty     = "speed"
	mpvSeekingProperty   = "seeking"
	mpvCacheProperty     = "demuxer-cache-time"
	mpvSubtitleProperty  = "sid"
	mpvSubTextProperty   = "sub-text"
	mpvChapterProperty   = "chapter"
	mpvLoopProperty      = "loop-file"
	mpvFormatProperty    = "ytdl-format"
	mpvOSDColorProperty  = "osd-color"
	mpvGeometryProperty  = "geometry"
	mpvSubLangProperty   = "slang"
	mpvEndProperty       = "end"
	mpvMuteProperty      = "mute"
	mpvTitleProperty     = "title"
	mpvInputProperty     = "input-default-bindings"
	mpvOSCProperty       = "osc"
	mpvForceWindowOption = "force-window"
)

// observed properties, indexed by reply userdata
var mpvObserved = []struct {
	name   string
	format mpv.Format
}{
	{mpvPauseProperty, mpv.FormatFlag},
	{mpvPositionProperty, mpv.FormatDouble},
	{mpvCacheProperty, mpv.FormatDouble},
	{mpvSeekingProperty, mpv.FormatFlag},
	{mpvVolumeProperty, mpv.FormatDouble},
	{mpvSpeedProperty, mpv.FormatDouble},
	{mpvSubtitleProperty, mpv.FormatString},
	{mpvSubTextProperty, mpv.FormatString},
	{mpvChapterProperty, mpv.FormatInt64},
}

type mpvHandle struct {
	mu          sync.Mutex
	client      *mpv.Mpv
	options     Options
	surface     *mpvSurface
	listeners   map[EventName][]func(Event)
	loadWaiters []chan error
	source      string
	seeking     bool
	autopause   bool
	gate        *clientGate
	ready       chan struct{}
	readyErr    error
	stop        chan struct{}
	closeOnce   sync.Once
	eventLoopWG sync.WaitGroup
}

type mpvSurface struct {
	handle *mpvHandle
	width  string
	height string
}

// NewMPV constructs a libmpv-backed handle. Initialization and the first load
// run in the background; Ready reports their outcome.
func NewMPV(container Container, options Options) (Handle, error) {
	client := mpv.New()
	if client == nil {
		return nil, errors.New("create libmpv instance")
	}

	setOptionString(client, "terminal", "no")
	setOptionString(client, "keep-open", "yes")
	setOptionString(client, "idle", "yes")
	setOptionString(client, mpvForceWindowOption, yesNo(!boolOr(options.Background, false)))
	setOptionString(client, "pause", yesNo(!boolOr(options.Autoplay, false)))
	setOptionString(client, mpvLoopProperty, loopValue(boolOr(options.Loop, false)))
	setOptionString(client, mpvMuteProperty, yesNo(boolOr(options.Muted, false)))
	setOptionString(client, mpvOSCProperty, yesNo(boolOr(options.Controls, true)))
	setOptionString(client, mpvInputProperty, yesNo(boolOr(options.Keyboard, true)))
	if container.ID != "" {
		setOptionString(client, mpvTitleProperty, container.ID)
	}
	if options.Color != "" {
		setOptionString(client, mpvOSDColorProperty, osdColor(options.Color))
	}
	if options.Quality != "" {
		setOptionString(client, mpvFormatProperty, formatForQuality(options.Quality))
	}
	if options.TextTrack != "" {
		setOptionString(client, mpvSubLangProperty, options.TextTrack)
	}
	if options.EndTime != nil {
		setOptionString(client, mpvEndProperty, strconv.FormatFloat(*options.EndTime, 'f', -1, 64))
	}
	if geometry := geometryValue(options.Width, options.Height); geometry != "" {
		setOptionString(client, mpvGeometryProperty, geometry)
	}

	handle := &mpvHandle{
		client:    client,
		options:   options,
		listeners: make(map[EventName][]func(Event)),
		autopause: boolOr(options.Autopause, true),
		gate:      newClientGate(),
		ready:     make(chan struct{}),
		stop:      make(chan struct{}),
	}
	handle.surface = &mpvSurface{handle: handle, width: options.Width, height: options.Height}

	go handle.initialize()

	return handle, nil
}

// initialize settles the gate exactly once: opened after the first load
// finishes (even when that load fails), released when libmpv cannot start.
func (h *mpvHandle) initialize() {
	defer close(h.ready)

	if err := h.client.Initialize(); err != nil {
		h.fail(fmt.Errorf("initialize libmpv: %w", err))
		return
	}

	_ = h.client.RequestEvent(mpv.EventEnd, true)
	_ = h.client.RequestEvent(mpv.EventFileLoaded, true)
	for index, property := range mpvObserved {
		if err := h.client.ObserveProperty(uint64(index+1), property.name, property.format); err != nil {
			h.fail(fmt.Errorf("observe %s: %w", property.name, err))
			return
		}
	}

	h.eventLoopWG.Add(1)
	go h.eventLoop()
	defer h.gate.open()

	source := h.options.Source()
	if source == "" {
		return
	}

	waiter := h.addLoadWaiter(source)
	if err := h.client.Command([]string{"loadfile", source, "replace"}); err != nil {
		h.readyErr = fmt.Errorf("load file %q: %w", source, err)
		return
	}
	h.readyErr = <-waiter
}

func (h *mpvHandle) fail(err error) {
	h.readyErr = err
	h.gate.release(err, h.client.TerminateDestroy)
}

func (h *mpvHandle) Ready(ctx context.Context) error {
	select {
	case <-h.ready:
		return h.readyErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *mpvHandle) On(name EventName, callback func(Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners[name] = append(h.listeners[name], callback)
}

func (h *mpvHandle) Element() Surface {
	return h.surface
}

// SetAutopause records the flag; a single libmpv instance has no sibling
// players to pause.
func (h *mpvHandle) SetAutopause(enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.autopause = enabled
	return nil
}

func (h *mpvHandle) SetColor(color string) error {
	return h.gate.later(func() error {
		if err := h.client.SetPropertyString(mpvOSDColorProperty, osdColor(color)); err != nil {
			return fmt.Errorf("set color: %w", err)
		}
		return nil
	})
}

func (h *mpvHandle) SetLoop(enabled bool) error {
	return h.gate.later(func() error {
		if err := h.client.SetPropertyString(mpvLoopProperty, loopValue(enabled)); err != nil {
			return fmt.Errorf("set loop: %w", err)
		}
		return nil
	})
}

func (h *mpvHandle) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("set volume: %v is outside [0, 1]", volume)
	}
	return h.gate.later(func() error {
		if err := h.client.SetProperty(mpvVolumeProperty, mpv.FormatDouble, volume*100); err != nil {
			return fmt.Errorf("set volume: %w", err)
		}
		return nil
	})
}

func (h *mpvHandle) SetPlaybackRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("set playback rate: %v must be positive", rate)
	}
	return h.gate.later(func() error {
		if err := h.client.SetProperty(mpvSpeedProperty, mpv.FormatDouble, rate); err != nil {
			return fmt.Errorf("set playback rate: %w", err)
		}
		return nil
	})
}

func (h *mpvHandle) SetQuality(quality string) error {
	return h.gate.later(func() error {
		if err := h.client.SetPropertyString(mpvFormatProperty, formatForQuality(quality)); err != nil {
			return fmt.Errorf("set quality: %w", err)
		}
		return nil
	})
}

func (h *mpvHandle) SetCurrentTime(seconds float64) error {
	return h.gate.later(func() error {
		if err := h.client.SetProperty(mpvPositionProperty, mpv.FormatDouble, seconds); err != nil {
			return fmt.Errorf("seek playback: %w", err)
		}
		return nil
	})
}

func (h *mpvHandle) LoadVideo(ctx context.Context, source string) error {
	resolved := resolveLoadSource(source)

	var waiter <-chan error
	err := h.gate.call(ctx, func() error {
		waiter = h.addLoadWaiter(resolved)
		if err := h.client.Command([]string{"loadfile", resolved, "replace"}); err != nil {
			return fmt.Errorf("load file %q: %w", resolved, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	select {
	case err := <-waiter:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *mpvHandle) Unload() error {
	return h.gate.later(func() error {
		if err := h.client.Command([]string{"stop"}); err != nil {
			return fmt.Errorf("stop playback: %w", err)
		}
		return nil
	})
}

func (h *mpvHandle) Paused(ctx context.Context) (bool, error) {
	var paused bool
	err := h.gate.call(ctx, func() error {
		value, err := h.client.GetProperty(mpvPauseProperty, mpv.FormatFlag)
		if err != nil {
			return fmt.Errorf("read pause: %w", err)
		}
		paused, _ = asBool(value)
		return nil
	})
	return paused, err
}

func (h *mpvHandle) Play(ctx context.Context) error {
	return h.gate.call(ctx, func() error {
		if err := h.client.SetPropertyString(mpvPauseProperty, "no"); err != nil {
			return fmt.Errorf("resume playback: %w", err)
		}
		return nil
	})
}

func (h *mpvHandle) Pause(ctx context.Context) error {
	return h.gate.call(ctx, func() error {
		if err := h.client.SetPropertyString(mpvPauseProperty, "yes"); err != nil {
			return fmt.Errorf("pause playback: %w", err)
		}
		return nil
	})
}

// Close stops the event loop and destroys the client. Calls made afterwards
// return ErrHandleReleased.
func (h *mpvHandle) Close() error {
	h.closeOnce.Do(func() {
		<-h.ready

		close(h.stop)
		_ = h.gate.call(context.Background(), func() error {
			h.client.Wakeup()
			return nil
		})
		h.eventLoopWG.Wait()

		h.gate.release(nil, h.client.TerminateDestroy)
		h.resolveLoadWaiters(ErrHandleReleased)
	})

	return nil
}

func (s *mpvSurface) SetWidth(width string) {
	s.handle.mu.Lock()
	s.width = width
	geometry := geometryValue(s.width, s.height)
	s.handle.mu.Unlock()

	s.handle.applyGeometry(geometry)
}

func (s *mpvSurface) SetHeight(height string) {
	s.handle.mu.Lock()
	s.height = height
	geometry := geometryValue(s.width, s.height)
	s.handle.mu.Unlock()

	s.handle.applyGeometry(geometry)
}

func (h *mpvHandle) applyGeometry(geometry string) {
	if geometry == "" {
		return
	}
	_ = h.gate.later(func() error {
		return h.client.SetPropertyString(mpvGeometryProperty, geometry)
	})
}

func (h *mpvHandle) addLoadWaiter(source string) <-chan error {
	waiter := make(chan error, 1)

	h.mu.Lock()
	h.source = source
	h.loadWaiters = append(h.loadWaiters, waiter)
	h.mu.Unlock()

	return waiter
}

func (h *mpvHandle) resolveLoadWaiters(err error) {
	h.mu.Lock()
	waiters := h.loadWaiters
	h.loadWaiters = nil
	h.mu.Unlock()

	for _, waiter := range waiters {
		waiter <- err
	}
}

func (h *mpvHandle) eventLoop() {
	defer h.eventLoopWG.Done()

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		event := h.client.WaitEvent(0.5)
		if event == nil {
			continue
		}

		switch event.EventID {
		case mpv.EventShutdown:
			h.resolveLoadWaiters(errors.New("player shut down"))
			return
		case mpv.EventFileLoaded:
			h.resolveLoadWaiters(nil)
			h.mu.Lock()
			source := h.source
			h.mu.Unlock()
			h.emit(Event{Name: EventLoaded, VideoID: source})
		case mpv.EventEnd:
			end := event.EndFile()
			switch end.Reason {
			case mpv.EndFileEOF:
				h.emit(Event{Name: EventEnded, Seconds: h.readSeconds(mpvDurationProperty)})
			case mpv.EndFileError:
				err := end.Error
				if err == nil {
					err = errors.New("playback failed")
				}
				h.resolveLoadWaiters(err)
				h.emit(Event{Name: EventError, Message: err.Error()})
			}
		case mpv.EventPropertyChange:
			h.handlePropertyChange(event.Property())
		}
	}
}

func (h *mpvHandle) handlePropertyChange(property mpv.EventProperty) {
	switch property.Name {
	case mpvPauseProperty:
		paused, ok := asBool(property.Data)
		if !ok {
			return
		}
		if paused {
			h.emit(Event{Name: EventPause, Seconds: h.readSeconds(mpvPositionProperty)})
			return
		}
		h.emit(Event{Name: EventPlay, Seconds: h.readSeconds(mpvPositionProperty)})
		h.emit(Event{Name: EventPlaying, Seconds: h.readSeconds(mpvPositionProperty)})
	case mpvPositionProperty:
		seconds, ok := asFloat64(property.Data)
		if !ok {
			return
		}
		h.emit(timedEvent(EventTimeUpdate, seconds, h.readSeconds(mpvDurationProperty)))
	case mpvCacheProperty:
		seconds, ok := asFloat64(property.Data)
		if !ok {
			return
		}
		h.emit(timedEvent(EventProgress, seconds, h.readSeconds(mpvDurationProperty)))
	case mpvSeekingProperty:
		seeking, ok := asBool(property.Data)
		if !ok {
			return
		}
		h.mu.Lock()
		finished := h.seeking && !seeking
		h.seeking = seeking
		h.mu.Unlock()
		if finished {
			h.emit(timedEvent(EventSeeked, h.readSeconds(mpvPositionProperty), h.readSeconds(mpvDurationProperty)))
		}
	case mpvVolumeProperty:
		volume, ok := asFloat64(property.Data)
		if !ok {
			return
		}
		h.emit(Event{Name: EventVolumeChange, Volume: volume / 100})
	case mpvSpeedProperty:
		rate, ok := asFloat64(property.Data)
		if !ok {
			return
		}
		h.emit(Event{Name: EventPlaybackRateChange, PlaybackRate: rate})
	case mpvSubtitleProperty:
		track, _ := property.Data.(string)
		event := Event{Name: EventTextTrackChange, Kind: "subtitles"}
		if track != "" && track != "no" {
			event.Label = track
			event.Language = h.client.GetPropertyString("current-tracks/sub/lang")
		}
		h.emit(event)
	case mpvSubTextProperty:
		text, _ := property.Data.(string)
		h.emit(Event{
			Name: EventCueChange,
			Kind: "subtitles",
			Data: map[string]any{"text": text},
		})
	case mpvChapterProperty:
		chapter, ok := asFloat64(property.Data)
		if !ok || chapter < 0 {
			return
		}
		h.emit(Event{
			Name:    EventCuePoint,
			Seconds: h.readSeconds(mpvPositionProperty),
			Data:    map[string]any{"chapter": int(chapter)},
		})
	}
}

func (h *mpvHandle) emit(event Event) {
	h.mu.Lock()
	listeners := slices.Clone(h.listeners[event.Name])
	h.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

func (h *mpvHandle) readSeconds(property string) float64 {
	value, err := h.client.GetProperty(property, mpv.FormatDouble)
	if err != nil {
		return 0
	}

	seconds, ok := asFloat64(value)
	if !ok || math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	return seconds
}

func timedEvent(name EventName, seconds float64, duration float64) Event {
	event := Event{Name: name, Seconds: seconds, Duration: duration}
	if duration > 0 {
		event.Percent = math.Min(1, seconds/duration)
	}
	return event
}

func resolveLoadSource(source string) string {
	trimmed := strings.TrimSpace(source)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http:") || strings.HasPrefix(lower, "https:") {
		return trimmed
	}
	return ResolveSource("", trimmed)
}

func formatForQuality(quality string) string {
	height := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(quality)), "p")
	switch height {
	case "", "auto":
		return "bestvideo+bestaudio/best"
	case "4k":
		height = "2160"
	case "2k":
		height = "1440"
	}
	if _, err := strconv.Atoi(height); err != nil {
		return "bestvideo+bestaudio/best"
	}
	return fmt.Sprintf("bestvideo[height<=%s]+bestaudio/best[height<=%s]", height, height)
}

func osdColor(color string) string {
	return "#" + strings.TrimPrefix(strings.TrimSpace(color), "#")
}

func geometryValue(width string, height string) string {
	width = strings.TrimSuffix(strings.TrimSpace(width), "px")
	height = strings.TrimSuffix(strings.TrimSpace(height), "px")
	switch {
	case width != "" && height != "":
		return width + "x" + height
	case width != "":
		return width
	case height != "":
		return "x" + height
	default:
		return ""
	}
}

func loopValue(enabled bool) string {
	if enabled {
		return "inf"
	}
	return "no"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func asBool(value any) (bool, bool) {
	switch cast := value.(type) {
	case bool:
		return cast, true
	case int:
		return cast != 0, true
	case int64:
		return cast != 0, true
	case string:
		return cast == "yes", true
	default:
		return false, false
	}
}

func asFloat64(value any) (float64, bool) {
	switch cast := value.(type) {
	case float64:
		return cast, true
	case float32:
		return float64(cast), true
	case int:
		return float64(cast), true
	case int64:
		return float64(cast), true
	default:
		return 0, false
	}
}

func setOptionString(client *mpv.Mpv, name string, value string) {
	_ = client.SetOptionString(name, value)
}
