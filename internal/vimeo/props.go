package vimeo

import "reel/internal/player"

// Props is the declarative property set of an embedded player. A new value is
// supplied on every render; the component never mutates one it was given.
type Props struct {
	// Video is a video identifier or a URL.
	Video string `json:"video,omitempty"`

	ID    string            `json:"id,omitempty"`
	Class string            `json:"className,omitempty"`
	Style map[string]string `json:"style,omitempty"`

	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`

	Paused *bool    `json:"paused,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
	// Start is the time in seconds playback begins at. Zero is a valid start.
	Start *float64 `json:"start,omitempty"`

	Autopause      *bool    `json:"autopause,omitempty"`
	Autoplay       *bool    `json:"autoplay,omitempty"`
	ShowByline     *bool    `json:"showByline,omitempty"`
	Color          string   `json:"color,omitempty"`
	DNT            *bool    `json:"dnt,omitempty"`
	Controls       *bool    `json:"controls,omitempty"`
	Loop           *bool    `json:"loop,omitempty"`
	ShowPortrait   *bool    `json:"showPortrait,omitempty"`
	ShowTitle      *bool    `json:"showTitle,omitempty"`
	Muted          *bool    `json:"muted,omitempty"`
	Background     *bool    `json:"background,omitempty"`
	Responsive     *bool    `json:"responsive,omitempty"`
	PlaybackRate   *float64 `json:"playbackRate,omitempty"`
	Speed          *bool    `json:"speed,omitempty"`
	Keyboard       *bool    `json:"keyboard,omitempty"`
	PIP            *bool    `json:"pip,omitempty"`
	PlaysInline    *bool    `json:"playsInline,omitempty"`
	Quality        string   `json:"quality,omitempty"`
	TextTrack      string   `json:"textTrack,omitempty"`
	Transparent    *bool    `json:"transparent,omitempty"`
	EndTime        *float64 `json:"endTime,omitempty"`
	VimeoLogo      *bool    `json:"vimeoLogo,omitempty"`
	WatchFullVideo *bool    `json:"watchFullVideo,omitempty"`

	Callbacks `json:"-"`
}

// Callbacks receive player events. They are looked up on the current props
// each time an event fires, so they may be swapped between renders.
type Callbacks struct {
	OnReady              func(handle player.Handle)
	OnError              func(err error)
	OnPlay               func(event player.Event)
	OnPlaying            func(event player.Event)
	OnPause              func(event player.Event)
	OnEnd                func(event player.Event)
	OnTimeUpdate         func(event player.Event)
	OnProgress           func(event player.Event)
	OnSeeked             func(event player.Event)
	OnTextTrackChange    func(event player.Event)
	OnCueChange          func(event player.Event)
	OnCuePoint           func(event player.Event)
	OnVolumeChange       func(event player.Event)
	OnPlaybackRateChange func(event player.Event)
	OnLoaded             func(event player.Event)
}

// Defaults returns the values applied to every unset property.
func Defaults() Props {
	return Props{
		Autopause:    Bool(true),
		Autoplay:     Bool(false),
		ShowByline:   Bool(true),
		Controls:     Bool(true),
		Loop:         Bool(false),
		ShowPortrait: Bool(true),
		ShowTitle:    Bool(true),
		Muted:        Bool(false),
		Background:   Bool(false),
		Responsive:   Bool(false),
		DNT:          Bool(false),
		Speed:        Bool(false),
		Keyboard:     Bool(true),
		PIP:          Bool(false),
		PlaysInline:  Bool(true),
		Transparent:  Bool(true),
	}
}

// WithFallback returns a copy of p where every unset data property takes its
// value from fallback. Callbacks are not merged.
func (p Props) WithFallback(fallback Props) Props {
	merged := p

	merged.Video = stringOr(p.Video, fallback.Video)
	merged.ID = stringOr(p.ID, fallback.ID)
	merged.Class = stringOr(p.Class, fallback.Class)
	if merged.Style == nil {
		merged.Style = fallback.Style
	}
	merged.Width = stringOr(p.Width, fallback.Width)
	merged.Height = stringOr(p.Height, fallback.Height)
	merged.Paused = pointerOr(p.Paused, fallback.Paused)
	merged.Volume = pointerOr(p.Volume, fallback.Volume)
	merged.Start = pointerOr(p.Start, fallback.Start)
	merged.Autopause = pointerOr(p.Autopause, fallback.Autopause)
	merged.Autoplay = pointerOr(p.Autoplay, fallback.Autoplay)
	merged.ShowByline = pointerOr(p.ShowByline, fallback.ShowByline)
	merged.Color = stringOr(p.Color, fallback.Color)
	merged.DNT = pointerOr(p.DNT, fallback.DNT)
	merged.Controls = pointerOr(p.Controls, fallback.Controls)
	merged.Loop = pointerOr(p.Loop, fallback.Loop)
	merged.ShowPortrait = pointerOr(p.ShowPortrait, fallback.ShowPortrait)
	merged.ShowTitle = pointerOr(p.ShowTitle, fallback.ShowTitle)
	merged.Muted = pointerOr(p.Muted, fallback.Muted)
	merged.Background = pointerOr(p.Background, fallback.Background)
	merged.Responsive = pointerOr(p.Responsive, fallback.Responsive)
	merged.PlaybackRate = pointerOr(p.PlaybackRate, fallback.PlaybackRate)
	merged.Speed = pointerOr(p.Speed, fallback.Speed)
	merged.Keyboard = pointerOr(p.Keyboard, fallback.Keyboard)
	merged.PIP = pointerOr(p.PIP, fallback.PIP)
	merged.PlaysInline = pointerOr(p.PlaysInline, fallback.PlaysInline)
	merged.Quality = stringOr(p.Quality, fallback.Quality)
	merged.TextTrack = stringOr(p.TextTrack, fallback.TextTrack)
	merged.Transparent = pointerOr(p.Transparent, fallback.Transparent)
	merged.EndTime = pointerOr(p.EndTime, fallback.EndTime)
	merged.VimeoLogo = pointerOr(p.VimeoLogo, fallback.VimeoLogo)
	merged.WatchFullVideo = pointerOr(p.WatchFullVideo, fallback.WatchFullVideo)

	return merged
}

// Container is the element the player renders into.
func (p Props) Container() player.Container {
	container := player.Container{ID: p.ID, Class: p.Class}
	if len(p.Style) > 0 {
		container.Style = make(map[string]string, len(p.Style))
		for key, value := range p.Style {
			container.Style[key] = value
		}
	}
	return container
}

func Bool(value bool) *bool {
	return &value
}

func Float(value float64) *float64 {
	return &value
}

func stringOr(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func pointerOr[T any](value *T, fallback *T) *T {
	if value == nil {
		return fallback
	}
	return value
}

func equalPointer[T comparable](a *T, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
