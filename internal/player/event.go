package player

import "fmt"

type EventName string

const (
	EventPlay               EventName = "play"
	EventPlaying            EventName = "playing"
	EventPause              EventName = "pause"
	EventEnded              EventName = "ended"
	EventTimeUpdate         EventName = "timeupdate"
	EventProgress           EventName = "progress"
	EventSeeked             EventName = "seeked"
	EventTextTrackChange    EventName = "texttrackchange"
	EventCueChange          EventName = "cuechange"
	EventCuePoint           EventName = "cuepoint"
	EventVolumeChange       EventName = "volumechange"
	EventPlaybackRateChange EventName = "playbackratechange"
	EventLoaded             EventName = "loaded"
	EventError              EventName = "error"
)

// Events lists every event a handle emits, in subscription order.
var Events = []EventName{
	EventPlay,
	EventPlaying,
	EventPause,
	EventEnded,
	EventTimeUpdate,
	EventProgress,
	EventSeeked,
	EventTextTrackChange,
	EventCueChange,
	EventCuePoint,
	EventVolumeChange,
	EventPlaybackRateChange,
	EventLoaded,
	EventError,
}

// Event is the payload delivered with a handle event. Only the fields
// relevant to Name are populated.
type Event struct {
	Name         EventName      `json:"name"`
	Seconds      float64        `json:"seconds,omitempty"`
	Duration     float64        `json:"duration,omitempty"`
	Percent      float64        `json:"percent,omitempty"`
	Volume       float64        `json:"volume,omitempty"`
	PlaybackRate float64        `json:"playbackRate,omitempty"`
	VideoID      string         `json:"id,omitempty"`
	Kind         string         `json:"kind,omitempty"`
	Label        string         `json:"label,omitempty"`
	Language     string         `json:"language,omitempty"`
	Message      string         `json:"message,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

// ErrorEvent wraps an error event so it can be handled as an error.
type ErrorEvent struct {
	Event Event
}

func (e *ErrorEvent) Error() string {
	if e.Event.Message == "" {
		return "player error"
	}
	return fmt.Sprintf("player error: %s", e.Event.Message)
}
