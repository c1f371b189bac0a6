package player

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

const (
	vimeoBaseURL = "https://vimeo.com/"
	embedBaseURL = "https://player.vimeo.com/video/"
)

// Options configures a handle at construction. Field names follow the embed
// parameters of the hosted player; nil means "use the player default".
type Options struct {
	ID             string   `json:"id,omitempty"`
	URL            string   `json:"url,omitempty"`
	Width          string   `json:"width,omitempty"`
	Height         string   `json:"height,omitempty"`
	Autopause      *bool    `json:"autopause,omitempty"`
	Autoplay       *bool    `json:"autoplay,omitempty"`
	Byline         *bool    `json:"byline,omitempty"`
	Color          string   `json:"color,omitempty"`
	Controls       *bool    `json:"controls,omitempty"`
	Loop           *bool    `json:"loop,omitempty"`
	Portrait       *bool    `json:"portrait,omitempty"`
	Title          *bool    `json:"title,omitempty"`
	Muted          *bool    `json:"muted,omitempty"`
	Background     *bool    `json:"background,omitempty"`
	Responsive     *bool    `json:"responsive,omitempty"`
	DNT            *bool    `json:"dnt,omitempty"`
	Speed          *bool    `json:"speed,omitempty"`
	Keyboard       *bool    `json:"keyboard,omitempty"`
	PIP            *bool    `json:"pip,omitempty"`
	PlaysInline    *bool    `json:"playsinline,omitempty"`
	Quality        string   `json:"quality,omitempty"`
	TextTrack      string   `json:"texttrack,omitempty"`
	Transparent    *bool    `json:"transparent,omitempty"`
	EndTime        *float64 `json:"end_time,omitempty"`
	VimeoLogo      *bool    `json:"vimeo_logo,omitempty"`
	WatchFullVideo *bool    `json:"watch_full_video,omitempty"`
}

// Source returns the playable location for the configured video: the URL
// when one was given, otherwise the canonical page for the identifier.
func (o Options) Source() string {
	return ResolveSource(o.URL, o.ID)
}

// ResolveSource picks rawURL when present and otherwise builds the canonical
// page for id. It returns "" when both are empty.
func ResolveSource(rawURL string, id string) string {
	if trimmed := strings.TrimSpace(rawURL); trimmed != "" {
		return trimmed
	}

	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return ""
	}

	segments := strings.Split(strings.Trim(trimmedID, "/"), "/")
	for index, segment := range segments {
		segments[index] = url.PathEscape(segment)
	}
	return vimeoBaseURL + strings.Join(segments, "/")
}

// EmbedURL returns the hosted player address for the configured video with
// the options as query parameters. It returns "" when the video has no
// numeric identifier.
func (o Options) EmbedURL() string {
	id := embedID(o.URL, o.ID)
	if id == "" {
		return ""
	}

	query := o.Query().Encode()
	if query == "" {
		return embedBaseURL + id
	}
	return embedBaseURL + id + "?" + query
}

func embedID(rawURL string, id string) string {
	candidate := strings.TrimSpace(id)
	if trimmed := strings.TrimSpace(rawURL); trimmed != "" {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return ""
		}
		candidate = path.Base(strings.TrimSuffix(parsed.Path, "/"))
	}

	if _, err := strconv.ParseUint(candidate, 10, 64); err != nil {
		return ""
	}
	return candidate
}

// Query renders the options as embed query parameters. The video identity
// (ID/URL) is not included.
func (o Options) Query() url.Values {
	values := url.Values{}

	setString := func(key string, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	setBool := func(key string, value *bool) {
		if value == nil {
			return
		}
		if *value {
			values.Set(key, "1")
			return
		}
		values.Set(key, "0")
	}

	setString("width", o.Width)
	setString("height", o.Height)
	setBool("autopause", o.Autopause)
	setBool("autoplay", o.Autoplay)
	setBool("byline", o.Byline)
	setString("color", strings.TrimPrefix(o.Color, "#"))
	setBool("controls", o.Controls)
	setBool("loop", o.Loop)
	setBool("portrait", o.Portrait)
	setBool("title", o.Title)
	setBool("muted", o.Muted)
	setBool("background", o.Background)
	setBool("responsive", o.Responsive)
	setBool("dnt", o.DNT)
	setBool("speed", o.Speed)
	setBool("keyboard", o.Keyboard)
	setBool("pip", o.PIP)
	setBool("playsinline", o.PlaysInline)
	setString("quality", o.Quality)
	setString("texttrack", o.TextTrack)
	setBool("transparent", o.Transparent)
	if o.EndTime != nil {
		values.Set("end_time", strconv.FormatFloat(*o.EndTime, 'f', -1, 64))
	}
	setBool("vimeo_logo", o.VimeoLogo)
	setBool("watch_full_video", o.WatchFullVideo)

	return values
}
