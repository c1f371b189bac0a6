package vimeo

import (
	"regexp"

	"reel/internal/player"
)

var urlPattern = regexp.MustCompile(`(?i)^https?:`)

// BuildOptions maps props to the options a handle is constructed with.
func BuildOptions(p Props) player.Options {
	options := player.Options{
		Width:          p.Width,
		Height:         p.Height,
		Autopause:      p.Autopause,
		Autoplay:       p.Autoplay,
		Byline:         p.ShowByline,
		Color:          p.Color,
		Controls:       p.Controls,
		Loop:           p.Loop,
		Portrait:       p.ShowPortrait,
		Title:          p.ShowTitle,
		Muted:          p.Muted,
		Background:     p.Background,
		Responsive:     p.Responsive,
		DNT:            p.DNT,
		Speed:          p.Speed,
		Keyboard:       p.Keyboard,
		PIP:            p.PIP,
		PlaysInline:    p.PlaysInline,
		Quality:        p.Quality,
		TextTrack:      p.TextTrack,
		Transparent:    p.Transparent,
		EndTime:        p.EndTime,
		VimeoLogo:      p.VimeoLogo,
		WatchFullVideo: p.WatchFullVideo,
	}

	if IsURL(p.Video) {
		options.URL = p.Video
	} else {
		options.ID = p.Video
	}

	return options
}

// IsURL reports whether video names a URL rather than an identifier.
func IsURL(video string) bool {
	return urlPattern.MatchString(video)
}
