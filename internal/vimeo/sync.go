package vimeo

import "reel/internal/player"

// Key names a property that maps to an imperative handle operation.
type Key int

const (
	KeyAutopause Key = iota
	KeyColor
	KeyLoop
	KeyVolume
	KeyPlaybackRate
	KeyQuality
	KeyWidth
	KeyHeight
	KeyPaused
	KeyVideo
	keyCount
)

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "unknown"
	}
	return keyNames[k]
}

var keyNames = [keyCount]string{
	KeyAutopause:    "autopause",
	KeyColor:        "color",
	KeyLoop:         "loop",
	KeyVolume:       "volume",
	KeyPlaybackRate: "playbackRate",
	KeyQuality:      "quality",
	KeyWidth:        "width",
	KeyHeight:       "height",
	KeyPaused:       "paused",
	KeyVideo:        "video",
}

type operation struct {
	changed func(prev *Props, next *Props) bool
	apply   func(c *Component, handle player.Handle, next *Props)
}

var operations = [keyCount]operation{
	KeyAutopause: {
		changed: func(prev, next *Props) bool { return !equalPointer(prev.Autopause, next.Autopause) },
		apply: func(c *Component, handle player.Handle, next *Props) {
			c.warnOnError(KeyAutopause, handle.SetAutopause(flag(next.Autopause)))
		},
	},
	KeyColor: {
		changed: func(prev, next *Props) bool { return prev.Color != next.Color },
		apply: func(c *Component, handle player.Handle, next *Props) {
			c.warnOnError(KeyColor, handle.SetColor(next.Color))
		},
	},
	KeyLoop: {
		changed: func(prev, next *Props) bool { return !equalPointer(prev.Loop, next.Loop) },
		apply: func(c *Component, handle player.Handle, next *Props) {
			c.warnOnError(KeyLoop, handle.SetLoop(flag(next.Loop)))
		},
	},
	KeyVolume: {
		changed: func(prev, next *Props) bool { return !equalPointer(prev.Volume, next.Volume) },
		apply: func(c *Component, handle player.Handle, next *Props) {
			if next.Volume == nil {
				return
			}
			c.warnOnError(KeyVolume, handle.SetVolume(*next.Volume))
		},
	},
	KeyPlaybackRate: {
		changed: func(prev, next *Props) bool { return !equalPointer(prev.PlaybackRate, next.PlaybackRate) },
		apply: func(c *Component, handle player.Handle, next *Props) {
			if next.PlaybackRate == nil {
				return
			}
			c.warnOnError(KeyPlaybackRate, handle.SetPlaybackRate(*next.PlaybackRate))
		},
	},
	KeyQuality: {
		changed: func(prev, next *Props) bool { return prev.Quality != next.Quality },
		apply: func(c *Component, handle player.Handle, next *Props) {
			c.warnOnError(KeyQuality, handle.SetQuality(next.Quality))
		},
	},
	KeyWidth: {
		changed: func(prev, next *Props) bool { return prev.Width != next.Width },
		apply: func(_ *Component, handle player.Handle, next *Props) {
			handle.Element().SetWidth(next.Width)
		},
	},
	KeyHeight: {
		changed: func(prev, next *Props) bool { return prev.Height != next.Height },
		apply: func(_ *Component, handle player.Handle, next *Props) {
			handle.Element().SetHeight(next.Height)
		},
	},
	KeyPaused: {
		changed: func(prev, next *Props) bool { return !equalPointer(prev.Paused, next.Paused) },
		apply: func(c *Component, handle player.Handle, next *Props) {
			requested := flag(next.Paused)
			// The query and the toggle are not atomic; a toggle dispatched
			// while an earlier query is outstanding may be contradicted by it.
			c.goPending(func() {
				current, err := handle.Paused(c.ctx)
				if err != nil {
					c.warnOnError(KeyPaused, err)
					return
				}
				switch {
				case requested && !current:
					c.warnOnError(KeyPaused, handle.Pause(c.ctx))
				case !requested && current:
					c.warnOnError(KeyPaused, handle.Play(c.ctx))
				}
			})
		},
	},
	KeyVideo: {
		changed: func(prev, next *Props) bool { return prev.Video != next.Video },
		apply: func(c *Component, handle player.Handle, next *Props) {
			if next.Video == "" {
				c.warnOnError(KeyVideo, handle.Unload())
				return
			}

			video := next.Video
			start := next.Start
			c.goPending(func() {
				if err := handle.LoadVideo(c.ctx, video); err != nil {
					c.warnOnError(KeyVideo, err)
					return
				}
				if start != nil {
					c.warnOnError(KeyVideo, handle.SetCurrentTime(*start))
				}
			})
		},
	},
}

// Diff returns the keys whose values differ between prev and next, in table
// order.
func Diff(prev Props, next Props) []Key {
	var changed []Key
	for key := Key(0); key < keyCount; key++ {
		if operations[key].changed(&prev, &next) {
			changed = append(changed, key)
		}
	}
	return changed
}

// Update runs one sync pass: it dispatches an operation for every changed
// key and then replaces the snapshot with next. The snapshot is replaced
// without waiting for asynchronous operations to finish.
func (c *Component) Update(next Props) {
	next = next.WithFallback(Defaults())
	c.props.Store(&next)

	prev := c.Snapshot()
	if handle := c.Handle(); handle != nil {
		c.dispatch(handle, Diff(prev, next), &next)
	}

	c.snapshot.Store(&next)
}

func (c *Component) dispatch(handle player.Handle, keys []Key, next *Props) {
	for _, key := range keys {
		c.logger.Debug("dispatch property", "key", key.String())
		operations[key].apply(c, handle, next)
	}
}

func (c *Component) warnOnError(key Key, err error) {
	if err == nil {
		return
	}
	c.logger.Warn("player operation failed", "key", key.String(), "error", err)
}

func flag(value *bool) bool {
	return value != nil && *value
}
