package vimeo

import "reel/internal/player"

var eventCallbacks = map[player.EventName]func(Callbacks) func(player.Event){
	player.EventPlay:               func(cb Callbacks) func(player.Event) { return cb.OnPlay },
	player.EventPlaying:            func(cb Callbacks) func(player.Event) { return cb.OnPlaying },
	player.EventPause:              func(cb Callbacks) func(player.Event) { return cb.OnPause },
	player.EventEnded:              func(cb Callbacks) func(player.Event) { return cb.OnEnd },
	player.EventTimeUpdate:         func(cb Callbacks) func(player.Event) { return cb.OnTimeUpdate },
	player.EventProgress:           func(cb Callbacks) func(player.Event) { return cb.OnProgress },
	player.EventSeeked:             func(cb Callbacks) func(player.Event) { return cb.OnSeeked },
	player.EventTextTrackChange:    func(cb Callbacks) func(player.Event) { return cb.OnTextTrackChange },
	player.EventCueChange:          func(cb Callbacks) func(player.Event) { return cb.OnCueChange },
	player.EventCuePoint:           func(cb Callbacks) func(player.Event) { return cb.OnCuePoint },
	player.EventVolumeChange:       func(cb Callbacks) func(player.Event) { return cb.OnVolumeChange },
	player.EventPlaybackRateChange: func(cb Callbacks) func(player.Event) { return cb.OnPlaybackRateChange },
	player.EventLoaded:             func(cb Callbacks) func(player.Event) { return cb.OnLoaded },
	player.EventError: func(cb Callbacks) func(player.Event) {
		if cb.OnError == nil {
			return nil
		}
		return func(event player.Event) {
			cb.OnError(&player.ErrorEvent{Event: event})
		}
	},
}

// bridge subscribes once to every player event. Each delivery looks the
// callback up on the props current at that moment.
func (c *Component) bridge(handle player.Handle) {
	for _, name := range player.Events {
		lookup, ok := eventCallbacks[name]
		if !ok {
			continue
		}
		handle.On(name, func(event player.Event) {
			if callback := lookup(c.current().Callbacks); callback != nil {
				callback(event)
			}
		})
	}
}
