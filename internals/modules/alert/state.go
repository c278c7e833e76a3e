package alert

import (
	"time"
	"upwatch/internals/notify"
)

// ChannelState tracks one channel's throttle clock for one item.
type ChannelState struct {
	LastSentAt time.Time
}

// State is the per-item alerting memory. It lives exactly as long as the
// owning worker and is only ever touched from that worker's loop, so it
// needs no locking.
type State struct {
	ConsecutiveErrors int

	// LastAlertSentAt is the clock for the extended throttle: the last
	// time any channel actually delivered.
	LastAlertSentAt time.Time

	channels map[notify.Channel]*ChannelState
}

func NewState() *State {
	return &State{
		channels: make(map[notify.Channel]*ChannelState),
	}
}

func (s *State) channel(ch notify.Channel) *ChannelState {
	cs, ok := s.channels[ch]
	if !ok {
		cs = &ChannelState{}
		s.channels[ch] = cs
	}
	return cs
}
