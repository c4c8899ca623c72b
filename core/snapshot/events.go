package snapshot

import "time"

// QueueUpdated is published on the event bus after a queue status refresh.
type QueueUpdated struct {
	Source string // "rest" or "mqtt"
	At     time.Time
}

// ParametersUpdated is published after a system parameters refresh.
type ParametersUpdated struct {
	Source string
	At     time.Time
}
