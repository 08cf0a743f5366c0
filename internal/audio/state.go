package audio

import "errors"

// ErrClosed is returned by players after Close.
var ErrClosed = errors.New("player is closed")

// State represents the current state of a player.
type State int32

const (
	StateStopped State = iota
	StatePlaying
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
