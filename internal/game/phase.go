package game

import "errors"

// Phase is a state of the round state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseCountdown Phase = "countdown"
	PhaseNarrating Phase = "narrating"
	PhaseTyping    Phase = "typing"
	PhaseEnded     Phase = "ended"
)

// Active reports whether a session is in progress.
func (p Phase) Active() bool {
	return p == PhaseCountdown || p == PhaseNarrating || p == PhaseTyping
}

var (
	ErrClosed      = errors.New("controller is closed")
	ErrRoundActive = errors.New("a session is already running")
)
