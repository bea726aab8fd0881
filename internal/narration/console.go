// Package narration provides the terminal stand-in for speech output.
package narration

import (
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"wordrush/internal/game"
)

const (
	DefaultBaseDelay    = 600 * time.Millisecond
	DefaultPerRuneDelay = 70 * time.Millisecond
)

// Console prints the phrase and reports completion after a reading delay
// proportional to its length.
type Console struct {
	out          io.Writer
	clock        game.Clock
	baseDelay    time.Duration
	perRuneDelay time.Duration

	mu sync.Mutex // serialises writes to out
}

var _ game.Narrator = (*Console)(nil)

// NewConsole creates a Console. Zero delays take the defaults.
func NewConsole(out io.Writer, clock game.Clock, baseDelay, perRuneDelay time.Duration) *Console {
	if clock == nil {
		clock = game.RealClock()
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if perRuneDelay <= 0 {
		perRuneDelay = DefaultPerRuneDelay
	}
	return &Console{out: out, clock: clock, baseDelay: baseDelay, perRuneDelay: perRuneDelay}
}

// Delay is the reading time given to text.
func (c *Console) Delay(text string) time.Duration {
	return c.baseDelay + time.Duration(utf8.RuneCountInString(text))*c.perRuneDelay
}

func (c *Console) Narrate(text string, done func()) game.Narration {
	c.mu.Lock()
	fmt.Fprintf(c.out, "🔊 %s\n", text)
	c.mu.Unlock()

	n := &narration{done: done}
	n.mu.Lock()
	n.timer = c.clock.AfterFunc(c.Delay(text), n.fire)
	n.mu.Unlock()
	return n
}

type narration struct {
	mu       sync.Mutex
	timer    game.Timer
	done     func()
	finished bool
}

func (n *narration) fire() {
	n.mu.Lock()
	if n.finished {
		n.mu.Unlock()
		return
	}
	n.finished = true
	n.mu.Unlock()
	n.done()
}

func (n *narration) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.finished = true
	if n.timer != nil {
		n.timer.Stop()
	}
}
