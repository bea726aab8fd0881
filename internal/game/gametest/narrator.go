package gametest

import (
	"sync"

	"wordrush/internal/game"
)

// FakeNarrator records narrations. With Instant set it completes them inside Narrate.
type FakeNarrator struct {
	Instant bool

	mu         sync.Mutex
	narrations []*FakeNarration
}

// FakeNarration is completed by the test.
type FakeNarration struct {
	Text string

	mu        sync.Mutex
	done      func()
	cancelled bool
	completed bool
}

func (n *FakeNarrator) Narrate(text string, done func()) game.Narration {
	nar := &FakeNarration{Text: text, done: done}
	n.mu.Lock()
	n.narrations = append(n.narrations, nar)
	n.mu.Unlock()
	if n.Instant {
		nar.Complete()
	}
	return nar
}

// Last returns the most recent narration, or nil.
func (n *FakeNarrator) Last() *FakeNarration {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.narrations) == 0 {
		return nil
	}
	return n.narrations[len(n.narrations)-1]
}

// All returns every narration in start order.
func (n *FakeNarrator) All() []*FakeNarration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*FakeNarration(nil), n.narrations...)
}

// Active counts narrations neither completed nor cancelled.
func (n *FakeNarrator) Active() int {
	count := 0
	for _, nar := range n.All() {
		if nar.Pending() {
			count++
		}
	}
	return count
}

// Complete calls the done callback unless the narration was cancelled or already completed.
func (n *FakeNarration) Complete() bool {
	n.mu.Lock()
	if n.cancelled || n.completed {
		n.mu.Unlock()
		return false
	}
	n.completed = true
	n.mu.Unlock()
	n.done()
	return true
}

// Fire calls done regardless of cancellation, simulating a late platform callback.
func (n *FakeNarration) Fire() {
	n.done()
}

func (n *FakeNarration) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = true
}

func (n *FakeNarration) Cancelled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cancelled
}

func (n *FakeNarration) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.cancelled && !n.completed
}
