package practice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"wordrush/internal/game"
	"wordrush/shared/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Session is the controller surface driven by the runner.
type Session interface {
	Start(ctx context.Context) error
	GiveUp()
	SetLevel(level models.Level) error
	Type(input string)
	Replay()
	DismissNotice()
	Snapshot() game.Snapshot
}

const helpText = "Commands: :start  :quit (give up)  :say (listen again)  :level easy|normal|hard  :hint  :exit. Anything else is typed input."

var errExit = errors.New("exit requested")

// Runner reads commands from in and renders controller snapshots to out.
type Runner struct {
	in     io.Reader
	out    io.Writer
	logger *zap.Logger

	snaps chan game.Snapshot
	done  chan struct{}
	once  sync.Once

	mu       sync.Mutex
	showHint bool
	last     game.Snapshot
}

func NewRunner(in io.Reader, out io.Writer, logger *zap.Logger) *Runner {
	return &Runner{
		in:       in,
		out:      out,
		logger:   logger.Named("PracticeRunner"),
		snaps:    make(chan game.Snapshot, 64),
		done:     make(chan struct{}),
		showHint: true,
	}
}

// Publish is the controller's OnChange callback.
func (r *Runner) Publish(s game.Snapshot) {
	select {
	case r.snaps <- s:
	case <-r.done:
	}
}

// Run processes input until :exit, end of input or ctx cancellation.
func (r *Runner) Run(ctx context.Context, session Session) error {
	defer r.once.Do(func() { close(r.done) })

	r.mu.Lock()
	r.last = session.Snapshot()
	r.mu.Unlock()
	r.println(helpText)
	r.printLines(Render(game.Snapshot{}, r.last, r.ShowHint()))

	// The stdin reader cannot be interrupted, so it stays outside the group.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-r.done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			r.logger.Warn("Input closed with error", zap.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return errExit
				}
				if r.Handle(gctx, session, line) {
					return errExit
				}
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case s := <-r.snaps:
				r.render(s)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errExit) {
		return err
	}
	return nil
}

// Handle applies one input line and reports whether the user asked to exit.
func (r *Runner) Handle(ctx context.Context, session Session, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		session.Type(line)
		return false
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case ":start":
		session.DismissNotice()
		if err := session.Start(ctx); err != nil {
			r.println("Cannot start: " + err.Error())
		}
	case ":quit":
		session.GiveUp()
	case ":say":
		session.Replay()
	case ":level":
		if len(fields) < 2 {
			r.println("Usage: :level easy|normal|hard")
			return false
		}
		level, err := models.ParseLevel(fields[1])
		if err != nil {
			r.println("Unknown level " + fields[1])
			return false
		}
		if err := session.SetLevel(level); err != nil {
			r.println("Cannot switch level: " + err.Error())
		}
	case ":hint":
		r.mu.Lock()
		r.showHint = !r.showHint
		show, snap := r.showHint, r.last
		r.mu.Unlock()
		if show {
			r.println("Hint on")
		} else {
			r.println("Hint off")
		}
		if snap.Phase == game.PhaseNarrating || snap.Phase == game.PhaseTyping {
			r.println(game.Mask(snap.Target.Text, show))
		}
	case ":exit":
		return true
	default:
		r.println(helpText)
	}
	return false
}

// ShowHint reports whether masked phrases reveal their first character.
func (r *Runner) ShowHint() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.showHint
}

func (r *Runner) render(s game.Snapshot) {
	r.mu.Lock()
	if s.Version <= r.last.Version {
		r.mu.Unlock()
		return
	}
	prev := r.last
	r.last = s
	showHint := r.showHint
	r.mu.Unlock()

	r.printLines(Render(prev, s, showHint))
}

func (r *Runner) printLines(lines []string) {
	for _, l := range lines {
		r.println(l)
	}
}

func (r *Runner) println(s string) {
	if _, err := fmt.Fprintln(r.out, s); err != nil {
		r.logger.Debug("Write failed", zap.Error(err))
	}
}
