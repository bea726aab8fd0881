package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wordrush/shared/models"

	"go.uber.org/zap"
)

const (
	// CountdownTicks is the number of one-second ticks before the first narration.
	CountdownTicks = 3

	tickInterval  = time.Second
	remoteTimeout = 10 * time.Second

	// NoticeFallback is raised when the word supply could not serve the level.
	NoticeFallback = "Could not load words for this level, using built-in phrases"
)

// Snapshot is a read-only view of the controller state.
type Snapshot struct {
	// Version increases with every published change.
	Version   uint64
	Phase     Phase
	Level     models.Level
	Countdown int
	Target    Phrase
	Input     string
	TimeLeft  int
	Accuracy  int
	Score     int
	Streak    int
	Best      int
	// Revealed is the target of the last round once the session ended.
	Revealed string
	Notice   string
}

// Deps are the collaborators of a Controller. Only Supply is required.
type Deps struct {
	Supply   WordSupply
	Bests    BestStore
	Store    ScoreStore
	Narrator Narrator
	Clock    Clock
	Logger   *zap.Logger
	// OnChange receives a snapshot after every state change, outside the controller lock.
	OnChange func(Snapshot)
}

// Controller runs the typing round lifecycle of one practice session.
// All methods are safe for concurrent use.
type Controller struct {
	supply   WordSupply
	bests    BestStore
	store    ScoreStore
	narrator Narrator
	clock    Clock
	logger   *zap.Logger
	onChange func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	gen       uint64
	version   uint64
	level     models.Level
	phase     Phase
	countdown int
	target    Phrase
	input     string
	timeLeft  int
	accuracy  int
	revealed  string
	notice    string
	records   map[models.Level]Record
	pools     map[models.Level]*phrasePool
	timer     Timer
	narration Narration
	// narrationID identifies the narration whose completion is still awaited.
	narrationID uint64
	pending     []func()
	// queued snapshots are published before the current one on unlock.
	queued []Snapshot

	dirtyRecords   map[models.Level]Record
	dirtyLastLevel models.Level
	persistSignal  chan struct{}
}

// NewController loads the local records and starts the background persistence loop.
func NewController(d Deps) (*Controller, error) {
	if d.Supply == nil {
		return nil, errors.New("word supply is required")
	}
	if d.Clock == nil {
		d.Clock = RealClock()
	}
	if d.Narrator == nil {
		d.Narrator = InstantNarrator()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		supply:        d.Supply,
		bests:         d.Bests,
		store:         d.Store,
		narrator:      d.Narrator,
		clock:         d.Clock,
		logger:        d.Logger.Named("RoundController"),
		onChange:      d.OnChange,
		ctx:           ctx,
		cancel:        cancel,
		level:         models.LevelEasy,
		phase:         PhaseIdle,
		records:       make(map[models.Level]Record, 3),
		pools:         make(map[models.Level]*phrasePool, 3),
		dirtyRecords:  make(map[models.Level]Record),
		persistSignal: make(chan struct{}, 1),
	}
	c.loadLocal()
	c.timeLeft = c.level.Meta().Duration

	c.wg.Add(1)
	go c.persistLoop()
	c.syncBest(c.level)
	return c, nil
}

func (c *Controller) loadLocal() {
	if c.store == nil {
		return
	}
	for _, level := range models.AllLevels() {
		rec, err := c.store.LoadRecord(level)
		if err != nil {
			c.logger.Warn("Failed to load local record", zap.String("level", level.String()), zap.Error(err))
			continue
		}
		c.records[level] = rec
	}
	last, err := c.store.LastLevel()
	if err != nil {
		c.logger.Warn("Failed to load last level", zap.Error(err))
		return
	}
	if last.Valid() {
		c.level = last
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Start begins a new session on the current level. It is also the restart from ended.
// Phrases are fetched from the word supply, falling back to the built-in list.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.phase.Active() {
		c.mu.Unlock()
		return ErrRoundActive
	}
	level := c.level
	pool := c.pools[level]
	c.mu.Unlock()

	notice := ""
	if pool == nil || pool.fallback {
		pool, notice = c.loadPool(ctx, level)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.phase.Active() {
		c.mu.Unlock()
		return ErrRoundActive
	}
	if c.level != level {
		return c.unlockAndPublish(fmt.Errorf("level changed to %s while starting", c.level))
	}
	c.pools[level] = pool
	c.notice = notice

	rec := c.records[level]
	rec.Score, rec.Streak = 0, 0
	c.setRecordLocked(rec)

	c.input, c.accuracy, c.revealed = "", 0, ""
	c.target = Phrase{}
	c.timeLeft = level.Meta().Duration
	g := c.transitionLocked(PhaseCountdown)
	c.countdown = CountdownTicks
	c.scheduleLocked(g)
	c.logger.Debug("Session started", zap.String("level", level.String()))
	return c.unlockAndPublish(nil)
}

// Restart is Start.
func (c *Controller) Restart(ctx context.Context) error {
	return c.Start(ctx)
}

// Type replaces the input buffer. Input is only accepted while narrating or typing.
func (c *Controller) Type(input string) {
	c.mu.Lock()
	if c.closed || (c.phase != PhaseNarrating && c.phase != PhaseTyping) {
		c.mu.Unlock()
		return
	}
	c.input = input
	c.accuracy = Accuracy(c.target.Text, input)
	if c.phase == PhaseTyping && input == c.target.Text {
		c.succeedLocked()
	}
	_ = c.unlockAndPublish(nil)
}

// GiveUp forfeits the running session. Outside a session it does nothing.
func (c *Controller) GiveUp() {
	c.mu.Lock()
	if c.closed || !c.phase.Active() {
		c.mu.Unlock()
		return
	}
	c.forfeitLocked()
	_ = c.unlockAndPublish(nil)
}

// SetLevel switches the level, forfeiting a running session first.
func (c *Controller) SetLevel(level models.Level) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidLevel, level)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if level == c.level {
		c.mu.Unlock()
		return nil
	}
	if c.phase.Active() {
		// The forfeit outcome is published on the old level, then the session
		// stays ended on the new one with the reveal and accuracy kept.
		c.forfeitLocked()
		c.version++
		c.queued = append(c.queued, c.snapshotLocked())
	} else {
		c.transitionLocked(PhaseIdle)
		c.accuracy, c.revealed = 0, ""
	}
	c.level = level
	c.target = Phrase{}
	c.input, c.notice = "", ""
	c.timeLeft = level.Meta().Duration
	c.dirtyLastLevel = level
	c.signalPersistLocked()
	c.syncBest(level)
	c.logger.Debug("Level switched", zap.String("level", level.String()))
	return c.unlockAndPublish(nil)
}

// DismissNotice clears the transient notice.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	if c.notice == "" {
		c.mu.Unlock()
		return
	}
	c.notice = ""
	_ = c.unlockAndPublish(nil)
}

// Replay narrates the current target again while narrating or typing.
// A running narration is cancelled first. The phase and the timer are left alone:
// while narrating the replay's completion opens typing as the first one would have,
// while typing it is ignored.
func (c *Controller) Replay() {
	c.mu.Lock()
	if c.closed || (c.phase != PhaseNarrating && c.phase != PhaseTyping) || c.target.Text == "" {
		c.mu.Unlock()
		return
	}
	if c.narration != nil {
		c.narration.Cancel()
		c.narration = nil
	}
	c.narrationID++
	g, id, text := c.gen, c.narrationID, c.target.Text
	c.mu.Unlock()

	c.startNarration(g, id, text)
}

// Close cancels the timer, the narration and pending remote calls, then flushes local records.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelEffectsLocked()
	c.gen++
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// loadPool fetches the level phrases. Failures fall back to the built-in list and raise a notice.
func (c *Controller) loadPool(ctx context.Context, level models.Level) (*phrasePool, string) {
	phrases, err := c.supply.Phrases(ctx, level)
	if err == nil {
		phrases = CleanPhrases(phrases)
		if len(phrases) > 0 {
			return newPhrasePool(phrases, false), ""
		}
		err = models.ErrNoWordsForLevel
	}
	c.logger.Warn("Word supply unavailable, using fallback phrases", zap.String("level", level.String()), zap.Error(err))
	return newPhrasePool(FallbackPhrases(level), true), NoticeFallback
}

// transitionLocked cancels the timer and narration, moves to phase and returns the new generation.
func (c *Controller) transitionLocked(phase Phase) uint64 {
	c.cancelEffectsLocked()
	c.gen++
	c.phase = phase
	return c.gen
}

func (c *Controller) cancelEffectsLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.narration != nil {
		c.narration.Cancel()
		c.narration = nil
	}
}

func (c *Controller) scheduleLocked(g uint64) {
	c.timer = c.clock.AfterFunc(tickInterval, func() { c.tick(g) })
}

func (c *Controller) tick(g uint64) {
	c.mu.Lock()
	if c.closed || g != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	switch c.phase {
	case PhaseCountdown:
		c.countdown--
		if c.countdown <= 0 {
			c.countdown = 0
			c.beginNarratingLocked()
		} else {
			c.scheduleLocked(g)
		}
	case PhaseTyping:
		c.timeLeft--
		if c.timeLeft <= 0 {
			c.timeLeft = 0
			c.endLocked(Accuracy(c.target.Text, c.input))
		} else {
			c.scheduleLocked(g)
		}
	default:
		c.mu.Unlock()
		return
	}
	_ = c.unlockAndPublish(nil)
}

func (c *Controller) beginNarratingLocked() {
	phrase := c.pools[c.level].draw()
	if phrase.Text == "" {
		c.logger.Error("Drew an empty target, ending session", zap.String("level", c.level.String()))
		c.target = Phrase{}
		c.endLocked(0)
		return
	}

	g := c.transitionLocked(PhaseNarrating)
	c.target = phrase
	c.input, c.accuracy = "", 0
	c.timeLeft = c.level.Meta().Duration
	c.narrationID++
	id := c.narrationID
	c.pending = append(c.pending, func() { c.startNarration(g, id, phrase.Text) })
}

// startNarration runs outside the lock so a narrator may complete synchronously.
func (c *Controller) startNarration(g, id uint64, text string) {
	n := c.narrator.Narrate(text, func() { c.narrated(g, id) })

	c.mu.Lock()
	if !c.closed && c.gen == g && c.narrationID == id &&
		(c.phase == PhaseNarrating || c.phase == PhaseTyping) {
		c.narration = n
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	n.Cancel()
}

func (c *Controller) narrated(g, id uint64) {
	c.mu.Lock()
	if c.closed || g != c.gen || id != c.narrationID {
		c.mu.Unlock()
		return
	}
	c.narration = nil
	if c.phase != PhaseNarrating {
		// a replay finished while typing
		c.mu.Unlock()
		return
	}

	if c.input == c.target.Text {
		c.succeedLocked()
	} else {
		g = c.transitionLocked(PhaseTyping)
		c.timeLeft = c.level.Meta().Duration
		c.scheduleLocked(g)
	}
	_ = c.unlockAndPublish(nil)
}

func (c *Controller) succeedLocked() {
	gain := Score(c.target.Text, c.timeLeft, c.level.Meta().Multiplier)
	rec := c.records[c.level]
	rec.Score += gain
	rec.Streak++
	c.setRecordLocked(rec)
	c.logger.Debug("Phrase completed", zap.Int("gain", gain), zap.Int("score", rec.Score), zap.Int("streak", rec.Streak))
	c.beginNarratingLocked()
}

func (c *Controller) forfeitLocked() {
	acc := 0
	if c.phase != PhaseCountdown {
		acc = Accuracy(c.target.Text, c.input)
	}
	c.endLocked(acc)
}

func (c *Controller) endLocked(accuracy int) {
	c.transitionLocked(PhaseEnded)
	c.accuracy = accuracy
	c.revealed = c.target.Text
	c.countdown = 0

	rec := c.records[c.level]
	if rec.Score > rec.Best {
		rec.Best = rec.Score
		c.submitLocked(c.level, rec.Best)
	}
	c.setRecordLocked(rec)
	c.logger.Debug("Session ended",
		zap.String("level", c.level.String()),
		zap.Int("score", rec.Score),
		zap.Int("streak", rec.Streak),
		zap.Int("best", rec.Best),
		zap.Int("accuracy", accuracy),
	)
}

func (c *Controller) setRecordLocked(rec Record) {
	c.records[c.level] = rec
	c.dirtyRecords[c.level] = rec
	c.signalPersistLocked()
}

// submitLocked sends an improved best to the remote store without blocking the caller.
func (c *Controller) submitLocked(level models.Level, best int) {
	if c.bests == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.ctx, remoteTimeout)
		defer cancel()

		stored, err := c.bests.SubmitBest(ctx, level, best)
		if err != nil {
			c.logger.Warn("Failed to submit best score", zap.String("level", level.String()), zap.Int("best", best), zap.Error(err))
			return
		}
		c.adoptBest(level, stored)
	}()
}

// syncBest reconciles the local best of level with the remote store in the background.
// Called with the lock held or before the controller is shared.
func (c *Controller) syncBest(level models.Level) {
	if c.bests == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.ctx, remoteTimeout)
		defer cancel()

		remote, err := c.bests.Best(ctx, level)
		if err != nil {
			c.logger.Warn("Failed to fetch remote best", zap.String("level", level.String()), zap.Error(err))
			return
		}

		c.mu.Lock()
		local := c.records[level].Best
		c.mu.Unlock()

		if local > remote {
			if remote, err = c.bests.SubmitBest(ctx, level, local); err != nil {
				c.logger.Warn("Failed to push local best", zap.String("level", level.String()), zap.Int("best", local), zap.Error(err))
				return
			}
		}
		c.adoptBest(level, remote)
	}()
}

// adoptBest raises the best of level to remote. A lower value is ignored.
func (c *Controller) adoptBest(level models.Level, remote int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	rec := c.records[level]
	if remote <= rec.Best {
		c.mu.Unlock()
		return
	}
	rec.Best = remote
	c.records[level] = rec
	c.dirtyRecords[level] = rec
	c.signalPersistLocked()
	_ = c.unlockAndPublish(nil)
}

func (c *Controller) signalPersistLocked() {
	select {
	case c.persistSignal <- struct{}{}:
	default:
	}
}

func (c *Controller) persistLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.persistSignal:
			c.flush()
		case <-c.ctx.Done():
			c.flush()
			return
		}
	}
}

// flush writes the coalesced dirty records to the local store.
func (c *Controller) flush() {
	c.mu.Lock()
	records := c.dirtyRecords
	lastLevel := c.dirtyLastLevel
	c.dirtyRecords = make(map[models.Level]Record)
	c.dirtyLastLevel = ""
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	for level, rec := range records {
		if err := c.store.SaveRecord(level, rec); err != nil {
			c.logger.Warn("Failed to save local record", zap.String("level", level.String()), zap.Error(err))
		}
	}
	if lastLevel != "" {
		if err := c.store.SaveLastLevel(lastLevel); err != nil {
			c.logger.Warn("Failed to save last level", zap.Error(err))
		}
	}
}

// unlockAndPublish releases the lock, publishes a snapshot and then runs the queued effects,
// so that changes caused by an effect are published after the one that queued it.
func (c *Controller) unlockAndPublish(err error) error {
	effects, queued := c.pending, c.queued
	c.pending, c.queued = nil, nil
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		for _, q := range queued {
			c.onChange(q)
		}
		c.onChange(snap)
	}
	for _, f := range effects {
		f()
	}
	return err
}

func (c *Controller) snapshotLocked() Snapshot {
	rec := c.records[c.level]
	return Snapshot{
		Version:   c.version,
		Phase:     c.phase,
		Level:     c.level,
		Countdown: c.countdown,
		Target:    c.target,
		Input:     c.input,
		TimeLeft:  c.timeLeft,
		Accuracy:  c.accuracy,
		Score:     rec.Score,
		Streak:    rec.Streak,
		Best:      rec.Best,
		Revealed:  c.revealed,
		Notice:    c.notice,
	}
}
