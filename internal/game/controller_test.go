package game_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wordrush/internal/game"
	"wordrush/internal/game/gametest"
	"wordrush/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type harness struct {
	c        *game.Controller
	clock    *gametest.FakeClock
	narrator *gametest.FakeNarrator
	store    *gametest.MemoryScoreStore
}

func newHarness(t *testing.T, supply game.WordSupply, bests game.BestStore, store *gametest.MemoryScoreStore) *harness {
	t.Helper()
	if store == nil {
		store = gametest.NewMemoryScoreStore()
	}
	h := &harness{
		clock:    gametest.NewFakeClock(),
		narrator: &gametest.FakeNarrator{},
		store:    store,
	}
	c, err := game.NewController(game.Deps{
		Supply:   supply,
		Bests:    bests,
		Store:    store,
		Narrator: h.narrator,
		Clock:    h.clock,
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	h.c = c
	t.Cleanup(c.Close)
	return h
}

func easySupply(words ...string) game.WordSupply {
	return gametest.StaticSupply(map[models.Level][]string{models.LevelEasy: words})
}

// startTyping starts a session and completes the first narration.
func (h *harness) startTyping(t *testing.T) {
	t.Helper()
	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(game.CountdownTicks * time.Second)
	require.Equal(t, game.PhaseNarrating, h.c.Snapshot().Phase)
	require.True(t, h.narrator.Last().Complete())
	require.Equal(t, game.PhaseTyping, h.c.Snapshot().Phase)
}

func TestController_EasyAppleWithTenSecondsLeft(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	h.startTyping(t)

	h.clock.Advance(5 * time.Second)
	require.Equal(t, 10, h.c.Snapshot().TimeLeft)

	h.c.Type("apple")
	snap := h.c.Snapshot()
	assert.Equal(t, 15, snap.Score)
	assert.Equal(t, 1, snap.Streak)
	assert.Equal(t, game.PhaseNarrating, snap.Phase)
	assert.Equal(t, "", snap.Input)
	assert.Equal(t, 15, snap.TimeLeft, "timer resets for the next phrase")
}

func TestController_TimeoutRecordsAccuracy(t *testing.T) {
	h := newHarness(t, easySupply("orange"), nil, nil)
	h.startTyping(t)

	h.c.Type("oran")
	assert.Equal(t, 67, h.c.Snapshot().Accuracy)

	h.clock.Advance(15 * time.Second)
	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseEnded, snap.Phase)
	assert.Equal(t, 67, snap.Accuracy)
	assert.Equal(t, 0, snap.TimeLeft)
	assert.Equal(t, "orange", snap.Revealed)
	assert.Equal(t, 0, snap.Score)
	assert.Zero(t, h.clock.Pending())
}

func TestController_LowerSessionKeepsBest(t *testing.T) {
	store := gametest.NewMemoryScoreStore()
	require.NoError(t, store.SaveRecord(models.LevelEasy, game.Record{Best: 50}))
	bests := gametest.NewMemoryBestStore()
	bests.Set(models.LevelEasy, 50)

	h := newHarness(t, easySupply("apple"), bests, store)
	h.startTyping(t)

	h.c.Type("apple") // (5+15)*1
	require.True(t, h.narrator.Last().Complete())
	h.c.Type("apple")
	require.Equal(t, 40, h.c.Snapshot().Score)

	h.c.GiveUp()
	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseEnded, snap.Phase)
	assert.Equal(t, 40, snap.Score)
	assert.Equal(t, 50, snap.Best)

	h.c.Close()
	rec, _ := store.LoadRecord(models.LevelEasy)
	assert.Equal(t, 50, rec.Best)
	assert.Equal(t, 40, rec.Score)
	assert.Empty(t, bests.Submits())
}

func TestController_BestIsMonotonicAndSubmitted(t *testing.T) {
	bests := gametest.NewMemoryBestStore()
	h := newHarness(t, easySupply("apple"), bests, nil)

	h.startTyping(t)
	h.c.Type("apple")
	h.c.GiveUp()
	assert.Equal(t, 20, h.c.Snapshot().Best)

	require.Eventually(t, func() bool {
		best, _ := bests.Best(context.Background(), models.LevelEasy)
		return best == 20
	}, time.Second, 5*time.Millisecond)

	// a worse session never lowers the best
	h.startTyping(t)
	h.c.GiveUp()
	snap := h.c.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 20, snap.Best)
	assert.Contains(t, bests.Submits(), 20)
	assert.NotContains(t, bests.Submits(), 0)
}

type scriptedBests struct {
	bestErr error
	submit  int
}

func (s *scriptedBests) Best(context.Context, models.Level) (int, error) {
	return 0, s.bestErr
}

func (s *scriptedBests) SubmitBest(context.Context, models.Level, int) (int, error) {
	return s.submit, nil
}

func TestController_AdoptsLargerServerBest(t *testing.T) {
	bests := &scriptedBests{bestErr: errors.New("offline"), submit: 500}
	h := newHarness(t, easySupply("apple"), bests, nil)

	h.startTyping(t)
	h.c.Type("apple")
	h.c.GiveUp()

	require.Eventually(t, func() bool { return h.c.Snapshot().Best == 500 }, time.Second, 5*time.Millisecond)
	h.c.Close()
	rec, _ := h.store.LoadRecord(models.LevelEasy)
	assert.Equal(t, 500, rec.Best)
}

func TestController_SyncOnStartupAdoptsRemoteBest(t *testing.T) {
	bests := gametest.NewMemoryBestStore()
	bests.Set(models.LevelEasy, 100)
	h := newHarness(t, easySupply("apple"), bests, nil)

	require.Eventually(t, func() bool { return h.c.Snapshot().Best == 100 }, time.Second, 5*time.Millisecond)
}

func TestController_SyncOnStartupPushesLocalBest(t *testing.T) {
	store := gametest.NewMemoryScoreStore()
	require.NoError(t, store.SaveRecord(models.LevelEasy, game.Record{Best: 70}))
	bests := gametest.NewMemoryBestStore()
	bests.Set(models.LevelEasy, 30)

	newHarness(t, easySupply("apple"), bests, store)
	require.Eventually(t, func() bool {
		best, _ := bests.Best(context.Background(), models.LevelEasy)
		return best == 70
	}, time.Second, 5*time.Millisecond)
}

func TestController_SubmitFailureIsTolerated(t *testing.T) {
	bests := gametest.NewMemoryBestStore()
	bests.Err = errors.New("service unavailable")
	h := newHarness(t, easySupply("apple"), bests, nil)

	h.startTyping(t)
	h.c.Type("apple")
	h.c.GiveUp()
	assert.Equal(t, 20, h.c.Snapshot().Best)

	h.c.Close()
	rec, _ := h.store.LoadRecord(models.LevelEasy)
	assert.Equal(t, 20, rec.Best)
}

func TestController_ExclusiveTimer(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)

	// restart during countdown must not leave the old ticker running
	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(time.Second)
	require.Equal(t, 2, h.c.Snapshot().Countdown)
	h.c.GiveUp()
	require.NoError(t, h.c.Start(context.Background()))
	assert.Equal(t, 1, h.clock.Pending())
	h.clock.Advance(time.Second)
	assert.Equal(t, 2, h.c.Snapshot().Countdown)

	h.clock.Advance(2 * time.Second)
	require.True(t, h.narrator.Last().Complete())
	assert.Equal(t, 1, h.clock.Pending())

	// success then a fast narration: exactly one ticker, one decrement per second
	h.c.Type("apple")
	assert.Zero(t, h.clock.Pending())
	require.True(t, h.narrator.Last().Complete())
	assert.Equal(t, 1, h.clock.Pending())
	h.clock.Advance(time.Second)
	assert.Equal(t, 14, h.c.Snapshot().TimeLeft)
}

func TestController_NarrationCancelledOnForfeit(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(3 * time.Second)

	nar := h.narrator.Last()
	require.NotNil(t, nar)
	h.c.GiveUp()
	assert.True(t, nar.Cancelled())
	assert.Equal(t, game.PhaseEnded, h.c.Snapshot().Phase)

	// a late completion from the platform is ignored
	nar.Fire()
	assert.Equal(t, game.PhaseEnded, h.c.Snapshot().Phase)
	assert.Zero(t, h.narrator.Active())
}

func TestController_NarrationCancelledOnRestartIsStale(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	h.startTyping(t)
	h.c.Type("apple")
	first := h.narrator.Last()

	h.c.GiveUp()
	require.NoError(t, h.c.Start(context.Background()))
	first.Fire()
	assert.Equal(t, game.PhaseCountdown, h.c.Snapshot().Phase)
}

func TestController_CloseCancelsEverything(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(3 * time.Second)
	nar := h.narrator.Last()

	h.c.Close()
	assert.True(t, nar.Cancelled())
	assert.Zero(t, h.clock.Pending())

	before := h.c.Snapshot()
	nar.Fire()
	h.clock.Advance(30 * time.Second)
	h.c.Type("apple")
	assert.Equal(t, before, h.c.Snapshot())
	assert.ErrorIs(t, h.c.Start(context.Background()), game.ErrClosed)
	assert.ErrorIs(t, h.c.SetLevel(models.LevelHard), game.ErrClosed)
}

func TestController_HardFallbackOnEmptySupply(t *testing.T) {
	supply := game.WordSupplyFunc(func(context.Context, models.Level) ([]game.Phrase, error) {
		return []game.Phrase{{Text: "  "}}, nil
	})
	h := newHarness(t, supply, nil, nil)
	require.NoError(t, h.c.SetLevel(models.LevelHard))
	require.NoError(t, h.c.Start(context.Background()))
	assert.Equal(t, game.NoticeFallback, h.c.Snapshot().Notice)

	h.clock.Advance(3 * time.Second)
	target := h.c.Snapshot().Target
	assert.Contains(t, game.FallbackPhrases(models.LevelHard), target)

	h.c.DismissNotice()
	assert.Empty(t, h.c.Snapshot().Notice)
}

func TestController_FallbackOnSupplyError(t *testing.T) {
	calls := 0
	supply := game.WordSupplyFunc(func(context.Context, models.Level) ([]game.Phrase, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection refused")
		}
		return []game.Phrase{{Text: "apple"}}, nil
	})
	h := newHarness(t, supply, nil, nil)

	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(3 * time.Second)
	assert.Contains(t, game.FallbackPhrases(models.LevelEasy), h.c.Snapshot().Target)
	assert.Equal(t, game.NoticeFallback, h.c.Snapshot().Notice)

	// the supply is retried on the next session once it recovers
	h.c.GiveUp()
	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, "apple", h.c.Snapshot().Target.Text)
	assert.Empty(t, h.c.Snapshot().Notice)
}

func TestFallbackPhrases_Easy(t *testing.T) {
	var texts []string
	for _, p := range game.FallbackPhrases(models.LevelEasy) {
		texts = append(texts, p.Text)
	}
	assert.Equal(t, []string{
		"apple", "orange", "banana", "teacher", "student",
		"happy", "music", "family", "window", "keyboard",
	}, texts)
}

func TestController_InputDuringNarrationScoresOnCompletion(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	require.NoError(t, h.c.Start(context.Background()))

	h.c.Type("apple") // ignored during countdown
	assert.Empty(t, h.c.Snapshot().Input)

	h.clock.Advance(3 * time.Second)
	h.c.Type("apple")
	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseNarrating, snap.Phase)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 100, snap.Accuracy)

	require.True(t, h.narrator.Last().Complete())
	snap = h.c.Snapshot()
	assert.Equal(t, 20, snap.Score)
	assert.Equal(t, 1, snap.Streak)
	assert.Equal(t, game.PhaseNarrating, snap.Phase)
}

func TestController_SynchronousNarrator(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	h.narrator.Instant = true

	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, game.PhaseTyping, h.c.Snapshot().Phase)
	assert.Zero(t, h.narrator.Active())
}

func TestController_GiveUpDuringCountdown(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	require.NoError(t, h.c.Start(context.Background()))
	h.c.GiveUp()

	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseEnded, snap.Phase)
	assert.Equal(t, 0, snap.Accuracy)
	assert.Zero(t, h.clock.Pending())
}

func TestController_StartWhileActive(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	require.NoError(t, h.c.Start(context.Background()))
	assert.ErrorIs(t, h.c.Start(context.Background()), game.ErrRoundActive)
}

func TestController_LevelSwitchForfeits(t *testing.T) {
	supply := gametest.StaticSupply(map[models.Level][]string{
		models.LevelEasy:   {"apple"},
		models.LevelNormal: {"beautiful day"},
	})
	h := newHarness(t, supply, nil, nil)
	h.startTyping(t)
	h.c.Type("apple")
	require.True(t, h.narrator.Last().Complete())

	require.NoError(t, h.c.SetLevel(models.LevelNormal))
	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseEnded, snap.Phase)
	assert.Equal(t, models.LevelNormal, snap.Level)
	assert.Equal(t, "apple", snap.Revealed)
	assert.Equal(t, 0, snap.Accuracy)
	assert.Equal(t, 15, snap.TimeLeft)
	assert.Zero(t, h.clock.Pending())
	assert.Zero(t, h.narrator.Active())

	assert.ErrorIs(t, h.c.SetLevel("expert"), models.ErrInvalidLevel)

	h.c.Close()
	last, _ := h.store.LastLevel()
	assert.Equal(t, models.LevelNormal, last)
	easy, _ := h.store.LoadRecord(models.LevelEasy)
	assert.Equal(t, 20, easy.Best, "the forfeited session still reconciles its best")
}

func TestController_LevelSwitchKeepsForfeitOutcome(t *testing.T) {
	var (
		mu    sync.Mutex
		snaps []game.Snapshot
	)
	clock := gametest.NewFakeClock()
	narrator := &gametest.FakeNarrator{}
	c, err := game.NewController(game.Deps{
		Supply: gametest.StaticSupply(map[models.Level][]string{
			models.LevelEasy:   {"orange"},
			models.LevelNormal: {"beautiful day"},
		}),
		Narrator: narrator,
		Clock:    clock,
		Logger:   zaptest.NewLogger(t),
		OnChange: func(s game.Snapshot) {
			mu.Lock()
			snaps = append(snaps, s)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	clock.Advance(game.CountdownTicks * time.Second)
	require.True(t, narrator.Last().Complete())
	c.Type("oran")

	require.NoError(t, c.SetLevel(models.LevelNormal))
	snap := c.Snapshot()
	assert.Equal(t, game.PhaseEnded, snap.Phase)
	assert.Equal(t, models.LevelNormal, snap.Level)
	assert.Equal(t, "orange", snap.Revealed)
	assert.Equal(t, 67, snap.Accuracy)
	assert.Empty(t, snap.Input)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(snaps), 2)
	outcome, switched := snaps[len(snaps)-2], snaps[len(snaps)-1]
	assert.Equal(t, game.PhaseEnded, outcome.Phase)
	assert.Equal(t, models.LevelEasy, outcome.Level, "the outcome is published on the level it was played on")
	assert.Equal(t, 67, outcome.Accuracy)
	assert.Equal(t, "orange", outcome.Revealed)
	assert.Equal(t, models.LevelNormal, switched.Level)
	assert.Less(t, outcome.Version, switched.Version)
}

func TestController_LevelSwitchWhileEndedResets(t *testing.T) {
	h := newHarness(t, easySupply("orange"), nil, nil)
	h.startTyping(t)
	h.c.Type("oran")
	h.c.GiveUp()
	require.Equal(t, "orange", h.c.Snapshot().Revealed)

	require.NoError(t, h.c.SetLevel(models.LevelHard))
	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseIdle, snap.Phase)
	assert.Equal(t, models.LevelHard, snap.Level)
	assert.Empty(t, snap.Revealed)
	assert.Zero(t, snap.Accuracy)
}

func TestController_ReplayWhileTyping(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	h.startTyping(t)
	h.clock.Advance(5 * time.Second)
	require.Equal(t, 10, h.c.Snapshot().TimeLeft)

	h.c.Replay()
	replay := h.narrator.Last()
	require.Len(t, h.narrator.All(), 2)
	assert.Equal(t, "apple", replay.Text)
	require.True(t, replay.Complete())

	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseTyping, snap.Phase)
	assert.Equal(t, 10, snap.TimeLeft, "a replay does not restart the timer")
	assert.Equal(t, 1, h.clock.Pending())

	h.clock.Advance(time.Second)
	assert.Equal(t, 9, h.c.Snapshot().TimeLeft)
}

func TestController_ReplayWhileNarrating(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(game.CountdownTicks * time.Second)
	first := h.narrator.Last()
	require.Equal(t, game.PhaseNarrating, h.c.Snapshot().Phase)

	h.c.Replay()
	replay := h.narrator.Last()
	require.NotSame(t, first, replay)
	assert.True(t, first.Cancelled())
	assert.Equal(t, 1, h.narrator.Active())

	first.Fire()
	assert.Equal(t, game.PhaseNarrating, h.c.Snapshot().Phase, "the replaced narration is stale")
	assert.Zero(t, h.clock.Pending())

	require.True(t, replay.Complete())
	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseTyping, snap.Phase)
	assert.Equal(t, 15, snap.TimeLeft)
	assert.Equal(t, 1, h.clock.Pending())
}

func TestController_ReplayOutsideRoundIsIgnored(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	h.c.Replay()
	require.NoError(t, h.c.Start(context.Background()))
	h.c.Replay()
	assert.Empty(t, h.narrator.All())
	assert.Equal(t, game.PhaseCountdown, h.c.Snapshot().Phase)
}

func TestController_EmptyTargetEndsSession(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	game.SetPhrases(h.c, models.LevelEasy)

	require.NoError(t, h.c.Start(context.Background()))
	h.clock.Advance(game.CountdownTicks * time.Second)

	snap := h.c.Snapshot()
	assert.Equal(t, game.PhaseEnded, snap.Phase)
	assert.Zero(t, snap.Accuracy)
	assert.Zero(t, snap.Score)
	assert.Empty(t, snap.Revealed)
	assert.Empty(t, h.narrator.All())
	assert.Zero(t, h.clock.Pending())
}

func TestController_RemembersLastLevel(t *testing.T) {
	store := gametest.NewMemoryScoreStore()
	require.NoError(t, store.SaveLastLevel(models.LevelHard))
	h := newHarness(t, easySupply("apple"), nil, store)
	assert.Equal(t, models.LevelHard, h.c.Snapshot().Level)
}

func TestController_StartResetsScoreAndStreak(t *testing.T) {
	h := newHarness(t, easySupply("apple"), nil, nil)
	h.startTyping(t)
	h.c.Type("apple")
	h.c.GiveUp()
	require.Equal(t, 1, h.c.Snapshot().Streak)

	require.NoError(t, h.c.Restart(context.Background()))
	snap := h.c.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.Streak)
	assert.Equal(t, 20, snap.Best)
	assert.Empty(t, snap.Revealed)
}

func TestController_OnChangeVersions(t *testing.T) {
	var (
		mu       sync.Mutex
		versions []uint64
	)
	clock := gametest.NewFakeClock()
	c, err := game.NewController(game.Deps{
		Supply:   easySupply("apple"),
		Narrator: game.InstantNarrator(),
		Clock:    clock,
		OnChange: func(s game.Snapshot) {
			mu.Lock()
			versions = append(versions, s.Version)
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Start(context.Background()))
	clock.Advance(3 * time.Second)
	c.Type("app")

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, versions)
	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1])
	}
	assert.Equal(t, c.Snapshot().Version, versions[len(versions)-1])
}

func TestNewController_RequiresSupply(t *testing.T) {
	_, err := game.NewController(game.Deps{})
	assert.Error(t, err)
}
