package practice

import (
	"fmt"

	"wordrush/internal/game"
)

// Render returns the lines describing the change from prev to cur.
// Unchanged ticks produce no output except the last seconds of a round.
func Render(prev, cur game.Snapshot, showHint bool) []string {
	var lines []string

	if cur.Notice != "" && cur.Notice != prev.Notice {
		lines = append(lines, "! "+cur.Notice)
	}
	if cur.Score > prev.Score && cur.Phase != game.PhaseCountdown {
		lines = append(lines, fmt.Sprintf("✔ +%d  score %d  streak %d", cur.Score-prev.Score, cur.Score, cur.Streak))
	}
	if cur.Best > prev.Best && cur.Phase == prev.Phase {
		lines = append(lines, fmt.Sprintf("★ best %d", cur.Best))
	}

	switch cur.Phase {
	case game.PhaseIdle:
		if cur.Level != prev.Level || prev.Phase != game.PhaseIdle {
			lines = append(lines, levelBanner(cur))
		}
	case game.PhaseCountdown:
		if cur.Countdown != prev.Countdown || prev.Phase != game.PhaseCountdown {
			lines = append(lines, fmt.Sprintf("Starting in %d...", cur.Countdown))
		}
	case game.PhaseNarrating:
		if cur.Target != prev.Target || prev.Phase != game.PhaseNarrating {
			lines = append(lines, "Listen... "+game.Mask(cur.Target.Text, showHint))
		}
	case game.PhaseTyping:
		if prev.Phase != game.PhaseTyping {
			line := fmt.Sprintf("Type it! %s  (%ds)", game.Mask(cur.Target.Text, showHint), cur.TimeLeft)
			if showHint && cur.Target.Hint != "" {
				line += "  hint: " + cur.Target.Hint
			}
			lines = append(lines, line)
		} else if cur.TimeLeft != prev.TimeLeft && (cur.TimeLeft <= 3 || cur.TimeLeft%5 == 0) {
			lines = append(lines, fmt.Sprintf("⏱ %ds  accuracy %d%%", cur.TimeLeft, cur.Accuracy))
		}
	case game.PhaseEnded:
		if prev.Phase != game.PhaseEnded {
			lines = append(lines, fmt.Sprintf("Session over. Score %d, streak %d, best %d, accuracy %d%%.",
				cur.Score, cur.Streak, cur.Best, cur.Accuracy))
			if cur.Revealed != "" {
				lines = append(lines, "The phrase was: "+cur.Revealed)
			}
			lines = append(lines, "Type :start to play again.")
		} else if cur.Level != prev.Level {
			lines = append(lines, levelBanner(cur))
		}
	}
	return lines
}

func levelBanner(s game.Snapshot) string {
	meta := s.Level.Meta()
	return fmt.Sprintf("Level %s (x%g, %ds per phrase). Best %d. Type :start to play.",
		meta.Label, meta.Multiplier, meta.Duration, s.Best)
}
