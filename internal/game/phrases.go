package game

import (
	"strings"

	"wordrush/shared/models"

	"github.com/valyala/fastrand"
)

// Phrase is a target the player types.
type Phrase struct {
	Text string `json:"text"`
	Hint string `json:"hint,omitempty"`
}

var fallbackPhrases = map[models.Level][]string{
	models.LevelEasy: {
		"apple", "orange", "banana", "teacher", "student",
		"happy", "music", "family", "window", "keyboard",
	},
	models.LevelNormal: {
		"beautiful day", "finish your homework", "practice makes perfect",
		"remember to breathe", "welcome to the jungle", "strong determination",
	},
	models.LevelHard: {
		"Consistency beats intensity in the long run",
		"Simplicity is the ultimate sophistication",
		"Innovation distinguishes between a leader and a follower",
		"Opportunities don't happen you create them",
	},
}

// FallbackPhrases returns the built-in phrases of level. Unknown levels get the easy list.
func FallbackPhrases(level models.Level) []Phrase {
	list, ok := fallbackPhrases[level]
	if !ok {
		list = fallbackPhrases[models.LevelEasy]
	}
	out := make([]Phrase, len(list))
	for i, t := range list {
		out[i] = Phrase{Text: t}
	}
	return out
}

// CleanPhrases trims every phrase and drops the empty ones.
func CleanPhrases(in []Phrase) []Phrase {
	out := make([]Phrase, 0, len(in))
	for _, p := range in {
		p.Text = strings.TrimSpace(p.Text)
		p.Hint = strings.TrimSpace(p.Hint)
		if p.Text == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Shuffle permutes phrases in place.
func Shuffle(phrases []Phrase) {
	for i := len(phrases) - 1; i > 0; i-- {
		j := int(fastrand.Uint32n(uint32(i + 1)))
		phrases[i], phrases[j] = phrases[j], phrases[i]
	}
}

type phrasePool struct {
	phrases  []Phrase
	fallback bool
}

func newPhrasePool(phrases []Phrase, fallback bool) *phrasePool {
	p := &phrasePool{phrases: append([]Phrase(nil), phrases...), fallback: fallback}
	Shuffle(p.phrases)
	return p
}

// draw picks uniformly. An empty pool yields the zero Phrase.
func (p *phrasePool) draw() Phrase {
	if p == nil || len(p.phrases) == 0 {
		return Phrase{}
	}
	return p.phrases[fastrand.Uint32n(uint32(len(p.phrases)))]
}
