package game

import (
	"math"
	"unicode/utf8"
)

// Score is the award for completing target with timeLeft seconds remaining.
// Never less than 1.
func Score(target string, timeLeft int, multiplier float64) int {
	if timeLeft < 0 {
		timeLeft = 0
	}
	n := utf8.RuneCountInString(target)
	s := int(math.Round(float64(n+timeLeft) * multiplier))
	if s < 1 {
		return 1
	}
	return s
}

// Accuracy is the percentage of target positions matched by input, 0-100.
// Characters past the end of target are not credited; an empty target gives 0.
func Accuracy(target, input string) int {
	t := []rune(target)
	if len(t) == 0 {
		return 0
	}
	in := []rune(input)
	matches := 0
	for i, r := range t {
		if i < len(in) && in[i] == r {
			matches++
		}
	}
	return int(math.Round(100 * float64(matches) / float64(len(t))))
}

// Mask renders target as hidden slots: '_' per character, '·' for spaces,
// and the first character in clear when showHint is set.
func Mask(target string, showHint bool) string {
	out := make([]rune, 0, len(target))
	for i, r := range []rune(target) {
		switch {
		case showHint && i == 0:
			out = append(out, r)
		case r == ' ':
			out = append(out, '·')
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
