package game

import "wordrush/shared/models"

// SetPhrases installs a fixed pool for level, bypassing cleanup and the supply.
func SetPhrases(c *Controller, level models.Level, phrases ...string) {
	pool := &phrasePool{}
	for _, p := range phrases {
		pool.phrases = append(pool.phrases, Phrase{Text: p})
	}
	c.mu.Lock()
	c.pools[level] = pool
	c.mu.Unlock()
}
