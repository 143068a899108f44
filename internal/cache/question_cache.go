// Package cache holds generated review questions between the generate and
// evaluate calls of a review exercise.
package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

// QuestionEntry is the cached state for one (user, item) pair. Listening
// evaluation needs the generated audio text independently of the speaking
// question, and the last speaking score bridges a listening-only evaluation.
type QuestionEntry struct {
	Speaking          *models.ReviewQuestion
	Listening         *models.ReviewQuestion
	LastSpeakingScore *int
}

// QuestionCache is a TTL-bounded LRU keyed by (user, item). Entries are
// dropped once both question types have been evaluated, or when they expire.
type QuestionCache struct {
	lru *expirable.LRU[string, *QuestionEntry]
}

func NewQuestionCache(size int, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		lru: expirable.NewLRU[string, *QuestionEntry](size, nil, ttl),
	}
}

func key(userID string, itemID int64) string {
	return fmt.Sprintf("%s:%d", userID, itemID)
}

func (c *QuestionCache) Get(userID string, itemID int64) (*QuestionEntry, bool) {
	return c.lru.Get(key(userID, itemID))
}

// Put stores the entry, replacing any previous one for the pair.
func (c *QuestionCache) Put(userID string, itemID int64, entry *QuestionEntry) {
	c.lru.Add(key(userID, itemID), entry)
}

// Invalidate removes the pair's entry, typically after both types have been
// evaluated.
func (c *QuestionCache) Invalidate(userID string, itemID int64) {
	c.lru.Remove(key(userID, itemID))
}
