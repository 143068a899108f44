package services

import (
	"context"
	"sync"

	"github.com/yonaimineakio/speakcoach/internal/models"
)

// Narrow views of the ai package collaborators, declared here so services can
// be tested against mocks.

// GoalJudge classifies per-goal completion from the full round history.
type GoalJudge interface {
	Evaluate(ctx context.Context, goals []string, history []models.SessionRound) []int
}

// PhraseRanker selects review-worthy phrases from a finished session.
type PhraseRanker interface {
	Rank(ctx context.Context, rounds []models.SessionRound) ([]models.SelectedPhrase, error)
}

// QuestionGenerator builds review exercises for a phrase.
type QuestionGenerator interface {
	Speaking(ctx context.Context, phrase, explanation string) (*models.ReviewQuestion, error)
	Listening(ctx context.Context, phrase, explanation string) (*models.ReviewQuestion, error)
}

// keyedMutex serializes operations per session id. Two concurrent turns on
// the same session would otherwise both read completed_rounds before either
// writes.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*sync.Mutex)}
}

func (k *keyedMutex) lock(id int64) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
