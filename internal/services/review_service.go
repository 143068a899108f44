package services

import (
	"context"
	"time"

	"github.com/yonaimineakio/speakcoach/internal/cache"
	"github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/match"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

// ReviewEvaluationResult is the outcome of evaluating one review answer.
type ReviewEvaluationResult struct {
	Item         models.ReviewItem `json:"item"`
	QuestionType string            `json:"question_type"`
	Score        int               `json:"score"`
	Correct      bool              `json:"correct"`
	WordMatches  []match.WordMatch `json:"word_matches,omitempty"`
	IsCompleted  bool              `json:"is_completed"`
	NextDueAt    *time.Time        `json:"next_due_at"`
}

// ReviewService owns the review item lifecycle
type ReviewService interface {
	GetDueItems(ctx context.Context, userID string, limit int) ([]models.ReviewItem, error)
	CountDue(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string, limit int) ([]models.ReviewItem, error)
	GenerateQuestion(ctx context.Context, userID string, itemID int64, questionType string) (*models.ReviewQuestion, error)
	EvaluateSpeaking(ctx context.Context, userID string, itemID int64, transcript string) (*ReviewEvaluationResult, error)
	EvaluateListening(ctx context.Context, userID string, itemID int64, submitted []string, pairedSpeakingScore *int) (*ReviewEvaluationResult, error)
	CompleteReviewItem(ctx context.Context, userID string, itemID int64, result string) (*models.ReviewItem, error)
}

type reviewService struct {
	reviews   repository.ReviewItemRepository
	questions QuestionGenerator
	cache     *cache.QuestionCache
	dueLimit  int
	now       func() time.Time
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviews repository.ReviewItemRepository, questions QuestionGenerator, questionCache *cache.QuestionCache, dueLimit int) ReviewService {
	return &reviewService{
		reviews:   reviews,
		questions: questions,
		cache:     questionCache,
		dueLimit:  dueLimit,
		now:       time.Now,
	}
}

func (s *reviewService) GetDueItems(ctx context.Context, userID string, limit int) ([]models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting due items: user_id=%s", userID)

	if limit <= 0 {
		limit = s.dueLimit
	}
	items, err := s.reviews.DueItems(ctx, userID, s.now(), limit)
	if err != nil {
		log.Error("failed to get due items: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return items, nil
}

func (s *reviewService) CountDue(ctx context.Context, userID string) (int, error) {
	count, err := s.reviews.CountDue(ctx, userID, s.now())
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	return count, nil
}

func (s *reviewService) History(ctx context.Context, userID string, limit int) ([]models.ReviewItem, error) {
	if limit <= 0 {
		limit = 20
	}
	items, err := s.reviews.History(ctx, userID, limit)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return items, nil
}

// GenerateQuestion returns the cached question for the pair when one exists,
// otherwise generates and caches it. The entry lives until both types have
// been evaluated, because listening evaluation must run against the same
// generated audio text regardless of what happened on the speaking side.
func (s *reviewService) GenerateQuestion(ctx context.Context, userID string, itemID int64, questionType string) (*models.ReviewQuestion, error) {
	log := logger.FromContext(ctx)
	log.Debug("generating question: item_id=%d, type=%s", itemID, questionType)

	if questionType != models.QuestionTypeSpeaking && questionType != models.QuestionTypeListening {
		return nil, errors.NewValidationError("question_type", "must be speaking or listening")
	}

	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	entry, ok := s.cache.Get(userID, itemID)
	if !ok {
		entry = &cache.QuestionEntry{}
	}

	if questionType == models.QuestionTypeSpeaking {
		if entry.Speaking == nil {
			q, err := s.questions.Speaking(ctx, item.Phrase, item.Explanation)
			if err != nil {
				return nil, err
			}
			entry.Speaking = q
		}
		s.cache.Put(userID, itemID, entry)
		return entry.Speaking, nil
	}

	if entry.Listening == nil {
		q, err := s.questions.Listening(ctx, item.Phrase, item.Explanation)
		if err != nil {
			return nil, err
		}
		entry.Listening = q
	}
	s.cache.Put(userID, itemID, entry)
	return entry.Listening, nil
}

// EvaluateSpeaking scores the transcript against the generated target
// sentence. Speaking evaluation is diagnostic only: it never touches
// is_completed or due_at, it just remembers the score for the listening
// evaluation that follows.
func (s *reviewService) EvaluateSpeaking(ctx context.Context, userID string, itemID int64, transcript string) (*ReviewEvaluationResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("evaluating speaking: item_id=%d", itemID)

	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	entry, ok := s.cache.Get(userID, itemID)
	if !ok || entry.Speaking == nil {
		return nil, errors.NewBadRequestError("no generated speaking question for this item; generate one first")
	}

	result := match.EvaluateSpeaking(entry.Speaking.TargetSentence, transcript)
	entry.LastSpeakingScore = &result.Score
	s.cache.Put(userID, itemID, entry)

	log.Info("speaking evaluated: item_id=%d, score=%d", itemID, result.Score)
	return &ReviewEvaluationResult{
		Item:         *item,
		QuestionType: models.QuestionTypeSpeaking,
		Score:        result.Score,
		Correct:      result.Score == 100,
		WordMatches:  result.WordMatches,
		IsCompleted:  item.IsCompleted,
		NextDueAt:    &item.DueAt,
	}, nil
}

// EvaluateListening scores the assembled words against the generated audio
// text and applies the completion rule: the item completes only when both the
// speaking and listening scores are exactly 100. Anything less reschedules it
// one day out. An absent speaking score counts as not mastered.
func (s *reviewService) EvaluateListening(ctx context.Context, userID string, itemID int64, submitted []string, pairedSpeakingScore *int) (*ReviewEvaluationResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("evaluating listening: item_id=%d", itemID)

	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	entry, ok := s.cache.Get(userID, itemID)
	if !ok || entry.Listening == nil {
		return nil, errors.NewBadRequestError("no generated listening question for this item; generate one first")
	}

	correctWords := entry.Listening.PuzzleWords
	result := match.EvaluateListening(correctWords, submitted)

	speakingScore := pairedSpeakingScore
	if speakingScore == nil {
		speakingScore = entry.LastSpeakingScore
	}

	now := s.now()
	var nextDue *time.Time
	if speakingScore != nil && *speakingScore == 100 && result.Score == 100 {
		item.IsCompleted = true
		item.CompletedAt = &now
	} else {
		due := now.Add(models.ReviewRescheduleInterval)
		item.IsCompleted = false
		item.DueAt = due
		item.CompletedAt = nil
		nextDue = &due
	}

	if err := s.reviews.Update(ctx, *item); err != nil {
		log.Error("failed to update review item: %v", err)
		return nil, errors.NewInternalError(err)
	}

	s.cache.Invalidate(userID, itemID)

	log.Info("listening evaluated: item_id=%d, score=%d, completed=%v", itemID, result.Score, item.IsCompleted)
	return &ReviewEvaluationResult{
		Item:         *item,
		QuestionType: models.QuestionTypeListening,
		Score:        result.Score,
		Correct:      result.Correct,
		IsCompleted:  item.IsCompleted,
		NextDueAt:    nextDue,
	}, nil
}

// CompleteReviewItem is the single-shot variant: correct completes the item
// immediately, incorrect pushes it out one day.
func (s *reviewService) CompleteReviewItem(ctx context.Context, userID string, itemID int64, result string) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("completing review item: item_id=%d, result=%s", itemID, result)

	if result != models.ReviewResultCorrect && result != models.ReviewResultIncorrect {
		return nil, errors.NewValidationError("result", "must be correct or incorrect")
	}

	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if result == models.ReviewResultCorrect {
		item.IsCompleted = true
		item.CompletedAt = &now
	} else {
		item.IsCompleted = false
		item.DueAt = now.Add(models.ReviewRescheduleInterval)
		item.CompletedAt = nil
	}

	if err := s.reviews.Update(ctx, *item); err != nil {
		log.Error("failed to update review item: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("review item %s: item_id=%d", result, itemID)
	return item, nil
}

func (s *reviewService) ownedItem(ctx context.Context, itemID int64, userID string) (*models.ReviewItem, error) {
	item, err := s.reviews.Get(ctx, itemID, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("review item", itemID)
	}
	return item, nil
}
