package services

import (
	"context"
	"time"

	"github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
)

// SavedPhraseService handles user-saved phrase business logic
type SavedPhraseService interface {
	Save(ctx context.Context, userID string, req models.SavePhraseRequest) (*models.SavedPhrase, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.SavedPhrase, int, error)
	Delete(ctx context.Context, userID string, id int64) error
	Convert(ctx context.Context, userID string, id int64) (*models.ReviewItem, error)
}

type savedPhraseService struct {
	phrases repository.SavedPhraseRepository
	now     func() time.Time
}

// NewSavedPhraseService creates a new SavedPhraseService
func NewSavedPhraseService(phrases repository.SavedPhraseRepository) SavedPhraseService {
	return &savedPhraseService{phrases: phrases, now: time.Now}
}

func (s *savedPhraseService) Save(ctx context.Context, userID string, req models.SavePhraseRequest) (*models.SavedPhrase, error) {
	log := logger.FromContext(ctx)
	log.Debug("saving phrase: user_id=%s", userID)

	if req.Phrase == "" {
		return nil, errors.NewValidationError("phrase", "must not be empty")
	}
	if req.Explanation == "" {
		return nil, errors.NewValidationError("explanation", "must not be empty")
	}
	if (req.SessionID == nil) != (req.RoundIndex == nil) {
		return nil, errors.NewValidationError("session_id", "session_id and round_index must be given together")
	}

	// One saved phrase per round.
	if req.SessionID != nil {
		existing, err := s.phrases.FindByRound(ctx, userID, *req.SessionID, *req.RoundIndex)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	phrase := models.SavedPhrase{
		UserID:        userID,
		Phrase:        req.Phrase,
		Explanation:   req.Explanation,
		OriginalInput: req.OriginalInput,
		SessionID:     req.SessionID,
		RoundIndex:    req.RoundIndex,
		CreatedAt:     s.now(),
	}
	id, err := s.phrases.Insert(ctx, phrase)
	if err != nil {
		log.Error("failed to save phrase: %v", err)
		return nil, errors.NewInternalError(err)
	}
	phrase.ID = id

	log.Info("phrase saved: id=%d, user_id=%s", id, userID)
	return &phrase, nil
}

func (s *savedPhraseService) List(ctx context.Context, userID string, limit, offset int) ([]models.SavedPhrase, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	phrases, total, err := s.phrases.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternalError(err)
	}
	return phrases, total, nil
}

func (s *savedPhraseService) Delete(ctx context.Context, userID string, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting saved phrase: id=%d, user_id=%s", id, userID)

	phrase, err := s.phrases.Get(ctx, id, userID)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if phrase == nil {
		return errors.NewNotFoundError("saved phrase", id)
	}

	if err := s.phrases.Delete(ctx, id, userID); err != nil {
		log.Error("failed to delete saved phrase: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// Convert promotes a saved phrase into a review item due one day out. A
// phrase converts at most once.
func (s *savedPhraseService) Convert(ctx context.Context, userID string, id int64) (*models.ReviewItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("converting saved phrase: id=%d, user_id=%s", id, userID)

	phrase, err := s.phrases.Get(ctx, id, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if phrase == nil {
		return nil, errors.NewNotFoundError("saved phrase", id)
	}
	if phrase.ConvertedToReviewID != nil {
		return nil, errors.NewValidationError("phrase", "already converted to a review item")
	}

	item := models.ReviewItem{
		UserID:          userID,
		Phrase:          phrase.Phrase,
		Explanation:     phrase.Explanation,
		DueAt:           s.now().Add(models.ReviewRescheduleInterval),
		SourceSessionID: phrase.SessionID,
		SourceRoundIdx:  phrase.RoundIndex,
		SelectionReason: "saved_phrase",
	}
	created, err := s.phrases.Convert(ctx, id, item)
	if err != nil {
		log.Error("failed to convert saved phrase: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("phrase converted to review item: phrase_id=%d, item_id=%d", id, created.ID)
	return created, nil
}
