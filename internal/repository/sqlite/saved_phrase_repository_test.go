package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yonaimineakio/speakcoach/internal/db"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
	"github.com/yonaimineakio/speakcoach/internal/repository/sqlite"
	"github.com/yonaimineakio/speakcoach/internal/testutil"
)

type SavedPhraseRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.SavedPhraseRepository
}

func (s *SavedPhraseRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSavedPhraseRepository(s.db.DB)
}

func (s *SavedPhraseRepositorySuite) createUser(id string) {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO users (id, sub, name, email) VALUES (?, ?, ?, ?)
	`, id, "sub-"+id, "Test User", id+"@example.com")
	s.Require().NoError(err)
}

func (s *SavedPhraseRepositorySuite) createSession(userID string) int64 {
	res, err := s.db.ExecContext(context.Background(), `
		INSERT INTO sessions (user_id, round_target, difficulty, mode) VALUES (?, 6, 'intermediate', 'text')
	`, userID)
	s.Require().NoError(err)
	id, err := res.LastInsertId()
	s.Require().NoError(err)
	return id
}

func (s *SavedPhraseRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	s.createUser("u1")
	sessionID := s.createSession("u1")
	roundIdx := 2

	id, err := s.repo.Insert(ctx, models.SavedPhrase{
		UserID:        "u1",
		Phrase:        "Could you say that again?",
		Explanation:   "Asking for repetition politely",
		OriginalInput: "say again?",
		SessionID:     &sessionID,
		RoundIndex:    &roundIdx,
	})
	s.Require().NoError(err)

	phrase, err := s.repo.Get(ctx, id, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(phrase)
	s.Assert().Equal("Could you say that again?", phrase.Phrase)
	s.Assert().Equal("say again?", phrase.OriginalInput)
	s.Assert().Equal(sessionID, *phrase.SessionID)
	s.Assert().Equal(2, *phrase.RoundIndex)
	s.Assert().Nil(phrase.ConvertedToReviewID)

	missing, err := s.repo.Get(ctx, id, "other-user")
	s.Require().NoError(err)
	s.Assert().Nil(missing)
}

func (s *SavedPhraseRepositorySuite) TestListPaginates() {
	ctx := context.Background()
	s.createUser("u1")

	for i := 0; i < 5; i++ {
		_, err := s.repo.Insert(ctx, models.SavedPhrase{
			UserID: "u1", Phrase: "p", Explanation: "e",
		})
		s.Require().NoError(err)
	}

	phrases, total, err := s.repo.List(ctx, "u1", 2, 0)
	s.Require().NoError(err)
	s.Assert().Equal(5, total)
	s.Require().Len(phrases, 2)
	// Newest first.
	s.Assert().Greater(phrases[0].ID, phrases[1].ID)

	rest, total, err := s.repo.List(ctx, "u1", 10, 4)
	s.Require().NoError(err)
	s.Assert().Equal(5, total)
	s.Assert().Len(rest, 1)
}

func (s *SavedPhraseRepositorySuite) TestDelete() {
	ctx := context.Background()
	s.createUser("u1")

	id, err := s.repo.Insert(ctx, models.SavedPhrase{UserID: "u1", Phrase: "p", Explanation: "e"})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(ctx, id, "u1"))

	err = s.repo.Delete(ctx, id, "u1")
	s.Assert().ErrorIs(err, sql.ErrNoRows)
}

func (s *SavedPhraseRepositorySuite) TestFindByRound() {
	ctx := context.Background()
	s.createUser("u1")
	sessionID := s.createSession("u1")
	roundIdx := 3

	_, err := s.repo.Insert(ctx, models.SavedPhrase{
		UserID: "u1", Phrase: "p", Explanation: "e",
		SessionID: &sessionID, RoundIndex: &roundIdx,
	})
	s.Require().NoError(err)

	found, err := s.repo.FindByRound(ctx, "u1", sessionID, 3)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Assert().Equal("p", found.Phrase)

	none, err := s.repo.FindByRound(ctx, "u1", sessionID, 4)
	s.Require().NoError(err)
	s.Assert().Nil(none)
}

func (s *SavedPhraseRepositorySuite) TestConvertOnce() {
	ctx := context.Background()
	s.createUser("u1")

	id, err := s.repo.Insert(ctx, models.SavedPhrase{UserID: "u1", Phrase: "p", Explanation: "e"})
	s.Require().NoError(err)

	due := time.Now().Add(24 * time.Hour)
	item, err := s.repo.Convert(ctx, id, models.ReviewItem{
		UserID: "u1", Phrase: "p", Explanation: "e", DueAt: due, SelectionReason: "saved_phrase",
	})
	s.Require().NoError(err)
	s.Require().NotNil(item)
	s.Assert().Greater(item.ID, int64(0))

	phrase, err := s.repo.Get(ctx, id, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(phrase.ConvertedToReviewID)
	s.Assert().Equal(item.ID, *phrase.ConvertedToReviewID)

	// Second conversion finds the link already set and rolls back its insert.
	_, err = s.repo.Convert(ctx, id, models.ReviewItem{
		UserID: "u1", Phrase: "p", Explanation: "e", DueAt: due,
	})
	s.Assert().ErrorIs(err, sql.ErrNoRows)

	var itemCount int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_items WHERE user_id = ?`, "u1").Scan(&itemCount)
	s.Require().NoError(err)
	s.Assert().Equal(1, itemCount)
}

func TestSavedPhraseRepositorySuite(t *testing.T) {
	suite.Run(t, new(SavedPhraseRepositorySuite))
}
