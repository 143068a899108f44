package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yonaimineakio/speakcoach/internal/db"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
	"github.com/yonaimineakio/speakcoach/internal/repository/sqlite"
	"github.com/yonaimineakio/speakcoach/internal/testutil"
)

type ReviewItemRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.ReviewItemRepository
}

func (s *ReviewItemRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewReviewItemRepository(s.db.DB)
}

func (s *ReviewItemRepositorySuite) createUser(id string) {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO users (id, sub, name, email) VALUES (?, ?, ?, ?)
	`, id, "sub-"+id, "Test User", id+"@example.com")
	s.Require().NoError(err)
}

func (s *ReviewItemRepositorySuite) createSession(userID string) int64 {
	res, err := s.db.ExecContext(context.Background(), `
		INSERT INTO sessions (user_id, round_target, difficulty, mode) VALUES (?, 6, 'intermediate', 'text')
	`, userID)
	s.Require().NoError(err)
	id, err := res.LastInsertId()
	s.Require().NoError(err)
	return id
}

func (s *ReviewItemRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	s.createUser("u1")
	sessionID := s.createSession("u1")

	due := time.Now().Add(24 * time.Hour)
	roundIdx := 3
	score := 85
	id, err := s.repo.Insert(ctx, models.ReviewItem{
		UserID:          "u1",
		Phrase:          "I would like to check in",
		Explanation:     "Polite request form",
		DueAt:           due,
		SourceSessionID: &sessionID,
		SourceRoundIdx:  &roundIdx,
		SelectionReason: "high_value_correction",
		SelectionScore:  &score,
	})
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(0))

	item, err := s.repo.Get(ctx, id, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(item)
	s.Assert().Equal("I would like to check in", item.Phrase)
	s.Assert().Equal("Polite request form", item.Explanation)
	s.Assert().False(item.IsCompleted)
	s.Assert().Nil(item.CompletedAt)
	s.Assert().Equal(sessionID, *item.SourceSessionID)
	s.Assert().Equal(3, *item.SourceRoundIdx)
	s.Assert().Equal("high_value_correction", item.SelectionReason)
	s.Assert().Equal(85, *item.SelectionScore)
	s.Assert().WithinDuration(due, item.DueAt, time.Second)
}

func (s *ReviewItemRepositorySuite) TestGetScopedToUser() {
	ctx := context.Background()
	s.createUser("u1")
	s.createUser("u2")

	id, err := s.repo.Insert(ctx, models.ReviewItem{
		UserID: "u1", Phrase: "hello there", Explanation: "greeting", DueAt: time.Now(),
	})
	s.Require().NoError(err)

	item, err := s.repo.Get(ctx, id, "u2")
	s.Require().NoError(err)
	s.Assert().Nil(item)
}

func (s *ReviewItemRepositorySuite) TestDueItemsOrderingAndLimit() {
	ctx := context.Background()
	s.createUser("u1")
	now := time.Now()

	// Due items in reverse insertion order, one future, one completed.
	ids := make(map[string]int64)
	for _, tc := range []struct {
		phrase string
		due    time.Time
	}{
		{"later", now.Add(-1 * time.Hour)},
		{"earliest", now.Add(-48 * time.Hour)},
		{"middle", now.Add(-24 * time.Hour)},
		{"future", now.Add(24 * time.Hour)},
	} {
		id, err := s.repo.Insert(ctx, models.ReviewItem{
			UserID: "u1", Phrase: tc.phrase, Explanation: "e", DueAt: tc.due,
		})
		s.Require().NoError(err)
		ids[tc.phrase] = id
	}

	completed := now
	err := s.repo.Update(ctx, models.ReviewItem{
		ID: ids["later"], UserID: "u1", DueAt: now.Add(-1 * time.Hour), IsCompleted: true, CompletedAt: &completed,
	})
	s.Require().NoError(err)

	items, err := s.repo.DueItems(ctx, "u1", now, 10)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Assert().Equal("earliest", items[0].Phrase)
	s.Assert().Equal("middle", items[1].Phrase)

	limited, err := s.repo.DueItems(ctx, "u1", now, 1)
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Assert().Equal("earliest", limited[0].Phrase)

	count, err := s.repo.CountDue(ctx, "u1", now)
	s.Require().NoError(err)
	s.Assert().Equal(2, count)
}

func (s *ReviewItemRepositorySuite) TestHistoryReturnsCompletedNewestFirst() {
	ctx := context.Background()
	s.createUser("u1")
	now := time.Now()

	for i, phrase := range []string{"first done", "second done", "still open"} {
		id, err := s.repo.Insert(ctx, models.ReviewItem{
			UserID: "u1", Phrase: phrase, Explanation: "e", DueAt: now,
		})
		s.Require().NoError(err)

		if phrase != "still open" {
			done := now.Add(time.Duration(i) * time.Hour)
			err = s.repo.Update(ctx, models.ReviewItem{
				ID: id, UserID: "u1", DueAt: now, IsCompleted: true, CompletedAt: &done,
			})
			s.Require().NoError(err)
		}
	}

	items, err := s.repo.History(ctx, "u1", 10)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Assert().Equal("second done", items[0].Phrase)
	s.Assert().Equal("first done", items[1].Phrase)
}

func (s *ReviewItemRepositorySuite) TestBySourceSessionOrdersByScore() {
	ctx := context.Background()
	s.createUser("u1")
	sessionID := s.createSession("u1")
	otherSession := s.createSession("u1")

	scores := []int{60, 90, 75}
	for i, score := range scores {
		sc := score
		_, err := s.repo.Insert(ctx, models.ReviewItem{
			UserID: "u1", Phrase: "p", Explanation: "e", DueAt: time.Now(),
			SourceSessionID: &sessionID, SelectionScore: &sc, SourceRoundIdx: &i,
		})
		s.Require().NoError(err)
	}
	_, err := s.repo.Insert(ctx, models.ReviewItem{
		UserID: "u1", Phrase: "other", Explanation: "e", DueAt: time.Now(),
		SourceSessionID: &otherSession,
	})
	s.Require().NoError(err)

	items, err := s.repo.BySourceSession(ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.Assert().Equal(90, *items[0].SelectionScore)
	s.Assert().Equal(75, *items[1].SelectionScore)
	s.Assert().Equal(60, *items[2].SelectionScore)
}

func (s *ReviewItemRepositorySuite) TestUpdateReschedules() {
	ctx := context.Background()
	s.createUser("u1")
	now := time.Now()

	id, err := s.repo.Insert(ctx, models.ReviewItem{
		UserID: "u1", Phrase: "p", Explanation: "e", DueAt: now,
	})
	s.Require().NoError(err)

	next := now.Add(24 * time.Hour)
	err = s.repo.Update(ctx, models.ReviewItem{
		ID: id, UserID: "u1", DueAt: next, IsCompleted: false, CompletedAt: nil,
	})
	s.Require().NoError(err)

	item, err := s.repo.Get(ctx, id, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(item)
	s.Assert().False(item.IsCompleted)
	s.Assert().Nil(item.CompletedAt)
	s.Assert().WithinDuration(next, item.DueAt, time.Second)
}

func (s *ReviewItemRepositorySuite) TestLatestDueAt() {
	ctx := context.Background()
	s.createUser("u1")

	latest, err := s.repo.LatestDueAt(ctx, "u1")
	s.Require().NoError(err)
	s.Assert().Nil(latest)

	now := time.Now()
	for _, offset := range []time.Duration{24 * time.Hour, 72 * time.Hour, 48 * time.Hour} {
		_, err := s.repo.Insert(ctx, models.ReviewItem{
			UserID: "u1", Phrase: "p", Explanation: "e", DueAt: now.Add(offset),
		})
		s.Require().NoError(err)
	}

	latest, err = s.repo.LatestDueAt(ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.Assert().WithinDuration(now.Add(72*time.Hour), *latest, time.Second)
}

func TestReviewItemRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewItemRepositorySuite))
}
