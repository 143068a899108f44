package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yonaimineakio/speakcoach/internal/ai"
	"github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
	"github.com/yonaimineakio/speakcoach/internal/scoring"
	"github.com/yonaimineakio/speakcoach/internal/testutil/mocks"
)

type sessionFixture struct {
	sessions *mocks.MockSessionRepository
	users    *mocks.MockUserRepository
	scens    *mocks.MockScenarioRepository
	reviews  *mocks.MockReviewItemRepository
	provider *mocks.MockConversationProvider
	fallback *mocks.MockConversationProvider
	judge    *mocks.MockGoalJudge
	ranker   *mocks.MockPhraseRanker
	svc      *sessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		sessions: new(mocks.MockSessionRepository),
		users:    new(mocks.MockUserRepository),
		scens:    new(mocks.MockScenarioRepository),
		reviews:  new(mocks.MockReviewItemRepository),
		provider: new(mocks.MockConversationProvider),
		fallback: new(mocks.MockConversationProvider),
		judge:    new(mocks.MockGoalJudge),
		ranker:   new(mocks.MockPhraseRanker),
	}
	tracker := scoring.NewStreakTracker(time.UTC)
	f.svc = NewSessionService(
		f.sessions, f.users, f.scens, f.reviews,
		f.provider, f.fallback, f.judge, f.ranker, tracker,
	).(*sessionService)
	return f
}

func restaurantScenario() *models.Scenario {
	return &models.Scenario{
		ID:          1,
		Name:        "Restaurant Ordering",
		Category:    models.CategoryRestaurant,
		Goals:       []string{"Order a main dish", "Ask about the menu", "Request the bill"},
		OpeningLine: "Welcome! Table for one?",
		IsActive:    true,
	}
}

func activeSession(scenarioID int64) *models.Session {
	return &models.Session{
		ID:           7,
		UserID:       "user-1",
		ScenarioID:   &scenarioID,
		RoundTarget:  5,
		Difficulty:   models.DifficultyIntermediate,
		Mode:         models.ModeText,
		GoalProgress: []int{0, 0, 0},
		StartedAt:    time.Now(),
	}
}

func TestStart_RequiresExactlyOneScenarioRef(t *testing.T) {
	f := newSessionFixture(t)
	one := int64(1)

	_, err := f.svc.Start(context.Background(), "user-1", models.StartSessionRequest{RoundTarget: 5})
	assert.True(t, errors.IsValidation(err))

	_, err = f.svc.Start(context.Background(), "user-1", models.StartSessionRequest{
		RoundTarget: 5, ScenarioID: &one, CustomScenarioID: &one,
	})
	assert.True(t, errors.IsValidation(err))
}

func TestStart_RoundTargetBounds(t *testing.T) {
	f := newSessionFixture(t)
	one := int64(1)

	for _, target := range []int{0, 3, 13} {
		_, err := f.svc.Start(context.Background(), "user-1", models.StartSessionRequest{
			RoundTarget: target, ScenarioID: &one,
		})
		assert.True(t, errors.IsValidation(err), "round_target=%d should fail", target)
	}
}

func TestStart_InactiveScenarioNotFound(t *testing.T) {
	f := newSessionFixture(t)
	one := int64(1)
	inactive := restaurantScenario()
	inactive.IsActive = false
	f.scens.On("Get", mock.Anything, int64(1)).Return(inactive, nil)

	_, err := f.svc.Start(context.Background(), "user-1", models.StartSessionRequest{
		RoundTarget: 5, ScenarioID: &one,
	})

	assert.True(t, errors.IsNotFound(err))
}

func TestStart_CustomScenarioOwnership(t *testing.T) {
	f := newSessionFixture(t)
	two := int64(2)
	f.scens.On("GetCustom", mock.Anything, int64(2)).Return(&models.CustomScenario{
		ID: 2, UserID: "someone-else", IsActive: true,
	}, nil)

	_, err := f.svc.Start(context.Background(), "user-1", models.StartSessionRequest{
		RoundTarget: 5, CustomScenarioID: &two,
	})

	assert.True(t, errors.IsNotFound(err))
}

func TestStart_Success(t *testing.T) {
	f := newSessionFixture(t)
	one := int64(1)
	f.scens.On("Get", mock.Anything, int64(1)).Return(restaurantScenario(), nil)
	f.sessions.On("Create", mock.Anything, mock.MatchedBy(func(s models.Session) bool {
		return s.UserID == "user-1" && s.RoundTarget == 5 && s.CompletedRounds == 0 && s.ExtensionCount == 0
	})).Return(int64(7), nil)

	result, err := f.svc.Start(context.Background(), "user-1", models.StartSessionRequest{
		RoundTarget: 5, ScenarioID: &one, Difficulty: models.DifficultyIntermediate, Mode: models.ModeText,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.SessionID)
	assert.Equal(t, "Welcome! Table for one?", result.OpeningLine)
	assert.Len(t, result.Goals, 3)
	f.sessions.AssertExpectations(t)
}

func TestProcessTurn_RoundLimitReached(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	session.CompletedRounds = 5
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)

	_, err := f.svc.ProcessTurn(context.Background(), "user-1", 7, "Hello")

	assert.True(t, errors.IsValidation(err))
	f.sessions.AssertNotCalled(t, "RecordTurn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessTurn_NotOwnedIsNotFound(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	session.UserID = "someone-else"
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)

	_, err := f.svc.ProcessTurn(context.Background(), "user-1", 7, "Hello")

	assert.True(t, errors.IsNotFound(err))
}

func TestProcessTurn_Success(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	session.CompletedRounds = 1
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
	f.scens.On("Get", mock.Anything, int64(1)).Return(restaurantScenario(), nil)
	f.sessions.On("RecentRounds", mock.Anything, int64(7), models.ContextWindowLen).Return([]models.SessionRound{
		{RoundIndex: 1, UserInput: "Hi", AIReply: "Welcome!"},
	}, nil)
	f.provider.On("Generate", mock.Anything, mock.MatchedBy(func(req ai.Request) bool {
		return req.RoundIndex == 2 && len(req.Context) == 1
	})).Return(&ai.Response{
		Reply:            "Of course, here is the menu.",
		Feedback:         "Good phrasing.",
		ImprovedSentence: "Could I see the menu, please?",
		Tags:             []string{"conversation"},
		Provider:         "openai",
		LatencyMS:        120,
	}, nil)
	f.users.On("Get", mock.Anything, "user-1").Return(&models.User{ID: "user-1", CurrentStreak: 3}, nil)
	// intermediate with a 3-day streak: floor(10 * 1.2 * 1.10) = 13
	f.sessions.On("RecordTurn", mock.Anything, mock.MatchedBy(func(r models.SessionRound) bool {
		return r.RoundIndex == 2 && r.UserInput == "Can I see the menu?"
	}), "user-1", 13).Return(nil)
	f.sessions.On("Rounds", mock.Anything, int64(7)).Return([]models.SessionRound{
		{RoundIndex: 1}, {RoundIndex: 2},
	}, nil)
	f.judge.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return([]int{0, 1, 0})
	f.sessions.On("UpdateGoalProgress", mock.Anything, int64(7), []int{0, 1, 0}).Return(nil)

	result, err := f.svc.ProcessTurn(context.Background(), "user-1", 7, "Can I see the menu?")

	require.NoError(t, err)
	assert.Equal(t, 2, result.RoundIndex)
	assert.Equal(t, 13, result.PointsAwarded)
	assert.Equal(t, "openai", result.Provider)
	assert.False(t, result.SuggestEnd)
	assert.True(t, result.GoalProgress[1].Achieved)
	assert.Equal(t, 2, result.Status.CompletedRounds)
	f.sessions.AssertExpectations(t)
}

func TestProcessTurn_FallbackOnTransportFailure(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
	f.scens.On("Get", mock.Anything, int64(1)).Return(restaurantScenario(), nil)
	f.sessions.On("RecentRounds", mock.Anything, int64(7), models.ContextWindowLen).Return([]models.SessionRound{}, nil)
	f.provider.On("Name").Return("openai")
	f.provider.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.NewTransportFailureError("openai", assert.AnError))
	f.fallback.On("Generate", mock.Anything, mock.Anything).Return(&ai.Response{
		Reply: "That's a great effort!", Feedback: "ok", ImprovedSentence: "ok", Provider: "fallback",
	}, nil)
	f.users.On("Get", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.sessions.On("RecordTurn", mock.Anything, mock.Anything, "user-1", 12).Return(nil)
	f.sessions.On("Rounds", mock.Anything, int64(7)).Return([]models.SessionRound{{RoundIndex: 1}}, nil)
	f.judge.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return([]int{0, 0, 0})

	result, err := f.svc.ProcessTurn(context.Background(), "user-1", 7, "Hello")

	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Provider)
	f.fallback.AssertExpectations(t)
}

func TestProcessTurn_TimeoutPropagatesWithoutRecording(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
	f.scens.On("Get", mock.Anything, int64(1)).Return(restaurantScenario(), nil)
	f.sessions.On("RecentRounds", mock.Anything, int64(7), models.ContextWindowLen).Return([]models.SessionRound{}, nil)
	f.provider.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.NewTransportTimeoutError("openai", assert.AnError))

	_, err := f.svc.ProcessTurn(context.Background(), "user-1", 7, "Hello")

	assert.True(t, errors.IsTransportTimeout(err))
	f.sessions.AssertNotCalled(t, "RecordTurn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.fallback.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestProcessTurn_EndReasonPrecedence(t *testing.T) {
	one := int64(1)
	tests := []struct {
		name       string
		endIntent  bool
		goals      []int
		lastRound  bool
		suggestEnd bool
		reason     models.EndReason
	}{
		{"user intent wins over everything", true, []int{1, 1, 1}, true, true, models.EndReasonUserIntent},
		{"goals beat round limit", false, []int{1, 1, 1}, true, true, models.EndReasonGoalsCompleted},
		{"round limit alone", false, []int{0, 0, 0}, true, true, models.EndReasonRoundLimit},
		{"no signal", false, []int{0, 1, 0}, false, false, models.EndReasonNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			session := activeSession(one)
			if tt.lastRound {
				session.CompletedRounds = session.RoundTarget - 1
			}
			f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
			f.scens.On("Get", mock.Anything, one).Return(restaurantScenario(), nil)
			f.sessions.On("RecentRounds", mock.Anything, int64(7), models.ContextWindowLen).Return([]models.SessionRound{}, nil)
			f.provider.On("Generate", mock.Anything, mock.Anything).Return(&ai.Response{
				Reply: "ok", Feedback: "ok", ImprovedSentence: "ok",
				Provider: "openai", ShouldEndSession: tt.endIntent,
			}, nil)
			f.users.On("Get", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil)
			f.sessions.On("RecordTurn", mock.Anything, mock.Anything, "user-1", mock.Anything).Return(nil)
			f.sessions.On("Rounds", mock.Anything, int64(7)).Return([]models.SessionRound{}, nil)
			f.judge.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return(tt.goals)
			f.sessions.On("UpdateGoalProgress", mock.Anything, int64(7), mock.Anything).Return(nil).Maybe()

			result, err := f.svc.ProcessTurn(context.Background(), "user-1", 7, "Hello")

			require.NoError(t, err)
			assert.Equal(t, tt.suggestEnd, result.SuggestEnd)
			assert.Equal(t, tt.reason, result.EndReason)
		})
	}
}

func TestProcessTurn_GoalProgressNeverRegresses(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	session.GoalProgress = []int{1, 0, 1}
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
	f.scens.On("Get", mock.Anything, int64(1)).Return(restaurantScenario(), nil)
	f.sessions.On("RecentRounds", mock.Anything, int64(7), models.ContextWindowLen).Return([]models.SessionRound{}, nil)
	f.provider.On("Generate", mock.Anything, mock.Anything).Return(&ai.Response{
		Reply: "ok", Feedback: "ok", ImprovedSentence: "ok", Provider: "openai",
	}, nil)
	f.users.On("Get", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.sessions.On("RecordTurn", mock.Anything, mock.Anything, "user-1", mock.Anything).Return(nil)
	f.sessions.On("Rounds", mock.Anything, int64(7)).Return([]models.SessionRound{}, nil)
	// Judge no longer confirms goal 0; the stored achievement must stick.
	f.judge.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return([]int{0, 1, 0})
	f.sessions.On("UpdateGoalProgress", mock.Anything, int64(7), []int{1, 1, 1}).Return(nil)

	result, err := f.svc.ProcessTurn(context.Background(), "user-1", 7, "Hello")

	require.NoError(t, err)
	assert.True(t, result.SuggestEnd)
	assert.Equal(t, models.EndReasonGoalsCompleted, result.EndReason)
	f.sessions.AssertExpectations(t)
}

func TestExtend(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	session.ExtensionCount = 1
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
	f.sessions.On("UpdateExtension", mock.Anything, int64(7), 8, 2).Return(nil)

	status, err := f.svc.Extend(context.Background(), "user-1", 7)

	require.NoError(t, err)
	assert.Equal(t, 8, status.RoundTarget)
	assert.Equal(t, 2, status.ExtensionCount)
	f.sessions.AssertExpectations(t)
}

func TestExtend_CapReached(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	session.ExtensionCount = models.MaxExtensions
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)

	_, err := f.svc.Extend(context.Background(), "user-1", 7)

	assert.True(t, errors.IsValidation(err))
}

func TestEnd_FirstCallFinishesAndAwardsBonus(t *testing.T) {
	f := newSessionFixture(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	session := activeSession(1)
	session.CompletedRounds = 5
	session.GoalProgress = []int{1, 1, 0}
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
	f.scens.On("Get", mock.Anything, int64(1)).Return(restaurantScenario(), nil)
	f.sessions.On("Rounds", mock.Anything, int64(7)).Return([]models.SessionRound{
		{RoundIndex: 4}, {RoundIndex: 5},
	}, nil)
	f.ranker.On("Rank", mock.Anything, mock.Anything).Return([]models.SelectedPhrase{
		{RoundIndex: 4, Phrase: "Could I get the bill?", Explanation: "polite request", Reason: "useful", Score: 90},
	}, nil)
	yesterday := now.Add(-24 * time.Hour)
	f.users.On("Get", mock.Anything, "user-1").Return(&models.User{
		ID: "user-1", CurrentStreak: 2, LongestStreak: 4, LastActivityDate: &yesterday,
	}, nil)
	f.sessions.On("Finish", mock.Anything, mock.MatchedBy(func(fin repository.SessionFinish) bool {
		// streak advances to 3 before the bonus, so: floor(50 * 1.2 * 1.10) = 66
		return fin.SessionID == 7 &&
			len(fin.ReviewItems) == 1 &&
			fin.ReviewItems[0].Phrase == "Could I get the bill?" &&
			fin.ReviewItems[0].DueAt.Equal(now.Add(24*time.Hour)) &&
			fin.BonusPoints == 66 &&
			fin.Streak.Current == 3 && fin.Streak.Longest == 4
	})).Return(nil)

	summary, err := f.svc.End(context.Background(), "user-1", 7)

	require.NoError(t, err)
	assert.Equal(t, 5, summary.CompletedRounds)
	assert.Equal(t, 66, summary.BonusPoints)
	require.Len(t, summary.TopPhrases, 1)
	require.NotNil(t, summary.NextReviewAt)
	assert.Equal(t, now.Add(24*time.Hour), *summary.NextReviewAt)
	f.sessions.AssertExpectations(t)
}

func TestEnd_PhraseRankerFailureFallsBackToLatestRounds(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	session.CompletedRounds = 4
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
	f.scens.On("Get", mock.Anything, int64(1)).Return(restaurantScenario(), nil)
	f.sessions.On("Rounds", mock.Anything, int64(7)).Return([]models.SessionRound{
		{RoundIndex: 1, ImprovedSentence: "First improved."},
		{RoundIndex: 2, ImprovedSentence: "Second improved."},
		{RoundIndex: 3, ImprovedSentence: "Third improved."},
		{RoundIndex: 4, ImprovedSentence: "Fourth improved."},
	}, nil)
	f.ranker.On("Rank", mock.Anything, mock.Anything).
		Return(nil, errors.NewTransportFailureError("phrase ranker", assert.AnError))
	f.users.On("Get", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil)
	f.sessions.On("Finish", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.svc.End(context.Background(), "user-1", 7)

	require.NoError(t, err)
	require.Len(t, summary.TopPhrases, 3)
	assert.Equal(t, "Second improved.", summary.TopPhrases[0].Phrase)
	for _, phrase := range summary.TopPhrases {
		assert.Equal(t, "fallback_latest_rounds", phrase.Reason)
	}
}

func TestEnd_IdempotentSecondCall(t *testing.T) {
	f := newSessionFixture(t)
	endedAt := time.Now().Add(-time.Hour)
	dueAt := endedAt.Add(24 * time.Hour)
	session := activeSession(1)
	session.CompletedRounds = 5
	session.EndedAt = &endedAt
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)
	f.scens.On("Get", mock.Anything, int64(1)).Return(restaurantScenario(), nil)
	roundIdx := 4
	score := 90
	sessionID := int64(7)
	f.reviews.On("BySourceSession", mock.Anything, int64(7)).Return([]models.ReviewItem{
		{
			ID: 11, UserID: "user-1", Phrase: "Could I get the bill?", Explanation: "polite request",
			DueAt: dueAt, SourceSessionID: &sessionID, SourceRoundIdx: &roundIdx,
			SelectionReason: "useful", SelectionScore: &score,
		},
	}, nil)

	summary, err := f.svc.End(context.Background(), "user-1", 7)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.BonusPoints)
	require.Len(t, summary.TopPhrases, 1)
	assert.Equal(t, "Could I get the bill?", summary.TopPhrases[0].Phrase)
	require.NotNil(t, summary.NextReviewAt)
	assert.Equal(t, dueAt, *summary.NextReviewAt)
	f.sessions.AssertNotCalled(t, "Finish", mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestStatus(t *testing.T) {
	f := newSessionFixture(t)
	session := activeSession(1)
	session.CompletedRounds = 5
	f.sessions.On("Get", mock.Anything, int64(7)).Return(session, nil)

	status, err := f.svc.Status(context.Background(), "user-1", 7)

	require.NoError(t, err)
	assert.True(t, status.IsActive)
	assert.True(t, status.ExtensionOffered)
	assert.True(t, status.CanExtend)
}
