package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yonaimineakio/speakcoach/internal/ai"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

// MockConversationProvider is a mock implementation of ai.ConversationProvider
type MockConversationProvider struct {
	mock.Mock
}

func (m *MockConversationProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConversationProvider) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Response), args.Error(1)
}

// MockGoalJudge is a mock implementation of services.GoalJudge
type MockGoalJudge struct {
	mock.Mock
}

func (m *MockGoalJudge) Evaluate(ctx context.Context, goals []string, history []models.SessionRound) []int {
	args := m.Called(ctx, goals, history)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]int)
}

// MockPhraseRanker is a mock implementation of services.PhraseRanker
type MockPhraseRanker struct {
	mock.Mock
}

func (m *MockPhraseRanker) Rank(ctx context.Context, rounds []models.SessionRound) ([]models.SelectedPhrase, error) {
	args := m.Called(ctx, rounds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SelectedPhrase), args.Error(1)
}

// MockQuestionGenerator is a mock implementation of services.QuestionGenerator
type MockQuestionGenerator struct {
	mock.Mock
}

func (m *MockQuestionGenerator) Speaking(ctx context.Context, phrase, explanation string) (*models.ReviewQuestion, error) {
	args := m.Called(ctx, phrase, explanation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewQuestion), args.Error(1)
}

func (m *MockQuestionGenerator) Listening(ctx context.Context, phrase, explanation string) (*models.ReviewQuestion, error) {
	args := m.Called(ctx, phrase, explanation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewQuestion), args.Error(1)
}
