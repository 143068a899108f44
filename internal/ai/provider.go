// Package ai wraps the language-model collaborators: conversation generation,
// goal judging, phrase ranking, and review question generation. Responses are
// parsed defensively and every failure path has a defined fallback.
package ai

import "context"

// Turn is one prior exchange passed back to the model as context.
type Turn struct {
	UserInput string
	AIReply   string
}

// Request carries everything conversation generation needs for one round.
type Request struct {
	UserInput          string
	Difficulty         string
	ScenarioCategory   string
	RoundIndex         int
	Context            []Turn
	ScenarioID         *int64
	CustomSystemPrompt string
}

// Response is the structured result of one generation call.
type Response struct {
	Reply            string
	Feedback         string
	ImprovedSentence string
	Tags             []string
	ShouldEndSession bool
	Provider         string
	LatencyMS        int64
}

// ConversationProvider generates the AI side of one conversation round.
type ConversationProvider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}
