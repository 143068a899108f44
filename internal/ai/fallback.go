package ai

import (
	"context"

	"github.com/yonaimineakio/speakcoach/internal/models"
)

type cannedResponse struct {
	reply    string
	feedback string
	improved string
}

var fallbackResponses = map[string]cannedResponse{
	models.DifficultyBeginner: {
		reply:    "That's a great effort! Let's practice together.",
		feedback: "Good job. Your simple sentences get the idea across clearly.",
		improved: "I would like to talk more about this topic.",
	},
	models.DifficultyIntermediate: {
		reply:    "Nicely expressed! Could you add more details?",
		feedback: "Natural flow. Try adding more specific information next time.",
		improved: "I would appreciate it if you could share more specific information about this topic.",
	},
	models.DifficultyAdvanced: {
		reply:    "Interesting viewpoint! How would you support that?",
		feedback: "Well structured. Try backing your point with a persuasive reason.",
		improved: "I believe this approach could generate long-term benefits for the entire team.",
	},
}

// FallbackProvider returns canned per-difficulty responses so a conversation
// can continue when the primary provider is unreachable. It is deterministic
// and never fails.
type FallbackProvider struct{}

func NewFallbackProvider() *FallbackProvider { return &FallbackProvider{} }

func (p *FallbackProvider) Name() string { return "fallback" }

func (p *FallbackProvider) Generate(_ context.Context, req Request) (*Response, error) {
	canned, ok := fallbackResponses[req.Difficulty]
	if !ok {
		canned = fallbackResponses[models.DifficultyIntermediate]
	}
	return &Response{
		Reply:            canned.reply,
		Feedback:         canned.feedback,
		ImprovedSentence: canned.improved,
		Tags:             append(conversationTags(req), "fallback"),
		ShouldEndSession: false,
		Provider:         p.Name(),
		LatencyMS:        0,
	}, nil
}

var _ ConversationProvider = (*FallbackProvider)(nil)
var _ ConversationProvider = (*OpenAIProvider)(nil)
