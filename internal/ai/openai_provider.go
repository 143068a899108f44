package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

const endSessionMarker = "[END_SESSION]"

const (
	defaultFeedback = "Keep practicing! Try to make your sentence a little more natural."
	defaultImproved = "Please provide an improved sentence."
)

// OpenAIProvider generates conversation rounds via the OpenAI responses API.
type OpenAIProvider struct {
	client *Client
}

func NewOpenAIProvider(client *Client) *OpenAIProvider {
	return &OpenAIProvider{client: client}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContext(ctx).WithPrefix("ai").WithField("round", fmt.Sprintf("%d", req.RoundIndex))

	messages := []message{{Role: "assistant", Content: rolePrompt(req)}}
	// Only the tail of the conversation goes back to the model.
	ctxWindow := req.Context
	if len(ctxWindow) > models.ContextWindowLen {
		ctxWindow = ctxWindow[len(ctxWindow)-models.ContextWindowLen:]
	}
	for _, turn := range ctxWindow {
		messages = append(messages,
			message{Role: "user", Content: turn.UserInput},
			message{Role: "assistant", Content: turn.AIReply},
		)
	}
	messages = append(messages, message{Role: "assistant", Content: conversationInstruction(req.Difficulty, req.UserInput)})

	start := time.Now()
	content, err := p.client.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start).Milliseconds()
	log.Debug("conversation generated in %dms", latency)

	reply, feedback, improved, shouldEnd := parseConversation(content)
	return &Response{
		Reply:            reply,
		Feedback:         truncateRunes(feedback, 120),
		ImprovedSentence: improved,
		Tags:             conversationTags(req),
		ShouldEndSession: shouldEnd,
		Provider:         p.Name(),
		LatencyMS:        latency,
	}, nil
}

// parseConversation extracts the three labelled lines from model output.
// Unlabelled output becomes the reply wholesale; missing fields get defaults
// so a sloppy generation never breaks the round.
func parseConversation(content string) (reply, feedback, improved string, shouldEnd bool) {
	if strings.Contains(content, endSessionMarker) {
		shouldEnd = true
		content = strings.ReplaceAll(content, endSessionMarker, "")
	}
	content = strings.TrimSpace(content)

	for _, line := range strings.Split(content, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "ai:"):
			reply = strings.TrimSpace(line[len("ai:"):])
		case strings.HasPrefix(lower, "feedback:"):
			feedback = strings.TrimSpace(line[len("feedback:"):])
		case strings.HasPrefix(lower, "improved:"):
			improved = strings.TrimSpace(line[len("improved:"):])
		}
	}

	if reply == "" {
		reply = content
	}
	if feedback == "" {
		feedback = defaultFeedback
	}
	if improved == "" {
		improved = defaultImproved
	}
	return reply, feedback, improved, shouldEnd
}

func conversationTags(req Request) []string {
	tags := []string{"conversation", fmt.Sprintf("round_%d", req.RoundIndex), req.Difficulty}
	if req.ScenarioCategory != "" {
		tags = append(tags, req.ScenarioCategory)
	}
	return tags
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
