package ai

import (
	"context"
	"strings"
	"unicode"

	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

// QuestionGenerator builds review exercises for a phrase. Every generated
// question must contain the phrase verbatim; output that drops the phrase is
// replaced with a deterministic question built from the phrase itself.
type QuestionGenerator struct {
	client *Client
}

func NewQuestionGenerator(client *Client) *QuestionGenerator {
	return &QuestionGenerator{client: client}
}

const (
	defaultSpeakingPrompt  = "Read the following sentence aloud."
	defaultListeningPrompt = "Listen to the audio and arrange the words in the correct order."
)

func (g *QuestionGenerator) Speaking(ctx context.Context, phrase, explanation string) (*models.ReviewQuestion, error) {
	log := logger.FromContext(ctx).WithPrefix("question_gen")

	content, err := g.client.Complete(ctx, []message{
		{Role: "user", Content: speakingQuestionPrompt(phrase, explanation)},
	})
	if err != nil {
		return nil, err
	}

	q := parseSpeakingQuestion(content)
	if !containsPhrase(q.TargetSentence, phrase) {
		log.Warn("generated target sentence dropped the phrase, using the phrase directly")
		q.TargetSentence = phrase
	}
	return q, nil
}

func (g *QuestionGenerator) Listening(ctx context.Context, phrase, explanation string) (*models.ReviewQuestion, error) {
	log := logger.FromContext(ctx).WithPrefix("question_gen")

	content, err := g.client.Complete(ctx, []message{
		{Role: "user", Content: listeningQuestionPrompt(phrase, explanation)},
	})
	if err != nil {
		return nil, err
	}

	q := parseListeningQuestion(content)
	if !containsPhrase(q.AudioText, phrase) {
		log.Warn("generated audio text dropped the phrase, using the phrase directly")
		q.AudioText = phrase
		q.PuzzleWords = puzzleWordsFrom(phrase)
	}
	return q, nil
}

func parseSpeakingQuestion(content string) *models.ReviewQuestion {
	q := &models.ReviewQuestion{Type: models.QuestionTypeSpeaking}
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "targetsentence:"):
			q.TargetSentence = strings.TrimSpace(line[len("targetsentence:"):])
		case strings.HasPrefix(lower, "prompt:"):
			q.Prompt = strings.TrimSpace(line[len("prompt:"):])
		case strings.HasPrefix(lower, "hint:"):
			q.Hint = strings.TrimSpace(line[len("hint:"):])
		}
	}
	if q.Prompt == "" {
		q.Prompt = defaultSpeakingPrompt
	}
	return q
}

func parseListeningQuestion(content string) *models.ReviewQuestion {
	q := &models.ReviewQuestion{Type: models.QuestionTypeListening}
	var puzzleRaw string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "audiotext:"):
			q.AudioText = strings.TrimSpace(line[len("audiotext:"):])
		case strings.HasPrefix(lower, "puzzlewords:"):
			puzzleRaw = strings.TrimSpace(line[len("puzzlewords:"):])
		case strings.HasPrefix(lower, "prompt:"):
			q.Prompt = strings.TrimSpace(line[len("prompt:"):])
		case strings.HasPrefix(lower, "hint:"):
			q.Hint = strings.TrimSpace(line[len("hint:"):])
		}
	}
	if q.Prompt == "" {
		q.Prompt = defaultListeningPrompt
	}
	if puzzleRaw != "" {
		q.PuzzleWords = strings.Fields(puzzleRaw)
	} else if q.AudioText != "" {
		q.PuzzleWords = puzzleWordsFrom(q.AudioText)
	}
	return q
}

// puzzleWordsFrom splits text into words with sentence punctuation removed.
func puzzleWordsFrom(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '!', '?', ';', ':':
			return -1
		}
		return r
	}, text)
	return strings.Fields(cleaned)
}

func containsPhrase(text, phrase string) bool {
	fold := func(s string) string {
		return strings.ToLower(strings.TrimFunc(s, unicode.IsSpace))
	}
	return strings.Contains(fold(text), fold(phrase))
}
