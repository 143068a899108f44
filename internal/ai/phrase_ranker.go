package ai

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

// PhraseRanker asks the model to pick the review-worthy phrases from a
// finished session. Callers fall back deterministically when Rank errors.
type PhraseRanker struct {
	client *Client
}

func NewPhraseRanker(client *Client) *PhraseRanker {
	return &PhraseRanker{client: client}
}

type rankedPhrase struct {
	RoundIndex  json.Number `json:"round_index"`
	Phrase      string      `json:"phrase"`
	Explanation string      `json:"explanation"`
	Reason      string      `json:"reason"`
	Score       any         `json:"score"`
}

// Rank returns at most 3 phrases, highest score first, deduplicated by
// case-insensitive phrase text. An empty result is valid; an error means the
// model output was unusable.
func (r *PhraseRanker) Rank(ctx context.Context, rounds []models.SessionRound) ([]models.SelectedPhrase, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_ranker")

	if len(rounds) == 0 {
		return []models.SelectedPhrase{}, nil
	}

	content, err := r.client.Complete(ctx, []message{
		{Role: "user", Content: topPhrasesPrompt(rounds)},
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		log.Warn("phrase ranking returned empty response")
		return nil, apperrors.NewTransportFailureError("phrase ranker", nil)
	}

	var parsed struct {
		TopPhrases []rankedPhrase `json:"top_phrases"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		log.Warn("phrase ranking returned malformed JSON: %v", err)
		return nil, apperrors.NewTransportFailureError("phrase ranker", err)
	}

	return normalizeRankedPhrases(parsed.TopPhrases), nil
}

// normalizeRankedPhrases drops malformed entries, clamps scores to [0,100],
// dedupes by lowercased phrase text, sorts by score descending, and keeps 3.
func normalizeRankedPhrases(raw []rankedPhrase) []models.SelectedPhrase {
	seen := make(map[string]bool)
	out := make([]models.SelectedPhrase, 0, len(raw))

	for _, item := range raw {
		roundIndex, err := item.RoundIndex.Int64()
		if err != nil {
			continue
		}
		phrase := strings.TrimSpace(item.Phrase)
		explanation := strings.TrimSpace(item.Explanation)
		if phrase == "" || explanation == "" {
			continue
		}
		key := strings.ToLower(phrase)
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, models.SelectedPhrase{
			RoundIndex:  int(roundIndex),
			Phrase:      phrase,
			Explanation: explanation,
			Reason:      strings.TrimSpace(item.Reason),
			Score:       clampScore(item.Score),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func clampScore(raw any) int {
	var score int
	switch v := raw.(type) {
	case float64:
		score = int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			score = n
		}
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
