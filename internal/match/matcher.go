// Package match scores spoken or assembled text against a target sentence.
// All functions are pure and safe for concurrent use.
package match

import (
	"math"
	"strings"
	"unicode"
)

// WordMatch reports whether a single target word was found in the transcript.
type WordMatch struct {
	Word     string `json:"word"`
	Matched  bool   `json:"matched"`
	Position int    `json:"position"`
}

// SpeakingResult is the outcome of comparing a transcript against a target sentence.
type SpeakingResult struct {
	WordMatches  []WordMatch `json:"word_matches"`
	Score        int         `json:"score"`
	MatchedCount int         `json:"matched_count"`
	TotalCount   int         `json:"total_count"`
}

// ListeningResult is the outcome of comparing an assembled word sequence
// against the correct one.
type ListeningResult struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

// Normalize lowercases a word and strips punctuation, keeping apostrophes
// inside the word (so "don't" survives but trailing quotes do not).
func Normalize(word string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'' {
			return r
		}
		return -1
	}, word)
	cleaned = strings.Trim(cleaned, "'")
	return strings.ToLower(cleaned)
}

// Tokenize splits text on whitespace, preserving the original word forms.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// EvaluateSpeaking marks each target word as matched if its normalized form is
// still available in the transcript token pool. A transcript token is consumed
// once matched, so a single spoken word cannot satisfy two target slots.
func EvaluateSpeaking(target, transcript string) SpeakingResult {
	targetWords := Tokenize(target)
	if len(targetWords) == 0 {
		return SpeakingResult{WordMatches: []WordMatch{}}
	}

	pool := make(map[string]int)
	for _, w := range Tokenize(transcript) {
		if norm := Normalize(w); norm != "" {
			pool[norm]++
		}
	}

	matches := make([]WordMatch, 0, len(targetWords))
	matched := 0
	for i, word := range targetWords {
		norm := Normalize(word)
		ok := norm != "" && pool[norm] > 0
		if ok {
			pool[norm]--
			matched++
		}
		matches = append(matches, WordMatch{Word: word, Matched: ok, Position: i})
	}

	return SpeakingResult{
		WordMatches:  matches,
		Score:        roundPercent(matched, len(targetWords)),
		MatchedCount: matched,
		TotalCount:   len(targetWords),
	}
}

// EvaluateListening compares the submitted word sequence against the correct
// one. Scoring is binary: every position must agree, in order.
func EvaluateListening(correct, submitted []string) ListeningResult {
	if len(correct) == 0 {
		return ListeningResult{}
	}
	if len(correct) != len(submitted) {
		return ListeningResult{}
	}
	for i := range correct {
		if Normalize(correct[i]) != Normalize(submitted[i]) {
			return ListeningResult{}
		}
	}
	return ListeningResult{Correct: true, Score: 100}
}

// EvaluateListeningPartial is the partial-credit variant: the score is the
// share of positions where the submitted word agrees with the correct one.
// Correct is still all-or-nothing.
func EvaluateListeningPartial(correct, submitted []string) ListeningResult {
	if len(correct) == 0 {
		return ListeningResult{}
	}
	agree := 0
	for i := range correct {
		if i >= len(submitted) {
			break
		}
		if Normalize(correct[i]) == Normalize(submitted[i]) {
			agree++
		}
	}
	return ListeningResult{
		Correct: agree == len(correct) && len(submitted) == len(correct),
		Score:   roundPercent(agree, len(correct)),
	}
}

func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
