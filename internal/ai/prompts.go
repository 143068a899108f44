package ai

import (
	"fmt"
	"strings"

	"github.com/yonaimineakio/speakcoach/internal/models"
)

// Role prompts by category. A scenario-specific or custom prompt always wins
// over these.
var categoryPrompts = map[string]string{
	models.CategoryTravel:     "You are a friendly local helping an English learner navigate travel situations. Stay in character.",
	models.CategoryBusiness:   "You are a professional colleague in an English business conversation. Stay in character and keep the register formal.",
	models.CategoryDaily:      "You are a friendly neighbor having an everyday English conversation. Stay in character.",
	models.CategoryRestaurant: "You are a waiter at a restaurant serving an English-learning customer. Stay in character.",
}

const defaultRolePrompt = "You are a conversation partner helping someone practice English. Stay in character."

var difficultyStyles = map[string]string{
	models.DifficultyBeginner:     "Use short, simple sentences and common vocabulary.",
	models.DifficultyIntermediate: "Use natural everyday English with some idiomatic expressions.",
	models.DifficultyAdvanced:     "Use rich, nuanced English including idioms and complex sentence structures.",
}

func rolePrompt(req Request) string {
	if req.CustomSystemPrompt != "" {
		return req.CustomSystemPrompt
	}
	if p, ok := categoryPrompts[req.ScenarioCategory]; ok {
		return p
	}
	return defaultRolePrompt
}

func conversationInstruction(difficulty, userInput string) string {
	style := difficultyStyles[difficulty]
	if style == "" {
		style = difficultyStyles[models.DifficultyIntermediate]
	}
	return fmt.Sprintf(`The learner just said: %q

%s

Respond with exactly three lines in this format:
AI: <your in-character reply, 1-2 sentences>
Feedback: <one short tip on the learner's sentence, max 120 characters>
Improved: <a more natural version of the learner's sentence>

If the learner clearly wants to finish the conversation, append [END_SESSION] on its own line.`, userInput, style)
}

func goalProgressPrompt(goals []string, history []models.SessionRound) string {
	var b strings.Builder
	b.WriteString("You judge whether an English learner has achieved each practice goal based on the conversation so far.\n")
	b.WriteString("Respond with JSON only, shaped exactly as {\"goals_status\": [0 or 1 per goal, in order]}. 1 means achieved.\n\n")
	b.WriteString("--- Goals ---\n")
	for i, g := range goals {
		fmt.Fprintf(&b, "%d. %s\n", i+1, g)
	}
	b.WriteString("\n--- Conversation history ---\n")
	if len(history) == 0 {
		b.WriteString("(no turns yet)\n")
	}
	for _, round := range history {
		fmt.Fprintf(&b, "Round %d - User: %s\n", round.RoundIndex, round.UserInput)
		if round.AIReply != "" {
			fmt.Fprintf(&b, "Round %d - AI: %s\n", round.RoundIndex, round.AIReply)
		}
	}
	return b.String()
}

func topPhrasesPrompt(rounds []models.SessionRound) string {
	var b strings.Builder
	b.WriteString("Select up to 3 phrases from this practice session that are most worth reviewing later.\n")
	b.WriteString("Prefer the improved sentences; pick expressions the learner struggled with or that are broadly reusable.\n")
	b.WriteString("Respond with JSON only, shaped exactly as:\n")
	b.WriteString(`{"top_phrases": [{"round_index": <int>, "phrase": "<text>", "explanation": "<why it matters>", "reason": "<selection reason>", "score": <0-100>}]}`)
	b.WriteString("\n\n--- Session rounds ---\n")
	for _, round := range rounds {
		fmt.Fprintf(&b, "Round %d\n  User: %s\n  AI: %s\n  Improved: %s\n", round.RoundIndex, round.UserInput, round.AIReply, round.ImprovedSentence)
	}
	return b.String()
}

func speakingQuestionPrompt(phrase, explanation string) string {
	return fmt.Sprintf(`Create a speaking exercise for an English learner reviewing this phrase.

Phrase: %s
Why it matters: %s

The target sentence MUST contain the phrase exactly as written above.
Respond with exactly these lines:
TargetSentence: <a natural sentence containing the phrase verbatim>
Prompt: <one-line instruction telling the learner to read the sentence aloud>
Hint: <optional short pronunciation or usage hint>`, phrase, explanation)
}

func listeningQuestionPrompt(phrase, explanation string) string {
	return fmt.Sprintf(`Create a listening exercise for an English learner reviewing this phrase.

Phrase: %s
Why it matters: %s

The audio text MUST contain the phrase exactly as written above and be at most 12 words.
Respond with exactly these lines:
AudioText: <a natural sentence containing the phrase verbatim>
PuzzleWords: <the audio text words in correct order, space separated, no punctuation>
Prompt: <one-line instruction telling the learner to rebuild the sentence from the words>
Hint: <optional short hint>`, phrase, explanation)
}
