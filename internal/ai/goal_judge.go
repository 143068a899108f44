package ai

import (
	"context"
	"encoding/json"

	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
)

// GoalJudge classifies per-goal completion from the conversation so far.
// A judging failure never fails the round: all goals are reported unachieved.
type GoalJudge struct {
	client *Client
}

func NewGoalJudge(client *Client) *GoalJudge {
	return &GoalJudge{client: client}
}

// Evaluate returns one 0/1 flag per goal, in goal order. The result always
// has exactly len(goals) entries regardless of what the model returned.
func (j *GoalJudge) Evaluate(ctx context.Context, goals []string, history []models.SessionRound) []int {
	log := logger.FromContext(ctx).WithPrefix("goal_judge")

	if len(goals) == 0 {
		return []int{}
	}

	content, err := j.client.Complete(ctx, []message{
		{Role: "user", Content: goalProgressPrompt(goals, history)},
	})
	if err != nil {
		log.Warn("goal evaluation failed, marking all unachieved: %v", err)
		return make([]int, len(goals))
	}

	return parseGoalStatus(content, len(goals))
}

// parseGoalStatus parses {"goals_status": [...]} and pads or truncates the
// flags to exactly n entries. Anything that is not 1 counts as 0.
func parseGoalStatus(content string, n int) []int {
	result := make([]int, n)

	var parsed struct {
		GoalsStatus []json.Number `json:"goals_status"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return result
	}

	for i, v := range parsed.GoalsStatus {
		if i >= n {
			break
		}
		if iv, err := v.Int64(); err == nil && iv == 1 {
			result[i] = 1
		}
	}
	return result
}
