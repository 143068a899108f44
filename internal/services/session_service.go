package services

import (
	"context"
	"time"

	"github.com/yonaimineakio/speakcoach/internal/ai"
	"github.com/yonaimineakio/speakcoach/internal/errors"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/models"
	"github.com/yonaimineakio/speakcoach/internal/repository"
	"github.com/yonaimineakio/speakcoach/internal/scoring"
)

// SessionService handles conversation session business logic
type SessionService interface {
	Start(ctx context.Context, userID string, req models.StartSessionRequest) (*models.SessionStartResult, error)
	ProcessTurn(ctx context.Context, userID string, sessionID int64, userInput string) (*models.TurnResult, error)
	Extend(ctx context.Context, userID string, sessionID int64) (*models.SessionStatus, error)
	End(ctx context.Context, userID string, sessionID int64) (*models.SessionEndSummary, error)
	Status(ctx context.Context, userID string, sessionID int64) (*models.SessionStatus, error)
}

type sessionService struct {
	sessions  repository.SessionRepository
	users     repository.UserRepository
	scenarios repository.ScenarioRepository
	reviews   repository.ReviewItemRepository
	provider  ai.ConversationProvider
	fallback  ai.ConversationProvider
	judge     GoalJudge
	ranker    PhraseRanker
	streaks   *scoring.StreakTracker
	locks     *keyedMutex
	now       func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	scenarios repository.ScenarioRepository,
	reviews repository.ReviewItemRepository,
	provider ai.ConversationProvider,
	fallback ai.ConversationProvider,
	judge GoalJudge,
	ranker PhraseRanker,
	streaks *scoring.StreakTracker,
) SessionService {
	return &sessionService{
		sessions:  sessions,
		users:     users,
		scenarios: scenarios,
		reviews:   reviews,
		provider:  provider,
		fallback:  fallback,
		judge:     judge,
		ranker:    ranker,
		streaks:   streaks,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// scenarioInfo is the resolved scenario data a session needs, regardless of
// whether it came from a built-in or a custom scenario.
type scenarioInfo struct {
	Name         string
	Category     string
	Goals        []string
	OpeningLine  string
	SystemPrompt string
}

func (s *sessionService) resolveScenario(ctx context.Context, userID string, scenarioID, customScenarioID *int64) (*scenarioInfo, error) {
	switch {
	case scenarioID != nil && customScenarioID != nil:
		return nil, errors.NewValidationError("scenario", "provide either scenario_id or custom_scenario_id, not both")
	case scenarioID == nil && customScenarioID == nil:
		return nil, errors.NewValidationError("scenario", "scenario_id or custom_scenario_id is required")
	case scenarioID != nil:
		scenario, err := s.scenarios.Get(ctx, *scenarioID)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if scenario == nil || !scenario.IsActive {
			return nil, errors.NewNotFoundError("scenario", *scenarioID)
		}
		return &scenarioInfo{
			Name:        scenario.Name,
			Category:    scenario.Category,
			Goals:       scenario.Goals,
			OpeningLine: scenario.OpeningLine,
		}, nil
	default:
		custom, err := s.scenarios.GetCustom(ctx, *customScenarioID)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if custom == nil || !custom.IsActive || custom.UserID != userID {
			return nil, errors.NewNotFoundError("custom scenario", *customScenarioID)
		}
		return &scenarioInfo{
			Name:         custom.Title,
			Category:     models.CategoryCustom,
			Goals:        custom.Goals,
			OpeningLine:  custom.OpeningLine,
			SystemPrompt: custom.SystemPrompt,
		}, nil
	}
}

func (s *sessionService) Start(ctx context.Context, userID string, req models.StartSessionRequest) (*models.SessionStartResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting session: user_id=%s", userID)

	if req.RoundTarget < models.MinRoundTarget || req.RoundTarget > models.MaxRoundTarget {
		return nil, errors.NewValidationError("round_target", "must be between 4 and 12")
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyIntermediate
	}
	if !validDifficulty(difficulty) {
		return nil, errors.NewValidationError("difficulty", "must be beginner, intermediate or advanced")
	}
	mode := req.Mode
	if mode == "" {
		mode = models.ModeText
	}
	if mode != models.ModeText && mode != models.ModeVoice {
		return nil, errors.NewValidationError("mode", "must be text or voice")
	}

	info, err := s.resolveScenario(ctx, userID, req.ScenarioID, req.CustomScenarioID)
	if err != nil {
		return nil, err
	}

	session := models.Session{
		UserID:           userID,
		ScenarioID:       req.ScenarioID,
		CustomScenarioID: req.CustomScenarioID,
		RoundTarget:      req.RoundTarget,
		Difficulty:       difficulty,
		Mode:             mode,
		GoalProgress:     make([]int, len(info.Goals)),
		StartedAt:        s.now(),
	}
	id, err := s.sessions.Create(ctx, session)
	if err != nil {
		log.Error("failed to create session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("session started: id=%d, user_id=%s, scenario=%s", id, userID, info.Name)
	return &models.SessionStartResult{
		SessionID:    id,
		ScenarioName: info.Name,
		Category:     info.Category,
		OpeningLine:  info.OpeningLine,
		Goals:        info.Goals,
		RoundTarget:  req.RoundTarget,
		Difficulty:   difficulty,
		Mode:         mode,
	}, nil
}

func (s *sessionService) ProcessTurn(ctx context.Context, userID string, sessionID int64, userInput string) (*models.TurnResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("processing turn: session_id=%d, user_id=%s", sessionID, userID)

	if userInput == "" {
		return nil, errors.NewValidationError("user_input", "must not be empty")
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, errors.NewValidationError("session", "already ended")
	}
	if session.CompletedRounds >= session.RoundTarget {
		return nil, errors.NewValidationError("session", "round limit reached")
	}

	info, err := s.resolveScenario(ctx, userID, session.ScenarioID, session.CustomScenarioID)
	if err != nil {
		return nil, err
	}

	recent, err := s.sessions.RecentRounds(ctx, sessionID, models.ContextWindowLen)
	if err != nil {
		log.Error("failed to load recent rounds: %v", err)
		return nil, errors.NewInternalError(err)
	}
	contextWindow := make([]ai.Turn, 0, len(recent))
	for _, round := range recent {
		contextWindow = append(contextWindow, ai.Turn{UserInput: round.UserInput, AIReply: round.AIReply})
	}

	roundIndex := session.CompletedRounds + 1
	resp, err := s.generate(ctx, ai.Request{
		UserInput:          userInput,
		Difficulty:         session.Difficulty,
		ScenarioCategory:   info.Category,
		RoundIndex:         roundIndex,
		Context:            contextWindow,
		ScenarioID:         session.ScenarioID,
		CustomSystemPrompt: info.SystemPrompt,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", userID)
	}
	points := scoring.RoundPoints(session.Difficulty, user.CurrentStreak)

	round := models.SessionRound{
		SessionID:        sessionID,
		RoundIndex:       roundIndex,
		UserInput:        userInput,
		AIReply:          resp.Reply,
		Feedback:         resp.Feedback,
		ImprovedSentence: resp.ImprovedSentence,
		Tags:             resp.Tags,
		CreatedAt:        s.now(),
	}
	if err := s.sessions.RecordTurn(ctx, round, userID, points); err != nil {
		log.Error("failed to record turn: %v", err)
		return nil, errors.NewInternalError(err)
	}
	session.CompletedRounds = roundIndex

	history, err := s.sessions.Rounds(ctx, sessionID)
	if err != nil {
		log.Error("failed to load round history: %v", err)
		return nil, errors.NewInternalError(err)
	}

	progress := s.updateGoalProgress(ctx, session, info.Goals, history)
	suggestEnd, reason := endSignals(session, progress, resp.ShouldEndSession)

	log.Info("turn recorded: session_id=%d, round=%d, provider=%s, points=%d",
		sessionID, roundIndex, resp.Provider, points)

	return &models.TurnResult{
		RoundIndex:       roundIndex,
		AIReply:          resp.Reply,
		Feedback:         resp.Feedback,
		ImprovedSentence: resp.ImprovedSentence,
		Tags:             resp.Tags,
		Provider:         resp.Provider,
		LatencyMS:        resp.LatencyMS,
		PointsAwarded:    points,
		GoalProgress:     goalStatuses(info.Goals, progress),
		SuggestEnd:       suggestEnd,
		EndReason:        reason,
		Status:           sessionStatus(session),
	}, nil
}

// generate calls the primary provider and retries exactly once through the
// deterministic fallback on a transport failure. Timeouts propagate so the
// caller can offer retry, with no round recorded.
func (s *sessionService) generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	log := logger.FromContext(ctx)

	resp, err := s.provider.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}
	if errors.IsTransportTimeout(err) {
		return nil, err
	}
	if errors.IsTransportFailure(err) {
		log.Warn("provider %s failed, retrying via fallback: %v", s.provider.Name(), err)
		return s.fallback.Generate(ctx, req)
	}
	return nil, err
}

// updateGoalProgress re-judges every goal over the full history and merges the
// fresh flags into the stored snapshot. A goal, once achieved, stays achieved
// even if the judge stops confirming it.
func (s *sessionService) updateGoalProgress(ctx context.Context, session *models.Session, goals []string, history []models.SessionRound) []int {
	log := logger.FromContext(ctx)

	if len(goals) == 0 {
		return nil
	}

	fresh := s.judge.Evaluate(ctx, goals, history)
	merged := make([]int, len(goals))
	changed := false
	for i := range merged {
		if i < len(session.GoalProgress) && session.GoalProgress[i] == 1 {
			merged[i] = 1
		}
		if i < len(fresh) && fresh[i] == 1 {
			merged[i] = 1
		}
		if i >= len(session.GoalProgress) || merged[i] != session.GoalProgress[i] {
			changed = true
		}
	}

	if changed {
		if err := s.sessions.UpdateGoalProgress(ctx, session.ID, merged); err != nil {
			log.Warn("failed to persist goal progress: %v", err)
		}
	}
	session.GoalProgress = merged
	return merged
}

// endSignals combines the three independent end conditions into one flag and
// a priority-ordered reason. The session is never ended here; only an
// explicit End call transitions it.
func endSignals(session *models.Session, progress []int, providerEndIntent bool) (bool, models.EndReason) {
	goalsDone := len(progress) > 0
	for _, flag := range progress {
		if flag != 1 {
			goalsDone = false
			break
		}
	}
	roundLimit := session.CompletedRounds >= session.RoundTarget

	switch {
	case providerEndIntent:
		return true, models.EndReasonUserIntent
	case goalsDone:
		return true, models.EndReasonGoalsCompleted
	case roundLimit:
		return true, models.EndReasonRoundLimit
	default:
		return false, models.EndReasonNone
	}
}

func (s *sessionService) Extend(ctx context.Context, userID string, sessionID int64) (*models.SessionStatus, error) {
	log := logger.FromContext(ctx)
	log.Debug("extending session: session_id=%d, user_id=%s", sessionID, userID)

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, errors.NewValidationError("session", "already ended")
	}
	if session.ExtensionCount >= models.MaxExtensions {
		return nil, errors.NewValidationError("session", "maximum extensions reached")
	}

	session.RoundTarget += models.ExtensionRounds
	session.ExtensionCount++
	if err := s.sessions.UpdateExtension(ctx, sessionID, session.RoundTarget, session.ExtensionCount); err != nil {
		log.Error("failed to extend session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("session extended: id=%d, round_target=%d, extensions=%d",
		sessionID, session.RoundTarget, session.ExtensionCount)
	status := sessionStatus(session)
	return &status, nil
}

func (s *sessionService) End(ctx context.Context, userID string, sessionID int64) (*models.SessionEndSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("ending session: session_id=%d, user_id=%s", sessionID, userID)

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	info, err := s.resolveScenario(ctx, userID, session.ScenarioID, session.CustomScenarioID)
	if err != nil {
		return nil, err
	}

	if !session.IsActive() {
		return s.recomputeSummary(ctx, session, info)
	}

	rounds, err := s.sessions.Rounds(ctx, sessionID)
	if err != nil {
		log.Error("failed to load rounds: %v", err)
		return nil, errors.NewInternalError(err)
	}

	phrases := s.selectTopPhrases(ctx, rounds)

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", userID)
	}

	now := s.now()
	streak := s.streaks.Update(user.CurrentStreak, user.LongestStreak, user.LastActivityDate, now)

	bonus := 0
	if session.CompletedRounds >= session.RoundTarget {
		bonus = scoring.SessionCompletionPoints(session.Difficulty, streak.Current)
	}

	dueAt := now.Add(24 * time.Hour)
	items := make([]models.ReviewItem, 0, len(phrases))
	for _, phrase := range phrases {
		roundIdx := phrase.RoundIndex
		score := phrase.Score
		items = append(items, models.ReviewItem{
			UserID:          userID,
			Phrase:          phrase.Phrase,
			Explanation:     phrase.Explanation,
			DueAt:           dueAt,
			SourceSessionID: &sessionID,
			SourceRoundIdx:  &roundIdx,
			SelectionReason: phrase.Reason,
			SelectionScore:  &score,
		})
	}

	err = s.sessions.Finish(ctx, repository.SessionFinish{
		SessionID:   sessionID,
		UserID:      userID,
		EndedAt:     now,
		ReviewItems: items,
		BonusPoints: bonus,
		Streak: repository.StreakUpdate{
			Current:      streak.Current,
			Longest:      streak.Longest,
			LastActivity: now,
		},
	})
	if err != nil {
		log.Error("failed to finish session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	var nextReview *time.Time
	if len(items) > 0 {
		nextReview = &dueAt
	} else if latest, err := s.reviews.LatestDueAt(ctx, userID); err == nil {
		nextReview = latest
	}

	log.Info("session ended: id=%d, rounds=%d, phrases=%d, bonus=%d",
		sessionID, session.CompletedRounds, len(phrases), bonus)

	return &models.SessionEndSummary{
		SessionID:       sessionID,
		CompletedRounds: session.CompletedRounds,
		TopPhrases:      phrases,
		NextReviewAt:    nextReview,
		GoalProgress:    goalStatuses(info.Goals, session.GoalProgress),
		BonusPoints:     bonus,
		ScenarioName:    info.Name,
		Difficulty:      session.Difficulty,
		Mode:            session.Mode,
	}, nil
}

// recomputeSummary rebuilds the end summary for an already-ended session from
// the persisted review items. Nothing is mutated and no points are re-awarded.
func (s *sessionService) recomputeSummary(ctx context.Context, session *models.Session, info *scenarioInfo) (*models.SessionEndSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("session already ended, recomputing summary: id=%d", session.ID)

	items, err := s.reviews.BySourceSession(ctx, session.ID)
	if err != nil {
		log.Error("failed to load review items: %v", err)
		return nil, errors.NewInternalError(err)
	}

	phrases := make([]models.SelectedPhrase, 0, len(items))
	var nextReview *time.Time
	for _, item := range items {
		roundIdx := 0
		if item.SourceRoundIdx != nil {
			roundIdx = *item.SourceRoundIdx
		}
		score := 0
		if item.SelectionScore != nil {
			score = *item.SelectionScore
		}
		phrases = append(phrases, models.SelectedPhrase{
			RoundIndex:  roundIdx,
			Phrase:      item.Phrase,
			Explanation: item.Explanation,
			Reason:      item.SelectionReason,
			Score:       score,
		})
		due := item.DueAt
		if nextReview == nil || due.After(*nextReview) {
			nextReview = &due
		}
	}

	return &models.SessionEndSummary{
		SessionID:       session.ID,
		CompletedRounds: session.CompletedRounds,
		TopPhrases:      phrases,
		NextReviewAt:    nextReview,
		GoalProgress:    goalStatuses(info.Goals, session.GoalProgress),
		BonusPoints:     0,
		ScenarioName:    info.Name,
		Difficulty:      session.Difficulty,
		Mode:            session.Mode,
	}, nil
}

// selectTopPhrases delegates to the ranker and falls back deterministically to
// the most recent rounds' improved sentences when ranking fails.
func (s *sessionService) selectTopPhrases(ctx context.Context, rounds []models.SessionRound) []models.SelectedPhrase {
	log := logger.FromContext(ctx)

	phrases, err := s.ranker.Rank(ctx, rounds)
	if err == nil {
		return phrases
	}
	log.Warn("phrase ranking failed, falling back to latest rounds: %v", err)

	start := len(rounds) - 3
	if start < 0 {
		start = 0
	}
	fallback := make([]models.SelectedPhrase, 0, 3)
	for _, round := range rounds[start:] {
		if round.ImprovedSentence == "" {
			continue
		}
		fallback = append(fallback, models.SelectedPhrase{
			RoundIndex:  round.RoundIndex,
			Phrase:      round.ImprovedSentence,
			Explanation: round.Feedback,
			Reason:      "fallback_latest_rounds",
			Score:       0,
		})
	}
	return fallback
}

func (s *sessionService) Status(ctx context.Context, userID string, sessionID int64) (*models.SessionStatus, error) {
	session, err := s.ownedSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	status := sessionStatus(session)
	return &status, nil
}

func (s *sessionService) ownedSession(ctx context.Context, sessionID int64, userID string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if session == nil || session.UserID != userID {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return session, nil
}

func sessionStatus(session *models.Session) models.SessionStatus {
	offered := session.CompletedRounds >= session.RoundTarget
	return models.SessionStatus{
		SessionID:        session.ID,
		ScenarioID:       session.ScenarioID,
		CustomScenarioID: session.CustomScenarioID,
		RoundTarget:      session.RoundTarget,
		CompletedRounds:  session.CompletedRounds,
		Difficulty:       session.Difficulty,
		Mode:             session.Mode,
		ExtensionCount:   session.ExtensionCount,
		IsActive:         session.IsActive(),
		ExtensionOffered: offered,
		CanExtend:        offered && session.ExtensionCount < models.MaxExtensions && session.IsActive(),
	}
}

func goalStatuses(goals []string, progress []int) []models.GoalStatus {
	statuses := make([]models.GoalStatus, len(goals))
	for i, goal := range goals {
		achieved := i < len(progress) && progress[i] == 1
		statuses[i] = models.GoalStatus{Goal: goal, Achieved: achieved}
	}
	return statuses
}

func validDifficulty(d string) bool {
	return d == models.DifficultyBeginner || d == models.DifficultyIntermediate || d == models.DifficultyAdvanced
}
