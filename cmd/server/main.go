package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yonaimineakio/speakcoach/internal/ai"
	"github.com/yonaimineakio/speakcoach/internal/api"
	"github.com/yonaimineakio/speakcoach/internal/cache"
	"github.com/yonaimineakio/speakcoach/internal/config"
	"github.com/yonaimineakio/speakcoach/internal/db"
	"github.com/yonaimineakio/speakcoach/internal/logger"
	"github.com/yonaimineakio/speakcoach/internal/repository/sqlite"
	"github.com/yonaimineakio/speakcoach/internal/scoring"
	"github.com/yonaimineakio/speakcoach/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("SpeakCoach Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("openai_model=%s", cfg.OpenAIModel)
	log.Debug("ai_timeout=%s", cfg.AITimeout)
	log.Debug("question_cache_size=%d", cfg.QuestionCacheLen)
	log.Debug("question_cache_ttl=%s", cfg.QuestionCacheTTL)
	log.Debug("streak_timezone=%s", cfg.StreakTimezone)
	log.Debug("due_item_limit=%d", cfg.DueItemLimit)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	users := sqlite.NewUserRepository(database.DB)
	scenarios := sqlite.NewScenarioRepository(database.DB)
	sessions := sqlite.NewSessionRepository(database.DB)
	reviews := sqlite.NewReviewItemRepository(database.DB)
	phrases := sqlite.NewSavedPhraseRepository(database.DB)

	// AI collaborators
	client := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.AITimeout)
	fallback := ai.NewFallbackProvider()

	var provider ai.ConversationProvider = ai.NewOpenAIProvider(client)
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, using canned responses")
		provider = fallback
	}
	judge := ai.NewGoalJudge(client)
	ranker := ai.NewPhraseRanker(client)
	questions := ai.NewQuestionGenerator(client)

	loc, err := time.LoadLocation(cfg.StreakTimezone)
	if err != nil {
		log.Error("invalid streak timezone %q: %v", cfg.StreakTimezone, err)
		os.Exit(1)
	}
	streaks := scoring.NewStreakTracker(loc)
	questionCache := cache.NewQuestionCache(cfg.QuestionCacheLen, cfg.QuestionCacheTTL)

	// Services
	userService := services.NewUserService(users, reviews, streaks)
	scenarioService := services.NewScenarioService(scenarios)
	sessionService := services.NewSessionService(sessions, users, scenarios, reviews, provider, fallback, judge, ranker, streaks)
	reviewService := services.NewReviewService(reviews, questions, questionCache, cfg.DueItemLimit)
	savedPhraseService := services.NewSavedPhraseService(phrases)

	srv := &api.Server{
		DB:                 database,
		UserService:        userService,
		ScenarioService:    scenarioService,
		SessionService:     sessionService,
		ReviewService:      reviewService,
		SavedPhraseService: savedPhraseService,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info("received signal %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed: %v", err)
	}

	log.Info("server stopped")
}
