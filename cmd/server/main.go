package main

import (
	"time"

	"mailflow/internal/ai"
	"mailflow/internal/analysis"
	"mailflow/internal/analytics"
	"mailflow/internal/cache"
	"mailflow/internal/config"
	"mailflow/internal/database"
	"mailflow/internal/email"
	"mailflow/internal/engine"
	"mailflow/internal/prompts"
	"mailflow/internal/server"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Initialize database connection. The conversation store is the single
	// source of truth, so the server does not start without it.
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	logger.Info().Msg("Database connection established successfully")

	store, err := database.NewConversationStore(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Conversation store initialization failed")
	}

	// AI gateway. An unconfigured gateway is allowed: analysis degrades to
	// fallback suggestions and draft generation reports the hard failure.
	gateway := ai.NewClient(ai.Config{
		OpenAIKey:           cfg.OpenAIKey,
		AzureOpenAIKey:      cfg.AzureOpenAIKey,
		AzureOpenAIEndpoint: cfg.AzureOpenAIEndpoint,
		AzureGPTDeployment:  cfg.AzureGPTDeployment,
		Timeout:             time.Duration(cfg.AITimeoutSeconds) * time.Second,
	}, logger)
	if !gateway.Configured() {
		logger.Warn().Msg("No AI provider configured, analysis will degrade to fallback suggestions")
	}

	analyzer := analysis.NewService(gateway, prompts.NewEngine(nil), logger)
	sender := email.NewService(cfg.SendGridAPIKey, cfg.ReplyFromAddress, cfg.ReplyFromName)

	resolver := engine.NewResolver(store, time.Duration(cfg.FreshnessWindowMinutes)*time.Minute)
	orch := engine.NewOrchestrator(store, resolver, analyzer, sender, logger)
	orch.Subscribe(func(u engine.ThreadUpdate) {
		logger.Info().
			Str("thread_id", u.ThreadID).
			Str("state", string(u.State)).
			Str("email_id", u.EmailID).
			Msg("thread updated")
	})

	policy := analytics.DefaultPolicy()
	policy.RecentEmailLimit = cfg.RecentEmailLimit
	policy.ActiveThreadThreshold = cfg.ActiveThreadThreshold
	policy.CacheTTL = time.Duration(cfg.SummaryCacheTTLMinutes) * time.Minute
	analyticsSvc := analytics.NewService(store, cache.New(), policy)

	// Create and initialize server
	srv := server.New(cfg, db, orch, analyticsSvc, logger)
	srv.Initialize()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}
