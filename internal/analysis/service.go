// Package analysis orchestrates AI calls for email categorization,
// summarization and reply draft generation.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mailflow/internal/models"
	"mailflow/internal/prompts"
	"mailflow/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Generator is the gateway capability the service needs: one prompt in, one
// completion out, normalized errors.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service builds prompts via the template engine, calls the gateway and
// parses responses. It keeps a per-session history of generated drafts.
type Service struct {
	gen    Generator
	engine *prompts.Engine
	logger zerolog.Logger

	mu      sync.Mutex
	history []models.Draft
}

// NewService creates an analysis service
func NewService(gen Generator, engine *prompts.Engine, logger zerolog.Logger) *Service {
	return &Service{
		gen:    gen,
		engine: engine,
		logger: logger,
	}
}

// Analyze classifies tone, sentiment, urgency, category and complexity of an
// email and produces a short summary. On gateway failure the returned result
// is still usable, with urgency defaulting to normal, alongside the error.
func (s *Service) Analyze(ctx context.Context, email models.Email) (models.AnalysisResult, error) {
	prompt, err := s.engine.Render(prompts.TemplateAnalyze, emailVars(email))
	if err != nil {
		return ParseAnalysis(""), err
	}

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Str("email_id", email.ID).Msg("analysis call failed")
		return ParseAnalysis(""), err
	}

	return ParseAnalysis(raw), nil
}

// Summarize returns a 2-3 sentence summary of the email
func (s *Service) Summarize(ctx context.Context, email models.Email) (string, error) {
	prompt, err := s.engine.Render(prompts.TemplateSummarize, emailVars(email))
	if err != nil {
		return "", err
	}

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(raw), nil
}

// GenerateDraft produces a single reply candidate for the email. The context
// hint describes the generation intent and is recorded on the draft.
func (s *Service) GenerateDraft(ctx context.Context, threadID string, email models.Email, contextHint string) (models.Draft, error) {
	return s.generateLabeled(ctx, threadID, email, contextHint, contextHint, "")
}

// GenerateVariants issues n independent draft requests with distinguishing
// context labels. Partial failures are acceptable: the method returns
// whatever subset succeeded, and an error only when every request failed.
func (s *Service) GenerateVariants(ctx context.Context, threadID string, email models.Email, n int) ([]models.Draft, error) {
	if n <= 0 {
		n = 1
	}

	drafts := make([]models.Draft, 0, n)
	var lastErr error
	for i := 1; i <= n; i++ {
		label := fmt.Sprintf("Variant %d", i)
		draft, err := s.generateLabeled(ctx, threadID, email, label, label, "")
		if err != nil {
			s.logger.Warn().Err(err).Str("label", label).Msg("draft variant failed")
			lastErr = err
			continue
		}
		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return drafts, nil
}

// GenerateCustomDraft produces a reply following free-text instructions,
// optionally refining an existing draft.
func (s *Service) GenerateCustomDraft(ctx context.Context, threadID string, email models.Email, baseDraft *models.Draft, instructions string) (models.Draft, error) {
	vars := emailVars(email)
	vars["instructions"] = instructions
	if baseDraft != nil {
		vars["base"] = baseDraft.Content
	}

	prompt, err := s.engine.Render(prompts.TemplateCustomDraft, vars)
	if err != nil {
		return models.Draft{}, err
	}

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return models.Draft{}, err
	}

	draft := s.newDraft(threadID, raw, "custom: "+instructions)
	return draft, nil
}

// History returns a copy of the drafts generated during this session
func (s *Service) History() []models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Draft, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Service) generateLabeled(ctx context.Context, threadID string, email models.Email, hint, label, conversationContext string) (models.Draft, error) {
	vars := emailVars(email)
	vars["hint"] = hint
	vars["context"] = conversationContext

	prompt, err := s.engine.Render(prompts.TemplateDraft, vars)
	if err != nil {
		return models.Draft{}, err
	}

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return models.Draft{}, err
	}

	return s.newDraft(threadID, raw, label), nil
}

func (s *Service) newDraft(threadID, content, label string) models.Draft {
	draft := models.Draft{
		ID:           uuid.NewString(),
		ThreadID:     threadID,
		Content:      strings.TrimSpace(content),
		GeneratedAt:  time.Now().UTC(),
		ContextLabel: label,
		Status:       models.DraftEditable,
	}

	s.mu.Lock()
	s.history = append(s.history, draft)
	s.mu.Unlock()

	return draft
}

func emailVars(email models.Email) map[string]string {
	// Replies are drafted in the sender's language
	lang := utils.DetectLanguage(email.Body)
	return map[string]string{
		"from":     email.From,
		"subject":  email.Subject,
		"body":     email.Body,
		"language": utils.GetLanguageInstruction(lang),
	}
}
