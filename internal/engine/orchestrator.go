// Package engine drives conversation automation: it resolves inbound emails
// to threads, invokes AI analysis, persists results and derives the workflow
// state, guaranteeing at-most-once processing per email.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mailflow/internal/ai"
	"mailflow/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// fallbackSuggestion is recorded when AI analysis is unavailable, so the
// thread always carries a next action.
const fallbackSuggestion = "Analysis unavailable. Review the email and respond manually; a custom reply can be drafted once the AI backend is reachable."

// Analyzer is the analysis capability the orchestrator consumes
type Analyzer interface {
	Analyze(ctx context.Context, email models.Email) (models.AnalysisResult, error)
	GenerateDraft(ctx context.Context, threadID string, email models.Email, contextHint string) (models.Draft, error)
	GenerateVariants(ctx context.Context, threadID string, email models.Email, n int) ([]models.Draft, error)
	GenerateCustomDraft(ctx context.Context, threadID string, email models.Email, baseDraft *models.Draft, instructions string) (models.Draft, error)
}

// ReplySender performs the actual outbound email transmission
type ReplySender interface {
	SendReply(recipient, subject, body string) error
}

// Orchestrator is the top-level driver of the conversation engine
type Orchestrator struct {
	store    Store
	resolver *Resolver
	analyzer Analyzer
	sender   ReplySender
	logger   zerolog.Logger
	locks    *senderLocks
	events   *notifier
	now      func() time.Time
}

// NewOrchestrator wires the engine together
func NewOrchestrator(store Store, resolver *Resolver, analyzer Analyzer, sender ReplySender, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		resolver: resolver,
		analyzer: analyzer,
		sender:   sender,
		logger:   logger,
		locks:    newSenderLocks(),
		events:   &notifier{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers a consumer for thread update events
func (o *Orchestrator) Subscribe(fn func(ThreadUpdate)) {
	o.events.subscribe(fn)
}

// HandleIncomingEmail processes one inbound email event. Filtered emails
// (wrong direction, stale, duplicate) return nil with no side effects.
// Persistence failures abort and surface as ErrPersistenceFailed; AI-layer
// failures degrade to a fallback suggestion and never abort, except that a
// completely unconfigured provider is reported after the email is recorded.
func (o *Orchestrator) HandleIncomingEmail(ctx context.Context, email models.Email) error {
	sender := NormalizeAddress(email.From)
	mu := o.locks.acquire(sender)
	mu.Lock()

	resolution, err := o.resolver.Resolve(ctx, email)
	if err != nil {
		mu.Unlock()
		return err
	}
	if resolution.Skip != SkipNone {
		mu.Unlock()
		o.logger.Debug().
			Str("email_id", email.ID).
			Str("reason", string(resolution.Skip)).
			Msg("email skipped")
		return nil
	}

	thread := resolution.Thread
	inbound := &models.ConversationMessage{
		ID:            uuid.NewString(),
		ThreadID:      thread.ThreadID,
		AuthorKind:    models.AuthorInboundEmail,
		Content:       email.Body,
		CreatedAt:     o.now(),
		SourceEmailID: &email.ID,
	}
	if err := o.store.AppendMessage(ctx, inbound); err != nil {
		mu.Unlock()
		return fmt.Errorf("%w: append inbound message: %v", ErrPersistenceFailed, err)
	}
	if err := o.store.RecordEmail(ctx, thread.ThreadID, email.Date); err != nil {
		mu.Unlock()
		return fmt.Errorf("%w: record email: %v", ErrPersistenceFailed, err)
	}

	// Analysis runs outside the lock: it only reads thread state snapshotted
	// above, and a slow provider must not block other emails from the sender.
	mu.Unlock()

	o.logger.Info().
		Str("email_id", email.ID).
		Str("thread_id", thread.ThreadID).
		Bool("new_thread", resolution.IsNew).
		Msg("email attached to thread")

	suggestion, hardErr := o.analysisSuggestion(ctx, email)
	note := &models.ConversationMessage{
		ID:         uuid.NewString(),
		ThreadID:   thread.ThreadID,
		AuthorKind: models.AuthorAISuggestion,
		Content:    suggestion,
		CreatedAt:  o.now(),
	}
	if err := o.store.AppendMessage(ctx, note); err != nil {
		// The inbound email is already safely recorded; losing the advisory
		// note is not worth failing the whole operation.
		o.logger.Warn().Err(err).Str("thread_id", thread.ThreadID).Msg("failed to persist analysis note")
	}

	o.publishUpdate(ctx, thread.ThreadID, email.ID)
	return hardErr
}

// analysisSuggestion runs AI analysis and serializes the result. Provider
// failures degrade to the fallback suggestion so the thread still has a next
// action; a missing provider configuration additionally surfaces as an error
// since it needs operator attention, not a retry.
func (o *Orchestrator) analysisSuggestion(ctx context.Context, email models.Email) (string, error) {
	result, err := o.analyzer.Analyze(ctx, email)
	if err != nil {
		o.logger.Warn().Err(err).Str("email_id", email.ID).Msg("analysis degraded")
		if errors.Is(err, ai.ErrNoProviderConfigured) {
			return fallbackSuggestion, err
		}
		return fallbackSuggestion, nil
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		return fallbackSuggestion, nil
	}
	return string(serialized), nil
}

// GenerateDraft produces and persists a reply draft for a thread
func (o *Orchestrator) GenerateDraft(ctx context.Context, threadID, contextHint string) (*models.Draft, error) {
	email, err := o.latestInbound(ctx, threadID)
	if err != nil {
		return nil, err
	}

	draft, err := o.analyzer.GenerateDraft(ctx, threadID, email, contextHint)
	if err != nil {
		return nil, err
	}
	if err := o.store.SaveDraft(ctx, &draft); err != nil {
		return nil, fmt.Errorf("%w: save draft: %v", ErrPersistenceFailed, err)
	}

	o.publishUpdate(ctx, threadID, "")
	return &draft, nil
}

// maxVariantBatch caps the number of drafts a single variants request may
// generate, bounding the provider fan-out per call.
const maxVariantBatch = 10

// GenerateVariants produces and persists n independent reply drafts. Partial
// success is returned as-is; only a complete failure is an error.
func (o *Orchestrator) GenerateVariants(ctx context.Context, threadID string, n int) ([]models.Draft, error) {
	if n > maxVariantBatch {
		n = maxVariantBatch
	}
	email, err := o.latestInbound(ctx, threadID)
	if err != nil {
		return nil, err
	}

	drafts, err := o.analyzer.GenerateVariants(ctx, threadID, email, n)
	if err != nil {
		return nil, err
	}
	saved := make([]models.Draft, 0, len(drafts))
	for i := range drafts {
		if err := o.store.SaveDraft(ctx, &drafts[i]); err != nil {
			o.logger.Warn().Err(err).Str("draft_id", drafts[i].ID).Msg("failed to save draft variant")
			continue
		}
		saved = append(saved, drafts[i])
	}

	o.publishUpdate(ctx, threadID, "")
	return saved, nil
}

// GenerateCustomDraft produces a draft following free-text instructions,
// optionally refining an existing draft on the thread
func (o *Orchestrator) GenerateCustomDraft(ctx context.Context, threadID, baseDraftID, instructions string) (*models.Draft, error) {
	email, err := o.latestInbound(ctx, threadID)
	if err != nil {
		return nil, err
	}

	var base *models.Draft
	if baseDraftID != "" {
		base, err = o.store.DraftByID(ctx, baseDraftID)
		if err != nil {
			return nil, fmt.Errorf("%w: draft lookup: %v", ErrPersistenceFailed, err)
		}
		if base == nil {
			return nil, fmt.Errorf("base draft %s: %w", baseDraftID, ErrNotFound)
		}
	}

	draft, err := o.analyzer.GenerateCustomDraft(ctx, threadID, email, base, instructions)
	if err != nil {
		return nil, err
	}
	if err := o.store.SaveDraft(ctx, &draft); err != nil {
		return nil, fmt.Errorf("%w: save draft: %v", ErrPersistenceFailed, err)
	}

	o.publishUpdate(ctx, threadID, "")
	return &draft, nil
}

// SendDraft dispatches an approved draft as an outbound reply. Only a
// successful transmission drives the transition to the sent state.
func (o *Orchestrator) SendDraft(ctx context.Context, threadID, draftID string) error {
	thread, err := o.store.ThreadByID(ctx, threadID)
	if err != nil {
		return fmt.Errorf("%w: thread lookup: %v", ErrPersistenceFailed, err)
	}
	if thread == nil {
		return fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}

	draft, err := o.store.DraftByID(ctx, draftID)
	if err != nil {
		return fmt.Errorf("%w: draft lookup: %v", ErrPersistenceFailed, err)
	}
	if draft == nil || draft.ThreadID != threadID {
		return fmt.Errorf("draft %s: %w", draftID, ErrNotFound)
	}

	subject := thread.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	if err := o.sender.SendReply(thread.Sender, subject, draft.Content); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	if err := o.store.UpdateDraftStatus(ctx, draftID, models.DraftSent); err != nil {
		return fmt.Errorf("%w: mark draft sent: %v", ErrPersistenceFailed, err)
	}

	reply := &models.ConversationMessage{
		ID:         uuid.NewString(),
		ThreadID:   threadID,
		AuthorKind: models.AuthorUser,
		Content:    draft.Content,
		CreatedAt:  o.now(),
	}
	if err := o.store.AppendMessage(ctx, reply); err != nil {
		o.logger.Warn().Err(err).Str("thread_id", threadID).Msg("failed to record sent reply")
	}

	o.publishUpdate(ctx, threadID, "")
	return nil
}

// CloseThread marks a thread as completed by explicit user action
func (o *Orchestrator) CloseThread(ctx context.Context, threadID string) error {
	thread, err := o.store.ThreadByID(ctx, threadID)
	if err != nil {
		return fmt.Errorf("%w: thread lookup: %v", ErrPersistenceFailed, err)
	}
	if thread == nil {
		return fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}

	if err := o.store.CloseThread(ctx, threadID, o.now()); err != nil {
		return fmt.Errorf("%w: close thread: %v", ErrPersistenceFailed, err)
	}

	o.publishUpdate(ctx, threadID, "")
	return nil
}

// GetThread returns a thread with its message log and derived state
func (o *Orchestrator) GetThread(ctx context.Context, threadID string) (*models.ConversationThread, []models.ConversationMessage, models.WorkflowState, error) {
	thread, err := o.store.ThreadByID(ctx, threadID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: thread lookup: %v", ErrPersistenceFailed, err)
	}
	if thread == nil {
		return nil, nil, "", fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}

	messages, err := o.store.MessagesForThread(ctx, threadID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: messages lookup: %v", ErrPersistenceFailed, err)
	}
	drafts, err := o.store.DraftsForThread(ctx, threadID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: drafts lookup: %v", ErrPersistenceFailed, err)
	}

	return thread, messages, models.DeriveWorkflowState(thread, messages, drafts), nil
}

// ListDrafts returns the reply candidates for a thread, newest first
func (o *Orchestrator) ListDrafts(ctx context.Context, threadID string) ([]models.Draft, error) {
	drafts, err := o.store.DraftsForThread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("%w: drafts lookup: %v", ErrPersistenceFailed, err)
	}
	return drafts, nil
}

// latestInbound reconstructs the email the next draft should answer, from
// the thread's most recent inbound message
func (o *Orchestrator) latestInbound(ctx context.Context, threadID string) (models.Email, error) {
	thread, err := o.store.ThreadByID(ctx, threadID)
	if err != nil {
		return models.Email{}, fmt.Errorf("%w: thread lookup: %v", ErrPersistenceFailed, err)
	}
	if thread == nil {
		return models.Email{}, fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}

	messages, err := o.store.MessagesForThread(ctx, threadID)
	if err != nil {
		return models.Email{}, fmt.Errorf("%w: messages lookup: %v", ErrPersistenceFailed, err)
	}

	email := models.Email{
		From:      thread.Sender,
		Subject:   thread.Subject,
		Date:      thread.LastEmailDate,
		Direction: models.DirectionReceived,
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].AuthorKind == models.AuthorInboundEmail {
			email.Body = messages[i].Content
			if messages[i].SourceEmailID != nil {
				email.ID = *messages[i].SourceEmailID
			}
			break
		}
	}

	return email, nil
}

// publishUpdate derives the thread's current state and emits an event
func (o *Orchestrator) publishUpdate(ctx context.Context, threadID, emailID string) {
	thread, err := o.store.ThreadByID(ctx, threadID)
	if err != nil || thread == nil {
		return
	}
	messages, err := o.store.MessagesForThread(ctx, threadID)
	if err != nil {
		return
	}
	drafts, err := o.store.DraftsForThread(ctx, threadID)
	if err != nil {
		return
	}

	o.events.publish(ThreadUpdate{
		ThreadID: threadID,
		State:    models.DeriveWorkflowState(thread, messages, drafts),
		EmailID:  emailID,
	})
}
