// Package database implements the conversation store: threads, messages and
// drafts keyed by id/threadId, with the sender and source-email lookups the
// deduplication path depends on.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mailflow/internal/models"

	"github.com/jmoiron/sqlx"
)

// ConversationStore persists conversation threads, messages and drafts
type ConversationStore struct {
	db *sqlx.DB
}

// NewConversationStore creates the store and bootstraps its tables
func NewConversationStore(db *sqlx.DB) (*ConversationStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required for conversation store")
	}

	store := &ConversationStore{db: db}
	if err := store.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create conversation tables: %w", err)
	}

	return store, nil
}

// createTables creates the conversation tables in the database
func (s *ConversationStore) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS conversation_threads (
			thread_id VARCHAR(512) PRIMARY KEY,
			sender VARCHAR(320) NOT NULL,
			subject TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_email_date TIMESTAMP NOT NULL,
			total_emails INT DEFAULT 0,
			closed_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_threads_sender ON conversation_threads(sender)`,
		`CREATE TABLE IF NOT EXISTS conversation_messages (
			id VARCHAR(36) PRIMARY KEY,
			thread_id VARCHAR(512) NOT NULL,
			author_kind VARCHAR(20) NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			source_email_id VARCHAR(255) UNIQUE,
			FOREIGN KEY (thread_id) REFERENCES conversation_threads(thread_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_thread_id ON conversation_messages(thread_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON conversation_messages(created_at)`,
		`CREATE TABLE IF NOT EXISTS reply_drafts (
			id VARCHAR(36) PRIMARY KEY,
			thread_id VARCHAR(512) NOT NULL,
			content TEXT NOT NULL,
			generated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			context_label TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'editable',
			FOREIGN KEY (thread_id) REFERENCES conversation_threads(thread_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_thread_id ON reply_drafts(thread_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			// Ignore "already exists" errors
			continue
		}
	}

	return nil
}

// CreateThread inserts a new conversation thread
func (s *ConversationStore) CreateThread(ctx context.Context, t *models.ConversationThread) error {
	query := `
		INSERT INTO conversation_threads (thread_id, sender, subject, created_at, last_email_date, total_emails)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query, t.ThreadID, t.Sender, t.Subject, t.CreatedAt, t.LastEmailDate, t.TotalEmails)
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}
	return nil
}

// ThreadByID retrieves a thread by its identifier, nil when absent
func (s *ConversationStore) ThreadByID(ctx context.Context, threadID string) (*models.ConversationThread, error) {
	var t models.ConversationThread
	query := `SELECT thread_id, sender, subject, created_at, last_email_date, total_emails, closed_at
		FROM conversation_threads WHERE thread_id = $1`
	err := s.db.GetContext(ctx, &t, query, threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return &t, nil
}

// ThreadBySender retrieves the open thread for a sender address, nil when
// absent. At most one non-closed thread exists per sender.
func (s *ConversationStore) ThreadBySender(ctx context.Context, sender string) (*models.ConversationThread, error) {
	var t models.ConversationThread
	query := `SELECT thread_id, sender, subject, created_at, last_email_date, total_emails, closed_at
		FROM conversation_threads WHERE sender = $1 AND closed_at IS NULL
		ORDER BY created_at DESC LIMIT 1`
	err := s.db.GetContext(ctx, &t, query, sender)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread by sender: %w", err)
	}
	return &t, nil
}

// RecordEmail bumps the thread's email counter and last activity timestamp
func (s *ConversationStore) RecordEmail(ctx context.Context, threadID string, lastEmailDate time.Time) error {
	query := `
		UPDATE conversation_threads
		SET total_emails = total_emails + 1, last_email_date = $1
		WHERE thread_id = $2
	`
	_, err := s.db.ExecContext(ctx, query, lastEmailDate, threadID)
	if err != nil {
		return fmt.Errorf("failed to record email on thread: %w", err)
	}
	return nil
}

// CloseThread marks a thread as explicitly closed by the user
func (s *ConversationStore) CloseThread(ctx context.Context, threadID string, closedAt time.Time) error {
	query := `UPDATE conversation_threads SET closed_at = $1 WHERE thread_id = $2`
	_, err := s.db.ExecContext(ctx, query, closedAt, threadID)
	if err != nil {
		return fmt.Errorf("failed to close thread: %w", err)
	}
	return nil
}

// AppendMessage adds a message to a thread's log
func (s *ConversationStore) AppendMessage(ctx context.Context, m *models.ConversationMessage) error {
	query := `
		INSERT INTO conversation_messages (id, thread_id, author_kind, content, created_at, source_email_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query, m.ID, m.ThreadID, m.AuthorKind, m.Content, m.CreatedAt, m.SourceEmailID)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// MessageBySourceEmailID finds the message that already references an email
// id, nil when none does. This is the idempotence guard lookup.
func (s *ConversationStore) MessageBySourceEmailID(ctx context.Context, emailID string) (*models.ConversationMessage, error) {
	var m models.ConversationMessage
	query := `SELECT id, thread_id, author_kind, content, created_at, source_email_id
		FROM conversation_messages WHERE source_email_id = $1`
	err := s.db.GetContext(ctx, &m, query, emailID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up message by source email: %w", err)
	}
	return &m, nil
}

// MessagesForThread returns a thread's messages in chronological order
func (s *ConversationStore) MessagesForThread(ctx context.Context, threadID string) ([]models.ConversationMessage, error) {
	var messages []models.ConversationMessage
	query := `SELECT id, thread_id, author_kind, content, created_at, source_email_id
		FROM conversation_messages WHERE thread_id = $1 ORDER BY created_at ASC`
	if err := s.db.SelectContext(ctx, &messages, query, threadID); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	if messages == nil {
		messages = []models.ConversationMessage{}
	}
	return messages, nil
}

// RecentInboundBySender returns the most recent inbound-email messages across
// the sender's threads, newest first. Used by thread analytics.
func (s *ConversationStore) RecentInboundBySender(ctx context.Context, sender string, limit int) ([]models.ConversationMessage, error) {
	var messages []models.ConversationMessage
	query := `
		SELECT m.id, m.thread_id, m.author_kind, m.content, m.created_at, m.source_email_id
		FROM conversation_messages m
		JOIN conversation_threads t ON t.thread_id = m.thread_id
		WHERE t.sender = $1 AND m.author_kind = $2
		ORDER BY m.created_at DESC
		LIMIT $3
	`
	err := s.db.SelectContext(ctx, &messages, query, sender, models.AuthorInboundEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	if messages == nil {
		messages = []models.ConversationMessage{}
	}
	return messages, nil
}

// SaveDraft stores a generated reply candidate
func (s *ConversationStore) SaveDraft(ctx context.Context, d *models.Draft) error {
	query := `
		INSERT INTO reply_drafts (id, thread_id, content, generated_at, context_label, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query, d.ID, d.ThreadID, d.Content, d.GeneratedAt, d.ContextLabel, d.Status)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// DraftByID retrieves a draft, nil when absent
func (s *ConversationStore) DraftByID(ctx context.Context, draftID string) (*models.Draft, error) {
	var d models.Draft
	query := `SELECT id, thread_id, content, generated_at, context_label, status
		FROM reply_drafts WHERE id = $1`
	err := s.db.GetContext(ctx, &d, query, draftID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &d, nil
}

// DraftsForThread returns a thread's drafts, newest first
func (s *ConversationStore) DraftsForThread(ctx context.Context, threadID string) ([]models.Draft, error) {
	var drafts []models.Draft
	query := `SELECT id, thread_id, content, generated_at, context_label, status
		FROM reply_drafts WHERE thread_id = $1 ORDER BY generated_at DESC`
	if err := s.db.SelectContext(ctx, &drafts, query, threadID); err != nil {
		return nil, fmt.Errorf("failed to get drafts: %w", err)
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return drafts, nil
}

// UpdateDraftStatus transitions a draft between editable, dismissed and sent
func (s *ConversationStore) UpdateDraftStatus(ctx context.Context, draftID string, status models.DraftStatus) error {
	query := `UPDATE reply_drafts SET status = $1 WHERE id = $2`
	result, err := s.db.ExecContext(ctx, query, status, draftID)
	if err != nil {
		return fmt.Errorf("failed to update draft status: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("draft not found: %s", draftID)
	}
	return nil
}
