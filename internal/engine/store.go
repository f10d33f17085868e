package engine

import (
	"context"
	"errors"
	"time"

	"mailflow/internal/models"
)

// ErrPersistenceFailed marks store failures that abort processing. The email
// event is considered unprocessed and the source is expected to redeliver.
var ErrPersistenceFailed = errors.New("conversation store operation failed")

// ErrNotFound is returned by engine queries for unknown threads or drafts
var ErrNotFound = errors.New("not found")

// Store is the persistence capability the engine needs. Implemented by
// database.ConversationStore; tests substitute an in-memory fake.
type Store interface {
	CreateThread(ctx context.Context, t *models.ConversationThread) error
	ThreadByID(ctx context.Context, threadID string) (*models.ConversationThread, error)
	ThreadBySender(ctx context.Context, sender string) (*models.ConversationThread, error)
	RecordEmail(ctx context.Context, threadID string, lastEmailDate time.Time) error
	CloseThread(ctx context.Context, threadID string, closedAt time.Time) error

	AppendMessage(ctx context.Context, m *models.ConversationMessage) error
	MessageBySourceEmailID(ctx context.Context, emailID string) (*models.ConversationMessage, error)
	MessagesForThread(ctx context.Context, threadID string) ([]models.ConversationMessage, error)

	SaveDraft(ctx context.Context, d *models.Draft) error
	DraftByID(ctx context.Context, draftID string) (*models.Draft, error)
	DraftsForThread(ctx context.Context, threadID string) ([]models.Draft, error)
	UpdateDraftStatus(ctx context.Context, draftID string, status models.DraftStatus) error
}
