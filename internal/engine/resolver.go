package engine

import (
	"context"
	"fmt"
	"time"

	"mailflow/internal/models"
)

// SkipReason explains why an email was filtered out before any state change.
// Skips are expected behavior, not failures.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipNotReceived SkipReason = "not-received"
	SkipStale       SkipReason = "stale"
	SkipDuplicate   SkipReason = "duplicate"
)

// Resolution is the outcome of mapping an email to a conversation thread
type Resolution struct {
	Thread *models.ConversationThread
	IsNew  bool
	Skip   SkipReason
}

// Resolver maps inbound emails to conversation threads and guarantees each
// email is processed at most once.
type Resolver struct {
	store     Store
	freshness time.Duration
	now       func() time.Time
}

// NewResolver creates a resolver with the given staleness window
func NewResolver(store Store, freshness time.Duration) *Resolver {
	if freshness <= 0 {
		freshness = time.Hour
	}
	return &Resolver{
		store:     store,
		freshness: freshness,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Resolve runs the qualification checks in order: direction, freshness,
// duplicate delivery, then thread lookup or creation. The first three are
// cheap side-effect-free rejections; only the final step mutates state and
// the caller must hold the per-sender lock across it.
func (r *Resolver) Resolve(ctx context.Context, email models.Email) (Resolution, error) {
	if email.Direction != models.DirectionReceived {
		return Resolution{Skip: SkipNotReceived}, nil
	}

	if r.now().Sub(email.Date) > r.freshness {
		return Resolution{Skip: SkipStale}, nil
	}

	existing, err := r.store.MessageBySourceEmailID(ctx, email.ID)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: dedup lookup: %v", ErrPersistenceFailed, err)
	}
	if existing != nil {
		return Resolution{Skip: SkipDuplicate}, nil
	}

	sender := NormalizeAddress(email.From)
	thread, err := r.store.ThreadBySender(ctx, sender)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: thread lookup: %v", ErrPersistenceFailed, err)
	}
	if thread != nil {
		return Resolution{Thread: thread}, nil
	}

	threadID, err := r.availableThreadID(ctx, ThreadKey(email.From, email.Subject))
	if err != nil {
		return Resolution{}, err
	}

	now := r.now()
	thread = &models.ConversationThread{
		ThreadID:      threadID,
		Sender:        sender,
		Subject:       email.Subject,
		CreatedAt:     now,
		LastEmailDate: email.Date,
		TotalEmails:   0,
	}
	if err := r.store.CreateThread(ctx, thread); err != nil {
		return Resolution{}, fmt.Errorf("%w: thread creation: %v", ErrPersistenceFailed, err)
	}

	return Resolution{Thread: thread, IsNew: true}, nil
}

// availableThreadID disambiguates the deterministic key when it is already
// taken by a closed thread of the same exchange, so closing a thread never
// blocks a later email from opening a fresh one. Open threads are resolved
// by sender lookup before creation, so a taken key here is always a closed
// thread's.
func (r *Resolver) availableThreadID(ctx context.Context, key string) (string, error) {
	threadID := key
	for i := 1; ; i++ {
		existing, err := r.store.ThreadByID(ctx, threadID)
		if err != nil {
			return "", fmt.Errorf("%w: thread id lookup: %v", ErrPersistenceFailed, err)
		}
		if existing == nil {
			return threadID, nil
		}
		threadID = fmt.Sprintf("%s_%d", key, i)
	}
}
