package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mailflow/internal/models"
)

// memStore is an in-memory Store used by the engine tests. Each method
// simulates an independent committed operation, like a database would.
type memStore struct {
	mu       sync.Mutex
	threads  map[string]*models.ConversationThread
	messages []models.ConversationMessage
	drafts   map[string]*models.Draft

	failAppend bool
	failCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		threads: make(map[string]*models.ConversationThread),
		drafts:  make(map[string]*models.Draft),
	}
}

func (s *memStore) CreateThread(_ context.Context, t *models.ConversationThread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return fmt.Errorf("simulated create failure")
	}
	if _, exists := s.threads[t.ThreadID]; exists {
		return fmt.Errorf("duplicate thread id: %s", t.ThreadID)
	}
	clone := *t
	s.threads[t.ThreadID] = &clone
	return nil
}

func (s *memStore) ThreadByID(_ context.Context, threadID string) (*models.ConversationThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return nil, nil
	}
	clone := *t
	return &clone, nil
}

func (s *memStore) ThreadBySender(_ context.Context, sender string) (*models.ConversationThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.threads {
		if t.Sender == sender && t.ClosedAt == nil {
			clone := *t
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memStore) RecordEmail(_ context.Context, threadID string, lastEmailDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return fmt.Errorf("thread not found: %s", threadID)
	}
	t.TotalEmails++
	t.LastEmailDate = lastEmailDate
	return nil
}

func (s *memStore) CloseThread(_ context.Context, threadID string, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return fmt.Errorf("thread not found: %s", threadID)
	}
	t.ClosedAt = &closedAt
	return nil
}

func (s *memStore) AppendMessage(_ context.Context, m *models.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppend {
		return fmt.Errorf("simulated append failure")
	}
	if m.SourceEmailID != nil {
		for _, existing := range s.messages {
			if existing.SourceEmailID != nil && *existing.SourceEmailID == *m.SourceEmailID {
				return fmt.Errorf("unique violation: source_email_id %s", *m.SourceEmailID)
			}
		}
	}
	s.messages = append(s.messages, *m)
	return nil
}

func (s *memStore) MessageBySourceEmailID(_ context.Context, emailID string) (*models.ConversationMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.SourceEmailID != nil && *m.SourceEmailID == emailID {
			clone := m
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memStore) MessagesForThread(_ context.Context, threadID string) ([]models.ConversationMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConversationMessage
	for _, m := range s.messages {
		if m.ThreadID == threadID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) SaveDraft(_ context.Context, d *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *d
	s.drafts[d.ID] = &clone
	return nil
}

func (s *memStore) DraftByID(_ context.Context, draftID string) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[draftID]
	if !ok {
		return nil, nil
	}
	clone := *d
	return &clone, nil
}

func (s *memStore) DraftsForThread(_ context.Context, threadID string) ([]models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Draft
	for _, d := range s.drafts {
		if d.ThreadID == threadID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *memStore) UpdateDraftStatus(_ context.Context, draftID string, status models.DraftStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[draftID]
	if !ok {
		return fmt.Errorf("draft not found: %s", draftID)
	}
	d.Status = status
	return nil
}

func (s *memStore) threadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads)
}

func (s *memStore) messagesOfKind(threadID string, kind models.AuthorKind) []models.ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConversationMessage
	for _, m := range s.messages {
		if m.ThreadID == threadID && m.AuthorKind == kind {
			out = append(out, m)
		}
	}
	return out
}
