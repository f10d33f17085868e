// Package analytics aggregates recent same-sender emails into a
// conversation-level tone/urgency/suggested-response summary.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mailflow/internal/cache"
	"mailflow/internal/models"
	"mailflow/internal/utils"
)

// ErrThreadNotFound is returned when the requested thread does not exist
var ErrThreadNotFound = errors.New("thread not found")

// Keyword categories for the tone scan. First matching category wins.
var (
	urgentKeywords = []string{
		"urgent", "urgente", "asap", "immediately", "deadline", "scadenza",
		"overdue", "entro oggi", "right away", "critical",
	}
	formalKeywords = []string{
		"dear", "gentile", "regards", "sincerely", "cordiali saluti",
		"to whom it may concern", "yours faithfully", "distinti saluti",
	}
	informalKeywords = []string{
		"hey", "ciao", "hi there", "thanks!", "cheers", "btw", "fyi",
	}
)

// Policy controls the analytics heuristics; defaults match Default()
type Policy struct {
	RecentEmailLimit      int           // emails pulled into the scan window
	DigestEmails          int           // emails concatenated into the context digest
	ActiveThreadThreshold int           // above this email count a reply is suggested
	BusyThreadThreshold   int           // above this email count urgency is bumped to medium
	CacheTTL              time.Duration // thread summary cache lifetime
}

// DefaultPolicy returns the documented heuristic defaults
func DefaultPolicy() Policy {
	return Policy{
		RecentEmailLimit:      10,
		DigestEmails:          3,
		ActiveThreadThreshold: 3,
		BusyThreadThreshold:   5,
		CacheTTL:              5 * time.Minute,
	}
}

// Store is the read access the analytics service needs. Reads go against the
// latest committed snapshot without locking; slightly stale counters are an
// accepted tradeoff since analytics are advisory.
type Store interface {
	ThreadByID(ctx context.Context, threadID string) (*models.ConversationThread, error)
	RecentInboundBySender(ctx context.Context, sender string, limit int) ([]models.ConversationMessage, error)
}

// Service computes thread summaries
type Service struct {
	store  Store
	cache  *cache.Cache
	policy Policy
}

// NewService creates the analytics service
func NewService(store Store, summaryCache *cache.Cache, policy Policy) *Service {
	if policy.RecentEmailLimit <= 0 {
		policy = DefaultPolicy()
	}
	return &Service{
		store:  store,
		cache:  summaryCache,
		policy: policy,
	}
}

// AnalyzeThread summarizes the recent exchange with the thread's sender:
// conversation tone, urgency, whether a reply is suggested, and a compact
// context digest for prompt reuse.
func (s *Service) AnalyzeThread(ctx context.Context, threadID string) (*models.ThreadSummary, error) {
	cacheKey := "thread_summary_" + threadID
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey); found {
			if summary, ok := cached.(*models.ThreadSummary); ok {
				return summary, nil
			}
		}
	}

	thread, err := s.store.ThreadByID(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	if thread == nil {
		return nil, fmt.Errorf("%w: %s", ErrThreadNotFound, threadID)
	}

	recent, err := s.store.RecentInboundBySender(ctx, thread.Sender, s.policy.RecentEmailLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent emails: %w", err)
	}

	emailCount := len(recent)
	corpus := buildCorpus(thread.Subject, recent)
	tokens := utils.BuildTokenSet(corpus)

	summary := &models.ThreadSummary{
		ThreadID:              threadID,
		TotalEmails:           thread.TotalEmails,
		ConversationTone:      scanTone(corpus, tokens),
		Urgency:               s.scanUrgency(corpus, tokens, emailCount),
		SuggestedResponseType: s.suggestResponse(thread.Subject, emailCount),
		ContextDigest:         s.buildDigest(thread, recent),
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, summary, s.policy.CacheTTL)
	}
	return summary, nil
}

// scanTone classifies conversation tone by keyword category; first matching
// category wins, in urgency > formal > informal order
func scanTone(corpus string, tokens map[string]struct{}) string {
	switch {
	case matchAny(corpus, tokens, urgentKeywords):
		return "urgent"
	case matchAny(corpus, tokens, formalKeywords):
		return "formal"
	case matchAny(corpus, tokens, informalKeywords):
		return "informal"
	default:
		return "neutral"
	}
}

// scanUrgency: urgent keywords force high, busy exchanges bump to medium
func (s *Service) scanUrgency(corpus string, tokens map[string]struct{}, emailCount int) models.Urgency {
	if matchAny(corpus, tokens, urgentKeywords) {
		return models.UrgencyHigh
	}
	if emailCount > s.policy.BusyThreadThreshold {
		return models.UrgencyMedium
	}
	return models.UrgencyNormal
}

// suggestResponse favors replying to active multi-email exchanges and to
// subject-line urgency markers; single isolated emails get "No"
func (s *Service) suggestResponse(subject string, emailCount int) string {
	if emailCount > s.policy.ActiveThreadThreshold {
		return "Yes"
	}
	if matchAny(strings.ToLower(subject), utils.BuildTokenSet(subject), urgentKeywords) {
		return "Yes"
	}
	return "No"
}

// buildDigest concatenates the most recent emails' date/subject/body into a
// compact textual summary for prompt reuse
func (s *Service) buildDigest(thread *models.ConversationThread, recent []models.ConversationMessage) string {
	n := s.policy.DigestEmails
	if n > len(recent) {
		n = len(recent)
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		msg := recent[i]
		// Messages do not carry per-email subjects, so the thread subject
		// labels every line
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n",
			msg.CreatedAt.Format("2006-01-02 15:04"),
			thread.Subject,
			truncate(msg.Content, 280)))
	}
	return strings.TrimSpace(b.String())
}

func buildCorpus(subject string, messages []models.ConversationMessage) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(subject))
	for _, m := range messages {
		b.WriteString("\n")
		b.WriteString(strings.ToLower(m.Content))
	}
	return b.String()
}

// matchAny matches single-word keywords against the token set, so "urgent"
// does not fire on e.g. "insurgents", and multi-word phrases as substrings
// of the lowercased corpus.
func matchAny(corpus string, tokens map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(corpus, kw) {
				return true
			}
			continue
		}
		for _, kwToken := range utils.ExtractMeaningfulTokens(kw) {
			if _, ok := tokens[kwToken]; ok {
				return true
			}
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
