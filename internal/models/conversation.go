package models

import "time"

// AuthorKind identifies who produced a conversation message
type AuthorKind string

const (
	AuthorInboundEmail AuthorKind = "inbound-email"
	AuthorUser         AuthorKind = "user"
	AuthorAISuggestion AuthorKind = "ai-suggestion"
	AuthorAIDraft      AuthorKind = "ai-draft"
)

// DraftStatus tracks the lifecycle of a generated reply candidate
type DraftStatus string

const (
	DraftEditable  DraftStatus = "editable"
	DraftDismissed DraftStatus = "dismissed"
	DraftSent      DraftStatus = "sent"
)

// Urgency is the classified urgency of an email or thread
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ConversationThread represents one ongoing exchange with a single counterpart.
// The thread ID is derived deterministically from (sender, subject) so repeated
// emails in the same exchange map to the same thread.
type ConversationThread struct {
	ThreadID      string     `db:"thread_id" json:"thread_id"`
	Sender        string     `db:"sender" json:"sender"`
	Subject       string     `db:"subject" json:"subject"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	LastEmailDate time.Time  `db:"last_email_date" json:"last_email_date"`
	TotalEmails   int        `db:"total_emails" json:"total_emails"`
	ClosedAt      *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// ConversationMessage is an entry in a thread's visible log: the raw email
// content, a user-authored reply, or an AI-authored note. SourceEmailID is a
// back-reference to the originating email and is unique across all messages,
// which is what makes duplicate event delivery detectable.
type ConversationMessage struct {
	ID            string     `db:"id" json:"id"`
	ThreadID      string     `db:"thread_id" json:"thread_id"`
	AuthorKind    AuthorKind `db:"author_kind" json:"author_kind"`
	Content       string     `db:"content" json:"content"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	SourceEmailID *string    `db:"source_email_id" json:"source_email_id,omitempty"`
}

// Draft is an AI-generated reply candidate. Multiple drafts may coexist on a
// thread; none is authoritative until a human approves one for sending.
type Draft struct {
	ID           string      `db:"id" json:"id"`
	ThreadID     string      `db:"thread_id" json:"thread_id"`
	Content      string      `db:"content" json:"content"`
	GeneratedAt  time.Time   `db:"generated_at" json:"generated_at"`
	ContextLabel string      `db:"context_label" json:"context_label"`
	Status       DraftStatus `db:"status" json:"status"`
}

// AnalysisResult holds the typed fields extracted from an AI analysis
// response. It is ephemeral: persisted only as serialized content inside an
// ai-suggestion conversation message.
type AnalysisResult struct {
	Tone       string  `json:"tone"`
	Sentiment  string  `json:"sentiment"`
	Urgency    Urgency `json:"urgency"`
	Category   string  `json:"category"`
	Complexity string  `json:"complexity"`
	Summary    string  `json:"summary"`
}

// ThreadSummary aggregates recent same-sender emails into a conversation-level
// view used by the analytics endpoint and for prompt reuse.
type ThreadSummary struct {
	ThreadID              string  `json:"thread_id"`
	TotalEmails           int     `json:"total_emails"`
	ConversationTone      string  `json:"conversation_tone"`
	Urgency               Urgency `json:"urgency"`
	SuggestedResponseType string  `json:"suggested_response_type"`
	ContextDigest         string  `json:"context_digest"`
}
