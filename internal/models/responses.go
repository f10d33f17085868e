package models

import "time"

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// DBHealthResponse represents a database health check response
// @Description Database health check response
type DBHealthResponse struct {
	Status    string        `json:"status" example:"healthy"`                   // Health status
	Timestamp time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"`   // Timestamp of the check
	Connected bool          `json:"connected" example:"true"`                   // Database connection status
	Latency   time.Duration `json:"latency" swaggertype:"string" example:"1ms"` // Database ping latency
	Error     string        `json:"error,omitempty" example:""`                 // Error message if any
}

// IncomingEmailRequest is the payload delivered by the email source
// @Description Inbound email event
type IncomingEmailRequest struct {
	ID        string    `json:"id" example:"18c2f4a9b3d1"`           // Provider-assigned email ID
	From      string    `json:"from" example:"customer@example.com"` // Sender address
	Subject   string    `json:"subject" example:"Invoice overdue"`   // Email subject
	Body      string    `json:"body"`                                // Plain-text body
	Date      time.Time `json:"date"`                                // Provider timestamp
	Direction string    `json:"direction" example:"received"`        // received or sent
}

// IncomingEmailResponse reports the outcome of processing an email event
// @Description Email processing outcome
type IncomingEmailResponse struct {
	Accepted bool   `json:"accepted" example:"true"` // Whether the event was accepted
	Error    string `json:"error,omitempty"`         // Error message if any
}

// ThreadResponse is a thread with its derived state and message log
// @Description Conversation thread detail
type ThreadResponse struct {
	Thread   *ConversationThread   `json:"thread"`
	State    WorkflowState         `json:"state" example:"context_gathered"`
	Messages []ConversationMessage `json:"messages"`
	Error    string                `json:"error,omitempty"`
}

// DraftListResponse lists the reply candidates generated for a thread
// @Description Drafts for a thread
type DraftListResponse struct {
	Drafts []Draft `json:"drafts"`
	Error  string  `json:"error,omitempty"`
}

// GenerateDraftRequest asks for a new reply draft
// @Description Draft generation request
type GenerateDraftRequest struct {
	ContextHint  string `json:"context_hint,omitempty" example:"affirmative"` // Generation intent
	Variants     int    `json:"variants,omitempty" example:"3"`               // Number of variants (variants endpoint)
	BaseDraftID  string `json:"base_draft_id,omitempty"`                      // Draft to refine (custom endpoint)
	Instructions string `json:"instructions,omitempty"`                       // Free-text instructions (custom endpoint)
}

// SendDraftRequest dispatches an approved draft as an outbound reply
// @Description Draft send request
type SendDraftRequest struct {
	DraftID string `json:"draft_id"` // Draft to send
}

// ThreadSummaryResponse wraps the analytics summary for a thread
// @Description Thread analytics summary
type ThreadSummaryResponse struct {
	Summary *ThreadSummary `json:"summary"`
	Error   string         `json:"error,omitempty"`
}
