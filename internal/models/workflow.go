package models

// WorkflowState is the derived lifecycle stage of a conversation thread
type WorkflowState string

const (
	StateInitial          WorkflowState = "initial"
	StateContextGathered  WorkflowState = "context_gathered"
	StateDraftGenerated   WorkflowState = "draft_generated"
	StateAwaitingApproval WorkflowState = "awaiting_approval"
	StateSent             WorkflowState = "sent"
	StateCompleted        WorkflowState = "completed"
)

// DeriveWorkflowState computes the workflow state of a thread purely from its
// associated message and draft set. The state is never stored, so it cannot
// diverge from the data it describes.
//
// Precedence, highest first: explicit closure, a dispatched draft, an editable
// draft awaiting approval, drafts that are no longer editable, completed AI
// analysis, and finally the initial state for a thread with no analysis yet.
func DeriveWorkflowState(thread *ConversationThread, messages []ConversationMessage, drafts []Draft) WorkflowState {
	if thread != nil && thread.ClosedAt != nil {
		return StateCompleted
	}

	var hasEditable, hasAnyDraft bool
	for _, d := range drafts {
		if d.Status == DraftSent {
			return StateSent
		}
		hasAnyDraft = true
		if d.Status == DraftEditable {
			hasEditable = true
		}
	}
	if hasEditable {
		return StateAwaitingApproval
	}
	if hasAnyDraft {
		return StateDraftGenerated
	}

	for _, m := range messages {
		if m.AuthorKind == AuthorAISuggestion {
			return StateContextGathered
		}
	}

	return StateInitial
}
