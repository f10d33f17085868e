package engine

import (
	"sync"

	"mailflow/internal/models"
)

// ThreadUpdate is emitted after a thread changes, for UI and notification
// consumers: the thread, its freshly derived workflow state, and the email
// id that triggered the change (empty for user-driven changes).
type ThreadUpdate struct {
	ThreadID string
	State    models.WorkflowState
	EmailID  string
}

// notifier fans thread updates out to subscribers. Delivery is synchronous
// and in registration order; subscribers must not block.
type notifier struct {
	mu   sync.RWMutex
	subs []func(ThreadUpdate)
}

func (n *notifier) subscribe(fn func(ThreadUpdate)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

func (n *notifier) publish(update ThreadUpdate) {
	n.mu.RLock()
	subs := n.subs
	n.mu.RUnlock()

	for _, fn := range subs {
		fn(update)
	}
}
