package notifier

import (
	"context"
	"sync"

	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/notifier"
)

// Notifier is an in-memory notifier.Notifier that records delivered events.
// It is safe for concurrent use.
type Notifier struct {
	mu     sync.RWMutex
	events []notifier.ProfileCompletedEvent
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) ProfileCompleted(ctx context.Context, ev notifier.ProfileCompletedEvent) error {
	_ = ctx
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

// Events returns the delivered events in order.
func (n *Notifier) Events() []notifier.ProfileCompletedEvent {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]notifier.ProfileCompletedEvent, len(n.events))
	copy(out, n.events)
	return out
}
