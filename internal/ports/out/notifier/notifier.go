package notifier

import (
	"context"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

// ProfileCompletedEvent is delivered once when a profile's completion flag
// transitions from false to true.
type ProfileCompletedEvent struct {
	Subject  domain.SubjectID
	Email    string
	FullName string

	// Routing identifiers, present when known.
	Slug     *string
	Username *string

	CreatedAt time.Time
}

// Notifier is a fire-and-forget sink for completion events. Delivery failure
// is reported to the caller for logging only and must never fail the
// enclosing update.
type Notifier interface {
	ProfileCompleted(ctx context.Context, ev ProfileCompletedEvent) error
}
