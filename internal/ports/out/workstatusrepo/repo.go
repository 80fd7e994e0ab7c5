package workstatusrepo

import (
	"context"
	"errors"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

// ErrNotFound indicates no work-status record exists for the subject.
var ErrNotFound = errors.New("work status not found")

// WorkStatus is the denormalized work-status mirror keyed by subject.
// CurrentPosition must equal the profile's position after every successful
// propagation; the record is created lazily on first propagation.
type WorkStatus struct {
	Subject         domain.SubjectID
	CurrentPosition *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides upsert-by-subject access to the work-status mirror.
type Repository interface {
	// Upsert creates the record if absent, otherwise updates CurrentPosition.
	Upsert(ctx context.Context, subject domain.SubjectID, currentPosition *string) error

	GetBySubject(ctx context.Context, subject domain.SubjectID) (WorkStatus, error)
}
