package resumerepo

import (
	"context"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

// Resume is the slug-bearing view of a saved resume record. The resume
// document itself is owned by the resume subsystem and is not modeled here.
type Resume struct {
	ID      domain.ResumeID
	Subject domain.SubjectID
	Slug    string

	UpdatedAt time.Time
}

// Repository exposes the two concerns the sync pipeline has on resumes:
// finding the subject's live record and keeping its public slug (plus any
// cross-reference rows holding a copy of it) consistent.
type Repository interface {
	// GetLatestBySubject returns the most recently updated resume for the
	// subject, or ErrNotFound.
	GetLatestBySubject(ctx context.Context, subject domain.SubjectID) (Resume, error)

	// SlugTaken reports whether any live resume other than exclude holds slug.
	SlugTaken(ctx context.Context, slug string, exclude domain.ResumeID) (bool, error)

	// UpdateSlug writes a new slug to the resume record.
	UpdateSlug(ctx context.Context, id domain.ResumeID, slug string) error

	// UpdateReferences propagates the slug to cross-reference rows (e.g.
	// applications citing the resume).
	UpdateReferences(ctx context.Context, id domain.ResumeID, slug string) error
}
