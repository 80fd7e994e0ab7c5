package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	clockport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/clock"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/identity"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/notifier"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/resumerepo"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/workstatusrepo"
)

var errInvalidDate = errors.New("must be a date in YYYY-MM-DD format")

// Service drives the profile synchronization pipeline: probe the schema,
// reconcile the partial update, commit the primary write, then fan derived
// copies out to the work-status mirror, the resume slug, and the identity
// provider, and fire the one-shot completion notification on the
// incomplete -> complete edge.
type Service struct {
	profiles    profilerepo.Repository
	workStatus  workstatusrepo.Repository
	resumes     resumerepo.Repository
	idp         identity.Provider
	completions notifier.Notifier
	clk         clockport.Clock
	log         *zap.Logger

	// PropagationTimeout bounds each best-effort propagation target so a slow
	// collaborator cannot block the response indefinitely.
	PropagationTimeout time.Duration
}

func NewService(
	profiles profilerepo.Repository,
	workStatus workstatusrepo.Repository,
	resumes resumerepo.Repository,
	idp identity.Provider,
	completions notifier.Notifier,
	clk clockport.Clock,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		profiles:           profiles,
		workStatus:         workStatus,
		resumes:            resumes,
		idp:                idp,
		completions:        completions,
		clk:                clk,
		log:                log,
		PropagationTimeout: 5 * time.Second,
	}
}

func (s *Service) GetProfile(ctx context.Context, subject domain.SubjectID) (domain.Profile, error) {
	p, err := s.profiles.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, profilerepo.ErrNotFound) {
			return domain.Profile{}, &Error{
				Status:  404,
				Code:    "PROFILE_NOT_FOUND",
				Message: "No profile exists for the authenticated subject.",
			}
		}
		return domain.Profile{}, err
	}
	return toDomain(p), nil
}

// UpdateProfile applies a partial update to the subject's profile.
//
// Only the schema probe, the existing-record load, input validation and the
// primary write can fail the operation. Every later step is best-effort: its
// outcome is recorded and logged, and the committed primary update is returned
// to the caller regardless.
func (s *Service) UpdateProfile(ctx context.Context, subject domain.SubjectID, in UpdateProfileInput) (UpdateResult, error) {
	cols, err := s.profiles.Columns(ctx)
	if err != nil {
		// Without knowing which columns exist we cannot build a safe write.
		return UpdateResult{}, fmt.Errorf("probe profile schema: %w", err)
	}

	existing, err := s.profiles.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, profilerepo.ErrNotFound) {
			return UpdateResult{}, &Error{
				Status:  404,
				Code:    "PROFILE_NOT_FOUND",
				Message: "No profile exists for the authenticated subject.",
			}
		}
		return UpdateResult{}, err
	}

	resolved, aerr := reconcile(existing, in, cols)
	if aerr != nil {
		return UpdateResult{}, aerr
	}
	// The service owns the write stamp; repositories persist it as given.
	resolved.UpdatedAt = s.clk.Now().UTC()

	updated, err := s.profiles.Update(ctx, resolved, cols)
	if err != nil {
		switch {
		case errors.Is(err, profilerepo.ErrNotFound):
			return UpdateResult{}, &Error{
				Status:  404,
				Code:    "PROFILE_NOT_FOUND",
				Message: "No profile exists for the authenticated subject.",
			}
		case errors.Is(err, profilerepo.ErrWriteRejected):
			return UpdateResult{}, &Error{
				Status:  409,
				Code:    "PROFILE_WRITE_REJECTED",
				Message: "The profile store rejected the update.",
			}
		default:
			return UpdateResult{}, err
		}
	}

	// Commit point reached: nothing below may fail the request.
	fan := s.propagate(ctx, existing, updated, in)

	res := UpdateResult{
		Profile:      toDomain(updated),
		SlugChanged:  fan.slugChanged,
		NewSlug:      fan.newSlug,
		Propagations: fan.outcomes,
	}
	return res, nil
}

func toDomain(p profilerepo.Profile) domain.Profile {
	c := cloneRecord(p)
	return domain.Profile{
		Subject:            c.Subject,
		Email:              c.Email,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		FullName:           c.FullName,
		Location:           c.Location,
		AvatarURL:          c.AvatarURL,
		Phone:              c.Phone,
		Bio:                c.Bio,
		Position:           c.Position,
		StructuredLocation: c.StructuredLocation,
		Gender:             c.Gender,
		GenderCustom:       c.GenderCustom,
		Username:           c.Username,
		Company:            c.Company,
		Birthday:           c.Birthday,
		Completed:          c.Completed,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func cloneRecord(p profilerepo.Profile) profilerepo.Profile {
	out := p
	out.Location = cloneStringPtr(p.Location)
	out.AvatarURL = cloneStringPtr(p.AvatarURL)
	out.Phone = cloneStringPtr(p.Phone)
	out.Bio = cloneStringPtr(p.Bio)
	out.Position = cloneStringPtr(p.Position)
	out.StructuredLocation = domain.StructuredLocation{
		PlaceID:  cloneStringPtr(p.StructuredLocation.PlaceID),
		Lat:      cloneFloatPtr(p.StructuredLocation.Lat),
		Lng:      cloneFloatPtr(p.StructuredLocation.Lng),
		City:     cloneStringPtr(p.StructuredLocation.City),
		Province: cloneStringPtr(p.StructuredLocation.Province),
		Country:  cloneStringPtr(p.StructuredLocation.Country),
		Barangay: cloneStringPtr(p.StructuredLocation.Barangay),
		Region:   cloneStringPtr(p.StructuredLocation.Region),
	}
	out.Gender = cloneStringPtr(p.Gender)
	out.GenderCustom = cloneStringPtr(p.GenderCustom)
	out.Username = cloneStringPtr(p.Username)
	out.Company = cloneStringPtr(p.Company)
	out.Birthday = cloneTimePtr(p.Birthday)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
