package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/notifier"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/resumerepo"
)

// Propagation target names, used in outcome records and logs.
const (
	targetWorkStatus       = "work_status"
	targetResumeSlug       = "resume_slug"
	targetResumeReferences = "resume_references"
	targetIdentityMetadata = "identity_metadata"
	targetCompletionNotify = "completion_notification"
)

type fanoutResult struct {
	outcomes    []PropagationOutcome
	slugChanged bool
	newSlug     string

	// currentSlug is the live resume slug observed during allocation, used as
	// a routing identifier in the completion event when no rewrite happened.
	currentSlug string
}

// propagate applies the committed profile record to every derived store.
// Targets run sequentially, each isolated under its own bounded timeout: a
// failure is recorded and logged, never returned to the caller, and never
// rolls back the primary update or blocks the remaining targets.
func (s *Service) propagate(ctx context.Context, previous, updated profilerepo.Profile, in UpdateProfileInput) fanoutResult {
	var res fanoutResult

	if in.Position.IsSpecified() {
		s.runTarget(ctx, &res, targetWorkStatus, func(ctx context.Context) error {
			return s.workStatus.Upsert(ctx, updated.Subject, cloneStringPtr(updated.Position))
		})
	}

	nameChanged := in.FirstName.IsSpecified() || in.LastName.IsSpecified()
	s.allocateSlug(ctx, &res, updated, nameChanged)

	s.runTarget(ctx, &res, targetIdentityMetadata, func(ctx context.Context) error {
		return s.idp.UpdateMetadata(ctx, updated.Subject, identityMetadata(updated))
	})

	if !previous.Completed && updated.Completed {
		s.runTarget(ctx, &res, targetCompletionNotify, func(ctx context.Context) error {
			return s.completions.ProfileCompleted(ctx, s.completionEvent(updated, res))
		})
	}

	return res
}

// runTarget executes one propagation target under the bounded timeout,
// records its outcome and logs it.
func (s *Service) runTarget(ctx context.Context, res *fanoutResult, target string, fn func(ctx context.Context) error) {
	tctx := ctx
	if s.PropagationTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, s.PropagationTimeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(tctx)
	d := time.Since(start)

	res.outcomes = append(res.outcomes, PropagationOutcome{Target: target, Err: err, Duration: d})
	if err != nil {
		s.log.Warn("propagation target failed",
			zap.String("target", target),
			zap.Duration("duration", d),
			zap.Error(err))
		return
	}
	s.log.Debug("propagation target applied",
		zap.String("target", target),
		zap.Duration("duration", d))
}

// allocateSlug regenerates the public resume identifier when name-bearing
// attributes changed or no slug exists yet, resolving collisions with an
// incrementing suffix and mirroring a confirmed write into cross-reference
// rows.
//
// The check-then-write sequence is not protected by a cross-process lock:
// concurrent updates computing the same base slug could both pass the "not
// taken" check. This is an accepted, self-healing race; a later update cycle
// regenerates and re-disambiguates.
func (s *Service) allocateSlug(ctx context.Context, res *fanoutResult, updated profilerepo.Profile, nameChanged bool) {
	s.runTarget(ctx, res, targetResumeSlug, func(ctx context.Context) error {
		resume, err := s.resumes.GetLatestBySubject(ctx, updated.Subject)
		if err != nil {
			if errors.Is(err, resumerepo.ErrNotFound) {
				// Nothing to keep in sync.
				return nil
			}
			return fmt.Errorf("load resume: %w", err)
		}
		res.currentSlug = resume.Slug
		if !nameChanged && resume.Slug != "" {
			return nil
		}

		base := domain.DeriveBaseSlug(updated.FirstName, updated.LastName, updated.Subject)
		if resume.Slug == base {
			// Idempotent regeneration: inputs unchanged, slug already correct.
			return nil
		}

		// Re-check the live slug set for every candidate before accepting it,
		// excluding the subject's own record.
		candidate := base
		for counter := 1; ; counter++ {
			taken, err := s.resumes.SlugTaken(ctx, candidate, resume.ID)
			if err != nil {
				return fmt.Errorf("check slug %q: %w", candidate, err)
			}
			if !taken {
				break
			}
			candidate = fmt.Sprintf("%s-%d", base, counter)
		}

		if err := s.resumes.UpdateSlug(ctx, resume.ID, candidate); err != nil {
			return fmt.Errorf("write slug %q: %w", candidate, err)
		}
		res.slugChanged = true
		res.newSlug = candidate

		s.runTarget(ctx, res, targetResumeReferences, func(ctx context.Context) error {
			return s.resumes.UpdateReferences(ctx, resume.ID, candidate)
		})
		return nil
	})
}

// identityMetadata builds the open attribute mapping pushed to the identity
// provider's metadata copy.
func identityMetadata(p profilerepo.Profile) map[string]any {
	return map[string]any{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"full_name":  p.FullName,
		"location":   stringOrNil(p.Location),
		"phone":      stringOrNil(p.Phone),
		"position":   stringOrNil(p.Position),
		"bio":        stringOrNil(p.Bio),
		"company":    stringOrNil(p.Company),
	}
}

func (s *Service) completionEvent(p profilerepo.Profile, res fanoutResult) notifier.ProfileCompletedEvent {
	ev := notifier.ProfileCompletedEvent{
		Subject:   p.Subject,
		Email:     p.Email,
		FullName:  p.FullName,
		Username:  cloneStringPtr(p.Username),
		CreatedAt: p.CreatedAt,
	}
	switch {
	case res.slugChanged:
		slug := res.newSlug
		ev.Slug = &slug
	case res.currentSlug != "":
		slug := res.currentSlug
		ev.Slug = &slug
	}
	return ev
}

func stringOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
