package resumerepo

import (
	"context"
	"sync"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/resumerepo"
)

// Repo is an in-memory implementation of resumerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID map[domain.ResumeID]resumerepo.Resume

	// refSlug mirrors the slug copies held by cross-reference rows, keyed by
	// resume id, so tests can assert reference propagation.
	refSlug map[domain.ResumeID]string
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.ResumeID]resumerepo.Resume),
		refSlug: make(map[domain.ResumeID]string),
	}
}

// Seed inserts a resume row directly; resume creation is owned by the resume
// subsystem, not this pipeline.
func (r *Repo) Seed(res resumerepo.Resume) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[res.ID] = res
}

func (r *Repo) GetLatestBySubject(ctx context.Context, subject domain.SubjectID) (resumerepo.Resume, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  resumerepo.Resume
		found bool
	)
	for _, res := range r.byID {
		if res.Subject != subject {
			continue
		}
		if !found || res.UpdatedAt.After(best.UpdatedAt) ||
			(res.UpdatedAt.Equal(best.UpdatedAt) && res.ID > best.ID) {
			best = res
			found = true
		}
	}
	if !found {
		return resumerepo.Resume{}, resumerepo.ErrNotFound
	}
	return best, nil
}

func (r *Repo) SlugTaken(ctx context.Context, slug string, exclude domain.ResumeID) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, res := range r.byID {
		if id == exclude {
			continue
		}
		if res.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) UpdateSlug(ctx context.Context, id domain.ResumeID, slug string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return resumerepo.ErrNotFound
	}
	res.Slug = slug
	res.UpdatedAt = time.Now().UTC()
	r.byID[id] = res
	return nil
}

func (r *Repo) UpdateReferences(ctx context.Context, id domain.ResumeID, slug string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refSlug[id] = slug
	return nil
}

// ReferenceSlug reports the slug last propagated to cross-reference rows for
// the resume, for test assertions.
func (r *Repo) ReferenceSlug(id domain.ResumeID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.refSlug[id]
	return s, ok
}
