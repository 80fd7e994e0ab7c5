package workstatusrepo

import (
	"context"
	"sync"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/workstatusrepo"
)

// Repo is an in-memory implementation of workstatusrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	bySubject map[domain.SubjectID]workstatusrepo.WorkStatus
}

func NewRepo() *Repo {
	return &Repo{
		bySubject: make(map[domain.SubjectID]workstatusrepo.WorkStatus),
	}
}

func (r *Repo) Upsert(ctx context.Context, subject domain.SubjectID, currentPosition *string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	ws, ok := r.bySubject[subject]
	if !ok {
		ws = workstatusrepo.WorkStatus{Subject: subject, CreatedAt: now}
	}
	ws.CurrentPosition = cloneStringPtr(currentPosition)
	ws.UpdatedAt = now
	r.bySubject[subject] = ws
	return nil
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (workstatusrepo.WorkStatus, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.bySubject[subject]
	if !ok {
		return workstatusrepo.WorkStatus{}, workstatusrepo.ErrNotFound
	}
	ws.CurrentPosition = cloneStringPtr(ws.CurrentPosition)
	return ws, nil
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
