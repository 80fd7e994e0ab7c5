package identity

import (
	"context"
	"sync"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

// Provider is an in-memory identity.Provider that records the last metadata
// pushed per subject. It is safe for concurrent use.
type Provider struct {
	mu sync.RWMutex

	bySubject map[domain.SubjectID]map[string]any
}

func NewProvider() *Provider {
	return &Provider{bySubject: make(map[domain.SubjectID]map[string]any)}
}

func (p *Provider) UpdateMetadata(ctx context.Context, subject domain.SubjectID, metadata map[string]any) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	copied := make(map[string]any, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}
	p.bySubject[subject] = copied
	return nil
}

// Metadata returns the last metadata recorded for the subject.
func (p *Provider) Metadata(subject domain.SubjectID) (map[string]any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.bySubject[subject]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, true
}
