package identity

import (
	"context"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

// Provider is the external identity provider holding its own metadata copy of
// profile attributes. The mapping is open: keys are attribute names, values
// are whatever the provider stores; nil values clear the attribute.
//
// The copy is derived, not authoritative. Failures here must never roll back
// the primary profile update.
type Provider interface {
	UpdateMetadata(ctx context.Context, subject domain.SubjectID, metadata map[string]any) error
}
