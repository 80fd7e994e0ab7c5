package profiles

import (
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// UpdateProfileInput is a validated partial update to a candidate profile.
// Unspecified fields keep their existing value; FullName is not an input (it is
// always recomputed from the resolved first/last names).
type UpdateProfileInput struct {
	FirstName Optional[string] // cannot be null
	LastName  Optional[string] // cannot be null

	Location  Optional[string]
	AvatarURL Optional[string]
	Phone     Optional[string]
	Bio       Optional[string]
	Position  Optional[string]

	LocationPlaceID  Optional[string]
	LocationLat      Optional[float64]
	LocationLng      Optional[float64]
	LocationCity     Optional[string]
	LocationProvince Optional[string]
	LocationCountry  Optional[string]
	LocationBarangay Optional[string]
	LocationRegion   Optional[string]

	Gender       Optional[string]
	GenderCustom Optional[string]
	Username     Optional[string]
	Company      Optional[string]

	// Birthday is an ISO date string ("2006-01-02"). A blank string and an
	// explicit null both resolve to "no value".
	Birthday Optional[string]

	Completed Optional[bool] // cannot be null
}

// PropagationOutcome records the result of one best-effort propagation target.
type PropagationOutcome struct {
	Target   string
	Err      error
	Duration time.Duration
}

func (o PropagationOutcome) OK() bool { return o.Err == nil }

// UpdateResult is the outcome of UpdateProfile. Profile reflects the committed
// primary record regardless of propagation outcomes. SlugChanged is set only on
// a confirmed slug write.
type UpdateResult struct {
	Profile      domain.Profile
	SlugChanged  bool
	NewSlug      string
	Propagations []PropagationOutcome
}
