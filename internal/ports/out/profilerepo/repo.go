package profilerepo

import (
	"context"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
)

// Column names of the profile entity. BaseColumns always exist; OptionalColumns
// may or may not exist in a given deployment's schema, so writers must probe
// first and never assume presence.
var (
	BaseColumns = []string{
		"first_name", "last_name", "full_name",
		"location", "avatar_url", "phone", "bio", "position",
	}
	OptionalColumns = []string{
		"location_place_id", "location_lat", "location_lng",
		"location_city", "location_province", "location_country",
		"location_barangay", "location_region",
		"gender", "gender_custom", "username", "company",
		"completed_data", "birthday",
	}
)

// ColumnSet is the set of attribute names actually present in the current
// deployment's schema for the profile entity.
type ColumnSet map[string]struct{}

func (c ColumnSet) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// NewColumnSet builds a ColumnSet from column names.
func NewColumnSet(names ...string) ColumnSet {
	out := make(ColumnSet, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// AllColumns is the full column set: base plus every optional column.
func AllColumns() ColumnSet {
	return NewColumnSet(append(append([]string{}, BaseColumns...), OptionalColumns...)...)
}

// Profile is the persistence shape used by the profile repository. It is an
// internal record, not an HTTP DTO.
type Profile struct {
	Subject domain.SubjectID

	Email     string
	FirstName string
	LastName  string
	FullName  string

	Location  *string
	AvatarURL *string
	Phone     *string
	Bio       *string
	Position  *string

	StructuredLocation domain.StructuredLocation

	Gender       *string
	GenderCustom *string
	Username     *string
	Company      *string

	Birthday  *time.Time
	Completed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to the authoritative profile store.
//
// Update is the single transactionally-authoritative write of the sync
// pipeline: it persists the resolved record (restricted to cols) in one row
// update, stamps the modification time, and returns the full updated record.
// All derived propagation treats its success as the commit point.
type Repository interface {
	// Columns reports which profile columns exist in the current deployment.
	// Implementations may cache the result for the lifetime of the process.
	Columns(ctx context.Context) (ColumnSet, error)

	GetBySubject(ctx context.Context, subject domain.SubjectID) (Profile, error)

	Update(ctx context.Context, p Profile, cols ColumnSet) (Profile, error)
}
