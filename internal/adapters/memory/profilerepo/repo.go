package profilerepo

import (
	"context"
	"sync"
	"time"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
)

// Repo is an in-memory implementation of profilerepo.Repository.
// It is safe for concurrent use.
//
// The column set is fixed at construction so tests can model deployments with
// and without the optional profile columns.
type Repo struct {
	mu sync.RWMutex

	cols      profilerepo.ColumnSet
	bySubject map[domain.SubjectID]profilerepo.Profile
}

// NewRepo returns a repo whose schema has every known column.
func NewRepo() *Repo {
	return NewRepoWithColumns(profilerepo.AllColumns())
}

// NewRepoWithColumns returns a repo restricted to the given column set.
func NewRepoWithColumns(cols profilerepo.ColumnSet) *Repo {
	copied := make(profilerepo.ColumnSet, len(cols))
	for c := range cols {
		copied[c] = struct{}{}
	}
	return &Repo{
		cols:      copied,
		bySubject: make(map[domain.SubjectID]profilerepo.Profile),
	}
}

// Seed inserts a profile row directly, bypassing the update pipeline. Profiles
// are created alongside accounts, outside this subsystem.
func (r *Repo) Seed(p profilerepo.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySubject[p.Subject] = cloneProfile(p)
}

func (r *Repo) Columns(ctx context.Context) (profilerepo.ColumnSet, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(profilerepo.ColumnSet, len(r.cols))
	for c := range r.cols {
		out[c] = struct{}{}
	}
	return out, nil
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (profilerepo.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.bySubject[subject]
	if !ok {
		return profilerepo.Profile{}, profilerepo.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *Repo) Update(ctx context.Context, p profilerepo.Profile, cols profilerepo.ColumnSet) (profilerepo.Profile, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.bySubject[p.Subject]
	if !ok {
		return profilerepo.Profile{}, profilerepo.ErrNotFound
	}

	next := cloneProfile(existing)
	next.FirstName = p.FirstName
	next.LastName = p.LastName
	next.FullName = p.FullName
	next.Location = cloneStringPtr(p.Location)
	next.AvatarURL = cloneStringPtr(p.AvatarURL)
	next.Phone = cloneStringPtr(p.Phone)
	next.Bio = cloneStringPtr(p.Bio)
	next.Position = cloneStringPtr(p.Position)

	if cols.Has("location_place_id") {
		next.StructuredLocation.PlaceID = cloneStringPtr(p.StructuredLocation.PlaceID)
	}
	if cols.Has("location_lat") {
		next.StructuredLocation.Lat = cloneFloatPtr(p.StructuredLocation.Lat)
	}
	if cols.Has("location_lng") {
		next.StructuredLocation.Lng = cloneFloatPtr(p.StructuredLocation.Lng)
	}
	if cols.Has("location_city") {
		next.StructuredLocation.City = cloneStringPtr(p.StructuredLocation.City)
	}
	if cols.Has("location_province") {
		next.StructuredLocation.Province = cloneStringPtr(p.StructuredLocation.Province)
	}
	if cols.Has("location_country") {
		next.StructuredLocation.Country = cloneStringPtr(p.StructuredLocation.Country)
	}
	if cols.Has("location_barangay") {
		next.StructuredLocation.Barangay = cloneStringPtr(p.StructuredLocation.Barangay)
	}
	if cols.Has("location_region") {
		next.StructuredLocation.Region = cloneStringPtr(p.StructuredLocation.Region)
	}
	if cols.Has("gender") {
		next.Gender = cloneStringPtr(p.Gender)
	}
	if cols.Has("gender_custom") {
		next.GenderCustom = cloneStringPtr(p.GenderCustom)
	}
	if cols.Has("username") {
		next.Username = cloneStringPtr(p.Username)
	}
	if cols.Has("company") {
		next.Company = cloneStringPtr(p.Company)
	}
	if cols.Has("birthday") {
		next.Birthday = cloneTimePtr(p.Birthday)
	}
	if cols.Has("completed_data") {
		next.Completed = p.Completed
	}

	// The caller (the service) owns the write stamp.
	next.UpdatedAt = p.UpdatedAt

	r.bySubject[p.Subject] = next
	return cloneProfile(next), nil
}

func cloneProfile(p profilerepo.Profile) profilerepo.Profile {
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
