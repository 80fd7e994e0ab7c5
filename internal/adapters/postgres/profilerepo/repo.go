package profilerepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/postgres"
	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
)

const table = "profiles"

// sqlTypeByColumn drives the NULL placeholders used when a deployment lacks an
// optional column, so row scans keep a fixed shape across schema variants.
var sqlTypeByColumn = map[string]string{
	"location_place_id": "text",
	"location_lat":      "float8",
	"location_lng":      "float8",
	"location_city":     "text",
	"location_province": "text",
	"location_country":  "text",
	"location_barangay": "text",
	"location_region":   "text",
	"gender":            "text",
	"gender_custom":     "text",
	"username":          "text",
	"company":           "text",
	"birthday":          "date",
	"completed_data":    "boolean",
}

// Repo is a Postgres implementation of profilerepo.Repository.
//
// The schema probe result is cached for the lifetime of the Repo: a deployment
// does not change its schema under a running process.
type Repo struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	cols profilerepo.ColumnSet
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Columns(ctx context.Context) (profilerepo.ColumnSet, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cols != nil {
		return copyColumnSet(r.cols), nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("probe %s columns: %w", table, err)
	}
	defer rows.Close()

	present := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		present[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Only the attributes this pipeline writes are reported; identity and
	// bookkeeping columns are not part of the writable set.
	cols := make(profilerepo.ColumnSet)
	for _, c := range profilerepo.BaseColumns {
		if _, ok := present[c]; !ok {
			return nil, fmt.Errorf("%s schema is missing required column %q", table, c)
		}
		cols[c] = struct{}{}
	}
	for _, c := range profilerepo.OptionalColumns {
		if _, ok := present[c]; ok {
			cols[c] = struct{}{}
		}
	}

	r.cols = cols
	return copyColumnSet(cols), nil
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (profilerepo.Profile, error) {
	if r.pool == nil {
		return profilerepo.Profile{}, errors.New("nil postgres pool")
	}
	cols, err := r.Columns(ctx)
	if err != nil {
		return profilerepo.Profile{}, err
	}
	row := r.pool.QueryRow(ctx, selectProfileSQL(cols)+` WHERE subject_id = $1`, string(subject))
	return scanProfile(row)
}

func (r *Repo) Update(ctx context.Context, p profilerepo.Profile, cols profilerepo.ColumnSet) (profilerepo.Profile, error) {
	if r.pool == nil {
		return profilerepo.Profile{}, errors.New("nil postgres pool")
	}

	type field struct {
		col string
		val any
	}
	fields := []field{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"full_name", p.FullName},
		{"location", p.Location},
		{"avatar_url", p.AvatarURL},
		{"phone", p.Phone},
		{"bio", p.Bio},
		{"position", p.Position},
	}
	optional := []field{
		{"location_place_id", p.StructuredLocation.PlaceID},
		{"location_lat", p.StructuredLocation.Lat},
		{"location_lng", p.StructuredLocation.Lng},
		{"location_city", p.StructuredLocation.City},
		{"location_province", p.StructuredLocation.Province},
		{"location_country", p.StructuredLocation.Country},
		{"location_barangay", p.StructuredLocation.Barangay},
		{"location_region", p.StructuredLocation.Region},
		{"gender", p.Gender},
		{"gender_custom", p.GenderCustom},
		{"username", p.Username},
		{"company", p.Company},
		{"birthday", p.Birthday},
		{"completed_data", p.Completed},
	}
	for _, f := range optional {
		if cols.Has(f.col) {
			fields = append(fields, f)
		}
	}

	var (
		set    []string
		params = []any{string(p.Subject)}
	)
	for i, f := range fields {
		set = append(set, fmt.Sprintf("%s = $%d", f.col, i+2))
		params = append(params, f.val)
	}
	// The caller (the service) owns the write stamp.
	set = append(set, fmt.Sprintf("updated_at = $%d", len(fields)+2))
	params = append(params, p.UpdatedAt)

	var out profilerepo.Profile
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			fmt.Sprintf("UPDATE %s SET %s WHERE subject_id = $1", table, strings.Join(set, ", ")),
			params...,
		)
		if err != nil {
			if postgres.IsConstraintViolation(err) {
				return fmt.Errorf("%w: %v", profilerepo.ErrWriteRejected, err)
			}
			return err
		}
		if ct.RowsAffected() == 0 {
			return profilerepo.ErrNotFound
		}

		row := tx.QueryRow(ctx, selectProfileSQL(cols)+` WHERE subject_id = $1`, string(p.Subject))
		out, err = scanProfile(row)
		return err
	})
	if err != nil {
		return profilerepo.Profile{}, err
	}
	return out, nil
}

// --- helpers ---

// selectProfileSQL returns a SELECT whose projection has a fixed shape:
// optional columns absent from the schema are emitted as typed NULLs.
func selectProfileSQL(cols profilerepo.ColumnSet) string {
	exprs := []string{
		"subject_id", "email",
		"first_name", "last_name", "full_name",
		"location", "avatar_url", "phone", "bio", "position",
	}
	for _, c := range profilerepo.OptionalColumns {
		if cols.Has(c) {
			exprs = append(exprs, c)
			continue
		}
		exprs = append(exprs, fmt.Sprintf("NULL::%s AS %s", sqlTypeByColumn[c], c))
	}
	exprs = append(exprs, "created_at", "updated_at")
	return "SELECT " + strings.Join(exprs, ", ") + " FROM " + table
}

func scanProfile(row pgx.Row) (profilerepo.Profile, error) {
	var (
		subject string
		email   string

		firstName, lastName, fullName string

		location, avatarURL, phone, bio, position *string

		placeID  *string
		lat, lng *float64

		city, province, country, barangay, region *string

		gender, genderCustom, username, company *string

		birthday  *time.Time
		completed *bool

		createdAt, updatedAt time.Time
	)
	if err := row.Scan(
		&subject, &email,
		&firstName, &lastName, &fullName,
		&location, &avatarURL, &phone, &bio, &position,
		&placeID, &lat, &lng,
		&city, &province, &country, &barangay, &region,
		&gender, &genderCustom, &username, &company,
		&birthday, &completed,
		&createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profilerepo.Profile{}, profilerepo.ErrNotFound
		}
		return profilerepo.Profile{}, err
	}

	out := profilerepo.Profile{
		Subject:   domain.SubjectID(subject),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		FullName:  fullName,
		Location:  location,
		AvatarURL: avatarURL,
		Phone:     phone,
		Bio:       bio,
		Position:  position,
		StructuredLocation: domain.StructuredLocation{
			PlaceID:  placeID,
			Lat:      lat,
			Lng:      lng,
			City:     city,
			Province: province,
			Country:  country,
			Barangay: barangay,
			Region:   region,
		},
		Gender:       gender,
		GenderCustom: genderCustom,
		Username:     username,
		Company:      company,
		Birthday:     birthday,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}
	if completed != nil {
		out.Completed = *completed
	}
	if out.Birthday != nil {
		utc := out.Birthday.UTC()
		out.Birthday = &utc
	}
	return out, nil
}

func copyColumnSet(in profilerepo.ColumnSet) profilerepo.ColumnSet {
	out := make(profilerepo.ColumnSet, len(in))
	for c := range in {
		out[c] = struct{}{}
	}
	return out
}
