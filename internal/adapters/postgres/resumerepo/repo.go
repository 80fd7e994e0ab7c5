package resumerepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/resumerepo"
)

// Repo is a Postgres implementation of resumerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) GetLatestBySubject(ctx context.Context, subject domain.SubjectID) (resumerepo.Resume, error) {
	if r.pool == nil {
		return resumerepo.Resume{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id, subject_id, resume_slug, updated_at
		FROM saved_resumes
		WHERE subject_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, string(subject))

	var (
		id        uuid.UUID
		sub       string
		slug      *string
		updatedAt time.Time
	)
	if err := row.Scan(&id, &sub, &slug, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resumerepo.Resume{}, resumerepo.ErrNotFound
		}
		return resumerepo.Resume{}, err
	}
	out := resumerepo.Resume{
		ID:        domain.ResumeID(id.String()),
		Subject:   domain.SubjectID(sub),
		UpdatedAt: updatedAt.UTC(),
	}
	if slug != nil {
		out.Slug = *slug
	}
	return out, nil
}

func (r *Repo) SlugTaken(ctx context.Context, slug string, exclude domain.ResumeID) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	excludeID, err := uuid.Parse(string(exclude))
	if err != nil {
		return false, fmt.Errorf("invalid resume id: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
		SELECT 1 FROM saved_resumes
		WHERE resume_slug = $1 AND id <> $2
		LIMIT 1
	`, slug, excludeID)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repo) UpdateSlug(ctx context.Context, id domain.ResumeID, slug string) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rid, err := uuid.Parse(string(id))
	if err != nil {
		return fmt.Errorf("invalid resume id: %w", err)
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE saved_resumes
		SET resume_slug = $1, updated_at = now()
		WHERE id = $2
	`, slug, rid)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return resumerepo.ErrNotFound
	}
	return nil
}

func (r *Repo) UpdateReferences(ctx context.Context, id domain.ResumeID, slug string) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	rid, err := uuid.Parse(string(id))
	if err != nil {
		return fmt.Errorf("invalid resume id: %w", err)
	}
	// Zero affected rows is fine: not every resume has referencing applications.
	_, err = r.pool.Exec(ctx, `
		UPDATE applications
		SET resume_slug = $1
		WHERE resume_id = $2
	`, slug, rid)
	return err
}
