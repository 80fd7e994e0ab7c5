package workstatusrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/workstatusrepo"
)

// Repo is a Postgres implementation of workstatusrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Upsert(ctx context.Context, subject domain.SubjectID, currentPosition *string) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_work_status (subject_id, current_position, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (subject_id) DO UPDATE SET
			current_position = EXCLUDED.current_position,
			updated_at = now()
	`, string(subject), currentPosition)
	return err
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (workstatusrepo.WorkStatus, error) {
	if r.pool == nil {
		return workstatusrepo.WorkStatus{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT subject_id, current_position, created_at, updated_at
		FROM user_work_status
		WHERE subject_id = $1
	`, string(subject))

	var (
		sub             string
		currentPosition *string
		createdAt       time.Time
		updatedAt       time.Time
	)
	if err := row.Scan(&sub, &currentPosition, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workstatusrepo.WorkStatus{}, workstatusrepo.ErrNotFound
		}
		return workstatusrepo.WorkStatus{}, err
	}
	return workstatusrepo.WorkStatus{
		Subject:         domain.SubjectID(sub),
		CurrentPosition: currentPosition,
		CreatedAt:       createdAt.UTC(),
		UpdatedAt:       updatedAt.UTC(),
	}, nil
}
