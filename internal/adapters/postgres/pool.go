package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes we branch on.
const (
	UniqueViolationCode     = "23505"
	ForeignKeyViolationCode = "23503"

	// integrityViolationClass is the leading class of all constraint errors.
	integrityViolationClass = "23"
)

// PoolOptions tunes pool construction. Zero values mean defaults.
type PoolOptions struct {
	MaxConns int32

	// PingTimeout bounds the whole startup ping sequence.
	PingTimeout time.Duration
	// MaxPingTries caps the ping retry attempts.
	MaxPingTries uint
}

// NewPool builds a pgx pool and verifies connectivity. The startup ping is
// retried with exponential backoff: transient connection refusals during
// deploy orchestration resolve within seconds, and failing fast instead would
// flap the service.
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("empty postgres DSN (set DATABASE_URL)")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 30 * time.Second
	}
	maxTries := opts.MaxPingTries
	if maxTries == 0 {
		maxTries = 5
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err = backoff.Retry(pingCtx, func() (struct{}, error) {
		return struct{}{}, pool.Ping(pingCtx)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(maxTries))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// AsPgError unwraps a *pgconn.PgError when err carries one.
func AsPgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsConstraintViolation reports whether err is any integrity-constraint
// violation (unique, foreign key, check, not-null).
func IsConstraintViolation(err error) bool {
	pe, ok := AsPgError(err)
	return ok && strings.HasPrefix(pe.Code, integrityViolationClass)
}
