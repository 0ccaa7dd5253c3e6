package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/keyserver/internal/license"
)

type Repository interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	GetForKey(ctx context.Context, key string) ([]Session, error)
	Resolve(ctx context.Context, sessionID string) (*license.Record, error)

	Create(ctx context.Context, tx *sqlx.Tx, sess *Session) error
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	err := r.db.GetContext(ctx, &sess, getSQL, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (r *repo) GetForKey(ctx context.Context, key string) ([]Session, error) {
	var out []Session
	err := r.db.SelectContext(ctx, &out, getForKeySQL, key)
	if err != nil {
		return nil, fmt.Errorf("get sessions for key: %w", err)
	}
	return out, nil
}

// Resolve returns the current license record behind a session, or nil if the
// session does not exist. License state is never cached on the session row,
// so a state change is visible to every session immediately.
func (r *repo) Resolve(ctx context.Context, sessionID string) (*license.Record, error) {
	var rec license.Record
	err := r.db.GetContext(ctx, &rec, resolveSQL, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return &rec, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, sess *Session) error {
	_, err := tx.ExecContext(ctx, createSQL,
		sess.SessionID,
		sess.LicenseKey,
		sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}
