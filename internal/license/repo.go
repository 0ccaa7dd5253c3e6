package license

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*Record, error)
	List(ctx context.Context) ([]Record, error)

	Create(ctx context.Context, tx *sqlx.Tx, rec *Record) error
	Activate(ctx context.Context, tx *sqlx.Tx, key, hwid string, at time.Time) (bool, error)
}

type repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetByKey(ctx context.Context, key string) (*Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, getByKeySQL, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get license key: %w", err)
	}
	return &rec, nil
}

func (r *repo) List(ctx context.Context) ([]Record, error) {
	var out []Record
	err := r.db.SelectContext(ctx, &out, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list license keys: %w", err)
	}
	return out, nil
}

func (r *repo) Create(ctx context.Context, tx *sqlx.Tx, rec *Record) error {
	_, err := tx.ExecContext(ctx, createSQL,
		rec.LicenseKey,
		rec.LicenseDays,
		rec.CreatedAt,
		rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create license key: %w", err)
	}
	return nil
}

// Activate claims a never-activated key for the given HWID. Returns true if
// this call performed the binding, false if the key was already activated
// (by this HWID or another; the caller re-reads to distinguish).
func (r *repo) Activate(ctx context.Context, tx *sqlx.Tx, key, hwid string, at time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, activateSQL, hwid, at, key)
	if err != nil {
		return false, fmt.Errorf("activate license key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("activate license key: %w", err)
	}
	return n == 1, nil
}
