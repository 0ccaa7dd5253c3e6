package license

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Service struct {
	repo Repository
	db   *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:   db,
		repo: New(db),
	}
}

func (s *Service) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Service) GetByKey(ctx context.Context, key string) (*Record, error) {
	return s.repo.GetByKey(ctx, key)
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, rec *Record) (*Record, error) {
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Create(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetByKey(ctx, rec.LicenseKey)
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) CreateTx(ctx context.Context, tx *sqlx.Tx, rec *Record) error {
	return s.repo.Create(ctx, tx, rec)
}

func (s *Service) Activate(ctx context.Context, tx *sqlx.Tx, key, hwid string, at time.Time) (bool, error) {
	return s.repo.Activate(ctx, tx, key, hwid, at)
}
