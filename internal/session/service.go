package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"winsbygroup.com/keyserver/internal/license"
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

func (s *Service) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.repo.Get(ctx, sessionID)
}

func (s *Service) GetForKey(ctx context.Context, key string) ([]Session, error) {
	return s.repo.GetForKey(ctx, key)
}

func (s *Service) Resolve(ctx context.Context, sessionID string) (*license.Record, error) {
	return s.repo.Resolve(ctx, sessionID)
}

// Issue mints a new session token for the given license key inside the
// caller's transaction.
func (s *Service) Issue(ctx context.Context, tx *sqlx.Tx, key string) (string, error) {
	sess := &Session{
		SessionID:  uuid.NewString(),
		LicenseKey: key,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, tx, sess); err != nil {
		return "", err
	}
	return sess.SessionID, nil
}
