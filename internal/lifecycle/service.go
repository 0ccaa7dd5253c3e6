// Package lifecycle holds the license lifecycle decisions: issuing keys,
// binding a key to a hardware identifier exactly once, and validating keys
// or session tokens against the stored record.
package lifecycle

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"winsbygroup.com/keyserver/internal/keygen"
	"winsbygroup.com/keyserver/internal/license"
	"winsbygroup.com/keyserver/internal/session"
	"winsbygroup.com/keyserver/internal/sqlite"
)

const (
	// DefaultLicenseDays is used when the requested term is missing or unusable.
	DefaultLicenseDays = 30
	minLicenseDays     = 1
	maxLicenseDays     = 365

	// maxKeyAttempts bounds collision retries on issue. At 36^12 key space a
	// second collision in a row means something is wrong with the generator.
	maxKeyAttempts = 5
)

type Service struct {
	db          *sqlx.DB
	adminSecret string
	keys        *keygen.Generator
	licenseSvc  *license.Service
	sessionSvc  *session.Service
}

func NewService(
	db *sqlx.DB,
	adminSecret string,
	keys *keygen.Generator,
	licenseSvc *license.Service,
	sessionSvc *session.Service,
) *Service {
	return &Service{
		db:          db,
		adminSecret: adminSecret,
		keys:        keys,
		licenseSvc:  licenseSvc,
		sessionSvc:  sessionSvc,
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

// Issue creates a new unactivated license key. The record is committed
// before Issue returns, so the key is visible to activation immediately.
func (s *Service) Issue(ctx context.Context, secret string, days any) (*license.Record, error) {
	if !constantEqual(secret, s.adminSecret) {
		return nil, ErrAccessDenied
	}

	d := normalizeDays(days)
	now := time.Now()

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key, err := s.keys.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate key: %w", err)
		}

		rec := &license.Record{
			LicenseKey:  key,
			LicenseDays: d,
			CreatedAt:   now,
			ExpiresAt:   now.Add(time.Duration(d) * 24 * time.Hour),
		}

		err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
			return s.licenseSvc.CreateTx(ctx, tx, rec)
		})
		if sqlite.IsUniqueConstraintError(err) {
			// Key collision: try a fresh key
			continue
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	}

	return nil, errors.New("could not generate a unique license key")
}

// ActivationResult is returned on a successful activation (first or repeat).
type ActivationResult struct {
	Record    *license.Record
	SessionID string
}

// Activate binds a key to a HWID. The binding happens exactly once for the
// life of the key: re-activation with the same HWID is an idempotent success
// (and still mints a fresh session token), any other HWID is rejected with
// no state change. A conditional UPDATE claims the never-activated row, so
// concurrent first activations serialize on the store.
func (s *Service) Activate(ctx context.Context, key, hwid string) (*ActivationResult, error) {
	if key == "" || hwid == "" {
		return nil, ErrMissingInput
	}

	rec, err := s.licenseSvc.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrUnknownKey
	}

	now := time.Now()
	var sessionID string
	claimed := false

	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		ok, err := s.licenseSvc.Activate(ctx, tx, key, hwid, now)
		if err != nil {
			return err
		}
		claimed = ok
		if !ok {
			return nil
		}
		sessionID, err = s.sessionSvc.Issue(ctx, tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !claimed {
		// The key was already activated; re-read the committed binding.
		rec, err = s.licenseSvc.GetByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if rec == nil || !rec.BoundTo(hwid) {
			return nil, ErrDeviceMismatch
		}

		// Same device re-activating: mint a fresh session
		err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
			sessionID, err = s.sessionSvc.Issue(ctx, tx, key)
			return err
		})
		if err != nil {
			return nil, err
		}

		return &ActivationResult{Record: rec, SessionID: sessionID}, nil
	}

	rec, err = s.licenseSvc.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	return &ActivationResult{Record: rec, SessionID: sessionID}, nil
}

// Query identifies a license either directly by key+HWID or indirectly by a
// session token minted at activation.
type Query struct {
	Key       string
	SessionID string
	HWID      string
}

// Verdict is a successful validation outcome.
type Verdict struct {
	Valid     bool
	ExpiresAt time.Time
}

// Validate checks a key or session against the current stored record.
// When resolving by session the HWID is not re-checked; the token itself is
// proof of the device that activated.
func (s *Service) Validate(ctx context.Context, q Query) (*Verdict, error) {
	var rec *license.Record
	var err error

	if q.SessionID != "" {
		rec, err = s.sessionSvc.Resolve(ctx, q.SessionID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, ErrInvalidSession
		}
	} else {
		if q.Key == "" || q.HWID == "" {
			return nil, ErrMissingInput
		}
		rec, err = s.licenseSvc.GetByKey(ctx, q.Key)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, ErrUnknownKey
		}
	}

	if !rec.Activated {
		return nil, ErrNotActivated
	}
	if q.SessionID == "" && !rec.BoundTo(q.HWID) {
		return nil, ErrHWIDMismatch
	}
	if rec.Expired(time.Now()) {
		return nil, ErrExpired
	}

	return &Verdict{Valid: true, ExpiresAt: rec.ExpiresAt}, nil
}

// List returns every issued key, mapped by key string.
func (s *Service) List(ctx context.Context) (map[string]license.Record, error) {
	records, err := s.licenseSvc.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]license.Record, len(records))
	for _, rec := range records {
		out[rec.LicenseKey] = rec
	}
	return out, nil
}

// normalizeDays clamps the requested license term to [1, 365]. Anything that
// is not an integral number in range (strings, fractions, missing values)
// falls back to the default rather than failing the request.
func normalizeDays(v any) int {
	switch d := v.(type) {
	case int:
		if d >= minLicenseDays && d <= maxLicenseDays {
			return d
		}
	case float64: // JSON numbers bind as float64
		if d == math.Trunc(d) {
			n := int(d)
			if n >= minLicenseDays && n <= maxLicenseDays {
				return n
			}
		}
	}
	return DefaultLicenseDays
}

// constantEqual provides constant-time string equality to avoid timing attacks.
func constantEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
