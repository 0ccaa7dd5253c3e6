package license

import "time"

// Record is a single issued license key. A record is created unactivated,
// mutated exactly once (the activation that binds it to a HWID) and never
// deleted; expiry is computed from expires_at, not stored as a state.
type Record struct {
	LicenseKey  string     `db:"license_key" json:"key"`
	Activated   bool       `db:"activated" json:"activated"`
	HWID        *string    `db:"hwid" json:"hwid"`
	LicenseDays int        `db:"license_days" json:"license_days"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	ActivatedAt *time.Time `db:"activated_at" json:"activated_at"`
}

// Expired reports whether the record is expired at the given instant.
// The boundary counts as expired (now >= expires_at), no grace period.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// BoundTo reports whether the record is activated and bound to the given HWID.
func (r *Record) BoundTo(hwid string) bool {
	return r.Activated && r.HWID != nil && *r.HWID == hwid
}
