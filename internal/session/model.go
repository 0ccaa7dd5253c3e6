package session

import "time"

// Session is an opaque credential minted on successful activation. It
// carries no license state of its own; validity is always re-derived from
// the referenced license record at lookup time.
type Session struct {
	SessionID  string    `db:"session_id" json:"session_id"`
	LicenseKey string    `db:"license_key" json:"key"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
