package sqlite_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/keyserver/internal/testutil"
)

// countWhere returns the count from a query with args
func countWhere(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var count int
	if err := db.Get(&count, query, args...); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return count
}

// insertTestData executes SQL statements to set up test data
func insertTestData(t *testing.T, db *sqlx.DB, sql string) {
	t.Helper()
	if _, err := db.Exec(sql); err != nil {
		t.Fatalf("insert test data: %v", err)
	}
}

// TestCascadeDeleteKey verifies that deleting a license key cascades to its
// sessions without touching sessions minted for other keys.
func TestCascadeDeleteKey(t *testing.T) {
	db := testutil.NewTestDB(t)

	// Key 1 has 2 sessions, key 2 has 1 session
	insertTestData(t, db, `
		INSERT INTO license_key (license_key, activated, hwid, license_days, created_at, expires_at, activated_at) VALUES
			('CLONE-AAAA-BBBB-0001', 1, 'HW-001', 30, '2025-01-01 00:00:00', '2025-01-31 00:00:00', '2025-01-02 00:00:00'),
			('CLONE-AAAA-BBBB-0002', 1, 'HW-002', 30, '2025-01-01 00:00:00', '2025-01-31 00:00:00', '2025-01-02 00:00:00');

		INSERT INTO session (session_id, license_key, created_at) VALUES
			('sess-1a', 'CLONE-AAAA-BBBB-0001', '2025-01-02 00:00:00'),
			('sess-1b', 'CLONE-AAAA-BBBB-0001', '2025-01-03 00:00:00'),
			('sess-2a', 'CLONE-AAAA-BBBB-0002', '2025-01-02 00:00:00');
	`)

	// Verify initial state
	if got := countWhere(t, db, "SELECT COUNT(*) FROM session WHERE license_key = 'CLONE-AAAA-BBBB-0001'"); got != 2 {
		t.Fatalf("expected 2 sessions for key 1, got %d", got)
	}

	// Delete key 1
	if _, err := db.Exec("DELETE FROM license_key WHERE license_key = 'CLONE-AAAA-BBBB-0001'"); err != nil {
		t.Fatalf("delete key: %v", err)
	}

	// Verify cascade deletion
	if got := countWhere(t, db, "SELECT COUNT(*) FROM session WHERE license_key = 'CLONE-AAAA-BBBB-0001'"); got != 0 {
		t.Errorf("expected 0 sessions after delete, got %d", got)
	}

	// Verify key 2's session is intact
	if got := countWhere(t, db, "SELECT COUNT(*) FROM session WHERE license_key = 'CLONE-AAAA-BBBB-0002'"); got != 1 {
		t.Errorf("expected key 2's session to remain, got %d", got)
	}
}

// TestForeignKeyEnforcementEnabled verifies that FK constraints are enforced
func TestForeignKeyEnforcementEnabled(t *testing.T) {
	db := testutil.NewTestDB(t)

	// Try to create a session for a non-existent key
	_, err := db.Exec(`INSERT INTO session (session_id, license_key, created_at)
		VALUES ('sess-orphan', 'CLONE-DOES-NOTT-EXST', '2025-01-01 00:00:00')`)
	if err == nil {
		t.Fatal("expected FK error when creating session for non-existent key")
	}
}
