package license

const getByKeySQL = `
SELECT
    license_key,
    activated,
    hwid,
    license_days,
    created_at,
    expires_at,
    activated_at
FROM license_key
WHERE license_key = ?
`

const listSQL = `
SELECT
    license_key,
    activated,
    hwid,
    license_days,
    created_at,
    expires_at,
    activated_at
FROM license_key
ORDER BY created_at, license_key
`

const createSQL = `
INSERT INTO license_key (
    license_key,
    activated,
    hwid,
    license_days,
    created_at,
    expires_at,
    activated_at
) VALUES (?, 0, NULL, ?, ?, ?, NULL)
`

// activateSQL claims a never-activated key. The activated = 0 guard makes
// the read-check-write race safe: of any number of concurrent first
// activations, exactly one UPDATE changes a row.
const activateSQL = `
UPDATE license_key
SET
    activated = 1,
    hwid = ?,
    activated_at = ?
WHERE license_key = ? AND activated = 0
`
