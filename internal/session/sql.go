package session

const createSQL = `
INSERT INTO session (
    session_id,
    license_key,
    created_at
) VALUES (?, ?, ?)
`

const getSQL = `
SELECT
    session_id,
    license_key,
    created_at
FROM session
WHERE session_id = ?
`

// resolveSQL joins a session to the current state of its license record.
const resolveSQL = `
SELECT
    l.license_key,
    l.activated,
    l.hwid,
    l.license_days,
    l.created_at,
    l.expires_at,
    l.activated_at
FROM session s
JOIN license_key l ON l.license_key = s.license_key
WHERE s.session_id = ?
`

const getForKeySQL = `
SELECT
    session_id,
    license_key,
    created_at
FROM session
WHERE license_key = ?
ORDER BY created_at, session_id
`
