package mysql

// Single-row-per-client token table; upsert keeps replacement atomic so
// concurrent mints resolve last-write-wins.
const upsertTokenSQL = `
INSERT INTO provider_tokens (client_id, token, expires_at)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  token      = VALUES(token),
  expires_at = VALUES(expires_at),
  updated_at = CURRENT_TIMESTAMP
`

// Only unexpired rows count as credentials; expired rows are left for the
// next upsert to overwrite.
const getTokenSQL = `
SELECT client_id, token, expires_at
FROM provider_tokens
WHERE client_id = ? AND expires_at > NOW()
LIMIT 1
`

const deleteTokenSQL = `DELETE FROM provider_tokens WHERE client_id = ?`

const deleteAllTokensSQL = `DELETE FROM provider_tokens`

// SchemaSQL creates the token table; applied by deploy tooling and the
// integration tests.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS provider_tokens (
  client_id  VARCHAR(64)  NOT NULL PRIMARY KEY,
  token      TEXT         NOT NULL,
  expires_at DATETIME     NOT NULL,
  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)
`
