package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"warden-bot/model"
)

// InitIsolationDB opens the isolation audit database and ensures the
// table exists.
func InitIsolationDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to isolation database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS isolation_records (
        record_id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        moderator_id TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        reason TEXT NOT NULL,
        created_at INTEGER NOT NULL,
        release_at INTEGER NOT NULL,
        released_at INTEGER NOT NULL DEFAULT 0,
        released_by TEXT NOT NULL DEFAULT '',
        roles_returned BOOLEAN NOT NULL DEFAULT 0
    );`

	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create isolation_records table: %w", err)
	}

	return db, nil
}

// AddIsolationRecord inserts a new audit row for a fresh isolation.
func AddIsolationRecord(db *sqlx.DB, rec model.IsolationRecord) error {
	query := `INSERT INTO isolation_records
              (guild_id, user_id, moderator_id, channel_id, reason, created_at, release_at, released_at, released_by, roles_returned)
              VALUES (:guild_id, :user_id, :moderator_id, :channel_id, :reason, :created_at, :release_at, :released_at, :released_by, :roles_returned)`

	_, err := db.NamedExec(query, rec)
	if err != nil {
		return fmt.Errorf("failed to insert isolation record: %w", err)
	}
	return nil
}

// MarkIsolationReleased stamps the open audit row for the user with the
// release time and who performed the release ("sweep" for auto-release).
func MarkIsolationReleased(db *sqlx.DB, guildID, userID string, releasedAt int64, releasedBy string, rolesReturned bool) error {
	query := `UPDATE isolation_records
              SET released_at = ?, released_by = ?, roles_returned = ?
              WHERE guild_id = ? AND user_id = ? AND released_at = 0`
	_, err := db.Exec(query, releasedAt, releasedBy, rolesReturned, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark isolation released for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// GetIsolationRecordsByUser returns the audit history for a user in a
// guild, newest first.
func GetIsolationRecordsByUser(db *sqlx.DB, guildID, userID string) ([]model.IsolationRecord, error) {
	var records []model.IsolationRecord
	query := `SELECT * FROM isolation_records WHERE guild_id = ? AND user_id = ? ORDER BY created_at DESC`
	err := db.Select(&records, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get isolation records for user %s: %w", userID, err)
	}
	return records, nil
}
