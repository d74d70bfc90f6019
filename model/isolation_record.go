package model

// IsolationRecord is a row in the durable isolation audit log.
// The database table is named 'isolation_records'.
type IsolationRecord struct {
	RecordID      int64  `db:"record_id"` // Primary Key, Auto-increment
	GuildID       string `db:"guild_id"`
	UserID        string `db:"user_id"`
	ModeratorID   string `db:"moderator_id"`
	ChannelID     string `db:"channel_id"`
	Reason        string `db:"reason"`
	CreatedAt     int64  `db:"created_at"`
	ReleaseAt     int64  `db:"release_at"`
	ReleasedAt    int64  `db:"released_at"`  // 0 while the isolation is active
	ReleasedBy    string `db:"released_by"`  // moderator ID, or "sweep" for auto-release
	RolesReturned bool   `db:"roles_returned"`
}
