package cache

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL CHECK(kind IN ('courses', 'notifications')),
	fetched_at DATETIME NOT NULL,
	UNIQUE(user_id, kind)
);

CREATE TABLE IF NOT EXISTS courses (
	id         TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	position   INTEGER NOT NULL DEFAULT 0,
	data       TEXT NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	position   INTEGER NOT NULL DEFAULT 0,
	data       TEXT NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS unread_counts (
	user_id TEXT PRIMARY KEY,
	count   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_courses_user ON courses(user_id, position);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, position);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
