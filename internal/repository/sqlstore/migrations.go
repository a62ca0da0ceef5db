package sqlstore

type migration struct {
	version    int
	statements []string
}

// migrations is the ordered list of schema migrations.
// The DDL sticks to types both postgres and sqlite accept.
var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS projects (
				id         TEXT PRIMARY KEY,
				title      TEXT NOT NULL,
				owner_id   TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS project_members (
				project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				user_id    TEXT NOT NULL,
				PRIMARY KEY (project_id, user_id)
			)`,
			`CREATE TABLE IF NOT EXISTS tasks (
				project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				id         TEXT NOT NULL,
				position   INTEGER NOT NULL,
				title      TEXT NOT NULL,
				status     TEXT NOT NULL,
				due_date   TIMESTAMP NULL,
				assignees  TEXT NOT NULL DEFAULT '[]',
				PRIMARY KEY (project_id, id)
			)`,
			`CREATE TABLE IF NOT EXISTS notifications (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL,
				type       TEXT NOT NULL,
				title      TEXT NOT NULL,
				message    TEXT NOT NULL,
				priority   TEXT NOT NULL,
				data       TEXT NOT NULL DEFAULT '{}',
				is_read    BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at)`,
			`CREATE TABLE IF NOT EXISTS notification_settings (
				user_id    TEXT PRIMARY KEY,
				settings   TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_notifications_read_created ON notifications (is_read, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_project_members_user ON project_members (user_id)`,
		},
	},
}
