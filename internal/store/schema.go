// File path: internal/store/schema.go
package store

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS projects (
                id TEXT PRIMARY KEY,
                title TEXT NOT NULL,
                description TEXT,
                owner_id TEXT NOT NULL DEFAULT '',
                metadata TEXT NOT NULL DEFAULT '{}',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS project_files (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                project_id TEXT NOT NULL,
                path TEXT NOT NULL,
                content TEXT NOT NULL DEFAULT '',
                byte_size INTEGER NOT NULL DEFAULT 0,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
                UNIQUE(project_id, path)
        );`,
	`CREATE TABLE IF NOT EXISTS file_revisions (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                file_id INTEGER NOT NULL,
                sequence INTEGER NOT NULL,
                old_content TEXT NOT NULL DEFAULT '',
                new_content TEXT NOT NULL DEFAULT '',
                diff TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                FOREIGN KEY(file_id) REFERENCES project_files(id) ON DELETE CASCADE,
                UNIQUE(file_id, sequence)
        );`,
	`CREATE TABLE IF NOT EXISTS project_versions (
                id TEXT PRIMARY KEY,
                project_id TEXT NOT NULL,
                version_number INTEGER NOT NULL,
                change_type TEXT NOT NULL,
                change_description TEXT,
                user_prompt TEXT,
                ai_response TEXT,
                created_by TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
                UNIQUE(project_id, version_number)
        );`,
	`CREATE TABLE IF NOT EXISTS code_files (
                project_id TEXT NOT NULL,
                version_id TEXT NOT NULL,
                path TEXT NOT NULL,
                name TEXT NOT NULL DEFAULT '',
                content TEXT NOT NULL DEFAULT '',
                file_type TEXT NOT NULL DEFAULT '',
                byte_size INTEGER NOT NULL DEFAULT 0,
                is_active INTEGER NOT NULL DEFAULT 1,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                PRIMARY KEY(project_id, version_id, path),
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS conversations (
                project_id TEXT NOT NULL,
                message_id TEXT NOT NULL,
                role TEXT NOT NULL,
                content TEXT NOT NULL DEFAULT '',
                version_id TEXT,
                metadata TEXT NOT NULL DEFAULT '{}',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                PRIMARY KEY(project_id, message_id),
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS sandbox_states (
                project_id TEXT PRIMARY KEY,
                sandbox_id TEXT NOT NULL DEFAULT '',
                sandbox_url TEXT NOT NULL DEFAULT '',
                status TEXT NOT NULL DEFAULT '',
                configuration TEXT NOT NULL DEFAULT '{}',
                last_active DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
                id TEXT PRIMARY KEY,
                project_id TEXT NOT NULL,
                event_type TEXT NOT NULL,
                payload TEXT NOT NULL DEFAULT '{}',
                actor_id TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS access_tokens (
                token_hash TEXT PRIMARY KEY,
                owner_id TEXT NOT NULL,
                label TEXT NOT NULL DEFAULT '',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE INDEX IF NOT EXISTS idx_project_files_project ON project_files(project_id);`,
	`CREATE INDEX IF NOT EXISTS idx_file_revisions_file ON file_revisions(file_id, sequence);`,
	`CREATE INDEX IF NOT EXISTS idx_project_versions_project ON project_versions(project_id, version_number);`,
	`CREATE INDEX IF NOT EXISTS idx_code_files_version ON code_files(project_id, version_id);`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_project ON conversations(project_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_project_created ON analytics_events(project_id, created_at);`,
	`CREATE VIEW IF NOT EXISTS project_summaries AS
                SELECT
                        p.id,
                        p.title,
                        p.owner_id,
                        p.updated_at,
                        COALESCE(f.file_count, 0) AS file_count,
                        COALESCE(v.latest_version, 0) AS latest_version,
                        COALESCE(f.total_bytes, 0) AS total_bytes
                FROM projects p
                LEFT JOIN (
                        SELECT project_id, COUNT(*) AS file_count, SUM(byte_size) AS total_bytes
                        FROM project_files
                        GROUP BY project_id
                ) f ON f.project_id = p.id
                LEFT JOIN (
                        SELECT project_id, MAX(version_number) AS latest_version
                        FROM project_versions
                        GROUP BY project_id
                ) v ON v.project_id = p.id;`,
}
