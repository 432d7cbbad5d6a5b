// File path: internal/store/types.go
package store

import (
	"database/sql"
	"time"
)

// Project is the root entity. Only its children are versioned; the row
// itself is mutated by successful saves.
type Project struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	OwnerID     string    `db:"owner_id"`
	Metadata    string    `db:"metadata"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ProjectMeta is the summary blob serialised into Project.Metadata.
type ProjectMeta struct {
	LastVersionID string `json:"last_version_id,omitempty"`
	FileCount     int    `json:"file_count"`
}

// ProjectFile is the authoritative current content for one path. Exactly
// one live row exists per (project, path); history lives in FileRevision.
type ProjectFile struct {
	ID        int64     `db:"id"`
	ProjectID string    `db:"project_id"`
	Path      string    `db:"path"`
	Content   string    `db:"content"`
	ByteSize  int64     `db:"byte_size"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// FileRevision is an append-only record of one file content transition.
type FileRevision struct {
	ID         int64     `db:"id"`
	FileID     int64     `db:"file_id"`
	Sequence   int       `db:"sequence"`
	OldContent string    `db:"old_content"`
	NewContent string    `db:"new_content"`
	Diff       string    `db:"diff"`
	CreatedAt  time.Time `db:"created_at"`
}

// ProjectVersion is a numbered snapshot boundary for a project.
type ProjectVersion struct {
	ID                string         `db:"id"`
	ProjectID         string         `db:"project_id"`
	VersionNumber     int            `db:"version_number"`
	ChangeType        string         `db:"change_type"`
	ChangeDescription sql.NullString `db:"change_description"`
	UserPrompt        sql.NullString `db:"user_prompt"`
	AIResponse        sql.NullString `db:"ai_response"`
	CreatedBy         string         `db:"created_by"`
	CreatedAt         time.Time      `db:"created_at"`
}

// CodeFile is the immutable per-version archive row for one path.
type CodeFile struct {
	ProjectID string    `db:"project_id"`
	VersionID string    `db:"version_id"`
	Path      string    `db:"path"`
	Name      string    `db:"name"`
	Content   string    `db:"content"`
	FileType  string    `db:"file_type"`
	ByteSize  int64     `db:"byte_size"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

// ConversationMessage is one chat message recorded against a project.
type ConversationMessage struct {
	ProjectID string         `db:"project_id"`
	MessageID string         `db:"message_id"`
	Role      string         `db:"role"`
	Content   string         `db:"content"`
	VersionID sql.NullString `db:"version_id"`
	Metadata  string         `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

// SandboxState is the single live runtime-sandbox row for a project.
type SandboxState struct {
	ProjectID     string    `db:"project_id"`
	SandboxID     string    `db:"sandbox_id"`
	SandboxURL    string    `db:"sandbox_url"`
	Status        string    `db:"status"`
	Configuration string    `db:"configuration"`
	LastActive    time.Time `db:"last_active"`
}

// AnalyticsEvent is an append-only log entry describing one save.
type AnalyticsEvent struct {
	ID        string    `db:"id"`
	ProjectID string    `db:"project_id"`
	EventType string    `db:"event_type"`
	Payload   string    `db:"payload"`
	ActorID   string    `db:"actor_id"`
	CreatedAt time.Time `db:"created_at"`
}

// ProjectSummary is the aggregate listing row from the project_summaries view.
type ProjectSummary struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	OwnerID       string    `db:"owner_id"`
	UpdatedAt     time.Time `db:"updated_at"`
	FileCount     int       `db:"file_count"`
	LatestVersion int       `db:"latest_version"`
	TotalBytes    int64     `db:"total_bytes"`
}
