// File path: internal/store/queries.go
package store

import (
	"context"
	"fmt"
	"strings"
)

// CreateProject inserts a new project row. The id must be unique; the
// metadata blob starts empty and is maintained by the save path.
func (s *Store) CreateProject(ctx context.Context, id, title, description, ownerID string) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("project id required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO projects(id, title, description, owner_id, metadata)
VALUES (?, ?, ?, ?, '{}')`, id, title, description, ownerID)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// ProjectByID returns a single project row.
func (s *Store) ProjectByID(ctx context.Context, id string) (*Project, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	var project Project
	if err := s.db.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects returns summary rows for all projects, most recently
// updated first.
func (s *Store) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	summaries := []ProjectSummary{}
	if err := s.db.SelectContext(ctx, &summaries, `
SELECT id, title, owner_id, updated_at, file_count, latest_version, total_bytes
FROM project_summaries
ORDER BY updated_at DESC`); err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	return summaries, nil
}

// CurrentFiles returns the live file tree for a project.
func (s *Store) CurrentFiles(ctx context.Context, projectID string) ([]ProjectFile, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	files := []ProjectFile{}
	if err := s.db.SelectContext(ctx, &files, `
SELECT * FROM project_files WHERE project_id = ? ORDER BY path`, projectID); err != nil {
		return nil, fmt.Errorf("select files: %w", err)
	}
	return files, nil
}

// VersionsForProject returns all versions for a project in ascending
// version-number order.
func (s *Store) VersionsForProject(ctx context.Context, projectID string) ([]ProjectVersion, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	versions := []ProjectVersion{}
	if err := s.db.SelectContext(ctx, &versions, `
SELECT * FROM project_versions WHERE project_id = ? ORDER BY version_number`, projectID); err != nil {
		return nil, fmt.Errorf("select versions: %w", err)
	}
	return versions, nil
}

// VersionByID returns a single version row.
func (s *Store) VersionByID(ctx context.Context, id string) (*ProjectVersion, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	var version ProjectVersion
	if err := s.db.GetContext(ctx, &version, `SELECT * FROM project_versions WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &version, nil
}

// CodeFilesForVersion returns the archived snapshot for one version.
func (s *Store) CodeFilesForVersion(ctx context.Context, projectID, versionID string) ([]CodeFile, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	files := []CodeFile{}
	if err := s.db.SelectContext(ctx, &files, `
SELECT * FROM code_files WHERE project_id = ? AND version_id = ? ORDER BY path`, projectID, versionID); err != nil {
		return nil, fmt.Errorf("select code files: %w", err)
	}
	return files, nil
}

// RevisionsForPath returns the audit trail for one file path, oldest
// transition first.
func (s *Store) RevisionsForPath(ctx context.Context, projectID, path string) ([]FileRevision, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	revisions := []FileRevision{}
	if err := s.db.SelectContext(ctx, &revisions, `
SELECT r.* FROM file_revisions r
INNER JOIN project_files f ON f.id = r.file_id
WHERE f.project_id = ? AND f.path = ?
ORDER BY r.sequence`, projectID, path); err != nil {
		return nil, fmt.Errorf("select revisions: %w", err)
	}
	return revisions, nil
}

// ConversationsForProject returns recorded messages in insertion order.
func (s *Store) ConversationsForProject(ctx context.Context, projectID string) ([]ConversationMessage, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	messages := []ConversationMessage{}
	if err := s.db.SelectContext(ctx, &messages, `
SELECT * FROM conversations WHERE project_id = ? ORDER BY created_at, message_id`, projectID); err != nil {
		return nil, fmt.Errorf("select conversations: %w", err)
	}
	return messages, nil
}

// SandboxForProject returns the live sandbox row, or a not-found error.
func (s *Store) SandboxForProject(ctx context.Context, projectID string) (*SandboxState, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	var state SandboxState
	if err := s.db.GetContext(ctx, &state, `SELECT * FROM sandbox_states WHERE project_id = ?`, projectID); err != nil {
		return nil, err
	}
	return &state, nil
}

// AnalyticsForProject returns the most recent analytics events.
func (s *Store) AnalyticsForProject(ctx context.Context, projectID string, limit int) ([]AnalyticsEvent, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	events := []AnalyticsEvent{}
	if err := s.db.SelectContext(ctx, &events, `
SELECT * FROM analytics_events WHERE project_id = ?
ORDER BY created_at DESC, id DESC LIMIT ?`, projectID, limit); err != nil {
		return nil, fmt.Errorf("select analytics: %w", err)
	}
	return events, nil
}

// EnsureToken registers an access token hash for an owner. Existing rows
// are refreshed in place so restarts with the same token are harmless.
func (s *Store) EnsureToken(ctx context.Context, tokenHash, ownerID, label string) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if strings.TrimSpace(tokenHash) == "" || strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("token hash and owner required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO access_tokens(token_hash, owner_id, label)
VALUES (?, ?, ?)
ON CONFLICT(token_hash) DO UPDATE SET owner_id=excluded.owner_id, label=excluded.label`,
		tokenHash, ownerID, label)
	if err != nil {
		return fmt.Errorf("ensure token: %w", err)
	}
	return nil
}

// OwnerForToken resolves a token hash to its owner id.
func (s *Store) OwnerForToken(ctx context.Context, tokenHash string) (string, error) {
	if err := s.ensureReady(); err != nil {
		return "", err
	}
	var ownerID string
	if err := s.db.GetContext(ctx, &ownerID, `SELECT owner_id FROM access_tokens WHERE token_hash = ?`, tokenHash); err != nil {
		return "", err
	}
	return ownerID, nil
}
