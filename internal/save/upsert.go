// File path: internal/save/upsert.go
package save

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// upsertProjectFiles writes the incoming files into the current tree,
// keyed by (project_id, path). Existing rows are replaced in place; new
// paths are inserted. Returns the number of rows written.
func upsertProjectFiles(ctx context.Context, tx *sqlx.Tx, projectID string, files []FileInput) (int, error) {
	for _, file := range files {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO project_files(project_id, path, content, byte_size, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(project_id, path) DO UPDATE SET
        content=excluded.content,
        byte_size=excluded.byte_size,
        updated_at=CURRENT_TIMESTAMP`,
			projectID, file.Path, file.Content, len(file.Content)); err != nil {
			return 0, fmt.Errorf("upsert file %s: %w", file.Path, err)
		}
	}
	return len(files), nil
}

// upsertCodeFiles archives the incoming files under the given version,
// keyed by (project_id, version_id, path).
func upsertCodeFiles(ctx context.Context, tx *sqlx.Tx, projectID, versionID string, files []FileInput) (int, error) {
	for _, file := range files {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO code_files(project_id, version_id, path, name, content, file_type, byte_size, is_active)
VALUES (?, ?, ?, ?, ?, ?, ?, 1)
ON CONFLICT(project_id, version_id, path) DO UPDATE SET
        name=excluded.name,
        content=excluded.content,
        file_type=excluded.file_type,
        byte_size=excluded.byte_size,
        is_active=excluded.is_active`,
			projectID, versionID, file.Path, file.Name, file.Content, file.Type, len(file.Content)); err != nil {
			return 0, fmt.Errorf("upsert code file %s: %w", file.Path, err)
		}
	}
	return len(files), nil
}

// upsertConversations writes conversation messages keyed by
// (project_id, message_id). Conflicting rows have their content and
// metadata replaced; the message id stays the stable key.
func upsertConversations(ctx context.Context, tx *sqlx.Tx, projectID, versionID string, messages []MessageInput) (int, error) {
	for _, msg := range messages {
		metadata := "{}"
		if len(msg.Metadata) > 0 {
			encoded, err := json.Marshal(msg.Metadata)
			if err != nil {
				return 0, fmt.Errorf("encode metadata for message %s: %w", msg.MessageID, err)
			}
			metadata = string(encoded)
		}
		createdAt := msg.Timestamp
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO conversations(project_id, message_id, role, content, version_id, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(project_id, message_id) DO UPDATE SET
        role=excluded.role,
        content=excluded.content,
        version_id=excluded.version_id,
        metadata=excluded.metadata`,
			projectID, msg.MessageID, msg.Role, msg.Content, versionID, metadata, createdAt.UTC()); err != nil {
			return 0, fmt.Errorf("upsert message %s: %w", msg.MessageID, err)
		}
	}
	return len(messages), nil
}

// upsertSandbox fully overwrites the single live sandbox row for the
// project. Sandbox state is current-state, not versioned history.
func upsertSandbox(ctx context.Context, tx *sqlx.Tx, projectID string, sandbox *SandboxInput) (int, error) {
	if sandbox == nil {
		return 0, nil
	}
	configuration := "{}"
	if len(sandbox.Configuration) > 0 {
		encoded, err := json.Marshal(sandbox.Configuration)
		if err != nil {
			return 0, fmt.Errorf("encode sandbox configuration: %w", err)
		}
		configuration = string(encoded)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO sandbox_states(project_id, sandbox_id, sandbox_url, status, configuration, last_active)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(project_id) DO UPDATE SET
        sandbox_id=excluded.sandbox_id,
        sandbox_url=excluded.sandbox_url,
        status=excluded.status,
        configuration=excluded.configuration,
        last_active=CURRENT_TIMESTAMP`,
		projectID, sandbox.SandboxID, sandbox.SandboxURL, sandbox.Status, configuration); err != nil {
		return 0, fmt.Errorf("upsert sandbox state: %w", err)
	}
	return 1, nil
}

// insertRevisions appends one audit-trail row per changed file. Revision
// rows are never updated or deleted once written.
func insertRevisions(ctx context.Context, tx *sqlx.Tx, changes []Change) (int, error) {
	for _, change := range changes {
		sequence, err := nextRevisionSequence(ctx, tx, change.FileID)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO file_revisions(file_id, sequence, old_content, new_content, diff)
VALUES (?, ?, ?, ?, ?)`,
			change.FileID, sequence, change.OldContent, change.NewContent, change.Diff); err != nil {
			return 0, fmt.Errorf("insert revision for %s: %w", change.Path, err)
		}
	}
	return len(changes), nil
}
