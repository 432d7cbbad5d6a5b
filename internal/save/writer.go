// File path: internal/save/writer.go
package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"projectvault/internal/common"
	"projectvault/internal/common/telemetry"
	"projectvault/internal/store"
)

// maxSequenceAttempts bounds the internal retry when two concurrent
// saves race for the same version number. Exhaustion is a hard failure;
// a number is never silently skipped.
const maxSequenceAttempts = 3

const defaultSaveTimeout = 30 * time.Second

// AnonymousActor is the service identity attributed to saves that carry
// no credential.
const AnonymousActor = "service"

// Writer is the sole entry point for committing a project snapshot. All
// entity writes for one save happen inside a single transaction: either
// every row lands or none do.
type Writer struct {
	store   *store.Store
	logger  *slog.Logger
	timeout time.Duration
}

// NewWriter builds a Writer over the given store. A non-positive timeout
// falls back to the default save budget.
func NewWriter(st *store.Store, timeout time.Duration) *Writer {
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	return &Writer{store: st, logger: common.Logger(), timeout: timeout}
}

// Save validates and commits one snapshot request, returning the
// committed version. Version-number conflicts and lock contention are
// retried with a freshly computed number up to maxSequenceAttempts.
func (w *Writer) Save(ctx context.Context, req Request) (Result, error) {
	if err := Validate(&req); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(req.VersionID) == "" {
		req.VersionID = uuid.NewString()
	}
	if strings.TrimSpace(req.ActorID) == "" {
		req.ActorID = AnonymousActor
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	ctx, finish := telemetry.StartSpan(ctx, "save.snapshot")

	var lastErr error
	for attempt := 1; attempt <= maxSequenceAttempts; attempt++ {
		result := Result{VersionID: req.VersionID}
		err := w.store.WithTx(ctx, func(tx *sqlx.Tx) error {
			return w.apply(ctx, tx, &req, &result)
		})
		if err == nil {
			telemetry.RecordSave(result.Replayed, telemetry.SpanDuration(ctx))
			telemetry.RecordRows(result.Counts.Files, result.Counts.Revisions)
			finish("project", req.ProjectID, "version", result.VersionNumber)
			w.logger.Info("save: snapshot committed",
				"project", req.ProjectID,
				"version", result.VersionNumber,
				"change_type", req.ChangeType,
				"files", result.Counts.Files,
				"revisions", result.Counts.Revisions,
				"messages", result.Counts.Messages,
				"payload", humanize.Bytes(totalBytes(req.Files)),
				"replayed", result.Replayed,
			)
			return result, nil
		}
		if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrUnauthenticated) {
			return Result{}, err
		}
		if store.IsConstraintViolation(err) || store.IsBusy(err) {
			lastErr = err
			telemetry.RecordRetry()
			w.logger.Warn("save: store conflict, retrying",
				"project", req.ProjectID, "attempt", attempt, "error", err)
			continue
		}
		if store.IsUnavailable(err) {
			telemetry.RecordAbort()
			return Result{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		telemetry.RecordAbort()
		return Result{}, fmt.Errorf("%w: %w", ErrTransactionAborted, err)
	}
	telemetry.RecordAbort()
	return Result{}, fmt.Errorf("%w: version allocation retries exhausted: %w", ErrConstraintViolation, lastErr)
}

// apply runs the full save sequence on an open transaction.
func (w *Writer) apply(ctx context.Context, tx *sqlx.Tx, req *Request, result *Result) error {
	project, err := loadProject(ctx, tx, req.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		if req.ChangeType != ChangeInitial {
			return invalidf("project %s not found", req.ProjectID)
		}
		if err := createProject(ctx, tx, req); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("load project: %w", err)
	} else if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, project.ID); err != nil {
		return fmt.Errorf("touch project: %w", err)
	}

	// A caller-stable version id makes retries idempotent: an existing
	// version row means the whole save already committed, so a replay
	// stops here. Re-running the writes would let a retry with a
	// divergent payload rewrite the committed archive.
	existing, err := loadVersion(ctx, tx, req.VersionID)
	switch {
	case err == nil:
		if existing.ProjectID != req.ProjectID {
			return invalidf("versionId %s belongs to another project", req.VersionID)
		}
		result.Replayed = true
		result.VersionNumber = existing.VersionNumber
		return nil
	case errors.Is(err, sql.ErrNoRows):
		number, seqErr := nextVersionNumber(ctx, tx, req.ProjectID)
		if seqErr != nil {
			return seqErr
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO project_versions(id, project_id, version_number, change_type, change_description, user_prompt, ai_response, created_by)
VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?)`,
			req.VersionID, req.ProjectID, number, req.ChangeType,
			req.ChangeDescription, req.UserPrompt, req.AIResponse, req.ActorID); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
		result.VersionNumber = number
	default:
		return fmt.Errorf("load version: %w", err)
	}

	current, err := loadCurrentFiles(ctx, tx, req.ProjectID)
	if err != nil {
		return err
	}
	changes := DiffFiles(current, req.Files)
	if result.Counts.Revisions, err = insertRevisions(ctx, tx, changes); err != nil {
		return err
	}
	if result.Counts.Files, err = upsertProjectFiles(ctx, tx, req.ProjectID, req.Files); err != nil {
		return err
	}
	if result.Counts.CodeFiles, err = upsertCodeFiles(ctx, tx, req.ProjectID, req.VersionID, req.Files); err != nil {
		return err
	}
	if result.Counts.Messages, err = upsertConversations(ctx, tx, req.ProjectID, req.VersionID, req.Messages); err != nil {
		return err
	}
	if result.Counts.Sandbox, err = upsertSandbox(ctx, tx, req.ProjectID, req.Sandbox); err != nil {
		return err
	}
	if err := updateProjectMeta(ctx, tx, req.ProjectID, req.VersionID); err != nil {
		return err
	}
	// Analytics is best effort: a failed event insert is logged but
	// never aborts an otherwise successful save.
	if err := w.insertAnalytics(ctx, tx, req, result); err != nil {
		w.logger.Warn("save: analytics insert failed", "project", req.ProjectID, "error", err)
	}
	return nil
}

// SaveFiles is the lightweight file-only save path: revisions for the
// paths whose content changed, then current-tree upserts, in one
// transaction. No version row is created.
func (w *Writer) SaveFiles(ctx context.Context, projectID string, files []FileInput) (Counts, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return Counts{}, invalidf("projectId required")
	}
	if len(files) == 0 {
		return Counts{}, invalidf("files required")
	}
	for i := range files {
		files[i].Path = strings.TrimSpace(files[i].Path)
		if files[i].Path == "" {
			return Counts{}, invalidf("files[%d].path required", i)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= maxSequenceAttempts; attempt++ {
		var counts Counts
		err := w.store.WithTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := loadProject(ctx, tx, projectID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return invalidf("project %s not found", projectID)
				}
				return fmt.Errorf("load project: %w", err)
			}
			current, err := loadCurrentFiles(ctx, tx, projectID)
			if err != nil {
				return err
			}
			changes := DiffFiles(current, files)
			if counts.Revisions, err = insertRevisions(ctx, tx, changes); err != nil {
				return err
			}
			if counts.Files, err = upsertProjectFiles(ctx, tx, projectID, files); err != nil {
				return err
			}
			return updateProjectMeta(ctx, tx, projectID, "")
		})
		if err == nil {
			telemetry.RecordRows(counts.Files, counts.Revisions)
			w.logger.Info("save: files committed",
				"project", projectID, "files", counts.Files, "revisions", counts.Revisions)
			return counts, nil
		}
		if errors.Is(err, ErrInvalidRequest) {
			return Counts{}, err
		}
		if store.IsBusy(err) {
			lastErr = err
			telemetry.RecordRetry()
			w.logger.Warn("save: store busy, retrying", "project", projectID, "attempt", attempt)
			continue
		}
		if store.IsUnavailable(err) {
			return Counts{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return Counts{}, fmt.Errorf("%w: %w", ErrTransactionAborted, err)
	}
	return Counts{}, fmt.Errorf("%w: retries exhausted: %w", ErrConstraintViolation, lastErr)
}

func loadProject(ctx context.Context, tx *sqlx.Tx, projectID string) (*store.Project, error) {
	var project store.Project
	if err := tx.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = ?`, projectID); err != nil {
		return nil, err
	}
	return &project, nil
}

func createProject(ctx context.Context, tx *sqlx.Tx, req *Request) error {
	if req.ActorID == AnonymousActor {
		return fmt.Errorf("%w: project creation requires an owner identity", ErrUnauthenticated)
	}
	title := strings.TrimSpace(req.ChangeDescription)
	if title == "" {
		title = req.ProjectID
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO projects(id, title, description, owner_id, metadata)
VALUES (?, ?, '', ?, '{}')`, req.ProjectID, title, req.ActorID); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func loadVersion(ctx context.Context, tx *sqlx.Tx, versionID string) (*store.ProjectVersion, error) {
	var version store.ProjectVersion
	if err := tx.GetContext(ctx, &version, `SELECT * FROM project_versions WHERE id = ?`, versionID); err != nil {
		return nil, err
	}
	return &version, nil
}

func loadCurrentFiles(ctx context.Context, tx *sqlx.Tx, projectID string) ([]store.ProjectFile, error) {
	files := []store.ProjectFile{}
	if err := tx.SelectContext(ctx, &files, `SELECT * FROM project_files WHERE project_id = ?`, projectID); err != nil {
		return nil, fmt.Errorf("load current files: %w", err)
	}
	return files, nil
}

func updateProjectMeta(ctx context.Context, tx *sqlx.Tx, projectID, versionID string) error {
	var fileCount int
	if err := tx.GetContext(ctx, &fileCount, `SELECT COUNT(*) FROM project_files WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("count files: %w", err)
	}
	meta := store.ProjectMeta{LastVersionID: versionID, FileCount: fileCount}
	if versionID == "" {
		var last sql.NullString
		if err := tx.GetContext(ctx, &last, `
SELECT json_extract(metadata, '$.last_version_id') FROM projects WHERE id = ?`, projectID); err == nil && last.Valid {
			meta.LastVersionID = last.String
		}
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode project metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE projects SET metadata = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, string(encoded), projectID); err != nil {
		return fmt.Errorf("update project metadata: %w", err)
	}
	return nil
}

func (w *Writer) insertAnalytics(ctx context.Context, tx *sqlx.Tx, req *Request, result *Result) error {
	payload, err := json.Marshal(map[string]interface{}{
		"version_id":     req.VersionID,
		"version_number": result.VersionNumber,
		"change_type":    req.ChangeType,
		"file_count":     result.Counts.Files,
		"message_count":  result.Counts.Messages,
		"revision_count": result.Counts.Revisions,
	})
	if err != nil {
		return fmt.Errorf("encode analytics payload: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO analytics_events(id, project_id, event_type, payload, actor_id)
VALUES (?, ?, 'project_saved', ?, ?)`,
		uuid.NewString(), req.ProjectID, string(payload), req.ActorID); err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

func totalBytes(files []FileInput) uint64 {
	var total uint64
	for _, file := range files {
		total += uint64(len(file.Content))
	}
	return total
}
