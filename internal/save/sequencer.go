// File path: internal/save/sequencer.go
package save

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// nextVersionNumber computes the next version number for a project on
// the open transaction. The read and the consuming insert share the
// transaction; the UNIQUE(project_id, version_number) constraint rejects
// the loser when two writers race, and the caller retries with a fresh
// number.
func nextVersionNumber(ctx context.Context, tx *sqlx.Tx, projectID string) (int, error) {
	var max sql.NullInt64
	if err := tx.GetContext(ctx, &max, `
SELECT MAX(version_number) FROM project_versions WHERE project_id = ?`, projectID); err != nil {
		return 0, fmt.Errorf("read max version number: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// nextRevisionSequence computes the next append-only revision sequence
// for a file on the open transaction.
func nextRevisionSequence(ctx context.Context, tx *sqlx.Tx, fileID int64) (int, error) {
	var max sql.NullInt64
	if err := tx.GetContext(ctx, &max, `
SELECT MAX(sequence) FROM file_revisions WHERE file_id = ?`, fileID); err != nil {
		return 0, fmt.Errorf("read max revision sequence: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}
