// File path: internal/save/diff.go
package save

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"projectvault/internal/store"
)

// Change pairs an incoming file with the stored content it replaces.
type Change struct {
	FileID     int64
	Path       string
	OldContent string
	NewContent string
	Diff       string
}

// DiffFiles compares the stored current tree with the incoming file set
// and returns one Change per file whose content actually differs. New
// paths produce no change (there is no prior content to diff against)
// and stored paths absent from the incoming set are left untouched.
// Pure comparison; no store access.
func DiffFiles(current []store.ProjectFile, incoming []FileInput) []Change {
	if len(current) == 0 || len(incoming) == 0 {
		return nil
	}
	byPath := make(map[string]*store.ProjectFile, len(current))
	for i := range current {
		byPath[current[i].Path] = &current[i]
	}
	dmp := diffmatchpatch.New()
	var changes []Change
	for _, file := range incoming {
		existing, ok := byPath[file.Path]
		if !ok || existing.Content == file.Content {
			continue
		}
		patches := dmp.PatchMake(existing.Content, file.Content)
		changes = append(changes, Change{
			FileID:     existing.ID,
			Path:       file.Path,
			OldContent: existing.Content,
			NewContent: file.Content,
			Diff:       dmp.PatchToText(patches),
		})
	}
	return changes
}
