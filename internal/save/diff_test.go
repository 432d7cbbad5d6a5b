// File path: internal/save/diff_test.go
package save

import (
	"testing"

	"projectvault/internal/store"
)

func TestDiffFilesDetectsChangedContent(t *testing.T) {
	current := []store.ProjectFile{
		{ID: 1, Path: "src/App.jsx", Content: "A"},
		{ID: 2, Path: "src/index.js", Content: "same"},
	}
	incoming := []FileInput{
		{Path: "src/App.jsx", Content: "B"},
		{Path: "src/index.js", Content: "same"},
		{Path: "src/new.jsx", Content: "C"},
	}
	changes := DiffFiles(current, incoming)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	change := changes[0]
	if change.FileID != 1 || change.Path != "src/App.jsx" {
		t.Fatalf("unexpected change target: %+v", change)
	}
	if change.OldContent != "A" || change.NewContent != "B" {
		t.Fatalf("unexpected change contents: %+v", change)
	}
	if change.Diff == "" {
		t.Fatal("expected a non-empty patch")
	}
}

func TestDiffFilesNewPathsProduceNoChange(t *testing.T) {
	incoming := []FileInput{{Path: "src/new.jsx", Content: "C"}}
	if changes := DiffFiles(nil, incoming); changes != nil {
		t.Fatalf("expected no changes for empty current tree, got %d", len(changes))
	}
	current := []store.ProjectFile{{ID: 5, Path: "src/other.jsx", Content: "X"}}
	if changes := DiffFiles(current, incoming); changes != nil {
		t.Fatalf("expected no changes for unknown path, got %d", len(changes))
	}
}

func TestDiffFilesLeavesRemovedPathsUntouched(t *testing.T) {
	current := []store.ProjectFile{
		{ID: 1, Path: "src/App.jsx", Content: "A"},
		{ID: 2, Path: "src/gone.jsx", Content: "old"},
	}
	incoming := []FileInput{{Path: "src/App.jsx", Content: "A2"}}
	changes := DiffFiles(current, incoming)
	if len(changes) != 1 || changes[0].Path != "src/App.jsx" {
		t.Fatalf("expected only the incoming path to change, got %+v", changes)
	}
}

func TestDiffFilesEmptyInputs(t *testing.T) {
	if changes := DiffFiles(nil, nil); changes != nil {
		t.Fatalf("expected nil, got %+v", changes)
	}
}
