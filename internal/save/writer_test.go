// File path: internal/save/writer_test.go
package save

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"projectvault/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenWithConfig(store.Config{
		Path:         filepath.Join(t.TempDir(), "vault.db"),
		MaxOpenConns: 4,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedProject(t *testing.T, st *store.Store, id string) {
	t.Helper()
	if err := st.CreateProject(context.Background(), id, "Demo", "", "user-1"); err != nil {
		t.Fatalf("create project: %v", err)
	}
}

func TestSaveSequenceIsGapFree(t *testing.T) {
	st := openTestStore(t)
	seedProject(t, st, "p1")
	writer := NewWriter(st, 0)
	ctx := context.Background()

	const n = 5
	for i := 1; i <= n; i++ {
		result, err := writer.Save(ctx, Request{
			ProjectID: "p1",
			Files:     []FileInput{{Path: "src/App.jsx", Content: fmt.Sprintf("rev-%d", i)}},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if result.VersionNumber != i {
			t.Fatalf("save %d: expected version number %d, got %d", i, i, result.VersionNumber)
		}
	}
	versions, err := st.VersionsForProject(ctx, "p1")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != n {
		t.Fatalf("expected %d versions, got %d", n, len(versions))
	}
	for i, v := range versions {
		if v.VersionNumber != i+1 {
			t.Fatalf("version %d has number %d", i, v.VersionNumber)
		}
	}
}

func TestSaveRevisionsOnlyForChangedContent(t *testing.T) {
	st := openTestStore(t)
	seedProject(t, st, "p1")
	writer := NewWriter(st, 0)
	ctx := context.Background()

	if _, err := writer.Save(ctx, Request{
		ProjectID: "p1",
		Files:     []FileInput{{Path: "src/App.jsx", Content: "A"}},
	}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	result, err := writer.Save(ctx, Request{
		ProjectID: "p1",
		Files: []FileInput{
			{Path: "src/App.jsx", Content: "B"},
			{Path: "src/new.jsx", Content: "C"},
		},
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if result.Counts.Revisions != 1 {
		t.Fatalf("expected 1 revision, got %d", result.Counts.Revisions)
	}

	revisions, err := st.RevisionsForPath(ctx, "p1", "src/App.jsx")
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(revisions) != 1 {
		t.Fatalf("expected 1 revision row, got %d", len(revisions))
	}
	if revisions[0].OldContent != "A" || revisions[0].NewContent != "B" {
		t.Fatalf("unexpected revision contents: %+v", revisions[0])
	}
	if fresh, err := st.RevisionsForPath(ctx, "p1", "src/new.jsx"); err != nil || len(fresh) != 0 {
		t.Fatalf("expected no revisions for the new path, got %d (err %v)", len(fresh), err)
	}

	// Resaving identical content must not append to the audit trail.
	result, err = writer.Save(ctx, Request{
		ProjectID: "p1",
		Files:     []FileInput{{Path: "src/App.jsx", Content: "B"}},
	})
	if err != nil {
		t.Fatalf("third save: %v", err)
	}
	if result.Counts.Revisions != 0 {
		t.Fatalf("expected 0 revisions for unchanged content, got %d", result.Counts.Revisions)
	}

	files, err := st.CurrentFiles(ctx, "p1")
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 current files, got %d", len(files))
	}
}

func TestSaveIdempotentRetry(t *testing.T) {
	st := openTestStore(t)
	seedProject(t, st, "p1")
	writer := NewWriter(st, 0)
	ctx := context.Background()

	req := Request{
		ProjectID: "p1",
		VersionID: "v-stable",
		Files:     []FileInput{{Path: "src/App.jsx", Content: "A"}},
	}
	first, err := writer.Save(ctx, req)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := writer.Save(ctx, req)
	if err != nil {
		t.Fatalf("replayed save: %v", err)
	}
	if !second.Replayed {
		t.Fatal("expected replay to be detected")
	}
	if second.VersionID != first.VersionID || second.VersionNumber != first.VersionNumber {
		t.Fatalf("replay changed version identity: %+v vs %+v", first, second)
	}
	versions, err := st.VersionsForProject(ctx, "p1")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("expected a single version row, got %d", len(versions))
	}
	if revisions, _ := st.RevisionsForPath(ctx, "p1", "src/App.jsx"); len(revisions) != 0 {
		t.Fatalf("replay created %d revisions", len(revisions))
	}
}

func TestReplayWithDivergentPayloadLeavesArchiveUntouched(t *testing.T) {
	st := openTestStore(t)
	seedProject(t, st, "p1")
	writer := NewWriter(st, 0)
	ctx := context.Background()

	if _, err := writer.Save(ctx, Request{
		ProjectID: "p1",
		VersionID: "v-stable",
		Files:     []FileInput{{Path: "src/App.jsx", Content: "A"}},
	}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// A retry carrying different content must not rewrite the rows the
	// committed version archived.
	result, err := writer.Save(ctx, Request{
		ProjectID: "p1",
		VersionID: "v-stable",
		Files:     []FileInput{{Path: "src/App.jsx", Content: "B"}},
	})
	if err != nil {
		t.Fatalf("replayed save: %v", err)
	}
	if !result.Replayed {
		t.Fatal("expected replay to be detected")
	}

	archived, err := st.CodeFilesForVersion(ctx, "p1", "v-stable")
	if err != nil {
		t.Fatalf("load archive: %v", err)
	}
	if len(archived) != 1 || archived[0].Content != "A" {
		t.Fatalf("replay rewrote the committed archive: %+v", archived)
	}
	files, err := st.CurrentFiles(ctx, "p1")
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 1 || files[0].Content != "A" {
		t.Fatalf("replay mutated the current tree: %+v", files)
	}
	if revisions, _ := st.RevisionsForPath(ctx, "p1", "src/App.jsx"); len(revisions) != 0 {
		t.Fatalf("replay appended %d revision rows", len(revisions))
	}
}

func TestSaveAbortsAtomically(t *testing.T) {
	st := openTestStore(t)
	seedProject(t, st, "p1")
	writer := NewWriter(st, 0)
	ctx := context.Background()

	if _, err := writer.Save(ctx, Request{
		ProjectID: "p1",
		Files:     []FileInput{{Path: "src/App.jsx", Content: "A"}},
	}); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	// The unencodable metadata fails the conversation upsert after the
	// version, revision and file steps have already run in-transaction.
	_, err := writer.Save(ctx, Request{
		ProjectID: "p1",
		Files:     []FileInput{{Path: "src/App.jsx", Content: "B"}},
		Messages: []MessageInput{{
			MessageID: "m1",
			Role:      "user",
			Metadata:  map[string]interface{}{"bad": make(chan int)},
		}},
	})
	if !errors.Is(err, ErrTransactionAborted) {
		t.Fatalf("expected ErrTransactionAborted, got %v", err)
	}

	versions, err := st.VersionsForProject(ctx, "p1")
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("aborted save left %d version rows", len(versions))
	}
	files, err := st.CurrentFiles(ctx, "p1")
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 1 || files[0].Content != "A" {
		t.Fatalf("aborted save mutated the current tree: %+v", files)
	}
	if revisions, _ := st.RevisionsForPath(ctx, "p1", "src/App.jsx"); len(revisions) != 0 {
		t.Fatalf("aborted save left %d revision rows", len(revisions))
	}
	if messages, _ := st.ConversationsForProject(ctx, "p1"); len(messages) != 0 {
		t.Fatalf("aborted save left %d conversation rows", len(messages))
	}
}

func TestConcurrentSavesGetDistinctNumbers(t *testing.T) {
	st := openTestStore(t)
	seedProject(t, st, "p1")
	writer := NewWriter(st, 0)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = writer.Save(context.Background(), Request{
				ProjectID: "p1",
				Files:     []FileInput{{Path: fmt.Sprintf("src/f%d.js", i), Content: "x"}},
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent save %d: %v", i, err)
		}
	}
	numbers := []int{results[0].VersionNumber, results[1].VersionNumber}
	sort.Ints(numbers)
	if numbers[0] != 1 || numbers[1] != 2 {
		t.Fatalf("expected version numbers 1 and 2, got %v", numbers)
	}
}

func TestSaveUnknownProjectRejected(t *testing.T) {
	st := openTestStore(t)
	writer := NewWriter(st, 0)
	_, err := writer.Save(context.Background(), Request{
		ProjectID: "ghost",
		Files:     []FileInput{{Path: "a.js", Content: "x"}},
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestInitialSaveCreatesProjectWithOwner(t *testing.T) {
	st := openTestStore(t)
	writer := NewWriter(st, 0)
	ctx := context.Background()

	// Anonymous callers may not create projects.
	_, err := writer.Save(ctx, Request{
		ProjectID:  "fresh",
		ChangeType: ChangeInitial,
		Files:      []FileInput{{Path: "a.js", Content: "x"}},
	})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	result, err := writer.Save(ctx, Request{
		ProjectID:  "fresh",
		ChangeType: ChangeInitial,
		ActorID:    "user-1",
		Files:      []FileInput{{Path: "a.js", Content: "x"}},
	})
	if err != nil {
		t.Fatalf("initial save: %v", err)
	}
	if result.VersionNumber != 1 {
		t.Fatalf("expected version 1, got %d", result.VersionNumber)
	}
	project, err := st.ProjectByID(ctx, "fresh")
	if err != nil {
		t.Fatalf("load project: %v", err)
	}
	if project.OwnerID != "user-1" {
		t.Fatalf("unexpected owner: %q", project.OwnerID)
	}
}

func TestSaveFilesWritesRevisions(t *testing.T) {
	st := openTestStore(t)
	seedProject(t, st, "p1")
	writer := NewWriter(st, 0)
	ctx := context.Background()

	counts, err := writer.SaveFiles(ctx, "p1", []FileInput{{Path: "src/App.jsx", Content: "A"}})
	if err != nil {
		t.Fatalf("first file save: %v", err)
	}
	if counts.Files != 1 || counts.Revisions != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	counts, err = writer.SaveFiles(ctx, "p1", []FileInput{{Path: "src/App.jsx", Content: "B"}})
	if err != nil {
		t.Fatalf("second file save: %v", err)
	}
	if counts.Revisions != 1 {
		t.Fatalf("expected 1 revision, got %d", counts.Revisions)
	}
	if versions, _ := st.VersionsForProject(ctx, "p1"); len(versions) != 0 {
		t.Fatalf("file-only save created %d version rows", len(versions))
	}
}

func TestSaveRecordsAnalytics(t *testing.T) {
	st := openTestStore(t)
	seedProject(t, st, "p1")
	writer := NewWriter(st, 0)
	ctx := context.Background()

	req := Request{
		ProjectID: "p1",
		VersionID: "v-1",
		Files:     []FileInput{{Path: "a.js", Content: "x"}},
	}
	if _, err := writer.Save(ctx, req); err != nil {
		t.Fatalf("save: %v", err)
	}
	events, err := st.AnalyticsForProject(ctx, "p1", 10)
	if err != nil {
		t.Fatalf("list analytics: %v", err)
	}
	if len(events) != 1 || events[0].EventType != "project_saved" {
		t.Fatalf("unexpected analytics events: %+v", events)
	}
	// Replays do not append a second event.
	if _, err := writer.Save(ctx, req); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if events, _ = st.AnalyticsForProject(ctx, "p1", 10); len(events) != 1 {
		t.Fatalf("replay appended analytics: %d events", len(events))
	}
}
