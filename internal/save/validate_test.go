// File path: internal/save/validate_test.go
package save

import (
	"errors"
	"testing"
)

func TestValidateRejectsMissingProject(t *testing.T) {
	req := Request{Files: []FileInput{{Path: "a.js", Content: "x"}}}
	if err := Validate(&req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestValidateRejectsEmptyPayload(t *testing.T) {
	req := Request{ProjectID: "p1"}
	if err := Validate(&req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestValidateDefaultsAndNormalizes(t *testing.T) {
	req := Request{
		ProjectID: " p1 ",
		Files:     []FileInput{{Path: " src/App.jsx ", Content: "x"}},
		Messages:  []MessageInput{{MessageID: "m1", Role: "USER"}},
	}
	if err := Validate(&req); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if req.ProjectID != "p1" {
		t.Fatalf("project id not trimmed: %q", req.ProjectID)
	}
	if req.ChangeType != ChangeIncremental {
		t.Fatalf("expected default change type, got %q", req.ChangeType)
	}
	file := req.Files[0]
	if file.Path != "src/App.jsx" || file.Name != "App.jsx" || file.Type != "component" {
		t.Fatalf("file not normalized: %+v", file)
	}
	if req.Messages[0].Role != "user" {
		t.Fatalf("role not normalized: %q", req.Messages[0].Role)
	}
}

func TestValidateRejectsUnknownChangeType(t *testing.T) {
	req := Request{
		ProjectID:  "p1",
		ChangeType: "bulk",
		Files:      []FileInput{{Path: "a.js"}},
	}
	if err := Validate(&req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestValidateRejectsBadMessageRole(t *testing.T) {
	req := Request{
		ProjectID: "p1",
		Messages:  []MessageInput{{MessageID: "m1", Role: "robot"}},
	}
	if err := Validate(&req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestClassifyFile(t *testing.T) {
	cases := map[string]string{
		"src/App.jsx":    "component",
		"src/util.ts":    "typescript",
		"styles/app.css": "stylesheet",
		"index.html":     "markup",
		"package.json":   "json",
		"README.md":      "markdown",
		"logo.svg":       "asset",
		"Dockerfile":     "text",
	}
	for path, want := range cases {
		if got := ClassifyFile(path); got != want {
			t.Errorf("ClassifyFile(%q) = %q, want %q", path, got, want)
		}
	}
}
