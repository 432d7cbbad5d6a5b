// File path: internal/save/types.go
package save

import "time"

// Change types carried on a version row.
const (
	ChangeInitial      = "initial"
	ChangeIncremental  = "incremental"
	ChangeUserEdit     = "user_edit"
	ChangeAIGeneration = "ai_generation"
)

// FileInput is one incoming file in a save request.
type FileInput struct {
	Path    string
	Name    string
	Content string
	Type    string
}

// MessageInput is one incoming conversation message.
type MessageInput struct {
	MessageID string
	Role      string
	Content   string
	Timestamp time.Time
	Metadata  map[string]interface{}
}

// SandboxInput carries the current-state sandbox fields for a project.
type SandboxInput struct {
	SandboxID     string
	SandboxURL    string
	Status        string
	Configuration map[string]interface{}
}

// Request is a normalized snapshot-save request. VersionID is optional;
// supplying a stable id makes retries idempotent.
type Request struct {
	ProjectID         string
	VersionID         string
	ChangeType        string
	ChangeDescription string
	UserPrompt        string
	AIResponse        string
	ActorID           string
	Files             []FileInput
	Messages          []MessageInput
	Sandbox           *SandboxInput
}

// Counts reports rows written per entity kind during one save.
type Counts struct {
	Files     int
	CodeFiles int
	Revisions int
	Messages  int
	Sandbox   int
}

// Result describes a committed save.
type Result struct {
	VersionID     string
	VersionNumber int
	Replayed      bool
	Counts        Counts
}
