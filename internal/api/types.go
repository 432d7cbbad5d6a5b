// File path: internal/api/types.go
package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type codeFilePayload struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

type conversationPayload struct {
	MessageID string                 `json:"messageId"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp flexTime               `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type sandboxPayload struct {
	SandboxID     string                 `json:"sandboxId,omitempty"`
	SandboxURL    string                 `json:"sandboxUrl,omitempty"`
	SandboxStatus string                 `json:"sandboxStatus,omitempty"`
	Configuration map[string]interface{} `json:"configuration,omitempty"`
}

type saveProjectRequest struct {
	ProjectID         string                `json:"projectId"`
	VersionID         string                `json:"versionId,omitempty"`
	ChangeType        string                `json:"changeType"`
	ChangeDescription string                `json:"changeDescription,omitempty"`
	UserPrompt        string                `json:"userPrompt,omitempty"`
	AIResponse        string                `json:"aiResponse,omitempty"`
	CodeFiles         []codeFilePayload     `json:"codeFiles"`
	Conversations     []conversationPayload `json:"conversations,omitempty"`
	SandboxState      *sandboxPayload       `json:"sandboxState,omitempty"`
}

type saveFilesRequest struct {
	ProjectID string `json:"projectId"`
	Files     []struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	} `json:"files"`
}

type createProjectRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// flexTime accepts RFC3339 strings and epoch-millisecond numbers, the
// two timestamp encodings callers actually send.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	millis, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.UnixMilli(millis).UTC()
	return nil
}
