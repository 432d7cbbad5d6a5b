// File path: internal/save/validate.go
package save

import (
	"path"
	"strings"
)

var changeTypes = map[string]struct{}{
	ChangeInitial:      {},
	ChangeIncremental:  {},
	ChangeUserEdit:     {},
	ChangeAIGeneration: {},
}

var messageRoles = map[string]struct{}{
	"user":      {},
	"assistant": {},
	"system":    {},
}

// Validate checks the request shape and normalizes defaulted fields in
// place. It runs before any store access.
func Validate(req *Request) error {
	if req == nil {
		return invalidf("request body required")
	}
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if req.ProjectID == "" {
		return invalidf("projectId required")
	}
	req.ChangeType = strings.TrimSpace(strings.ToLower(req.ChangeType))
	if req.ChangeType == "" {
		req.ChangeType = ChangeIncremental
	}
	if _, ok := changeTypes[req.ChangeType]; !ok {
		return invalidf("changeType %q not recognised", req.ChangeType)
	}
	if len(req.Files) == 0 && len(req.Messages) == 0 && req.Sandbox == nil {
		return invalidf("at least one of codeFiles, conversations or sandboxState required")
	}
	for i := range req.Files {
		file := &req.Files[i]
		file.Path = strings.TrimSpace(file.Path)
		if file.Path == "" {
			return invalidf("codeFiles[%d].path required", i)
		}
		if file.Name == "" {
			file.Name = path.Base(file.Path)
		}
		if file.Type == "" {
			file.Type = ClassifyFile(file.Path)
		}
	}
	for i := range req.Messages {
		msg := &req.Messages[i]
		msg.MessageID = strings.TrimSpace(msg.MessageID)
		if msg.MessageID == "" {
			return invalidf("conversations[%d].messageId required", i)
		}
		msg.Role = strings.TrimSpace(strings.ToLower(msg.Role))
		if _, ok := messageRoles[msg.Role]; !ok {
			return invalidf("conversations[%d].role %q not recognised", i, msg.Role)
		}
	}
	return nil
}

// ClassifyFile derives a coarse file-type tag from the path extension.
func ClassifyFile(filePath string) string {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".jsx", ".tsx":
		return "component"
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".css", ".scss", ".less":
		return "stylesheet"
	case ".html", ".htm":
		return "markup"
	case ".json":
		return "json"
	case ".md":
		return "markdown"
	case ".svg", ".png", ".jpg", ".jpeg", ".gif", ".ico":
		return "asset"
	case ".yml", ".yaml", ".toml", ".env":
		return "config"
	default:
		return "text"
	}
}
