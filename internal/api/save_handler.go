// File path: internal/api/save_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"projectvault/internal/save"
)

func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload saveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: decode body: %s", save.ErrInvalidRequest, err))
		return
	}

	header := r.Header.Get("Authorization")
	actor, err := s.auth.Resolve(ctx, header)
	if err != nil {
		writeError(w, err)
		return
	}

	req := save.Request{
		ProjectID:         payload.ProjectID,
		VersionID:         payload.VersionID,
		ChangeType:        payload.ChangeType,
		ChangeDescription: payload.ChangeDescription,
		UserPrompt:        payload.UserPrompt,
		AIResponse:        payload.AIResponse,
		ActorID:           actor,
	}
	for _, file := range payload.CodeFiles {
		req.Files = append(req.Files, save.FileInput{
			Path:    file.Path,
			Name:    file.Name,
			Content: file.Content,
			Type:    file.Type,
		})
	}
	for _, msg := range payload.Conversations {
		req.Messages = append(req.Messages, save.MessageInput{
			MessageID: msg.MessageID,
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp.Time,
			Metadata:  msg.Metadata,
		})
	}
	if payload.SandboxState != nil {
		req.Sandbox = &save.SandboxInput{
			SandboxID:     payload.SandboxState.SandboxID,
			SandboxURL:    payload.SandboxState.SandboxURL,
			Status:        payload.SandboxState.SandboxStatus,
			Configuration: payload.SandboxState.Configuration,
		}
	}

	result, err := s.writer.Save(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"versionId":     result.VersionID,
		"versionNumber": result.VersionNumber,
	})
}

func (s *Server) handleSaveFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload saveFilesRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: decode body: %s", save.ErrInvalidRequest, err))
		return
	}
	if _, err := s.auth.Resolve(ctx, r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}
	files := make([]save.FileInput, 0, len(payload.Files))
	for _, file := range payload.Files {
		files = append(files, save.FileInput{Path: file.Path, Content: file.Content})
	}
	counts, err := s.writer.SaveFiles(ctx, payload.ProjectID, files)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"files":     counts.Files,
		"revisions": counts.Revisions,
	})
}
