// File path: internal/api/projects_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"projectvault/internal/save"
	"projectvault/internal/store"
)

type projectSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	OwnerID       string `json:"ownerId"`
	UpdatedAt     string `json:"updatedAt"`
	FileCount     int    `json:"fileCount"`
	LatestVersion int    `json:"latestVersion"`
	TotalSize     string `json:"totalSize"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := s.auth.ResolveOwner(ctx, r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}
	var payload createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: decode body: %s", save.ErrInvalidRequest, err))
		return
	}
	if strings.TrimSpace(payload.Title) == "" {
		writeError(w, fmt.Errorf("%w: title required", save.ErrInvalidRequest))
		return
	}
	id := strings.TrimSpace(payload.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.store.CreateProject(ctx, id, payload.Title, payload.Description, owner); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "ownerId": owner})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]projectSummary, 0, len(summaries))
	for _, row := range summaries {
		out = append(out, projectSummary{
			ID:            row.ID,
			Title:         row.Title,
			OwnerID:       row.OwnerID,
			UpdatedAt:     row.UpdatedAt.UTC().Format(timeLayout),
			FileCount:     row.FileCount,
			LatestVersion: row.LatestVersion,
			TotalSize:     humanize.Bytes(uint64(row.TotalBytes)),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": out})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.ProjectByID(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var meta store.ProjectMeta
	_ = json.Unmarshal([]byte(project.Metadata), &meta)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":            project.ID,
		"title":         project.Title,
		"description":   project.Description,
		"ownerId":       project.OwnerID,
		"createdAt":     project.CreatedAt.UTC().Format(timeLayout),
		"updatedAt":     project.UpdatedAt.UTC().Format(timeLayout),
		"lastVersionId": meta.LastVersionID,
		"fileCount":     meta.FileCount,
	})
}

type fileOut struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	ByteSize  int64  `json:"byteSize"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Server) handleProjectFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.store.CurrentFiles(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]fileOut, 0, len(files))
	for _, f := range files {
		out = append(out, fileOut{
			Path:      f.Path,
			Content:   f.Content,
			ByteSize:  f.ByteSize,
			UpdatedAt: f.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": out})
}

func (s *Server) handleProjectVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.store.VersionsForProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	type versionOut struct {
		ID                string `json:"id"`
		VersionNumber     int    `json:"versionNumber"`
		ChangeType        string `json:"changeType"`
		ChangeDescription string `json:"changeDescription,omitempty"`
		CreatedBy         string `json:"createdBy"`
		CreatedAt         string `json:"createdAt"`
	}
	out := make([]versionOut, 0, len(versions))
	for _, v := range versions {
		out = append(out, versionOut{
			ID:                v.ID,
			VersionNumber:     v.VersionNumber,
			ChangeType:        v.ChangeType,
			ChangeDescription: v.ChangeDescription.String,
			CreatedBy:         v.CreatedBy,
			CreatedAt:         v.CreatedAt.UTC().Format(timeLayout),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"versions": out})
}

func (s *Server) handleVersionFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.store.CodeFilesForVersion(r.Context(),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "versionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	type codeFileOut struct {
		Path     string `json:"path"`
		Name     string `json:"name"`
		Content  string `json:"content"`
		FileType string `json:"fileType"`
		ByteSize int64  `json:"byteSize"`
		IsActive bool   `json:"isActive"`
	}
	out := make([]codeFileOut, 0, len(files))
	for _, f := range files {
		out = append(out, codeFileOut{
			Path:     f.Path,
			Name:     f.Name,
			Content:  f.Content,
			FileType: f.FileType,
			ByteSize: f.ByteSize,
			IsActive: f.IsActive,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": out})
}

func (s *Server) handleProjectRevisions(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeError(w, fmt.Errorf("%w: path query parameter required", save.ErrInvalidRequest))
		return
	}
	revisions, err := s.store.RevisionsForPath(r.Context(), chi.URLParam(r, "projectID"), path)
	if err != nil {
		writeError(w, err)
		return
	}
	type revisionOut struct {
		Sequence   int    `json:"sequence"`
		OldContent string `json:"oldContent"`
		NewContent string `json:"newContent"`
		Diff       string `json:"diff"`
		CreatedAt  string `json:"createdAt"`
	}
	out := make([]revisionOut, 0, len(revisions))
	for _, rev := range revisions {
		out = append(out, revisionOut{
			Sequence:   rev.Sequence,
			OldContent: rev.OldContent,
			NewContent: rev.NewContent,
			Diff:       rev.Diff,
			CreatedAt:  rev.CreatedAt.UTC().Format(timeLayout),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"path": path, "revisions": out})
}

func (s *Server) handleProjectConversations(w http.ResponseWriter, r *http.Request) {
	messages, err := s.store.ConversationsForProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	type messageOut struct {
		MessageID string                 `json:"messageId"`
		Role      string                 `json:"role"`
		Content   string                 `json:"content"`
		VersionID string                 `json:"versionId,omitempty"`
		Metadata  map[string]interface{} `json:"metadata,omitempty"`
		CreatedAt string                 `json:"createdAt"`
	}
	out := make([]messageOut, 0, len(messages))
	for _, msg := range messages {
		entry := messageOut{
			MessageID: msg.MessageID,
			Role:      msg.Role,
			Content:   msg.Content,
			VersionID: msg.VersionID.String,
			CreatedAt: msg.CreatedAt.UTC().Format(timeLayout),
		}
		if msg.Metadata != "" && msg.Metadata != "{}" {
			_ = json.Unmarshal([]byte(msg.Metadata), &entry.Metadata)
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": out})
}

func (s *Server) handleProjectSandbox(w http.ResponseWriter, r *http.Request) {
	state, err := s.store.SandboxForProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var configuration map[string]interface{}
	if state.Configuration != "" && state.Configuration != "{}" {
		_ = json.Unmarshal([]byte(state.Configuration), &configuration)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sandboxId":     state.SandboxID,
		"sandboxUrl":    state.SandboxURL,
		"sandboxStatus": state.Status,
		"configuration": configuration,
		"lastActive":    state.LastActive.UTC().Format(timeLayout),
	})
}

func (s *Server) handleProjectAnalytics(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", save.ErrInvalidRequest))
			return
		}
		limit = parsed
	}
	events, err := s.store.AnalyticsForProject(r.Context(), chi.URLParam(r, "projectID"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	type eventOut struct {
		ID        string                 `json:"id"`
		EventType string                 `json:"eventType"`
		Payload   map[string]interface{} `json:"payload,omitempty"`
		ActorID   string                 `json:"actorId"`
		CreatedAt string                 `json:"createdAt"`
	}
	out := make([]eventOut, 0, len(events))
	for _, event := range events {
		entry := eventOut{
			ID:        event.ID,
			EventType: event.EventType,
			ActorID:   event.ActorID,
			CreatedAt: event.CreatedAt.UTC().Format(timeLayout),
		}
		_ = json.Unmarshal([]byte(event.Payload), &entry.Payload)
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": out})
}

const timeLayout = "2006-01-02T15:04:05Z"
