package server

import (
	"net/http"

	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/types"
)

// handleProfile returns every section of the caller's live profile.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := s.sections.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, "get profile", err)
		return
	}
	success(w, http.StatusOK, profile)
}

// handleCreateResume saves a named snapshot from the request body.
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	in, err := s.decodeSnapshot(w, r)
	if err != nil {
		writeError(w, "create resume", err)
		return
	}

	snapshot, err := s.snapshots.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, "create resume", err)
		return
	}
	successMessage(w, http.StatusCreated, "Resume saved successfully", snapshot)
}

// handleCreateResumeFromProfile saves a snapshot of the caller's live sections.
func (s *Server) handleCreateResumeFromProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req types.FromProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create resume from profile", err)
		return
	}

	snapshot, err := s.snapshots.CreateFromProfile(r.Context(), userID, &req)
	if err != nil {
		writeError(w, "create resume from profile", err)
		return
	}
	successMessage(w, http.StatusCreated, "Resume saved successfully", snapshot)
}

// handleListResumes lists the caller's snapshots, newest first.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summaries, err := s.snapshots.List(r.Context(), userID)
	if err != nil {
		writeError(w, "list resumes", err)
		return
	}
	success(w, http.StatusOK, summaries)
}

// handleGetResume returns one snapshot the caller owns.
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "get resume", err)
		return
	}

	snapshot, err := s.snapshots.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, "get resume", err)
		return
	}
	success(w, http.StatusOK, snapshot)
}

// handleUpdateResume replaces the content of a snapshot the caller owns.
func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "update resume", err)
		return
	}
	if _, err := s.snapshots.Get(r.Context(), userID, id); err != nil {
		writeError(w, "update resume", err)
		return
	}

	in, err := s.decodeSnapshot(w, r)
	if err != nil {
		writeError(w, "update resume", err)
		return
	}

	snapshot, err := s.snapshots.Update(r.Context(), userID, id, in)
	if err != nil {
		writeError(w, "update resume", err)
		return
	}
	successMessage(w, http.StatusOK, "Resume updated successfully", snapshot)
}

// handleDeleteResume removes a snapshot the caller owns.
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, "delete resume", err)
		return
	}

	if err := s.snapshots.Delete(r.Context(), userID, id); err != nil {
		writeError(w, "delete resume", err)
		return
	}
	successMessage(w, http.StatusOK, "Resume deleted successfully", nil)
}

func (s *Server) decodeSnapshot(w http.ResponseWriter, r *http.Request) (*types.SnapshotInput, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	return resume.DecodeInput(body)
}
