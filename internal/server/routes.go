package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/revisit/internal/lifecycle"
	"github.com/lazypower/revisit/internal/record"
	"github.com/lazypower/revisit/internal/review"
	"github.com/lazypower/revisit/internal/store"
)

// sessionResponse carries a session whose goals could not be computed
// alongside the reason, so the lists are still usable.
type sessionResponse struct {
	*review.Session
	GoalError string `json:"goal_error,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Session(r.Context())
	if sess == nil {
		s.fail(w, r, err)
		return
	}
	resp := sessionResponse{Session: sess}
	if err != nil {
		resp.GoalError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Touch bool `json:"touch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess, rec, err := s.engine.Pick(r.Context())
	if errors.Is(err, review.ErrNothingDue) {
		writeJSON(w, http.StatusOK, map[string]any{
			"caught_up": true,
			"total_due": 0,
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if req.Touch {
		if _, err := s.engine.Handle(r.Context(), lifecycle.Opened{Path: rec.Path}); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"path":       rec.Path,
		"record":     rec,
		"session_id": sess.ID,
		"total_due":  sess.TotalDue,
		"caught_up":  false,
		"touched":    req.Touch,
	})
}

// eventRequest is the wire form of a host event. For renames, OldPath is
// the previous location and Path the new one.
type eventRequest struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	OldPath   string `json:"old_path"`
	Trackable bool   `json:"trackable"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var (
		ev  lifecycle.Event
		err error
	)
	if lifecycle.Kind(req.Type) == lifecycle.KindRenamed {
		ev, err = lifecycle.Parse(req.Type, req.OldPath, req.Path, false)
	} else {
		ev, err = lifecycle.Parse(req.Type, req.Path, "", req.Trackable)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	changed, err := s.engine.Handle(r.Context(), ev)
	if errors.Is(err, record.ErrNotFound) {
		// Events about untracked paths are expected; the handler already
		// logged them.
		writeJSON(w, http.StatusOK, map[string]any{"changed": false, "note": err.Error()})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changed": changed})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path required")
		return
	}
	rec, err := s.engine.Record(r.Context(), path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type pathRequest struct {
	Path string `json:"path"`
}

func decodePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return "", false
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path required")
		return "", false
	}
	return req.Path, true
}

func (s *Server) handleToggleIgnore(w http.ResponseWriter, r *http.Request) {
	path, ok := decodePath(w, r)
	if !ok {
		return
	}
	rec, err := s.engine.ToggleIgnore(r.Context(), path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleResetUsage(w http.ResponseWriter, r *http.Request) {
	path, ok := decodePath(w, r)
	if !ok {
		return
	}
	rec, changed, err := s.engine.ResetUsage(r.Context(), path)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": rec, "changed": changed})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.engine.Settings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.engine.Settings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// Absent fields keep their current values.
	next := current
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.engine.UpdateSettings(r.Context(), next); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Export(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="revisit-export.json"`)
	if err := store.EncodeSnapshot(w, snap); err != nil {
		s.log.Error().Err(err).Msg("export: encode snapshot")
	}
}
