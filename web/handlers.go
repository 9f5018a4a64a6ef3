package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"markestedt/ahkgen/script"
	"markestedt/ahkgen/session"
	"markestedt/ahkgen/storage"
)

type sequenceResponse struct {
	Actions []script.Action `json:"actions"`
}

type actionTypeOption struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	NeedsParameter bool   `json:"needsParameter"`
	ParameterLabel string `json:"parameterLabel"`
	Hint           string `json:"hint"`
}

// problem is the body of every non-2xx API response. Level is "warning"
// for input the user should fix and "error" for failures.
type problem struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeWarning(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, problem{Level: "warning", Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, problem{Level: "error", Message: msg})
}

// writeSessionError maps session errors to warnings or errors
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case session.IsWarning(err):
		writeWarning(w, err.Error())
	case errors.Is(err, script.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// generateProblem words a failed export the way the builder shows it
func generateProblem(err error) problem {
	if session.IsWarning(err) {
		return problem{Level: "warning", Message: "No actions in sequence!"}
	}
	return problem{Level: "error", Message: "Failed to save script: " + err.Error()}
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid index")
		return 0, false
	}
	return i, true
}

// handleOptions returns the fixed choices for the builder form
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	var types []actionTypeOption
	for _, t := range script.ActionTypes() {
		types = append(types, actionTypeOption{
			ID:             t.ID(),
			Label:          t.String(),
			NeedsParameter: t.NeedsParameter(),
			ParameterLabel: t.ParameterLabel(),
			Hint:           t.ParameterHint(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hotkeys":       script.Hotkeys,
		"defaultHotkey": s.session.Config().Script.DefaultHotkey,
		"actionTypes":   types,
	})
}

func (s *Server) handleGetSequence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sequenceResponse{Actions: s.session.Actions()})
}

// handleAddAction appends an action built from the form fields
func (s *Server) handleAddAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type      script.ActionType `json:"type"`
		Parameter string            `json:"parameter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, script.ErrUnknownActionType) {
			writeWarning(w, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := s.session.AddAction(req.Type, req.Parameter); err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sequenceResponse{Actions: s.session.Actions()})
}

func (s *Server) handleClearSequence(w http.ResponseWriter, r *http.Request) {
	s.session.Clear()
	writeJSON(w, http.StatusOK, sequenceResponse{Actions: s.session.Actions()})
}

func (s *Server) handleRemoveAction(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.session.RemoveAction(i); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sequenceResponse{Actions: s.session.Actions()})
}

func (s *Server) handleMoveUp(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.session.MoveUp(i); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sequenceResponse{Actions: s.session.Actions()})
}

func (s *Server) handleMoveDown(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.session.MoveDown(i); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sequenceResponse{Actions: s.session.Actions()})
}

// handleTranslate previews how a key combination will be sent
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Combo string `json:"combo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"combo":  req.Combo,
		"result": script.Translate(req.Combo),
	})
}

// handlePreview renders the script without writing it
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	text, err := s.session.Preview(r.URL.Query().Get("hotkey"))
	if err != nil {
		writeSessionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

// handleGenerate writes the script file
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hotkey string `json:"hotkey"`
	}
	// an empty body selects the configured default hotkey
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	export, err := s.session.Generate(req.Hotkey, session.SourceWeb)
	if err != nil {
		p := generateProblem(err)
		if p.Level == "warning" {
			writeJSON(w, http.StatusUnprocessableEntity, p)
			return
		}
		writeJSON(w, http.StatusInternalServerError, p)
		return
	}

	writeJSON(w, http.StatusOK, export)
}

// handleGetHistory returns paginated export history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "History is disabled")
		return
	}

	limit := 50
	offset := 0

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	exports, err := s.db.GetExports(limit, offset)
	if err != nil {
		slog.Error("Failed to get exports", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}

	total, err := s.db.GetExportCount()
	if err != nil {
		slog.Error("Failed to get export count", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}

	if exports == nil {
		exports = []storage.Export{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exports": exports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleDeleteHistory deletes an export by ID
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "History is disabled")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := s.db.DeleteExport(id); err != nil {
		if errors.Is(err, storage.ErrExportNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("Failed to delete export", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete export")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleStats returns statistics for the requested number of days
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotFound, "History is disabled")
		return
	}

	days := 7
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 {
		days = d
	}

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	daily, err := s.db.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	hotkeys, err := s.db.GetHotkeyStats(days)
	if err != nil {
		slog.Error("Failed to get hotkey stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get statistics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"overall": overall,
		"daily":   daily,
		"hotkeys": hotkeys,
	})
}

// handleConfig handles GET and PUT requests for configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetConfig(w, r)
	case http.MethodPut:
		s.handlePutConfig(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type configResponse struct {
	DefaultHotkey   string `json:"defaultHotkey"`
	WindowTitle     string `json:"windowTitle"`
	OutputPath      string `json:"outputPath"`
	CopyToClipboard bool   `json:"copyToClipboard"`
	WebPort         int    `json:"webPort"`
	HistoryEnabled  bool   `json:"historyEnabled"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.session.Config()

	writeJSON(w, http.StatusOK, configResponse{
		DefaultHotkey:   cfg.Script.DefaultHotkey,
		WindowTitle:     cfg.Script.WindowTitle,
		OutputPath:      cfg.Script.OutputPath,
		CopyToClipboard: cfg.Script.CopyToClipboard,
		WebPort:         cfg.Web.Port,
		HistoryEnabled:  cfg.History.Enabled,
	})
}

// handlePutConfig updates and persists the fields present in the body
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DefaultHotkey   *string `json:"defaultHotkey"`
		WindowTitle     *string `json:"windowTitle"`
		OutputPath      *string `json:"outputPath"`
		CopyToClipboard *bool   `json:"copyToClipboard"`
		HistoryEnabled  *bool   `json:"historyEnabled"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg := s.session.Config().Clone()

	if req.DefaultHotkey != nil {
		cfg.Script.DefaultHotkey = *req.DefaultHotkey
	}
	if req.WindowTitle != nil {
		cfg.Script.WindowTitle = *req.WindowTitle
	}
	if req.OutputPath != nil {
		cfg.Script.OutputPath = *req.OutputPath
	}
	if req.CopyToClipboard != nil {
		cfg.Script.CopyToClipboard = *req.CopyToClipboard
	}
	if req.HistoryEnabled != nil {
		cfg.History.Enabled = *req.HistoryEnabled
	}

	if err := cfg.Validate(); err != nil {
		writeWarning(w, err.Error())
		return
	}

	if err := cfg.Save(); err != nil {
		slog.Error("Failed to save config", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save configuration")
		return
	}

	s.session.UpdateConfig(cfg)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleStatus reports the sequence size and where the next export goes
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.session.Config()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"actions":        len(s.session.Actions()),
		"defaultHotkey":  cfg.Script.DefaultHotkey,
		"outputPath":     cfg.Script.OutputPath,
		"historyEnabled": s.db != nil && cfg.History.Enabled,
		"clients":        s.hub.ClientCount(),
	})
}
