package api

import (
	"net/http"
	"strconv"
	"strings"

	"mindfulu/internal/orchestration"
	"mindfulu/internal/services"
	"mindfulu/pkg/mindtypes"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type journalRequest struct {
	Text string `json:"text"`
	Mood int    `json:"mood"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Greeting     string                  `json:"greeting"`
	QuickReplies []string                `json:"quickReplies"`
	Messages     []mindtypes.ChatMessage `json:"messages"`
}

// await waits for a scheduled interaction and writes the resulting state.
func (s *Server) await(w http.ResponseWriter, r *http.Request, task *orchestration.Task, status int) {
	if err := task.Wait(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, status, s.app.Store.State())
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	task, err := s.app.Orchestrator.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.await(w, r, task, http.StatusOK)
}

func (s *Server) handleSignOut(w http.ResponseWriter, _ *http.Request) {
	s.app.Orchestrator.SignOut()
	writeJSON(w, http.StatusOK, s.app.Store.State())
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Store.State())
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries := s.app.Store.State().JournalEntries
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeFailure(w, mindtypes.NewValidationError("limit", "limit must be a positive number"))
			return
		}
		if limit < len(entries) {
			entries = entries[:limit]
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	task, err := s.app.Orchestrator.SaveEntry(r.Context(), req.Text, req.Mood)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.await(w, r, task, http.StatusCreated)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, chatResponse{
		Greeting:     s.app.Conversation.Greeting(),
		QuickReplies: s.app.Conversation.QuickReplies(),
		Messages:     s.app.Store.State().ChatHistory,
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(w, err)
		return
	}

	task, err := s.app.Orchestrator.SendMessage(r.Context(), req.Message)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.await(w, r, task, http.StatusCreated)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	summary := s.app.Summary()
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s.app.Insight.RenderMarkdown(summary)))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = strings.ToLower(s.app.Config.ExportFormat)
	}
	if format == "yml" {
		format = services.FormatYAML
	}

	snapshot, err := s.app.Export.Snapshot(s.app.Store.State(), s.app.Clock.Now())
	if err != nil {
		writeFailure(w, err)
		return
	}
	data, err := s.app.Export.Encode(snapshot, format)
	if err != nil {
		writeFailure(w, mindtypes.NewValidationError("format", err.Error()))
		return
	}

	contentType := "application/yaml"
	if format == services.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="mindfulu-export.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
