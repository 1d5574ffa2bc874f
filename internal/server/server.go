// Package server exposes the document assembly and report wizard over HTTP
// for the dashboard frontend.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/assembly"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/export"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/gcp"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/session"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/transcript"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/wizard"
)

// Server wires the HTTP surface to the assembly and wizard services. The
// Archiver is optional; without it generated artifacts are only returned to
// the caller.
type Server struct {
	Wizard    *wizard.Wizard
	Contracts *assembly.ContractAssembler
	Consents  *assembly.ConsentAssembler
	PDF       export.PDFRenderer
	Archiver  *gcp.Archiver
	Logger    *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/documents/contract", s.handleContract)
	mux.HandleFunc("POST /api/documents/consent", s.handleConsent)

	mux.HandleFunc("POST /api/report/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/report/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/report/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/report/sessions/{id}/intake", s.handleIntake)
	mux.HandleFunc("POST /api/report/sessions/{id}/verify", s.handleVerify)
	mux.HandleFunc("POST /api/report/sessions/{id}/reply", s.handleReply)
	mux.HandleFunc("POST /api/report/sessions/{id}/advance", s.handleAdvance)
	mux.HandleFunc("POST /api/report/sessions/{id}/draft", s.handleDraft)
	mux.HandleFunc("POST /api/report/sessions/{id}/review", s.handleReview)
	mux.HandleFunc("POST /api/report/sessions/{id}/revise", s.handleRevise)
	mux.HandleFunc("GET /api/report/sessions/{id}/export.md", s.handleExportMarkdown)
	mux.HandleFunc("GET /api/report/sessions/{id}/export.pdf", s.handleExportPDF)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Error("failed to write response", "error", err)
	}
}

// writeError maps service errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		missing  *assembly.MissingInputError
		notFound *assembly.TemplateNotFoundError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &missing):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusInternalServerError
	case errors.Is(err, wizard.ErrEmptyIntake):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, wizard.ErrWrongPhase):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger().Error("request failed", "error", err)
	}
	s.writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

func (s *Server) sessionResponse(sess *models.ReportSession) models.SessionResponse {
	views := make([]models.MessageView, len(sess.Conversation))
	for i, m := range sess.Conversation {
		views[i] = models.MessageView{
			Role:    string(m.Role),
			Content: m.Content,
			// The opening user message carries the whole rendered intake.
			Summary: i == 0 && m.Role == transcript.RoleUser,
		}
	}
	return models.SessionResponse{
		Session:              sess,
		Messages:             views,
		VerificationComplete: wizard.VerificationComplete(sess),
	}
}
