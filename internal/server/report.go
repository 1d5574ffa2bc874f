package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/export"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/wizard"
)

// Uploads are scanned medical and policy documents; whole claim files stay
// well under this.
const maxIntakeBytes = 64 << 20

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Wizard.NewSession(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.sessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Wizard.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Wizard.Store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleIntake accepts a multipart form: an "intake" JSON field plus any
// number of "files" attachments. A plain JSON body works for sessions
// without attachments.
func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	var (
		intake  models.ReportIntake
		uploads []wizard.Upload
	)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/") {
		if err := r.ParseMultipartForm(maxIntakeBytes); err != nil {
			s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "could not parse multipart form"})
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("intake")), &intake); err != nil {
			s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "intake field is not valid JSON"})
			return
		}
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("could not open upload %s", fh.Filename)})
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("could not read upload %s", fh.Filename)})
				return
			}
			uploads = append(uploads, wizard.Upload{Name: fh.Filename, Data: data})
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&intake); err != nil {
			s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "could not parse JSON"})
			return
		}
	}

	sess, err := s.Wizard.SubmitIntake(r.Context(), r.PathValue("id"), intake, uploads)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var req models.ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "could not parse JSON"})
		return
	}
	sess, err := s.Wizard.Reply(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Wizard.Advance(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	s.streamPhase(w, r, s.Wizard.RunVerification)
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	s.streamPhase(w, r, s.Wizard.RunDraft)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	s.streamPhase(w, r, s.Wizard.RunReview)
}

// streamPhase relays an AI phase over Server-Sent Events: "delta" events
// while tokens arrive, then a final "done" event carrying the saved
// session. Errors after the stream has started arrive as an "error" event
// since the status line is already written.
func (s *Server) streamPhase(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, id string, onDelta func(string)) (*models.ReportSession, error),
) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "streaming unsupported"})
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sendEvent := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger().Error("failed to marshal SSE payload", "error", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	sess, err := run(r.Context(), r.PathValue("id"), func(delta string) {
		sendEvent("delta", delta)
	})
	if err != nil {
		sendEvent("error", models.ErrorResponse{Error: err.Error()})
		return
	}
	sendEvent("done", s.sessionResponse(sess))
}

func (s *Server) reportFilename(sess *models.ReportSession, ext string) string {
	name := sess.Intake.InsuredName
	if name == "" {
		name = "보고서"
	}
	return fmt.Sprintf("손해사정서_%s%s", name, ext)
}

func (s *Server) loadDraft(w http.ResponseWriter, r *http.Request) *models.ReportSession {
	sess, err := s.Wizard.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return nil
	}
	if sess.Draft == "" {
		s.writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "session has no draft yet"})
		return nil
	}
	return sess
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	sess := s.loadDraft(w, r)
	if sess == nil {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(s.reportFilename(sess, ".md")))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, sess.Draft); err != nil {
		s.logger().Error("failed to write markdown export", "error", err)
	}
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	sess := s.loadDraft(w, r)
	if sess == nil {
		return
	}

	html, err := export.RenderHTML(s.reportFilename(sess, ""), sess.Draft)
	if err != nil {
		s.writeError(w, err)
		return
	}
	pdf, err := s.PDF.RenderPDF(r.Context(), html)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.archive("reports", pdf)
	s.writePDF(w, s.reportFilename(sess, ".pdf"), pdf)
}

func (s *Server) handleRevise(w http.ResponseWriter, r *http.Request) {
	var req models.RevisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "could not parse JSON"})
		return
	}
	sess, err := s.Wizard.RequestRevision(r.Context(), r.PathValue("id"), req.Request)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

// contentDisposition encodes a Korean filename per RFC 5987.
func contentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename))
}
