package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/assembly"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/gcp"
	"github.com/a01041072831-pixel/Jisan-Platform/internal/models"
)

// parseDate accepts an RFC 3339 date or datetime. Empty yields the zero
// time; each assembler chooses its own default for that.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func (s *Server) handleContract(w http.ResponseWriter, r *http.Request) {
	var req models.ContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "could not parse JSON"})
		return
	}
	date, err := parseDate(req.DraftingDate)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	pdf, err := s.Contracts.Assemble(assembly.ContractInput{
		Party:        req.Party,
		Principal:    req.Principal,
		NationalID:   req.NationalID,
		Phone:        req.Phone,
		Address:      req.Address,
		Relationship: req.Relationship,
		FeeRate:      req.FeeRate,
		FeeRateWords: req.FeeRateWords,
		DraftingDate: date,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.archive("contracts", pdf)
	s.writePDF(w, fmt.Sprintf("계약서_%s.pdf", req.Principal), pdf)
}

func (s *Server) handleConsent(w http.ResponseWriter, r *http.Request) {
	var req models.ConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "could not parse JSON"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	pdf, err := s.Consents.Assemble(assembly.ConsentInput{
		PatientName:      req.PatientName,
		PatientBirth:     req.PatientBirth,
		PatientPhone:     req.PatientPhone,
		PatientAddress:   req.PatientAddress,
		ApplicantName:    req.ApplicantName,
		ApplicantBirth:   req.ApplicantBirth,
		ApplicantPhone:   req.ApplicantPhone,
		ApplicantAddress: req.ApplicantAddress,
		Relationship:     req.Relationship,
		Date:             date,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.archive("consents", pdf)
	s.writePDF(w, fmt.Sprintf("동의서_%s.pdf", req.PatientName), pdf)
}

func (s *Server) writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.logger().Error("failed to write PDF response", "error", err)
	}
}

// archive stores a generated artifact in the background. Archival is
// best-effort: a storage outage must not block document delivery.
func (s *Server) archive(kind string, data []byte) {
	if s.Archiver == nil {
		return
	}
	name := gcp.ObjectName(kind, uuid.NewString(), ".pdf", time.Now())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Archiver.Archive(ctx, name, "application/pdf", data); err != nil {
			s.logger().Warn("failed to archive artifact", "object", name, "error", err)
		}
	}()
}
