package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/notedraft/internal/catalog"
	"github.com/hyperjump/notedraft/internal/formats"
	"github.com/hyperjump/notedraft/internal/models"
	"github.com/hyperjump/notedraft/internal/notes"
	"github.com/hyperjump/notedraft/internal/prompt"
	"go.uber.org/zap"
)

// textRequest is the body of the parse and validate endpoints.
type textRequest struct {
	Text     string          `json:"text"`
	Format   string          `json:"format"`
	NoteType models.NoteType `json:"note_type"`
}

func (t textRequest) isAssessment() bool {
	return t.NoteType == models.NoteTypeAssessment
}

type promptResponse struct {
	Prompt  string `json:"prompt"`
	Content string `json:"content"`
}

type catalogResponse struct {
	Therapies           []catalog.Therapy  `json:"therapies"`
	Concerns            []catalog.Option   `json:"concerns"`
	Observations        []catalog.Option   `json:"observations"`
	Responses           []catalog.Option   `json:"responses"`
	Plans               []catalog.Option   `json:"plans"`
	SessionQuestions    []catalog.Question `json:"session_questions"`
	AssessmentQuestions []catalog.Question `json:"assessment_questions"`
}

type versionRequest struct {
	Version *int `json:"version"`
}

type versionResponse struct {
	Changed bool            `json:"changed"`
	Section *models.Section `json:"section"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"formats": s.notes.Formats().List()})
}

func (s *Server) handleGetFormat(w http.ResponseWriter, r *http.Request) {
	f, err := s.notes.Formats().Lookup(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := s.notes.Options()
	s.respondJSON(w, http.StatusOK, catalogResponse{
		Therapies:           c.Therapies.List(),
		Concerns:            c.Concerns.List(),
		Observations:        c.Observations.List(),
		Responses:           c.Responses.List(),
		Plans:               c.Plans.List(),
		SessionQuestions:    c.SessionQuestions.List(),
		AssessmentQuestions: c.AssessmentQuestions.List(),
	})
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req models.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text, content, err := s.notes.Prompt(&req)
	if err != nil {
		s.fail(w, "prompt build failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, promptResponse{Prompt: text, Content: content})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sections, err := s.notes.Parse(req.Text, req.isAssessment(), req.Format)
	if err != nil {
		s.fail(w, "parse failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sections": sections})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.notes.Validate(req.Text, req.isAssessment(), req.Format)
	if err != nil {
		s.fail(w, "validation failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req models.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("create note request", zap.String("format", req.Format), zap.String("note_type", string(req.NoteType)))
	note, err := s.notes.Process(r.Context(), &req)
	if err != nil {
		s.fail(w, "note creation failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, note)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"notes": s.notes.List()})
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get note failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete note request", zap.String("id", id))
	if err := s.notes.Clear(id); err != nil {
		s.fail(w, "delete note failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleExportNote(w http.ResponseWriter, r *http.Request) {
	text, err := s.notes.Export(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "export failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleRegenerateSection(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "id")
	sectionID, ok := s.sectionParam(w, r)
	if !ok {
		return
	}
	s.logger.Debug("regenerate section request", zap.String("id", noteID), zap.String("section_id", sectionID))
	sec, err := s.notes.RegenerateSection(r.Context(), noteID, sectionID)
	if err != nil {
		s.fail(w, "regenerate failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, sec)
}

func (s *Server) handleSelectVersion(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "id")
	sectionID, ok := s.sectionParam(w, r)
	if !ok {
		return
	}
	var req versionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Version == nil {
		s.respondError(w, http.StatusBadRequest, "version is required")
		return
	}
	changed, err := s.notes.SelectVersion(noteID, sectionID, *req.Version)
	if err != nil {
		s.fail(w, "select version failed", err)
		return
	}
	note, err := s.notes.Get(noteID)
	if err != nil {
		s.fail(w, "select version failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, versionResponse{Changed: changed, Section: note.Section(sectionID)})
}

// sectionParam returns the unescaped section id; ids such as
// "data/assessment" arrive percent-encoded.
func (s *Server) sectionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "sectionID"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid section id")
		return "", false
	}
	return id, true
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, notes.ErrInvalidRequest),
		errors.Is(err, formats.ErrUnknownFormat),
		errors.Is(err, prompt.ErrUnknownHeading):
		return http.StatusBadRequest
	case errors.Is(err, notes.ErrNoteNotFound),
		errors.Is(err, notes.ErrSectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, notes.ErrSectionBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
