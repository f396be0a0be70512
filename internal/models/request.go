package models

import (
	"fmt"
	"strings"
)

// NoteType selects the base template and heading set.
type NoteType string

const (
	NoteTypeSession    NoteType = "session"
	NoteTypeAssessment NoteType = "assessment"
)

// NoteRequest is everything an author submits for one note.
type NoteRequest struct {
	NoteType             NoteType          `json:"note_type"`
	Format               string            `json:"format"`
	Content              string            `json:"content,omitempty"`
	SelectedTherapies    []string          `json:"selected_therapies,omitempty"`
	SelectedConcerns     []string          `json:"selected_concerns,omitempty"`
	SelectedObservations []string          `json:"selected_observations,omitempty"`
	SelectedResponses    []string          `json:"selected_responses,omitempty"`
	SelectedPlans        []string          `json:"selected_plans,omitempty"`
	GuidedAnswers        map[string]string `json:"guided_answers,omitempty"` // question id -> answer
	CustomInstructions   string            `json:"custom_instructions,omitempty"`
}

// Validate normalizes the note type (empty means session) and rejects requests
// with an unsupported note type or no content at all.
func (r *NoteRequest) Validate() error {
	switch r.NoteType {
	case "":
		r.NoteType = NoteTypeSession
	case NoteTypeSession, NoteTypeAssessment:
	default:
		return fmt.Errorf("unsupported note type %q", r.NoteType)
	}
	if strings.TrimSpace(r.Content) == "" && !r.IsGuided() {
		return fmt.Errorf("note content cannot be empty")
	}
	return nil
}

// IsAssessment reports whether the request is for an assessment note.
func (r *NoteRequest) IsAssessment() bool {
	return r.NoteType == NoteTypeAssessment
}

// IsGuided reports whether at least one guided answer is non-blank.
func (r *NoteRequest) IsGuided() bool {
	for _, a := range r.GuidedAnswers {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}
