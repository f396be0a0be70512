// Package models defines the note, section, and version structures shared by
// the parser, the drafting service, and the HTTP API.
package models

import (
	"strings"
	"time"
	"unicode"
)

// Version is one content snapshot of a section. ID 0 is the originally generated content.
type Version struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SectionState is the processing state of a section.
type SectionState string

const (
	StateIdle       SectionState = "idle"
	StateProcessing SectionState = "processing"
	StateErrored    SectionState = "errored"
)

// Section is one heading-delimited, independently regeneratable unit of a note.
// Versions is append-only and CurrentVersion always names an existing version id.
type Section struct {
	ID             string    `json:"id"`
	Heading        string    `json:"heading"`
	Versions       []Version `json:"versions"`
	CurrentVersion int       `json:"current_version"`
	IsProcessing   bool      `json:"is_processing"`
	Error          string    `json:"error,omitempty"`
}

// SectionID derives the stable section id from a heading: lower-cased, with
// each run of whitespace replaced by a single dash.
func SectionID(heading string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(heading), unicode.IsSpace), "-")
}

// NewSection creates a section whose only version (id 0) holds content.
func NewSection(heading, content string, at time.Time) *Section {
	return &Section{
		ID:       SectionID(heading),
		Heading:  heading,
		Versions: []Version{{ID: 0, Content: content, Timestamp: at}},
	}
}

// State reports whether the section is idle, processing, or errored.
func (s *Section) State() SectionState {
	switch {
	case s.IsProcessing:
		return StateProcessing
	case s.Error != "":
		return StateErrored
	default:
		return StateIdle
	}
}

// Current returns the displayed version.
func (s *Section) Current() Version {
	for _, v := range s.Versions {
		if v.ID == s.CurrentVersion {
			return v
		}
	}
	if len(s.Versions) > 0 {
		return s.Versions[0]
	}
	return Version{}
}

// HasVersion reports whether a version with id exists.
func (s *Section) HasVersion(id int) bool {
	for _, v := range s.Versions {
		if v.ID == id {
			return true
		}
	}
	return false
}

// AppendVersion adds content as a new version with id max(existing)+1 and makes it current.
func (s *Section) AppendVersion(content string, at time.Time) Version {
	next := 0
	for _, v := range s.Versions {
		if v.ID+1 > next {
			next = v.ID + 1
		}
	}
	v := Version{ID: next, Content: content, Timestamp: at}
	s.Versions = append(s.Versions, v)
	s.CurrentVersion = v.ID
	return v
}

// SelectVersion makes id the current version. Unknown ids leave the section unchanged and return false.
func (s *Section) SelectVersion(id int) bool {
	if !s.HasVersion(id) {
		return false
	}
	s.CurrentVersion = id
	return true
}

// Clone returns a deep copy.
func (s *Section) Clone() *Section {
	out := *s
	out.Versions = append([]Version(nil), s.Versions...)
	return &out
}

// Note is one drafted note. OriginalContent is the author's input and never
// changes; every regeneration starts from it.
type Note struct {
	ID              string     `json:"id"`
	Type            NoteType   `json:"note_type"`
	Format          string     `json:"format"`
	Content         string     `json:"content"`
	OriginalContent string     `json:"original_content"`
	Sections        []*Section `json:"sections"`
	IsProcessing    bool       `json:"is_processing"`
	Error           string     `json:"error,omitempty"`
	Warnings        []string   `json:"warnings,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Section returns the section with the given id, or nil.
func (n *Note) Section(id string) *Section {
	for _, s := range n.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// IsAssessment reports whether the note is an assessment.
func (n *Note) IsAssessment() bool {
	return n.Type == NoteTypeAssessment
}

// Clone returns a deep copy.
func (n *Note) Clone() *Note {
	out := *n
	out.Sections = make([]*Section, len(n.Sections))
	for i, s := range n.Sections {
		out.Sections[i] = s.Clone()
	}
	out.Warnings = append([]string(nil), n.Warnings...)
	return &out
}
