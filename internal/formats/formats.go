// Package formats is the registry of note documentation formats and the
// ordered section headings each one requires.
package formats

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when a format id is not registered.
var ErrUnknownFormat = errors.New("unknown note format")

// Sentence band every generated section is asked to respect.
const (
	MinSentences = 5
	MaxSentences = 10
)

// Abbreviation is a role abbreviation session notes must use in place of the full role name.
type Abbreviation struct {
	Token string
	Role  string
}

var requiredAbbreviations = []Abbreviation{
	{Token: "TH", Role: "Therapist"},
	{Token: "CL", Role: "Client"},
}

// RequiredAbbreviations returns the role substitutions enforced for session notes.
func RequiredAbbreviations() []Abbreviation {
	return append([]Abbreviation(nil), requiredAbbreviations...)
}

// Format is a named documentation style with its ordered section headings.
type Format struct {
	ID          string            `json:"id" yaml:"id"`
	Label       string            `json:"label" yaml:"label"`
	Description string            `json:"description" yaml:"description"`
	Sections    []string          `json:"sections" yaml:"sections"`
	Guidance    map[string]string `json:"guidance,omitempty" yaml:"guidance,omitempty"`
}

// Catalog is an immutable lookup table of formats. It is safe for concurrent use.
type Catalog struct {
	byID  map[string]Format
	order []string
}

// NewCatalog builds a catalog from the given formats, preserving their order.
// Returns an error if an id is duplicated or a format has empty or repeated headings.
func NewCatalog(list []Format) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Format, len(list))}
	for _, f := range list {
		if f.ID == "" {
			return nil, fmt.Errorf("format with label %q has no id", f.Label)
		}
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate format id %q", f.ID)
		}
		if len(f.Sections) == 0 {
			return nil, fmt.Errorf("format %q has no sections", f.ID)
		}
		seen := make(map[string]bool, len(f.Sections))
		for _, h := range f.Sections {
			if h == "" {
				return nil, fmt.Errorf("format %q has an empty heading", f.ID)
			}
			if seen[h] {
				return nil, fmt.Errorf("format %q repeats heading %q", f.ID, h)
			}
			seen[h] = true
		}
		c.byID[f.ID] = f.clone()
		c.order = append(c.order, f.ID)
	}
	return c, nil
}

// Lookup returns the format registered under id.
func (c *Catalog) Lookup(id string) (Format, error) {
	f, ok := c.byID[id]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, id)
	}
	return f.clone(), nil
}

// List returns every format in registration order.
func (c *Catalog) List() []Format {
	out := make([]Format, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].clone())
	}
	return out
}

// Headings returns the ordered headings a note must contain. Assessment notes
// always use the fixed assessment list and ignore id.
func (c *Catalog) Headings(isAssessment bool, id string) ([]string, error) {
	if isAssessment {
		return AssessmentSections(), nil
	}
	f, err := c.Lookup(id)
	if err != nil {
		return nil, err
	}
	return f.Sections, nil
}

func (f Format) clone() Format {
	out := f
	out.Sections = append([]string(nil), f.Sections...)
	if f.Guidance != nil {
		out.Guidance = make(map[string]string, len(f.Guidance))
		for k, v := range f.Guidance {
			out.Guidance[k] = v
		}
	}
	return out
}

var defaultCatalog = mustCatalog(builtin)

// Default returns the built-in catalog of session formats.
func Default() *Catalog {
	return defaultCatalog
}

func mustCatalog(list []Format) *Catalog {
	c, err := NewCatalog(list)
	if err != nil {
		panic(err)
	}
	return c
}
