// Package catalog holds the immutable tables of selectable clinical options
// (therapy approaches, concerns, observations, responses, plans) and the
// guided-mode questions. Tables are decoded once from embedded YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/options.yaml
var defaultOptions []byte

// Therapy is a therapy approach with the prompt fragment it contributes to session notes.
type Therapy struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Category     string `json:"category" yaml:"category"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions"`
}

// Option is a single selectable item. Category is the label of the group it belongs to.
type Option struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description"`
	Category    string `json:"category,omitempty" yaml:"-"`
	// InsertOnly options carry a placeholder and are meant to be edited into free text.
	InsertOnly bool `json:"insert_only,omitempty" yaml:"insert_only"`
}

// Question is a guided-mode prompt; Category labels the answer in generation prompts.
type Question struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
}

type optionGroup struct {
	ID      string   `yaml:"id"`
	Label   string   `yaml:"label"`
	Options []Option `yaml:"options"`
}

type document struct {
	Therapies    []Therapy     `yaml:"therapies"`
	Concerns     []Option      `yaml:"concerns"`
	Observations []optionGroup `yaml:"observations"`
	Responses    []optionGroup `yaml:"responses"`
	Plans        []optionGroup `yaml:"plans"`
	Questions    struct {
		Session    []Question `yaml:"session"`
		Assessment []Question `yaml:"assessment"`
	} `yaml:"questions"`
}

// Catalog is the full set of option tables. It has no mutation API.
type Catalog struct {
	Therapies           *Table[Therapy]
	Concerns            *Table[Option]
	Observations        *Table[Option]
	Responses           *Table[Option]
	Plans               *Table[Option]
	SessionQuestions    *Table[Question]
	AssessmentQuestions *Table[Question]
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	var (
		c   Catalog
		err error
	)
	if c.Therapies, err = NewTable(doc.Therapies, func(t Therapy) string { return t.ID }); err != nil {
		return nil, fmt.Errorf("therapies: %w", err)
	}
	if c.Concerns, err = NewTable(doc.Concerns, optionID); err != nil {
		return nil, fmt.Errorf("concerns: %w", err)
	}
	if c.Observations, err = NewTable(flatten(doc.Observations), optionID); err != nil {
		return nil, fmt.Errorf("observations: %w", err)
	}
	if c.Responses, err = NewTable(flatten(doc.Responses), optionID); err != nil {
		return nil, fmt.Errorf("responses: %w", err)
	}
	if c.Plans, err = NewTable(flatten(doc.Plans), optionID); err != nil {
		return nil, fmt.Errorf("plans: %w", err)
	}
	if c.SessionQuestions, err = NewTable(doc.Questions.Session, questionID); err != nil {
		return nil, fmt.Errorf("session questions: %w", err)
	}
	if c.AssessmentQuestions, err = NewTable(doc.Questions.Assessment, questionID); err != nil {
		return nil, fmt.Errorf("assessment questions: %w", err)
	}
	return &c, nil
}

// Load reads and parses a catalog file, replacing the built-in options.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

var defaultCatalog = mustParse(defaultOptions)

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Questions returns the guided questions for the given note type.
func (c *Catalog) Questions(isAssessment bool) *Table[Question] {
	if isAssessment {
		return c.AssessmentQuestions
	}
	return c.SessionQuestions
}

func flatten(groups []optionGroup) []Option {
	var out []Option
	for _, g := range groups {
		for _, o := range g.Options {
			o.Category = g.Label
			out = append(out, o)
		}
	}
	return out
}

func optionID(o Option) string     { return o.ID }
func questionID(q Question) string { return q.ID }

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}
