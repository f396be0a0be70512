// Package parser splits generated note text into the ordered sections of a
// format. Heading boundaries are found by a single line scan; bodies are then
// sliced by line index and cleaned.
package parser

import (
	"strings"
	"time"

	"github.com/hyperjump/notedraft/internal/formats"
	"github.com/hyperjump/notedraft/internal/models"
	"go.uber.org/zap"
)

// Parser turns generated text into sections for a format.
type Parser struct {
	formats *formats.Catalog
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used to timestamp initial versions.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithLogger sets a logger for debug output (headings found and missing).
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// New creates a parser over the given format catalog.
func New(catalog *formats.Catalog, opts ...Option) *Parser {
	p := &Parser{formats: catalog, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts one section per heading found in raw, in catalog order, each
// holding a single version 0. Headings with no body are omitted; an empty
// result is not an error. The only error is formats.ErrUnknownFormat.
func (p *Parser) Parse(raw string, isAssessment bool, formatID string) ([]*models.Section, error) {
	headings, err := p.formats.Headings(isAssessment, formatID)
	if err != nil {
		return nil, err
	}
	blocks := Extract(raw, headings)
	at := p.now()
	sections := make([]*models.Section, 0, len(blocks))
	for _, b := range blocks {
		sections = append(sections, models.NewSection(b.Heading, b.Content, at))
	}
	if len(sections) < len(headings) {
		p.logger.Debug("headings missing from generated text",
			zap.String("format", formatID),
			zap.Bool("assessment", isAssessment),
			zap.Strings("missing", missing(headings, blocks)),
		)
	}
	return sections, nil
}

// Render joins the current version of each section as "HEADING:\n\ncontent",
// separating sections with two blank lines.
func Render(sections []*models.Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.Heading+":\n\n"+s.Current().Content)
	}
	return strings.Join(parts, "\n\n\n")
}

func missing(headings []string, blocks []Block) []string {
	found := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		found[b.Heading] = true
	}
	var out []string
	for _, h := range headings {
		if !found[h] {
			out = append(out, h)
		}
	}
	return out
}
