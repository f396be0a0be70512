// Package validate checks generated note text for structural and lexical
// problems. Findings are advisory: the result is always marked valid and the
// caller decides whether to show the errors.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/hyperjump/notedraft/internal/formats"
	"github.com/hyperjump/notedraft/internal/models"
)

// Messages reported by Validate.
const (
	MsgEmptyResponse    = "Invalid or empty response"
	MsgMissingRoles     = "Missing required therapist (TH) or client (CL) references"
	MsgIdentifiers      = "Potential HIPAA compliance concerns detected"
	MsgStructure        = "Response format does not match expected structure"
	msgMissingSection   = "Missing or empty section: %s"
	msgTooFewSentences  = "Section %q has fewer than %d sentences (found %d)"
	msgTooManySentences = "Section %q has more than %d sentences (found %d)"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

type identifier struct {
	kind    string
	pattern *regexp.Regexp
}

var identifiers = []identifier{
	{"social security number", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{"phone number", regexp.MustCompile(`\b\d{10}\b`)},
	{"email address", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"calendar date", regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`)},
}

var roleTokens = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(formats.RequiredAbbreviations()))
	for _, a := range formats.RequiredAbbreviations() {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(a.Token)+`\b`))
	}
	return out
}()

// Validator validates generated text against a format catalog. Heading label
// patterns are compiled once per format when the Validator is created.
type Validator struct {
	formats    *formats.Catalog
	labels     map[string][]*regexp.Regexp
	assessment []*regexp.Regexp
}

// New creates a Validator.
func New(catalog *formats.Catalog) *Validator {
	v := &Validator{
		formats:    catalog,
		labels:     make(map[string][]*regexp.Regexp),
		assessment: labelPatterns(formats.AssessmentSections()),
	}
	for _, f := range catalog.List() {
		v.labels[f.ID] = labelPatterns(f.Sections)
	}
	return v
}

func (v *Validator) patterns(isAssessment bool, formatID string) []*regexp.Regexp {
	if isAssessment {
		return v.assessment
	}
	return v.labels[formatID]
}

// Validate reports every problem found in text. It only fails when formatID
// is unknown for a session note.
func (v *Validator) Validate(text string, isAssessment bool, formatID string) (models.ValidationResult, error) {
	headings, err := v.formats.Headings(isAssessment, formatID)
	if err != nil {
		return models.ValidationResult{}, err
	}
	result := models.ValidationResult{IsValid: true, Errors: []string{}}

	normalized := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n"))
	if normalized == "" {
		result.Errors = append(result.Errors, MsgEmptyResponse)
		return result, nil
	}

	bodies := locate(normalized, v.patterns(isAssessment, formatID))
	for i, h := range headings {
		body := bodies[i]
		if body == "" {
			result.Errors = append(result.Errors, fmt.Sprintf(msgMissingSection, h))
			continue
		}
		switch n := CountSentences(body); {
		case n < formats.MinSentences:
			result.Errors = append(result.Errors, fmt.Sprintf(msgTooFewSentences, h, formats.MinSentences, n))
		case n > formats.MaxSentences:
			result.Errors = append(result.Errors, fmt.Sprintf(msgTooManySentences, h, formats.MaxSentences, n))
		}
	}

	if !isAssessment {
		for _, re := range roleTokens {
			if !re.MatchString(text) {
				result.Errors = append(result.Errors, MsgMissingRoles)
				break
			}
		}
	}

	if kinds := Identifiers(text); len(kinds) > 0 {
		result.Errors = append(result.Errors, MsgIdentifiers+": "+strings.Join(kinds, ", "))
	}

	if len(strings.Split(normalized, "\n")) < len(headings) {
		result.Errors = append(result.Errors, MsgStructure)
	}
	return result, nil
}

// CountSentences counts the non-blank pieces of text separated by runs of
// '.', '!' or '?' that are followed by whitespace or the end of the text.
func CountSentences(text string) int {
	n := 0
	for _, piece := range sentenceEnd.Split(strings.TrimSpace(text), -1) {
		if strings.TrimSpace(piece) != "" {
			n++
		}
	}
	return n
}

// Identifiers returns the kinds of probable direct identifiers found in text,
// in a fixed order.
func Identifiers(text string) []string {
	var kinds []string
	for _, id := range identifiers {
		if id.pattern.MatchString(text) {
			kinds = append(kinds, id.kind)
		}
	}
	return kinds
}

// label is one occurrence of "HEADING:" in the text.
type label struct {
	start, end int
	heading    int
}

// labelPatterns compiles one "HEADING:" pattern per heading. Labels match
// case-insensitively, anywhere in the text, with flexible whitespace and
// optional '/' or '-'.
func labelPatterns(headings []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(headings))
	for i, h := range headings {
		out[i] = regexp.MustCompile(`(?i)` + lenientPattern(h) + `:`)
	}
	return out
}

// locate returns the trimmed body following the first label of each heading,
// ending at the next label of any heading. patterns holds one label pattern
// per heading, in heading order.
func locate(text string, patterns []*regexp.Regexp) []string {
	var labels []label
	for i, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			labels = append(labels, label{start: loc[0], end: loc[1], heading: i})
		}
	}
	sort.Slice(labels, func(a, b int) bool { return labels[a].start < labels[b].start })

	bodies := make([]string, len(patterns))
	seen := make([]bool, len(patterns))
	for _, l := range labels {
		if seen[l.heading] {
			continue
		}
		seen[l.heading] = true
		end := len(text)
		for _, next := range labels {
			if next.start >= l.end {
				end = next.start
				break
			}
		}
		bodies[l.heading] = strings.TrimSpace(text[l.end:end])
	}
	return bodies
}

// lenientPattern quotes heading for use in a regexp, letting any whitespace
// run match one or more whitespace characters and making '/' and '-' optional
// and interchangeable.
func lenientPattern(heading string) string {
	var sb strings.Builder
	inSpace := false
	for _, r := range heading {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteString(`\s+`)
			}
			inSpace = true
			continue
		}
		inSpace = false
		if r == '/' || r == '-' {
			sb.WriteString(`[/-]?`)
			continue
		}
		sb.WriteString(regexp.QuoteMeta(string(r)))
	}
	return sb.String()
}
