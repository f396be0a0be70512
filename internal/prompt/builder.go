// Package prompt assembles generation prompts for whole notes and for single
// section regeneration. Output depends only on the request and the catalogs,
// so identical input always yields an identical prompt.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/notedraft/internal/catalog"
	"github.com/hyperjump/notedraft/internal/formats"
	"github.com/hyperjump/notedraft/internal/models"
)

// ErrUnknownHeading is returned when a heading is not part of the note's format.
var ErrUnknownHeading = errors.New("heading not in format")

// Builder builds prompts from the format and option catalogs.
type Builder struct {
	formats *formats.Catalog
	options *catalog.Catalog
}

// New creates a Builder. Nil catalogs fall back to the built-in ones.
func New(f *formats.Catalog, o *catalog.Catalog) *Builder {
	if f == nil {
		f = formats.Default()
	}
	if o == nil {
		o = catalog.Default()
	}
	return &Builder{formats: f, options: o}
}

// layout is the resolved heading set for one note.
type layout struct {
	name     string
	label    string
	desc     string
	headings []string
	guidance map[string]string
}

func (b *Builder) resolve(isAssessment bool, formatID string) (layout, error) {
	if isAssessment {
		return layout{
			name:     "clinical assessment",
			headings: formats.AssessmentSections(),
			guidance: formats.AssessmentGuidance(),
		}, nil
	}
	f, err := b.formats.Lookup(formatID)
	if err != nil {
		return layout{}, err
	}
	return layout{
		name:     f.Label,
		label:    f.Label,
		desc:     f.Description,
		headings: f.Sections,
		guidance: f.Guidance,
	}, nil
}

// Build returns the whole-note prompt for req. The request's note type must
// already be normalized (see models.NoteRequest.Validate).
func (b *Builder) Build(req *models.NoteRequest) (string, error) {
	isAssessment := req.IsAssessment()
	l, err := b.resolve(isAssessment, req.Format)
	if err != nil {
		return "", err
	}

	var body string
	if isAssessment {
		body = fmt.Sprintf(assessmentTemplate, formats.MinSentences, formats.MaxSentences)
	} else {
		body = fmt.Sprintf(sessionTemplate, formats.MinSentences, formats.MaxSentences, l.label, l.desc)
	}

	if items := b.selectedItems(req); items != "" {
		body = selectedItemsHeader + "\n\n" + items + "\n\n" + body
	}

	if !isAssessment {
		if fragments := b.therapyInstructions(req.SelectedTherapies); fragments != "" {
			body += "\n\n" + therapyHeader + "\n" + fragments
		}
	}

	if guided := b.guidedContent(req); guided != "" {
		lead := guidedSessionLead
		if isAssessment {
			lead = guidedAssessmentLead
		}
		body = lead + "\n" + guided + "\n" + body
	}

	if custom := strings.TrimSpace(req.CustomInstructions); custom != "" {
		body += "\n\n" + customHeader + "\n" + custom
	}

	return body + "\n\n" + formattingBlock(l), nil
}

// BuildSection returns the prompt used to regenerate the body of a single
// heading. The reply is expected to hold only the body, without the heading.
func (b *Builder) BuildSection(noteType models.NoteType, formatID, heading string) (string, error) {
	l, err := b.resolve(noteType == models.NoteTypeAssessment, formatID)
	if err != nil {
		return "", err
	}
	canonical, ok := findHeading(l.headings, heading)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownHeading, heading)
	}

	labels := make([]string, len(l.headings))
	for i, h := range l.headings {
		labels[i] = h + ":"
	}

	var sb strings.Builder
	sb.WriteString("Please regenerate the following section of the clinical documentation.\n")
	fmt.Fprintf(&sb, "The documentation uses the %s format with these exact section headers:\n\n", l.name)
	sb.WriteString(strings.Join(labels, "\n\n"))
	sb.WriteString("\n\nRegenerate ONLY the content for this section:\n")
	sb.WriteString(canonical)
	if g := l.guidance[canonical]; g != "" {
		fmt.Fprintf(&sb, "\nIt should cover %s.", g)
	}
	sb.WriteString("\n\nReturn ONLY the content without the section header. ")
	fmt.Fprintf(&sb, "Maintain professional clinical language and ensure %d-%d complete sentences.", formats.MinSentences, formats.MaxSentences)
	if noteType != models.NoteTypeAssessment {
		sb.WriteString(` Always use "TH" for therapist and "CL" for client.`)
	}
	return sb.String(), nil
}

// Content returns the note content sent alongside the prompt: the non-blank
// guided answers in question order separated by blank lines, or the free text
// unchanged when no guided answer was given.
func (b *Builder) Content(req *models.NoteRequest) string {
	if !req.IsGuided() {
		return req.Content
	}
	var answers []string
	for _, q := range b.options.Questions(req.IsAssessment()).List() {
		if a := strings.TrimSpace(req.GuidedAnswers[q.ID]); a != "" {
			answers = append(answers, a)
		}
	}
	return strings.Join(answers, "\n\n")
}

func (b *Builder) selectedItems(req *models.NoteRequest) string {
	var groups []string
	add := func(name string, ids []string, label func(string) string) {
		if len(ids) == 0 {
			return
		}
		lines := make([]string, 0, len(ids)+1)
		lines = append(lines, name+":")
		for _, id := range ids {
			lines = append(lines, "- "+label(id))
		}
		groups = append(groups, strings.Join(lines, "\n"))
	}

	add(categoryTherapies, req.SelectedTherapies, func(id string) string {
		if t, ok := b.options.Therapies.Lookup(id); ok {
			return t.Name
		}
		return id
	})
	add(categoryConcerns, req.SelectedConcerns, optionLabel(b.options.Concerns))
	add(categoryObservations, req.SelectedObservations, optionLabel(b.options.Observations))
	add(categoryResponses, req.SelectedResponses, optionLabel(b.options.Responses))
	add(categoryPlans, req.SelectedPlans, optionLabel(b.options.Plans))

	return strings.Join(groups, "\n\n")
}

func optionLabel(t *catalog.Table[catalog.Option]) func(string) string {
	return func(id string) string {
		if o, ok := t.Lookup(id); ok {
			return o.Label
		}
		return id
	}
}

func (b *Builder) therapyInstructions(ids []string) string {
	var fragments []string
	for _, id := range ids {
		if t, ok := b.options.Therapies.Lookup(id); ok && t.Instructions != "" {
			fragments = append(fragments, t.Instructions)
		}
	}
	return strings.Join(fragments, "\n\n")
}

func (b *Builder) guidedContent(req *models.NoteRequest) string {
	var sb strings.Builder
	for _, q := range b.options.Questions(req.IsAssessment()).List() {
		a := strings.TrimSpace(req.GuidedAnswers[q.ID])
		if a == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n%s\n", q.Category, a)
	}
	return sb.String()
}

func formattingBlock(l layout) string {
	var sb strings.Builder
	sb.WriteString(criticalHeader + "\n\n")

	sb.WriteString("1. Structure:\n")
	fmt.Fprintf(&sb, "   - This note MUST follow the %s format\n", l.name)
	sb.WriteString("   - Use ONLY these exact section headers, in this order:\n")
	for _, h := range l.headings {
		fmt.Fprintf(&sb, "   %s:\n", h)
		if g := l.guidance[h]; g != "" {
			fmt.Fprintf(&sb, "   [Write %d-%d sentences about %s.]\n", formats.MinSentences, formats.MaxSentences, g)
		}
	}
	sb.WriteString("   - Each section MUST start with the exact heading followed by a colon\n")
	sb.WriteString("   - Each section MUST be separated by exactly two blank lines\n")
	sb.WriteString("   - Do not add any additional headers or sections\n")
	sb.WriteString("   - Do not modify or rephrase the headers\n")
	sb.WriteString("   - Never include headers within section content\n")
	sb.WriteString("   - Never nest sections within other sections\n\n")

	sb.WriteString("2. Content:\n")
	fmt.Fprintf(&sb, "   - Each section MUST contain %d-%d complete sentences\n", formats.MinSentences, formats.MaxSentences)
	sb.WriteString("   - Each section MUST be self-contained with no content overlap between sections\n")
	sb.WriteString("   - Use professional clinical language and terminology\n")
	sb.WriteString("   - Always use \"TH\" for therapist and \"CL\" for client\n")
	sb.WriteString("   - Focus on observable behaviors and clinical observations\n")
	sb.WriteString("   - Content must be appropriate for the specific section heading\n\n")

	sb.WriteString("3. Example Format:\n")
	bodies := []string{firstExampleBody, secondExampleBody}
	for i, h := range l.headings {
		if i == len(bodies) {
			break
		}
		if i > 0 {
			sb.WriteString("\n\n\n")
		}
		fmt.Fprintf(&sb, "%s:\n%s", h, bodies[i])
	}
	return sb.String()
}

func findHeading(headings []string, heading string) (string, bool) {
	heading = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(heading), ":"))
	for _, h := range headings {
		if strings.EqualFold(h, heading) {
			return h, true
		}
	}
	return "", false
}
