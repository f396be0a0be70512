// Package cli renders notes, sections, and formats for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/hyperjump/notedraft/internal/formats"
	"github.com/hyperjump/notedraft/internal/models"
	"github.com/hyperjump/notedraft/internal/parser"
	"github.com/hyperjump/notedraft/pkg/utils"
)

// OutputFormat selects how command output is written.
type OutputFormat string

const (
	// OutputText is plain text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is indented JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputMarkdown is markdown rendered for the terminal.
	OutputMarkdown OutputFormat = "markdown"
)

// DefaultWidth is the word-wrap width for rendered markdown.
const DefaultWidth = 80

// ParseOutputFormat maps a flag value to an OutputFormat. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	case OutputMarkdown, "md":
		return OutputMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or markdown)", s)
	}
}

// WriteNote writes a drafted note. Text output is the exported note followed
// by any error and validation warnings.
func WriteNote(w io.Writer, note *models.Note, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, note)
	case OutputMarkdown:
		return writeMarkdown(w, noteMarkdown(note))
	default:
		if note.Error != "" {
			fmt.Fprintf(w, "error: %s\n", note.Error)
			return nil
		}
		fmt.Fprintln(w, parser.Render(note.Sections))
		writeWarnings(w, note.Warnings)
		return nil
	}
}

// WriteSections writes parsed sections.
func WriteSections(w io.Writer, sections []*models.Section, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, map[string]interface{}{"sections": sections})
	case OutputMarkdown:
		return writeMarkdown(w, sectionsMarkdown(sections))
	default:
		if len(sections) == 0 {
			fmt.Fprintln(w, "No sections found.")
			return nil
		}
		fmt.Fprintln(w, parser.Render(sections))
		return nil
	}
}

// WriteValidation writes a validation result.
func WriteValidation(w io.Writer, result models.ValidationResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	if len(result.Errors) == 0 {
		fmt.Fprintln(w, "No warnings.")
		return nil
	}
	writeWarnings(w, result.Errors)
	return nil
}

// WriteFormats lists formats with their headings.
func WriteFormats(w io.Writer, list []formats.Format, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"formats": list})
	}
	for _, f := range list {
		fmt.Fprintf(w, "%-6s %s\n", f.ID, utils.Truncate(f.Description, 70))
		for _, h := range f.Sections {
			fmt.Fprintf(w, "         %s\n", h)
		}
	}
	return nil
}

// RenderMarkdown renders md for a terminal of the given width. Colors are
// not used so the output is stable when piped.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.ASCIIStyleConfig),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

func noteMarkdown(note *models.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s note\n\n", strings.ToUpper(note.Format), note.Type)
	if note.Error != "" {
		fmt.Fprintf(&b, "> error: %s\n\n", note.Error)
	}
	b.WriteString(sectionsMarkdown(note.Sections))
	if len(note.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, msg := range note.Warnings {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
	}
	return b.String()
}

func sectionsMarkdown(sections []*models.Section) string {
	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Heading, s.Current().Content)
	}
	return b.String()
}

func writeMarkdown(w io.Writer, md string) error {
	out, err := RenderMarkdown(md, DefaultWidth)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func writeWarnings(w io.Writer, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintln(w, "\nWarnings:")
	for _, msg := range msgs {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
