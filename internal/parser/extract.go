package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Block is a heading and its cleaned body text.
type Block struct {
	Heading string
	Content string
}

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	placeholder    = regexp.MustCompile(`\[\s*|\s*\]`)
)

// Normalize converts line endings to \n, trims the text, and collapses runs of
// three or more newlines to two.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return excessNewlines.ReplaceAllString(strings.TrimSpace(s), "\n\n")
}

// mark is a heading line: the line index, the heading it names, and any text
// that followed the colon on the same line. A mark with no inline text is a
// standalone heading line.
type mark struct {
	line    int
	heading string
	inline  string
}

func (m mark) standalone() bool { return m.inline == "" }

// Extract returns a block for every heading in headings that has a non-empty
// body in raw, ordered as headings is, regardless of the order in the text.
//
// A heading's body starts at the first line holding that heading alone, and
// ends at the next standalone line of any heading (repeats included) or at the
// end of the text. A "HEADING: text" line only opens a section when the
// heading has no standalone line anywhere; otherwise it stays in the body it
// sits in and its label is stripped during cleaning.
func Extract(raw string, headings []string) []Block {
	lines := strings.Split(Normalize(raw), "\n")
	byLength := longestFirst(headings)
	marks := scan(lines, byLength)

	open := openers(marks)
	bounds := make([]int, 0, len(marks))
	for _, m := range marks {
		if m.standalone() || open[m.heading] == m.line {
			bounds = append(bounds, m.line)
		}
	}

	var out []Block
	for _, h := range headings {
		start, ok := open[h]
		if !ok {
			continue
		}
		end := len(lines)
		if i := sort.SearchInts(bounds, start+1); i < len(bounds) {
			end = bounds[i]
		}
		body := make([]string, 0, end-start)
		if inline := inlineAt(marks, start); inline != "" {
			body = append(body, inline)
		}
		body = append(body, lines[start+1:end]...)
		content := clean(strings.Join(body, "\n"), byLength)
		if content == "" {
			continue
		}
		out = append(out, Block{Heading: h, Content: content})
	}
	return out
}

// openers maps each heading to the line that opens its section: the first
// standalone line naming it, else the first inline one.
func openers(marks []mark) map[string]int {
	open := make(map[string]int, len(marks))
	for _, m := range marks {
		if _, ok := open[m.heading]; !ok && m.standalone() {
			open[m.heading] = m.line
		}
	}
	for _, m := range marks {
		if _, ok := open[m.heading]; !ok {
			open[m.heading] = m.line
		}
	}
	return open
}

func inlineAt(marks []mark, line int) string {
	for _, m := range marks {
		if m.line == line {
			return m.inline
		}
	}
	return ""
}

// scan records every line naming a heading, in line order.
func scan(lines []string, byLength []string) []mark {
	var marks []mark
	for i, line := range lines {
		if h, rest, ok := matchHeadingLine(line, byLength); ok {
			marks = append(marks, mark{line: i, heading: h, inline: rest})
		}
	}
	return marks
}

// matchHeadingLine reports whether line names one of the headings. A heading
// line starts, case-insensitively and after optional markdown decoration
// ("#", "*", "_"), with the heading followed by a colon; text after the colon
// is returned as rest, and an empty rest marks a standalone heading line. A
// line holding only the heading, without a colon, also counts. byLength must be sorted longest first so that the most specific
// heading wins.
func matchHeadingLine(line string, byLength []string) (heading, rest string, ok bool) {
	s := strings.TrimSpace(line)
	s = strings.TrimSpace(strings.TrimLeft(s, "#"))
	s = strings.TrimLeft(s, "*_")
	for _, h := range byLength {
		if !hasPrefixFold(s, h) {
			continue
		}
		after := strings.TrimLeft(s[len(h):], "*_")
		if strings.HasPrefix(after, ":") {
			rest = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(after[1:]), "*_"))
			return h, rest, true
		}
		if strings.TrimSpace(after) == "" {
			return h, "", true
		}
	}
	return "", "", false
}

// clean removes placeholder brackets and leaked heading labels, trims every
// line, and collapses consecutive blank lines into one.
func clean(body string, byLength []string) string {
	body = placeholder.ReplaceAllString(body, "")
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(stripLabels(line, byLength))
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// stripLabels removes every "HEADING:" label from line, case-insensitively,
// whether it starts the line or sits inside it. A label only matches when it
// is not preceded by a letter or digit.
func stripLabels(line string, byLength []string) string {
	for _, h := range byLength {
		label := h + ":"
		for i := 0; i+len(label) <= len(line); {
			if strings.EqualFold(line[i:i+len(label)], label) && !wordBefore(line, i) {
				line = line[:i] + strings.TrimLeft(line[i+len(label):], " \t")
				continue
			}
			i++
		}
	}
	return line
}

func wordBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func longestFirst(headings []string) []string {
	out := append([]string(nil), headings...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}
