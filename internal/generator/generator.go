// Package generator defines the text generation collaborator used to draft
// notes and provides adapters for the supported providers.
package generator

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Request is one generation call: the author's content and the instructions
// to apply to it.
type Request struct {
	Content string
	Prompt  string
	// RemoveHeader strips a leading heading line from the reply. Set when
	// regenerating a single section.
	RemoveHeader bool
}

// Response carries the generated text.
type Response struct {
	ProcessedContent string
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// GenerationError reports a provider failure. StatusCode is zero when the
// failure did not come from an HTTP response.
type GenerationError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s generation failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Static always returns the same text, or Err when set.
type Static struct {
	Text string
	Err  error
}

// Generate returns s.Text after applying RemoveHeader.
func (s Static) Generate(ctx context.Context, req *Request) (*Response, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return finish(s.Text, req), nil
}

// Echo returns the request content unchanged. It lets the parse and validate
// pipeline run offline against text that is already structured.
type Echo struct{}

// Generate returns req.Content.
func (Echo) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return finish(req.Content, req), nil
}

func finish(text string, req *Request) *Response {
	if req.RemoveHeader {
		text = StripHeader(text)
	}
	return &Response{ProcessedContent: text}
}

// StripHeader removes a leading "HEADING:" label, ignoring markdown emphasis
// around it. The label before the first colon must be upper case with at least
// four letters, so role tokens such as "TH:" are kept. Text following the
// colon on the same line is kept.
func StripHeader(text string) string {
	trimmed := strings.TrimSpace(text)
	first, rest, _ := strings.Cut(trimmed, "\n")
	line := strings.Trim(strings.TrimSpace(strings.TrimLeft(first, "#")), "*_")
	label, after, ok := strings.Cut(line, ":")
	if !ok || label == "" || strings.ToUpper(label) != label || letters(label) < 4 {
		return trimmed
	}
	after = strings.TrimSpace(strings.Trim(after, "*_"))
	if after != "" {
		return strings.TrimSpace(after + "\n" + rest)
	}
	return strings.TrimSpace(rest)
}

func letters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
