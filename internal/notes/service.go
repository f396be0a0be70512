// Package notes drafts notes through the generation collaborator and keeps
// their sections and version history in memory.
package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/notedraft/internal/catalog"
	"github.com/hyperjump/notedraft/internal/formats"
	"github.com/hyperjump/notedraft/internal/generator"
	"github.com/hyperjump/notedraft/internal/models"
	"github.com/hyperjump/notedraft/internal/parser"
	"github.com/hyperjump/notedraft/internal/prompt"
	"github.com/hyperjump/notedraft/internal/validate"
	"github.com/hyperjump/notedraft/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidRequest wraps problems with a submitted NoteRequest.
	ErrInvalidRequest = errors.New("invalid note request")
	// ErrSectionNotFound is returned when a note has no section with the requested id.
	ErrSectionNotFound = errors.New("section not found")
	// ErrSectionBusy is returned when a section is already being regenerated.
	ErrSectionBusy = errors.New("section is already being regenerated")
)

// DefaultGenerationTimeout bounds every generator call unless WithTimeout is used.
const DefaultGenerationTimeout = 90 * time.Second

const promptLogLimit = 200

// errGenerationTimeout is the cancellation cause when the service's own
// timeout, not the caller's context, ends a generator call.
var errGenerationTimeout = errors.New("generation timed out")

// Service drafts notes and regenerates their sections.
type Service struct {
	store         Store
	formats       *formats.Catalog
	options       *catalog.Catalog
	gen           generator.Generator
	builder       *prompt.Builder
	parser        *parser.Parser
	validator     *validate.Validator
	defaultFormat string
	timeout       time.Duration
	now           func() time.Time
	newID         func() string
	logger        *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStore replaces the in-memory store.
func WithStore(s Store) Option {
	return func(svc *Service) { svc.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// WithTimeout bounds each generator call.
func WithTimeout(d time.Duration) Option {
	return func(svc *Service) { svc.timeout = d }
}

// WithDefaultFormat sets the format used when a request names none.
func WithDefaultFormat(id string) Option {
	return func(svc *Service) { svc.defaultFormat = id }
}

// WithFormats replaces the built-in format catalog.
func WithFormats(c *formats.Catalog) Option {
	return func(svc *Service) { svc.formats = c }
}

// WithOptions replaces the built-in option catalog.
func WithOptions(c *catalog.Catalog) Option {
	return func(svc *Service) { svc.options = c }
}

// WithClock sets the clock used for note and version timestamps.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// WithIDGenerator sets the note id generator.
func WithIDGenerator(f func() string) Option {
	return func(svc *Service) { svc.newID = f }
}

// NewService creates a Service that drafts with gen.
func NewService(gen generator.Generator, opts ...Option) *Service {
	s := &Service{
		store:         NewMemoryStore(),
		formats:       formats.Default(),
		options:       catalog.Default(),
		gen:           gen,
		defaultFormat: "girp",
		timeout:       DefaultGenerationTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = prompt.New(s.formats, s.options)
	s.parser = parser.New(s.formats, parser.WithClock(s.now), parser.WithLogger(s.logger))
	s.validator = validate.New(s.formats)
	return s
}

// Formats returns the format catalog in use.
func (s *Service) Formats() *formats.Catalog { return s.formats }

// Options returns the option catalog in use.
func (s *Service) Options() *catalog.Catalog { return s.options }

// Prepare validates req, fills in the default format, and checks that the
// format exists. It is applied by Process and by prompt previews.
func (s *Service) Prepare(req *models.NoteRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.Format == "" {
		req.Format = s.defaultFormat
	}
	if !req.IsAssessment() {
		if _, err := s.formats.Lookup(req.Format); err != nil {
			return err
		}
	}
	return nil
}

// Prompt returns the prompt and note content that Process would send.
func (s *Service) Prompt(req *models.NoteRequest) (promptText, content string, err error) {
	if err := s.Prepare(req); err != nil {
		return "", "", err
	}
	promptText, err = s.builder.Build(req)
	if err != nil {
		return "", "", err
	}
	return promptText, s.builder.Content(req), nil
}

// Process drafts a new note. Generation failures are recorded on the returned
// note rather than returned as errors; only invalid requests and unknown
// formats fail the call.
func (s *Service) Process(ctx context.Context, req *models.NoteRequest) (*models.Note, error) {
	promptText, content, err := s.Prompt(req)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		ID:              s.newID(),
		Type:            req.NoteType,
		Format:          req.Format,
		Content:         content,
		OriginalContent: content,
		IsProcessing:    true,
		CreatedAt:       s.now(),
	}
	if err := s.store.Create(note); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("note_id", note.ID), zap.String("format", note.Format), zap.String("note_type", string(note.Type)))
	log.Debug("generating note", zap.String("prompt", utils.Truncate(promptText, promptLogLimit)))

	text, genErr := s.generate(ctx, &generator.Request{Content: content, Prompt: promptText})

	var (
		sections []*models.Section
		warnings []string
	)
	if genErr == nil {
		sections, genErr = s.parser.Parse(text, note.IsAssessment(), note.Format)
	}
	if genErr == nil {
		result, err := s.validator.Validate(text, note.IsAssessment(), note.Format)
		if err != nil {
			genErr = err
		} else if len(result.Errors) > 0 {
			warnings = result.Errors
			log.Warn("generated note has validation warnings", zap.Strings("warnings", warnings))
		}
	}
	if genErr != nil {
		log.Error("note generation failed", zap.Error(genErr))
	} else {
		log.Info("note generated", zap.Int("sections", len(sections)))
	}

	return s.store.Update(note.ID, func(n *models.Note) error {
		n.IsProcessing = false
		if genErr != nil {
			n.Error = s.errorMessage(genErr)
			n.Sections = nil
			return nil
		}
		n.Error = ""
		n.Sections = sections
		n.Warnings = warnings
		return nil
	})
}

// RegenerateSection asks for a fresh body for one section. On success a new
// version is appended and selected; on failure the section keeps its versions
// and records the error. Both outcomes return the section with a nil error.
func (s *Service) RegenerateSection(ctx context.Context, noteID, sectionID string) (*models.Section, error) {
	var (
		heading  string
		noteType models.NoteType
		format   string
		original string
	)
	_, err := s.store.Update(noteID, func(n *models.Note) error {
		sec := n.Section(sectionID)
		if sec == nil {
			return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
		}
		if sec.IsProcessing {
			return fmt.Errorf("%w: %s", ErrSectionBusy, sectionID)
		}
		sec.IsProcessing = true
		sec.Error = ""
		heading, noteType, format, original = sec.Heading, n.Type, n.Format, n.OriginalContent
		return nil
	})
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("note_id", noteID), zap.String("section_id", sectionID))

	var text string
	promptText, genErr := s.builder.BuildSection(noteType, format, heading)
	if genErr == nil {
		text, genErr = s.generate(ctx, &generator.Request{Content: original, Prompt: promptText, RemoveHeader: true})
	}
	content := strings.TrimSpace(text)
	if genErr == nil && content == "" {
		genErr = errors.New("generation returned no content")
	}
	if genErr != nil {
		log.Error("section regeneration failed", zap.Error(genErr))
	}

	var out *models.Section
	_, err = s.store.Update(noteID, func(n *models.Note) error {
		sec := n.Section(sectionID)
		if sec == nil {
			return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
		}
		sec.IsProcessing = false
		if genErr != nil {
			sec.Error = s.errorMessage(genErr)
		} else {
			v := sec.AppendVersion(content, s.now())
			sec.Error = ""
			log.Info("section regenerated", zap.Int("version", v.ID))
		}
		out = sec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RegenerateSections regenerates several sections of one note concurrently.
// With no ids every section is regenerated. Each section succeeds or fails on
// its own; the returned error is the first lookup error (unknown note or
// section, or a section already busy).
func (s *Service) RegenerateSections(ctx context.Context, noteID string, sectionIDs ...string) ([]*models.Section, error) {
	if len(sectionIDs) == 0 {
		n, err := s.store.Get(noteID)
		if err != nil {
			return nil, err
		}
		for _, sec := range n.Sections {
			sectionIDs = append(sectionIDs, sec.ID)
		}
	}

	out := make([]*models.Section, len(sectionIDs))
	var g errgroup.Group
	for i, id := range sectionIDs {
		g.Go(func() error {
			sec, err := s.RegenerateSection(ctx, noteID, id)
			if err != nil {
				return err
			}
			out[i] = sec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// SelectVersion makes versionID the current version of a section. It reports
// false, leaving the section unchanged, when the version does not exist.
func (s *Service) SelectVersion(noteID, sectionID string, versionID int) (bool, error) {
	var changed bool
	_, err := s.store.Update(noteID, func(n *models.Note) error {
		sec := n.Section(sectionID)
		if sec == nil {
			return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
		}
		changed = sec.SelectVersion(versionID)
		return nil
	})
	if err != nil {
		return false, err
	}
	if !changed {
		s.logger.Debug("ignored selection of unknown version",
			zap.String("note_id", noteID), zap.String("section_id", sectionID), zap.Int("version", versionID))
	}
	return changed, nil
}

// Get returns a copy of a note.
func (s *Service) Get(id string) (*models.Note, error) {
	return s.store.Get(id)
}

// List returns copies of every note, oldest first.
func (s *Service) List() []*models.Note {
	return s.store.List()
}

// Clear removes a note.
func (s *Service) Clear(id string) error {
	return s.store.Delete(id)
}

// Export renders the current version of every section of a note.
func (s *Service) Export(id string) (string, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return "", err
	}
	return parser.Render(n.Sections), nil
}

// Parse splits text into sections without storing anything.
func (s *Service) Parse(text string, isAssessment bool, formatID string) ([]*models.Section, error) {
	if formatID == "" {
		formatID = s.defaultFormat
	}
	return s.parser.Parse(text, isAssessment, formatID)
}

// Validate checks text without storing anything.
func (s *Service) Validate(text string, isAssessment bool, formatID string) (models.ValidationResult, error) {
	if formatID == "" {
		formatID = s.defaultFormat
	}
	return s.validator.Validate(text, isAssessment, formatID)
}

func (s *Service) generate(ctx context.Context, req *generator.Request) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, s.timeout, errGenerationTimeout)
		defer cancel()
	}
	resp, err := s.gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(context.Cause(ctx), errGenerationTimeout) {
			return "", fmt.Errorf("%w: %w", errGenerationTimeout, err)
		}
		return "", err
	}
	if resp == nil {
		return "", errors.New("generator returned no response")
	}
	return resp.ProcessedContent, nil
}

func (s *Service) errorMessage(err error) string {
	if errors.Is(err, errGenerationTimeout) {
		return fmt.Sprintf("generation timed out after %s", s.timeout)
	}
	return err.Error()
}
