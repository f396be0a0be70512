package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperjump/notedraft/internal/formats"
	"github.com/hyperjump/notedraft/internal/generator"
	"github.com/hyperjump/notedraft/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const dapText = "DESCRIPTION OF SESSION:\n\nFoo bar baz.\n\nASSESSMENT OF PROGRESS:\n\nQux quux.\n\nPLAN FOR TREATMENT:\n\nDone."

func dapRequest() *models.NoteRequest {
	return &models.NoteRequest{Format: "dap", Content: "CL discussed stress at work."}
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("note-%d", n.Add(1))
	}
}

// draft creates a service whose whole-note generation returns dapText and
// whose section regenerations are answered by regen.
func draft(t *testing.T, regen generator.Func, opts ...Option) (*Service, *models.Note) {
	t.Helper()
	gen := generator.Func(func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		if req.RemoveHeader {
			return regen(ctx, req)
		}
		return &generator.Response{ProcessedContent: dapText}, nil
	})
	svc := NewService(gen, append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
	note, err := svc.Process(context.Background(), dapRequest())
	require.NoError(t, err)
	require.Empty(t, note.Error)
	require.Len(t, note.Sections, 3)
	return svc, note
}

func TestProcess_DAPExample(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc, note := draft(t, nil, WithClock(func() time.Time { return at }))

	assert.Equal(t, "note-1", note.ID)
	assert.Equal(t, models.NoteTypeSession, note.Type)
	assert.Equal(t, "dap", note.Format)
	assert.Equal(t, "CL discussed stress at work.", note.OriginalContent)
	assert.False(t, note.IsProcessing)
	assert.Equal(t, at, note.CreatedAt)

	var headings, bodies []string
	for _, s := range note.Sections {
		headings = append(headings, s.Heading)
		bodies = append(bodies, s.Current().Content)
		assert.Equal(t, at, s.Versions[0].Timestamp)
	}
	assert.Equal(t, []string{"DESCRIPTION OF SESSION", "ASSESSMENT OF PROGRESS", "PLAN FOR TREATMENT"}, headings)
	assert.Equal(t, []string{"Foo bar baz.", "Qux quux.", "Done."}, bodies)
	assert.Contains(t, note.Warnings, `Section "DESCRIPTION OF SESSION" has fewer than 5 sentences (found 1)`)

	stored, err := svc.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, note, stored)
}

func TestProcess_GenerationFailure(t *testing.T) {
	svc := NewService(generator.Static{Err: &generator.GenerationError{Provider: "openai", StatusCode: 500, Err: errors.New("overloaded")}})
	note, err := svc.Process(context.Background(), dapRequest())
	require.NoError(t, err, "generation failures are recorded on the note")
	assert.False(t, note.IsProcessing)
	assert.Empty(t, note.Sections)
	assert.Equal(t, "openai generation failed with status 500: overloaded", note.Error)
	assert.Equal(t, "CL discussed stress at work.", note.OriginalContent)
}

func TestProcess_EmptyParse(t *testing.T) {
	svc := NewService(generator.Static{Text: "I cannot help with that."})
	note, err := svc.Process(context.Background(), dapRequest())
	require.NoError(t, err)
	assert.Empty(t, note.Sections)
	assert.Empty(t, note.Error)
	assert.NotEmpty(t, note.Warnings)
}

func TestProcess_Timeout(t *testing.T) {
	block := generator.Func(func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := NewService(block, WithTimeout(20*time.Millisecond))
	note, err := svc.Process(context.Background(), dapRequest())
	require.NoError(t, err)
	assert.False(t, note.IsProcessing)
	assert.Equal(t, "generation timed out after 20ms", note.Error)
}

func TestProcess_CallerDeadline(t *testing.T) {
	block := generator.Func(func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := NewService(block, WithTimeout(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	note, err := svc.Process(ctx, dapRequest())
	require.NoError(t, err)
	assert.Equal(t, context.DeadlineExceeded.Error(), note.Error)
	assert.NotContains(t, note.Error, "timed out after")
}

func TestProcess_RequestErrors(t *testing.T) {
	svc := NewService(generator.Echo{})

	_, err := svc.Process(context.Background(), &models.NoteRequest{Format: "dap"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Process(context.Background(), &models.NoteRequest{Format: "xyz", Content: "x"})
	assert.ErrorIs(t, err, formats.ErrUnknownFormat)

	assert.Empty(t, svc.List(), "rejected requests never create notes")
}

func TestProcess_DefaultFormatAndGuided(t *testing.T) {
	var got *generator.Request
	gen := generator.Func(func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		got = req
		return &generator.Response{ProcessedContent: ""}, nil
	})
	svc := NewService(gen, WithDefaultFormat("soap"))
	note, err := svc.Process(context.Background(), &models.NoteRequest{
		GuidedAnswers: map[string]string{"plan": "Weekly.", "presenting": " Stress. "},
	})
	require.NoError(t, err)
	assert.Equal(t, "soap", note.Format)
	assert.Equal(t, "Stress.\n\nWeekly.", note.OriginalContent)
	assert.Equal(t, note.OriginalContent, got.Content)
	assert.Contains(t, got.Prompt, "SUBJECTIVE INFORMATION:")
	assert.False(t, got.RemoveHeader)
}

func TestProcess_Assessment(t *testing.T) {
	svc := NewService(generator.Echo{})
	var b strings.Builder
	for _, h := range formats.AssessmentSections() {
		b.WriteString(h + ":\nCL was seen.\n\n")
	}
	note, err := svc.Process(context.Background(), &models.NoteRequest{NoteType: models.NoteTypeAssessment, Content: b.String()})
	require.NoError(t, err)
	assert.Len(t, note.Sections, len(formats.AssessmentSections()))
}

func TestRegenerateSection_AppendsVersion(t *testing.T) {
	var got *generator.Request
	svc, note := draft(t, func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		got = req
		return &generator.Response{ProcessedContent: "  X  "}, nil
	})

	sec, err := svc.RegenerateSection(context.Background(), note.ID, "assessment-of-progress")
	require.NoError(t, err)
	require.Len(t, sec.Versions, 2)
	assert.Equal(t, "Qux quux.", sec.Versions[0].Content)
	assert.Equal(t, 1, sec.Versions[1].ID)
	assert.Equal(t, "X", sec.Versions[1].Content)
	assert.Equal(t, 1, sec.CurrentVersion)
	assert.False(t, sec.IsProcessing)
	assert.Empty(t, sec.Error)

	assert.Equal(t, "CL discussed stress at work.", got.Content, "regeneration starts from the original content")
	assert.True(t, got.RemoveHeader)
	assert.Contains(t, got.Prompt, "Regenerate ONLY the content for this section:\nASSESSMENT OF PROGRESS")

	stored, err := svc.Get(note.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Section("description-of-session").Versions, 1, "other sections untouched")
	assert.Equal(t, "X", stored.Section("assessment-of-progress").Current().Content)
}

func TestRegenerateSection_Failure(t *testing.T) {
	tests := []struct {
		name    string
		regen   generator.Func
		wantErr string
	}{
		{
			name: "collaborator error",
			regen: func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
				return nil, errors.New("network down")
			},
			wantErr: "network down",
		},
		{
			name: "blank reply",
			regen: func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
				return &generator.Response{ProcessedContent: "  \n"}, nil
			},
			wantErr: "generation returned no content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, note := draft(t, tt.regen)
			sec, err := svc.RegenerateSection(context.Background(), note.ID, "plan-for-treatment")
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr, sec.Error)
			assert.Equal(t, models.StateErrored, sec.State())
			assert.Len(t, sec.Versions, 1)
			assert.Equal(t, 0, sec.CurrentVersion)
		})
	}
}

func TestRegenerateSection_Timeout(t *testing.T) {
	svc, note := draft(t, func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, WithTimeout(20*time.Millisecond))

	sec, err := svc.RegenerateSection(context.Background(), note.ID, "plan-for-treatment")
	require.NoError(t, err)
	assert.Equal(t, "generation timed out after 20ms", sec.Error)
	assert.False(t, sec.IsProcessing)
}

func TestRegenerateSection_Busy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc, note := draft(t, func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		close(started)
		<-release
		return &generator.Response{ProcessedContent: "later"}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := svc.RegenerateSection(context.Background(), note.ID, "plan-for-treatment")
		done <- err
	}()
	<-started

	current, err := svc.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StateProcessing, current.Section("plan-for-treatment").State())

	_, err = svc.RegenerateSection(context.Background(), note.ID, "plan-for-treatment")
	assert.ErrorIs(t, err, ErrSectionBusy)

	close(release)
	require.NoError(t, <-done)
	current, err = svc.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "later", current.Section("plan-for-treatment").Current().Content)
}

func TestRegenerateSection_NotFound(t *testing.T) {
	svc, note := draft(t, nil)
	_, err := svc.RegenerateSection(context.Background(), note.ID, "nope")
	assert.ErrorIs(t, err, ErrSectionNotFound)
	_, err = svc.RegenerateSection(context.Background(), "missing", "plan-for-treatment")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestRegenerateSections_Independent(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	svc, note := draft(t, func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		if strings.Contains(req.Prompt, "section:\nPLAN FOR TREATMENT") {
			return nil, errors.New("refused")
		}
		return &generator.Response{ProcessedContent: "new"}, nil
	})

	secs, err := svc.RegenerateSections(context.Background(), note.ID)
	require.NoError(t, err)
	require.Len(t, secs, 3)
	assert.Equal(t, 3, calls)

	assert.Equal(t, "new", secs[0].Current().Content)
	assert.Equal(t, "new", secs[1].Current().Content)
	assert.Equal(t, "refused", secs[2].Error)
	assert.Equal(t, "Done.", secs[2].Current().Content)

	_, err = svc.RegenerateSections(context.Background(), note.ID, "description-of-session", "nope")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestSelectVersion(t *testing.T) {
	svc, note := draft(t, func(ctx context.Context, req *generator.Request) (*generator.Response, error) {
		return &generator.Response{ProcessedContent: "v1"}, nil
	})
	_, err := svc.RegenerateSection(context.Background(), note.ID, "plan-for-treatment")
	require.NoError(t, err)

	ok, err := svc.SelectVersion(note.ID, "plan-for-treatment", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.SelectVersion(note.ID, "plan-for-treatment", 9)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := svc.Get(note.ID)
	require.NoError(t, err)
	sec := stored.Section("plan-for-treatment")
	assert.Equal(t, 0, sec.CurrentVersion, "unknown version leaves the selection unchanged")
	assert.Equal(t, "Done.", sec.Current().Content)

	_, err = svc.SelectVersion(note.ID, "nope", 0)
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestExportListClear(t *testing.T) {
	svc, note := draft(t, nil)

	text, err := svc.Export(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "DESCRIPTION OF SESSION:\n\nFoo bar baz.\n\n\nASSESSMENT OF PROGRESS:\n\nQux quux.\n\n\nPLAN FOR TREATMENT:\n\nDone.", text)

	second, err := svc.Process(context.Background(), dapRequest())
	require.NoError(t, err)
	list := svc.List()
	require.Len(t, list, 2)

	require.NoError(t, svc.Clear(note.ID))
	_, err = svc.Get(note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.ErrorIs(t, svc.Clear(note.ID), ErrNoteNotFound)
	require.Len(t, svc.List(), 1)
	assert.Equal(t, second.ID, svc.List()[0].ID)
}

func TestParseAndValidate_DefaultFormat(t *testing.T) {
	svc := NewService(generator.Echo{}, WithDefaultFormat("dap"))
	secs, err := svc.Parse(dapText, false, "")
	require.NoError(t, err)
	assert.Len(t, secs, 3)

	res, err := svc.Validate(dapText, false, "")
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.NotEmpty(t, res.Errors)
}
