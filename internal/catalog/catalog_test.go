package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_loadsEveryTable(t *testing.T) {
	c := Default()
	assert.Greater(t, c.Therapies.Len(), 0)
	assert.Equal(t, 10, c.Concerns.Len())
	assert.Equal(t, 14, c.Observations.Len())
	assert.Equal(t, 10, c.Responses.Len())
	assert.Equal(t, 10, c.Plans.Len())
	assert.Greater(t, c.SessionQuestions.Len(), 0)
	assert.Equal(t, 9, c.AssessmentQuestions.Len())
}

func TestDefault_lookups(t *testing.T) {
	c := Default()

	concern, ok := c.Concerns.Lookup("anxiety")
	require.True(t, ok)
	assert.Equal(t, "Anxiety symptoms", concern.Label)

	obs, ok := c.Observations.Lookup("tearful")
	require.True(t, ok)
	assert.Equal(t, "Tearful, emotional", obs.Label)
	assert.Equal(t, "Mood/Affect", obs.Category)

	plan, ok := c.Plans.Lookup("progress")
	require.True(t, ok)
	assert.True(t, plan.InsertOnly)

	therapy, ok := c.Therapies.Lookup("cbt")
	require.True(t, ok)
	assert.NotEmpty(t, therapy.Instructions)

	_, ok = c.Concerns.Lookup("nope")
	assert.False(t, ok)
}

func TestQuestions_byNoteType(t *testing.T) {
	c := Default()
	assert.Same(t, c.SessionQuestions, c.Questions(false))
	assert.Same(t, c.AssessmentQuestions, c.Questions(true))
}

func TestParse_rejectsDuplicates(t *testing.T) {
	data := []byte(`
concerns:
  - {id: a, label: A}
  - {id: a, label: B}
`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concerns")
}

func TestParse_invalidYAML(t *testing.T) {
	_, err := Parse([]byte("therapies: [unclosed"))
	assert.Error(t, err)
}

func TestTable_listIsCopy(t *testing.T) {
	table, err := NewTable([]Option{{ID: "x", Label: "X"}}, optionID)
	require.NoError(t, err)
	list := table.List()
	list[0].Label = "changed"
	got, _ := table.Lookup("x")
	assert.Equal(t, "X", got.Label)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	doc := `
therapies:
  - {id: cbt, name: CBT, category: Cognitive}
concerns:
  - {id: sleep, label: Sleep problems}
questions:
  session:
    - {id: q1, category: Mood, text: "How was the week?"}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Concerns.Len())
	assert.Equal(t, 0, c.Plans.Len())
	q, ok := c.Questions(false).Lookup("q1")
	require.True(t, ok)
	assert.Equal(t, "Mood", q.Category)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
