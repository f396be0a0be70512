package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/notedraft/internal/config"
	"github.com/hyperjump/notedraft/internal/generator"
	"github.com/hyperjump/notedraft/internal/models"
	"go.uber.org/zap"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after file are moved first",
			args:     []string{"note.txt", "-format", "dap"},
			expected: []string{"-format", "dap", "note.txt"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-format", "dap", "note.txt"},
			expected: []string{"-format", "dap", "note.txt"},
		},
		{
			name:     "stdin dash is positional",
			args:     []string{"-", "-output", "json"},
			expected: []string{"-output", "json", "-"},
		},
		{
			name:     "file only returns unchanged",
			args:     []string{"note.txt"},
			expected: []string{"note.txt"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"cbt", []string{"cbt"}},
		{"cbt, dbt ,,act", []string{"cbt", "dbt", "act"}},
		{" , ", nil},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGuidedAnswers(t *testing.T) {
	got, err := guidedAnswers([]string{"presenting=Worry about work", "plan=Meet again = next week"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"presenting": "Worry about work", "plan": "Meet again = next week"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("guidedAnswers() = %v, want %v", got, want)
	}

	if got, err := guidedAnswers(nil); err != nil || got != nil {
		t.Errorf("guidedAnswers(nil) = %v, %v", got, err)
	}
	for _, bad := range []string{"no-separator", "=answer only"} {
		if _, err := guidedAnswers([]string{bad}); err == nil {
			t.Errorf("guidedAnswers(%q): expected error", bad)
		}
	}
}

func TestReadInput(t *testing.T) {
	got, err := readInput(nil, strings.NewReader("from stdin"))
	if err != nil || got != "from stdin" {
		t.Errorf("readInput(stdin) = %q, %v", got, err)
	}
	got, err = readInput([]string{"-"}, strings.NewReader("dash"))
	if err != nil || got != "dash" {
		t.Errorf("readInput(-) = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("from file"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err = readInput([]string{path}, strings.NewReader("ignored"))
	if err != nil || got != "from file" {
		t.Errorf("readInput(file) = %q, %v", got, err)
	}
	if _, err := readInput([]string{path + ".missing"}, nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
notes:
  default_format: dap
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if cfg.Notes.DefaultFormat != "dap" {
		t.Errorf("default format = %q, want dap", cfg.Notes.DefaultFormat)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
generator:
  provider: echo
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Generator.Provider != config.ProviderEcho {
		t.Errorf("provider = %q, want echo", cfg.Generator.Provider)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestNewService(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	svc, err := newService(cfg, generator.Echo{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Formats().Lookup("girp"); err != nil {
		t.Errorf("built-in formats missing: %v", err)
	}

	cfg.Notes.DefaultFormat = "nope"
	if _, err := newService(cfg, generator.Echo{}, zap.NewNop()); err == nil {
		t.Error("unknown default format should fail")
	}

	cfg.Notes.DefaultFormat = "dap"
	cfg.Notes.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := newService(cfg, generator.Echo{}, zap.NewNop()); err == nil {
		t.Error("missing catalog file should fail")
	}
}

func TestDraftViaHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/notes" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req models.NoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Format == "nope" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unknown note format: \"nope\""}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Note{
			ID:     "n1",
			Format: req.Format,
			Sections: []*models.Section{
				models.NewSection("PLAN FOR TREATMENT", req.Content, time.Now()),
			},
		})
	}))
	defer srv.Close()

	note, err := draftViaHTTP(srv.URL+"/", &models.NoteRequest{Format: "dap", Content: "Done."})
	if err != nil {
		t.Fatal(err)
	}
	if note.ID != "n1" || len(note.Sections) != 1 || note.Sections[0].Current().Content != "Done." {
		t.Errorf("note: got %+v", note)
	}

	_, err = draftViaHTTP(srv.URL, &models.NoteRequest{Format: "nope", Content: "x"})
	if err == nil || !strings.Contains(err.Error(), "server returned 400") {
		t.Errorf("expected 400 error, got %v", err)
	}
}
