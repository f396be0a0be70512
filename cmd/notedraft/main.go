// Package main is the notedraft CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/notedraft/internal/catalog"
	"github.com/hyperjump/notedraft/internal/cli"
	"github.com/hyperjump/notedraft/internal/config"
	"github.com/hyperjump/notedraft/internal/generator"
	"github.com/hyperjump/notedraft/internal/models"
	"github.com/hyperjump/notedraft/internal/notes"
	"github.com/hyperjump/notedraft/internal/server"
	"github.com/hyperjump/notedraft/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/notedraft/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if it exists, and a missing default file yields
// the built-in defaults. Returns the config and the path actually loaded
// (empty when defaults were used).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "draft":
		runDraft()
	case "prompt":
		runPrompt()
	case "parse":
		runParse()
	case "validate":
		runValidate()
	case "formats":
		runFormats()
	case "version", "--version", "-v":
		fmt.Printf("notedraft version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (prompts, generator calls)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("provider", cfg.Generator.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := generator.New(ctx, &cfg.Generator, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generator", zap.Error(err))
	}
	svc, err := newService(cfg, gen, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notes service", zap.Error(err))
	}

	srv := server.NewServer(svc, &cfg.Server, cfg.Notes.GenerationTimeout+30*time.Second, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// newService builds the notes service from config. The option catalog is
// replaced when notes.catalog_path is set.
func newService(cfg *config.Config, gen generator.Generator, logger *zap.Logger) (*notes.Service, error) {
	opts := []notes.Option{
		notes.WithLogger(logger),
		notes.WithTimeout(cfg.Notes.GenerationTimeout),
		notes.WithDefaultFormat(cfg.Notes.DefaultFormat),
	}
	if cfg.Notes.CatalogPath != "" {
		options, err := catalog.Load(cfg.Notes.CatalogPath)
		if err != nil {
			return nil, err
		}
		logger.Info("option catalog loaded", zap.String("path", cfg.Notes.CatalogPath))
		opts = append(opts, notes.WithOptions(options))
	}
	svc := notes.NewService(gen, opts...)
	if _, err := svc.Formats().Lookup(cfg.Notes.DefaultFormat); err != nil {
		return nil, fmt.Errorf("notes.default_format: %w", err)
	}
	return svc, nil
}

// offlineService returns a service for commands that never call a provider.
func offlineService(configPath string) (*notes.Service, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	svc, err := newService(cfg, generator.Echo{}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return svc, logger
}

// argsReorder moves any flags that appear after the positional arguments to
// the front so that flag.Parse sees them; Go's flag package stops at the first
// non-flag argument ("notedraft parse note.txt -format dap").
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' && a != "-" {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// readInput returns the contents of the named file, or of stdin when the name
// is "-" or absent.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(b), nil
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// guidedAnswers parses repeated id=answer pairs.
func guidedAnswers(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		id, answer, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("guided answer %q must look like id=answer", p)
		}
		out[strings.TrimSpace(id)] = answer
	}
	return out, nil
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

// requestFlags are shared by draft and prompt.
type requestFlags struct {
	format       *string
	noteType     *string
	therapies    *string
	concerns     *string
	observations *string
	responses    *string
	plans        *string
	instructions *string
	answers      multiFlag
}

func addRequestFlags(fs *flag.FlagSet) *requestFlags {
	rf := &requestFlags{
		format:       fs.String("format", "", "note format id (default from config)"),
		noteType:     fs.String("type", "session", "note type: session or assessment"),
		therapies:    fs.String("therapies", "", "comma-separated therapy ids"),
		concerns:     fs.String("concerns", "", "comma-separated concern ids"),
		observations: fs.String("observations", "", "comma-separated observation ids"),
		responses:    fs.String("responses", "", "comma-separated response ids"),
		plans:        fs.String("plans", "", "comma-separated plan ids"),
		instructions: fs.String("instructions", "", "custom instructions appended to the prompt"),
	}
	fs.Var(&rf.answers, "answer", "guided answer as question-id=text (repeatable; replaces the input file)")
	return rf
}

// request builds a NoteRequest. Input is read only when no guided answers are given.
func (rf *requestFlags) request(args []string, stdin io.Reader) (*models.NoteRequest, error) {
	answers, err := guidedAnswers(rf.answers)
	if err != nil {
		return nil, err
	}
	req := &models.NoteRequest{
		NoteType:             models.NoteType(*rf.noteType),
		Format:               *rf.format,
		SelectedTherapies:    splitList(*rf.therapies),
		SelectedConcerns:     splitList(*rf.concerns),
		SelectedObservations: splitList(*rf.observations),
		SelectedResponses:    splitList(*rf.responses),
		SelectedPlans:        splitList(*rf.plans),
		GuidedAnswers:        answers,
		CustomInstructions:   *rf.instructions,
	}
	if len(answers) == 0 {
		if req.Content, err = readInput(args, stdin); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func runDraft() {
	fs := flag.NewFlagSet("draft", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "draft through a running server instead of calling the provider directly")
	outputFormat := fs.String("output", "text", "output format: text, json or markdown")
	debug := fs.Bool("debug", false, "enable debug logging")
	rf := addRequestFlags(fs)
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	req, err := rf.request(fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var note *models.Note
	if *serverURL != "" {
		note, err = draftViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Draft failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug || *debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		gen, err := generator.New(ctx, &cfg.Generator, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize generator: %v\n", err)
			os.Exit(1)
		}
		svc, err := newService(cfg, gen, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		note, err = svc.Process(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Draft failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteNote(os.Stdout, note, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if note.Error != "" {
		os.Exit(1)
	}
}

func draftViaHTTP(serverURL string, req *models.NoteRequest) (*models.Note, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/notes", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var note models.Note
	if err := json.NewDecoder(resp.Body).Decode(&note); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &note, nil
}

func runPrompt() {
	fs := flag.NewFlagSet("prompt", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	rf := addRequestFlags(fs)
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	req, err := rf.request(fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	svc, logger := offlineService(*configPath)
	defer logger.Sync()

	promptText, content, err := svc.Prompt(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Prompt failed: %v\n", err)
		os.Exit(1)
	}
	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]string{"prompt": promptText, "content": content})
		return
	}
	fmt.Println(promptText)
}

// textFlags are shared by parse and validate.
type textFlags struct {
	configPath   *string
	format       *string
	noteType     *string
	outputFormat *string
}

func addTextFlags(fs *flag.FlagSet) *textFlags {
	return &textFlags{
		configPath:   fs.String("config", defaultConfigPath, "config file path"),
		format:       fs.String("format", "", "note format id (default from config)"),
		noteType:     fs.String("type", "session", "note type: session or assessment"),
		outputFormat: fs.String("output", "text", "output format: text, json or markdown"),
	}
}

func runParse() {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	tf := addTextFlags(fs)
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*tf.outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	text, err := readInput(fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	svc, logger := offlineService(*tf.configPath)
	defer logger.Sync()

	sections, err := svc.Parse(text, models.NoteType(*tf.noteType) == models.NoteTypeAssessment, *tf.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSections(os.Stdout, sections, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runValidate() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	tf := addTextFlags(fs)
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*tf.outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	text, err := readInput(fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	svc, logger := offlineService(*tf.configPath)
	defer logger.Sync()

	result, err := svc.Validate(text, models.NoteType(*tf.noteType) == models.NoteTypeAssessment, *tf.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validate failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteValidation(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runFormats() {
	fs := flag.NewFlagSet("formats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	svc, logger := offlineService(*configPath)
	defer logger.Sync()
	if err := cli.WriteFormats(os.Stdout, svc.Formats().List(), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`notedraft - Clinical session note drafting

Usage:
  notedraft server [flags]             Start the HTTP server
  notedraft draft [flags] [file|-]     Draft a note from session notes
  notedraft prompt [flags] [file|-]    Print the prompt a draft would send
  notedraft parse [flags] [file|-]     Split generated text into sections
  notedraft validate [flags] [file|-]  Report structural warnings for generated text
  notedraft formats [flags]            List note formats and their headings
  notedraft version                    Show version
  notedraft help                       Show this help

Input is read from the named file, or from stdin when the file is "-" or omitted.

Server Flags:
  --config string    Config file path (default: /usr/local/etc/notedraft/config.yaml)
  --debug            Enable debug logging

Draft and Prompt Flags:
  --format string        Note format id (default from config, usually girp)
  --type string          session or assessment (default: session)
  --therapies string     Comma-separated therapy ids (session notes only)
  --concerns string      Comma-separated concern ids
  --observations string  Comma-separated observation ids
  --responses string     Comma-separated response ids
  --plans string         Comma-separated plan ids
  --answer id=text       Guided answer (repeatable); no input file is read
  --instructions string  Custom instructions
  --server string        Draft through a running server (draft only)
  --output string        text, json or markdown (default: text)

Parse and Validate Flags:
  --format string    Note format id
  --type string      session or assessment
  --output string    text, json or markdown

Examples:
  notedraft server
  notedraft draft --format dap session.txt
  notedraft draft --type assessment --output markdown intake.txt
  notedraft draft --answer presenting="Worry about work" --answer interventions="Breathing practice"
  notedraft prompt --therapies cbt --format soap session.txt
  notedraft parse --format dap draft.txt --output json
  cat draft.txt | notedraft validate --format dap`)
}
