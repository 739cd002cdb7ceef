// Command ankigen generates an Anki import file from a PDF, DOCX or PPTX
// document on the command line.
//
//	ankigen -file lecture.pdf -style cloze -count 20 -out lecture.txt
//
// The model provider and API key are read from the same configuration as the
// server (ANKIGEN_LLM_PROVIDER, ANKIGEN_LLM_API_KEY, GEMINI_API_KEY, ...).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/platform/llm"
	"github.com/phrazzld/ankigen/internal/platform/logger"
	"github.com/phrazzld/ankigen/internal/platform/memory"
	"github.com/phrazzld/ankigen/internal/service"
)

// generatorFactory builds the card generator from the loaded configuration.
type generatorFactory func(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error)

func defaultGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	return llm.NewGenerator(ctx, cfg, logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultGenerator); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "ankigen:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	file         string
	style        string
	count        int
	instructions string
	out          string
	provider     string
	model        string
	verbose      bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("ankigen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "path to the PDF, DOCX or PPTX document (required)")
	fs.StringVar(&opts.style, "style", string(domain.CardStyleBasic), "card style: basic, basic_reversed or cloze")
	fs.IntVar(&opts.count, "count", 0, "approximate number of cards; 0 lets the model decide")
	fs.StringVar(&opts.instructions, "instructions", "", "additional instructions for the model")
	fs.StringVar(&opts.out, "out", "", "output file; defaults to <document>_anki.txt")
	fs.StringVar(&opts.provider, "provider", "", "language model provider (gemini or openai); overrides configuration")
	fs.StringVar(&opts.model, "model", "", "model name; overrides configuration")
	fs.BoolVar(&opts.verbose, "v", false, "enable debug logs")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.file == "" {
		fs.Usage()
		return opts, errors.New("-file is required")
	}
	if opts.count < 0 {
		return opts, errors.New("-count must not be negative")
	}
	return opts, nil
}

// run executes one document-to-deck conversion through the same session
// workflow the server uses.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, newGenerator generatorFactory) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	style, err := domain.ParseCardStyle(opts.style)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.provider != "" {
		cfg.LLM.Provider = strings.ToLower(opts.provider)
		if opts.model == "" {
			cfg.LLM.Model = ""
		}
	}
	if opts.model != "" {
		cfg.LLM.Model = opts.model
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = config.DefaultModel(cfg.LLM.Provider)
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.New(stderr, level)

	generator, err := newGenerator(ctx, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("failed to initialize card generator: %w", err)
	}

	svc, err := service.NewSessionService(
		memory.NewSessionStore(time.Hour, log),
		document.NewEncoder(log),
		generator,
		log,
	)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	name := filepath.Base(opts.file)

	session, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}
	if _, err := svc.UploadDocument(ctx, session.ID, domain.Upload{
		Name:     name,
		MIMEType: document.DetectMIME(mime.TypeByExtension(filepath.Ext(name)), data),
		Data:     data,
	}); err != nil {
		return errors.New(service.UserMessage(err))
	}

	generated, err := svc.Generate(ctx, session.ID, service.GenerateRequest{
		Style:        style,
		Count:        opts.count,
		Instructions: opts.instructions,
	})
	if err != nil {
		return errors.New(service.UserMessage(err))
	}

	export, err := svc.Export(ctx, session.ID)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = filepath.Join(filepath.Dir(opts.file), export.FileName)
	}
	if err := os.WriteFile(out, []byte(export.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Fprintf(stdout, "wrote %d %s cards to %s\n", generated.Deck.Len(), style.Label(), out)
	return nil
}
