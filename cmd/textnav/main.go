// Package main is the entry point for the textnav command, which loads a
// document fixture and drives its text ranges from a Lua script.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/term"

	"github.com/dshills/textnav/internal/config"
	"github.com/dshills/textnav/internal/docfile"
	"github.com/dshills/textnav/internal/engine"
	"github.com/dshills/textnav/internal/engine/layout"
	"github.com/dshills/textnav/internal/logging"
	"github.com/dshills/textnav/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath string
	DocPath    string
	ScriptPath string
	Expr       string
	Watch      bool
	Pretty     bool
	Print      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading configuration: %v\n", err)
		return 1
	}
	log, err := newLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	el, err := openElement(cfg, opts.DocPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runScript(ctx, el, opts, log, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !opts.Watch {
			return 1
		}
	}
	if !opts.Watch {
		return 0
	}

	w, err := docfile.Watch(opts.DocPath, el.Document(), docfile.WithWatchLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: watching %s: %v\n", opts.DocPath, err)
		return 1
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return 0
		case r, ok := <-w.Reloads():
			if !ok {
				return 0
			}
			if r.Err != nil {
				continue
			}
			if err := runScript(ctx, el, opts, log, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

// newLogger creates the logger at the configured level, writing to out.
func newLogger(cfg *config.Config, out io.Writer) (*logging.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Output = out
	return logging.New(logCfg), nil
}

// openElement builds the element from the fixture at path, or an empty
// document when path is empty.
func openElement(cfg *config.Config, path string, log *logging.Logger) (*engine.Element, error) {
	opts := []engine.Option{engine.WithConfig(cfg), engine.WithLogger(log)}

	text := ""
	if path != "" {
		f, err := docfile.Load(path)
		if err != nil {
			return nil, err
		}
		docOpts, err := f.Options()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		text = f.Text
		opts = append(opts, engine.WithDocumentOptions(docOpts...))
	}

	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if cols, rows, err := term.GetSize(fd); err == nil && cols > 0 && rows > 0 {
			opts = append(opts, engine.WithGrid(layout.WithSize(rows, cols)))
		}
	}
	el, err := engine.New(text, opts...)
	if err != nil && path != "" {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return el, err
}

// runScript runs the configured script against el in a fresh state and
// writes what it emitted as one JSON object.
func runScript(ctx context.Context, el *engine.Element, opts options, log *logging.Logger, out io.Writer) error {
	if opts.ScriptPath == "" && opts.Expr == "" {
		return nil
	}
	var stdout io.Writer = io.Discard
	if opts.Print {
		stdout = os.Stderr
	}
	s, err := script.New(el, script.WithLogger(log), script.WithOutput(stdout))
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.ScriptPath != "" {
		err = s.DoFile(ctx, opts.ScriptPath)
	} else {
		err = s.DoString(ctx, opts.Expr)
	}
	if err != nil {
		return err
	}

	data, err := encodeResults(s.Results())
	if err != nil {
		return err
	}
	if opts.Pretty {
		data = pretty.Pretty(data)
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			data = pretty.Color(data, nil)
		}
	} else {
		data = append(pretty.Ugly(data), '\n')
	}
	_, err = out.Write(data)
	return err
}

// encodeResults builds a JSON object from emitted results in emit order.
// Keys are sjson paths, so "a.b" nests and a repeated key overwrites.
func encodeResults(results []script.Result) ([]byte, error) {
	data := []byte("{}")
	for _, r := range results {
		if r.Key == "" {
			return nil, errors.New("emit: empty key")
		}
		var err error
		data, err = sjson.SetBytes(data, r.Key, r.Value)
		if err != nil {
			return nil, fmt.Errorf("emit %q: %w", r.Key, err)
		}
	}
	return data, nil
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.DocPath, "doc", "", "Document fixture (.yaml, .json, .toml or plain text)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua script to run")
	flag.StringVar(&opts.Expr, "e", "", "Lua code to run instead of a script file")
	flag.BoolVar(&opts.Watch, "watch", false, "Re-run the script whenever the fixture changes")
	flag.BoolVar(&opts.Pretty, "pretty", false, "Pretty-print the JSON output")
	flag.BoolVar(&opts.Print, "print", false, "Send script print output to stderr")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "textnav - text range navigation over document fixtures\n\n")
		fmt.Fprintf(os.Stderr, "Usage: textnav [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  textnav -doc note.yaml -e 'emit(\"text\", doc.text())'\n")
		fmt.Fprintf(os.Stderr, "  textnav -doc note.yaml -script find.lua -pretty\n")
		fmt.Fprintf(os.Stderr, "  textnav -doc note.yaml -script find.lua -watch\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("textnav %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.ScriptPath != "" && opts.Expr != "" {
		fmt.Fprintf(os.Stderr, "Error: -script and -e are mutually exclusive\n")
		os.Exit(2)
	}
	if opts.Watch && opts.DocPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -watch needs -doc\n")
		os.Exit(2)
	}
	return opts
}
