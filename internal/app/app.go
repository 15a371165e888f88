package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/pathscript/internal/config"
	"github.com/specialistvlad/pathscript/internal/ctxlog"
	"github.com/specialistvlad/pathscript/internal/fsutil"
	"github.com/specialistvlad/pathscript/internal/hcl"
	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/session"
	"github.com/specialistvlad/pathscript/internal/sink"
	"github.com/specialistvlad/pathscript/internal/yamlcfg"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	sessions *session.Manager
}

// Result describes one generated script.
type Result struct {
	Session string
	RunType string
	Text    string
}

// NewApp is the constructor for the main application. Scripts sent to stdout
// go to outW; logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		sessions: session.NewManager(),
	}
}

// Sessions returns the application's session manager. This is primarily for
// testing.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

var descriptionExtensions = map[string]string{
	".hcl":  "hcl",
	".yaml": "yaml",
	".yml":  "yaml",
}

func supportedExtensions() []string {
	return []string{".hcl", ".yaml", ".yml"}
}

// loaderFor picks the loader for path. A directory is read as HCL when it
// holds any .hcl file and as YAML otherwise.
func (a *App) loaderFor(path string) (config.Loader, error) {
	format := a.config.Format
	if format == "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if info.IsDir() {
			files, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, fmt.Errorf("failed to search %s: %w", path, err)
			}
			format = "yaml"
			if len(files) > 0 {
				format = "hcl"
			}
		} else {
			ext := strings.ToLower(filepath.Ext(path))
			var ok bool
			if format, ok = descriptionExtensions[ext]; !ok {
				return nil, &scripterr.UnsupportedFormatError{Path: path, Extension: ext, Supported: supportedExtensions()}
			}
		}
	}
	if format == "yaml" {
		return yamlcfg.NewLoader(), nil
	}
	return hcl.NewLoader(), nil
}

// Load reads the configured description.
func (a *App) Load(ctx context.Context) (*config.Description, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	loader, err := a.loaderFor(a.config.DescriptionPath)
	if err != nil {
		return nil, err
	}
	desc, err := loader.Load(ctx, a.config.DescriptionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load description: %w", err)
	}
	return desc, nil
}

// Validate loads and renders the description without delivering it.
func (a *App) Validate(ctx context.Context) (*Result, error) {
	return a.render(ctx)
}

// Run loads and renders the description, then hands the script to every
// configured sink.
func (a *App) Run(ctx context.Context) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	res, err := a.render(ctx)
	if err != nil {
		return nil, err
	}

	art := &sink.Artifact{
		Name:    a.artifactName(),
		RunType: res.RunType,
		Session: res.Session,
		Text:    res.Text,
	}
	if err := sink.Deliver(ctx, art, a.sinks()...); err != nil {
		return nil, err
	}

	a.logger.Debug("App.Run method finished.")
	return res, nil
}

func (a *App) render(ctx context.Context) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	desc, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := a.sessions.Open(ctx)
	defer func() {
		if err := a.sessions.Close(ctx, s.ID()); err != nil {
			a.logger.Warn("Failed to close session.", "error", err)
		}
	}()

	if err := s.Apply(ctx, desc); err != nil {
		return nil, fmt.Errorf("invalid description %s: %w", desc.Source, err)
	}
	p, err := s.Program()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble program: %w", err)
	}
	text, err := p.Render()
	if err != nil {
		return nil, fmt.Errorf("failed to render program: %w", err)
	}

	a.logger.Info("Script rendered.", "run_type", p.RunType().String(), "session", s.ID().String(), "bytes", len(text))
	return &Result{Session: s.ID().String(), RunType: p.RunType().String(), Text: text}, nil
}

func (a *App) artifactName() string {
	out := a.config.OutputPath
	if out == "" || out == StdoutPath {
		return sink.DefaultFileName
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return sink.DefaultFileName
	}
	return filepath.Base(out)
}

// sinks lists the destinations selected by the configuration.
func (a *App) sinks() []sink.Sink {
	var sinks []sink.Sink
	if a.config.OutputPath == StdoutPath {
		sinks = append(sinks, &sink.Writer{W: a.outW})
	} else {
		path := a.config.OutputPath
		if path == "" {
			path = sink.DefaultFileName
		}
		sinks = append(sinks, &sink.File{Path: path, Overwrite: a.config.Force})
	}
	if a.config.UploadURL != "" {
		sinks = append(sinks, &sink.Upload{URL: a.config.UploadURL})
	}
	if a.config.PreviewURL != "" {
		sinks = append(sinks, &sink.Preview{
			URL:                a.config.PreviewURL,
			Namespace:          a.config.PreviewNamespace,
			Event:              a.config.PreviewEvent,
			ReplyEvent:         a.config.PreviewReplyEvent,
			Timeout:            a.config.PreviewTimeout,
			InsecureSkipVerify: a.config.PreviewInsecureTLS,
		})
	}
	return sinks
}
