// Package sink delivers a rendered run script to its destinations.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/specialistvlad/pathscript/internal/ctxlog"
	"github.com/specialistvlad/pathscript/internal/fsutil"
)

// DefaultFileName is the file a script is written to when only a directory
// is given.
const DefaultFileName = "run.py"

// Artifact is one rendered script.
type Artifact struct {
	Name    string // file name, e.g. run.py
	RunType string
	Session string
	Text    string
}

// Sink receives artifacts.
type Sink interface {
	Name() string
	Write(ctx context.Context, a *Artifact) error
}

// File writes the script to a path on disk. A path that names an existing
// directory gets the artifact name appended.
type File struct {
	Path      string
	Overwrite bool
}

func (f *File) Name() string { return "file" }

// Target returns the path the artifact is written to.
func (f *File) Target(a *Artifact) string {
	path := f.Path
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		name := a.Name
		if name == "" {
			name = DefaultFileName
		}
		path = filepath.Join(path, name)
	}
	return path
}

func (f *File) Write(ctx context.Context, a *Artifact) error {
	path := f.Target(a)
	if err := fsutil.WriteFile(path, []byte(a.Text), f.Overwrite); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Script written.", "path", path, "bytes", len(a.Text))
	return nil
}

// Writer copies the script to an io.Writer such as stdout.
type Writer struct {
	W io.Writer
}

func (w *Writer) Name() string { return "writer" }

func (w *Writer) Write(ctx context.Context, a *Artifact) error {
	if _, err := io.WriteString(w.W, a.Text); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	return nil
}

// Deliver hands the artifact to every sink in order and stops at the first
// failure.
func Deliver(ctx context.Context, a *Artifact, sinks ...Sink) error {
	logger := ctxlog.FromContext(ctx)
	for _, s := range sinks {
		logger.Debug("Delivering script.", "sink", s.Name(), "name", a.Name)
		if err := s.Write(ctx, a); err != nil {
			return fmt.Errorf("%s sink: %w", s.Name(), err)
		}
	}
	return nil
}
