// Package reset restores exercise sources to their unsolved form.
package reset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/config"
	"github.com/thruflo/rustlings/internal/fsutil"
	"github.com/thruflo/rustlings/internal/logging"
)

// Source restores the learner-editable file of an exercise under root.
type Source interface {
	Reset(ctx context.Context, root string, ex catalogue.Exercise) error
}

// FSSource copies pristine sources out of an fs.FS laid out like the
// exercises directory, e.g. "00_intro/intro1.rs".
type FSSource struct {
	files fs.FS
}

// NewFSSource returns a Source reading from files.
func NewFSSource(files fs.FS) *FSSource {
	return &FSSource{files: files}
}

// NewDirSource returns an FSSource over a directory on disk.
func NewDirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir))
}

// Reset overwrites the exercise file with the pristine copy.
func (s *FSSource) Reset(ctx context.Context, root string, ex catalogue.Exercise) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := path.Join(ex.Dir, ex.Name+config.SourceExt)
	data, err := fs.ReadFile(s.files, name)
	if err != nil {
		return fmt.Errorf("failed to read pristine source of %s: %w", ex.Name, err)
	}

	dst := filepath.Join(root, filepath.FromSlash(ex.Path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", ex.Name, err)
	}
	if err := fsutil.WriteFileAtomic(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to reset %s: %w", ex.Name, err)
	}
	logging.Debug("reset exercise from pristine copy", "exercise", ex.Name, "source", name)
	return nil
}

// GitSource stashes the learner's changes to the exercise file, which
// restores the last committed version and keeps the edits recoverable.
type GitSource struct {
	// Program defaults to "git".
	Program string
}

// ErrNothingToReset is returned by GitSource when the file has no changes.
var ErrNothingToReset = errors.New("the exercise has no local changes")

// Reset runs `git stash push -- <path>` in root.
func (s GitSource) Reset(ctx context.Context, root string, ex catalogue.Exercise) error {
	program := s.Program
	if program == "" {
		program = "git"
	}

	cmd := exec.CommandContext(ctx, program, "stash", "push", "--", ex.Path)
	cmd.Dir = root
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return fmt.Errorf("failed to run %s stash: %w", program, err)
		}
		return fmt.Errorf("failed to run %s stash: %w\n%s", program, err, msg)
	}

	if strings.Contains(out.String(), "No local changes to save") {
		return ErrNothingToReset
	}
	logging.Debug("stashed exercise changes", "exercise", ex.Name, "path", ex.Path)
	return nil
}

// SourceFor picks the reset source for a project: pristine copies from
// cfg.DefaultsDir when configured (relative paths are resolved against
// root), otherwise git.
func SourceFor(root string, cfg config.Reset) Source {
	if cfg.DefaultsDir == "" {
		return GitSource{}
	}
	dir := cfg.DefaultsDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return NewDirSource(dir)
}
