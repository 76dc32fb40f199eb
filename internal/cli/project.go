package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/check"
	"github.com/thruflo/rustlings/internal/cmdrunner"
	"github.com/thruflo/rustlings/internal/config"
	"github.com/thruflo/rustlings/internal/logging"
	"github.com/thruflo/rustlings/internal/state"
)

// projectDir overrides the working directory. It is set in tests.
var projectDir string

// ExerciseChecker checks a single exercise. It must be safe for concurrent
// use; check-all and the all-done pass check exercises in parallel.
type ExerciseChecker interface {
	Check(ctx context.Context, ex catalogue.Exercise) (check.Outcome, error)
}

// checkerFactory builds the checker used by every command. It can be
// overridden in tests.
var checkerFactory func(ctx context.Context, p *project, color cmdrunner.ColorMode) (ExerciseChecker, error)

// project is the exercise project in the working directory.
type project struct {
	root   string
	cfg    *config.Config
	cat    *catalogue.Catalogue
	store  *state.Store
	status state.FileStatus
}

func openProject() (*project, error) {
	root := projectDir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		root = cwd
	}

	cfg, err := config.LoadConfig(root)
	if config.IsValidationError(err) {
		return nil, fmt.Errorf("failed to load config: %w\nhint: fix or remove %s", err, filepath.Join(config.Dir, config.ConfigFile))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetLevel(level)

	manifestPath := filepath.Join(root, config.ManifestFile)
	if _, err := os.Stat(manifestPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s not found in %s\nhint: run rustlings from the directory containing the exercises", config.ManifestFile, root)
	}
	cat, err := catalogue.LoadFile(manifestPath)
	if err != nil {
		return nil, err
	}

	store, status, err := state.OpenOrInit(root, cat)
	if err != nil {
		return nil, err
	}
	logging.WithFields(map[string]interface{}{
		"root":      root,
		"exercises": cat.Len(),
		"state":     status.String(),
	}).Debug("opened project")

	return &project{root: root, cfg: cfg, cat: cat, store: store, status: status}, nil
}

// exercise resolves an optional name argument, defaulting to the current
// exercise.
func (p *project) exercise(args []string) (int, catalogue.Exercise, error) {
	if len(args) == 0 {
		i := p.store.Current()
		return i, p.cat.Get(i), nil
	}
	i, ok := p.cat.FindByName(args[0])
	if !ok {
		return 0, catalogue.Exercise{}, fmt.Errorf("no exercise named %q\nhint: run `rustlings list` to see all exercises", args[0])
	}
	return i, p.cat.Get(i), nil
}

func (p *project) checker(ctx context.Context, color cmdrunner.ColorMode) (ExerciseChecker, error) {
	if checkerFactory != nil {
		return checkerFactory(ctx, p, color)
	}
	runner, err := cmdrunner.Build(ctx, cmdrunner.Options{
		Program: p.cfg.Toolchain.Program,
		Dir:     p.root,
		Color:   color,
	})
	if err != nil {
		return nil, err
	}
	return check.New(runner), nil
}

// logPath returns the configured log file, relative to the project root
// unless absolute.
func (p *project) logPath() string {
	if filepath.IsAbs(p.cfg.Log.File) {
		return p.cfg.Log.File
	}
	return filepath.Join(p.root, p.cfg.Log.File)
}

func colorMode(styled bool) cmdrunner.ColorMode {
	if styled {
		return cmdrunner.ColorAlways
	}
	return cmdrunner.ColorNever
}

// warnState reports a failed state write without failing the command; the
// exercise result is still valid.
func warnState(err error) {
	if err != nil {
		logging.Warn("failed to save progress", "error", err)
	}
}
