package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/config"
	"github.com/thruflo/rustlings/internal/state"
)

// Project is a temporary exercise project created by SetupTestDir.
type Project struct {
	Dir       string
	Catalogue *catalogue.Catalogue
	Store     *state.Store
	// Status reports whether the store found an existing state file.
	Status state.FileStatus
}

// ExercisePath returns the absolute path of exercise i's source.
func (p *Project) ExercisePath(i int) string {
	return filepath.Join(p.Dir, filepath.FromSlash(p.Catalogue.Get(i).Path))
}

// SetupTestDir creates a temporary project with an info.toml listing names,
// a source file per exercise, the .rustlings directory and a fresh state
// file. The directory is removed when the test completes.
func SetupTestDir(t *testing.T, names ...string) *Project {
	t.Helper()
	return SetupTestDirWithManifest(t, ManifestFor(names...))
}

// SetupTestDirWithManifest is SetupTestDir with an explicit manifest.
func SetupTestDirWithManifest(t *testing.T, manifestText string) *Project {
	t.Helper()

	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, config.Dir), 0o755))
	WriteTestFile(t, tmpDir, config.ManifestFile, []byte(manifestText))

	cat, err := catalogue.LoadFile(filepath.Join(tmpDir, config.ManifestFile))
	require.NoError(t, err)

	for _, ex := range cat.Exercises() {
		WriteTestFile(t, tmpDir, ex.Path, []byte(SampleExerciseSource))
	}

	store, status, err := state.OpenOrInit(tmpDir, cat)
	require.NoError(t, err)

	return &Project{Dir: tmpDir, Catalogue: cat, Store: store, Status: status}
}

// WriteStateFile writes a state file into dir with the given current
// exercise and done names.
func WriteStateFile(t *testing.T, dir, current string, done ...string) {
	t.Helper()
	WriteTestFile(t, dir, config.StateFile, state.Encode(current, done))
}

// WriteTestFile writes content to a file relative to basePath, creating
// parent directories as needed.
func WriteTestFile(t *testing.T, basePath, relativePath string, content []byte) {
	t.Helper()

	fullPath := filepath.Join(basePath, filepath.FromSlash(relativePath))
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, content, 0o644))
}

// FindProjectRoot walks up from the working directory to the go.mod.
func FindProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}

// Reopen reloads the store from the state file on disk, e.g. after
// WriteStateFile.
func (p *Project) Reopen(t *testing.T) {
	t.Helper()

	store, status, err := state.OpenOrInit(p.Dir, p.Catalogue)
	require.NoError(t, err)
	p.Store = store
	p.Status = status
}
