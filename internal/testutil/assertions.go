package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/rustlings/internal/config"
	"github.com/thruflo/rustlings/internal/state"
)

// ReadStateFile decodes the state file in dir.
func ReadStateFile(t *testing.T, dir string) (current string, done []string) {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, config.StateFile))
	require.NoError(t, err, "reading state file")
	current, done, ok := state.Decode(data)
	require.True(t, ok, "state file is malformed:\n%s", data)
	return current, done
}

// AssertStateFile asserts the state file in dir records current as the
// current exercise and exactly done as done, in catalogue order.
func AssertStateFile(t *testing.T, dir, current string, done ...string) {
	t.Helper()

	gotCurrent, gotDone := ReadStateFile(t, dir)
	assert.Equal(t, current, gotCurrent, "current exercise mismatch")
	if len(done) == 0 {
		assert.Empty(t, gotDone, "done exercises mismatch")
		return
	}
	assert.Equal(t, done, gotDone, "done exercises mismatch")
}

// AssertDone asserts which exercises the store holds as done.
func AssertDone(t *testing.T, store *state.Store, want ...bool) {
	t.Helper()

	require.Equal(t, len(want), store.Len(), "exercise count mismatch")
	assert.Equal(t, want, store.DoneSet(), "done flags mismatch")

	n := 0
	for _, d := range want {
		if d {
			n++
		}
	}
	assert.Equal(t, n, store.NDone(), "done count mismatch")
}
