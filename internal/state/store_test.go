package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/config"
	"github.com/thruflo/rustlings/internal/manifest"
)

func newCatalogue(t *testing.T, names ...string) *catalogue.Catalogue {
	t.Helper()
	infos := make([]manifest.ExerciseInfo, len(names))
	for i, n := range names {
		infos[i] = manifest.ExerciseInfo{Name: n}
	}
	c, err := catalogue.Load(&manifest.Manifest{Exercises: infos})
	require.NoError(t, err)
	return c
}

func readStateFile(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, config.StateFile))
	require.NoError(t, err)
	return string(data)
}

func TestOpenOrInit_CreatesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cat := newCatalogue(t, "a", "b")

	s, status, err := OpenOrInit(dir, cat)
	require.NoError(t, err)
	assert.Equal(t, FileCreated, status)
	assert.Equal(t, 0, s.Current())
	assert.Equal(t, 0, s.NDone())

	assert.Equal(t, "DON'T EDIT THIS FILE!\n\na\n\n", readStateFile(t, dir))
}

func TestOpenOrInit_ReadsExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "whatever header\n\nc\n\na\nghost\nb\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.StateFile), []byte(content), 0o644))

	s, status, err := OpenOrInit(dir, newCatalogue(t, "a", "b", "c", "d"))
	require.NoError(t, err)
	assert.Equal(t, FileRead, status)
	assert.Equal(t, 2, s.Current())
	assert.Equal(t, []bool{true, true, false, false}, s.DoneSet())
	assert.Equal(t, 2, s.NDone())
}

func TestOpenOrInit_StaleCurrentFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"stale current picks first pending", "h\n\nremoved\n\na\n", 1},
		{"empty current picks first pending", "h\n\n\n\na\nb\n", 2},
		{"all done falls back to zero", "h\n\nremoved\n\na\nb\nc\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, config.StateFile), []byte(tt.content), 0o644))

			s, _, err := OpenOrInit(dir, newCatalogue(t, "a", "b", "c"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Current())
		})
	}
}

func TestOpenOrInit_MalformedFileIsReplaced(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.StateFile), []byte("garbage"), 0o644))

	_, status, err := OpenOrInit(dir, newCatalogue(t, "a"))
	require.NoError(t, err)
	assert.Equal(t, FileCreated, status)
	assert.Equal(t, "DON'T EDIT THIS FILE!\n\na\n\n", readStateFile(t, dir))
}

// Every subset of done exercises and every current exercise survives a
// write/read cycle.
func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	names := []string{"a", "b", "c", "d"}
	cat := newCatalogue(t, names...)

	for mask := 0; mask < 1<<len(names); mask++ {
		for current := range names {
			dir := t.TempDir()
			s, _, err := OpenOrInit(dir, cat)
			require.NoError(t, err)

			want := make([]bool, len(names))
			for i := range names {
				if mask&(1<<i) != 0 {
					want[i] = true
					require.NoError(t, s.MarkDone(i))
				}
			}
			require.NoError(t, s.SetCurrent(current))
			require.NoError(t, s.Flush())

			reread, status, err := OpenOrInit(dir, cat)
			require.NoError(t, err)
			assert.Equal(t, FileRead, status)
			assert.Equal(t, current, reread.Current(), "mask=%b current=%d", mask, current)
			assert.Equal(t, want, reread.DoneSet(), "mask=%b current=%d", mask, current)
			assert.Equal(t, s.NDone(), reread.NDone())
		}
	}
}

func TestStore_MarkDoneIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, _, err := OpenOrInit(dir, newCatalogue(t, "a", "b"))
	require.NoError(t, err)

	require.NoError(t, s.MarkDone(1))
	assert.Equal(t, 1, s.NDone())
	assert.Contains(t, readStateFile(t, dir), "\nb\n")

	// A second call must not rewrite the file.
	require.NoError(t, os.Remove(s.Path()))
	require.NoError(t, s.MarkDone(1))
	assert.Equal(t, 1, s.NDone())
	assert.NoFileExists(t, s.Path())
}

func TestStore_MarkPendingIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, _, err := OpenOrInit(dir, newCatalogue(t, "a", "b"))
	require.NoError(t, err)
	require.NoError(t, s.MarkDone(0))

	require.NoError(t, s.MarkPending(0))
	assert.Equal(t, 0, s.NDone())
	assert.False(t, s.Done(0))

	require.NoError(t, os.Remove(s.Path()))
	require.NoError(t, s.MarkPending(0))
	assert.Equal(t, 0, s.NDone())
	assert.NoFileExists(t, s.Path())
}

func TestStore_SetCurrent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, _, err := OpenOrInit(dir, newCatalogue(t, "a", "b"))
	require.NoError(t, err)

	require.NoError(t, s.SetCurrent(1))
	assert.Equal(t, 1, s.Current())
	assert.Equal(t, "DON'T EDIT THIS FILE!\n\nb\n\n", readStateFile(t, dir))

	assert.Error(t, s.SetCurrent(2))
	assert.Error(t, s.SetCurrent(-1))
	assert.Error(t, s.MarkDone(5))
}

func TestStore_FlushFailureKeepsMemoryState(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, _, err := OpenOrInit(dir, newCatalogue(t, "a", "b"))
	require.NoError(t, err)

	s.path = filepath.Join(dir, "missing-dir", config.StateFile)
	err = s.MarkDone(0)
	require.Error(t, err)
	assert.True(t, s.Done(0))
	assert.Equal(t, 1, s.NDone())
}

func TestStore_FailedFlushIsRetried(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		retry func(s *Store) error
	}{
		{"unchanged current", func(s *Store) error { return s.SetCurrent(0) }},
		{"already done", func(s *Store) error { return s.MarkDone(0) }},
		{"already pending", func(s *Store) error { return s.MarkPending(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			s, _, err := OpenOrInit(dir, newCatalogue(t, "a", "b"))
			require.NoError(t, err)

			// A directory in place of the file makes the rename fail.
			path := s.Path()
			require.NoError(t, os.Remove(path))
			require.NoError(t, os.Mkdir(path, 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(path, "block"), nil, 0o644))

			require.Error(t, s.MarkDone(0))
			assert.True(t, s.Dirty())

			require.NoError(t, os.RemoveAll(path))
			require.NoError(t, tt.retry(s))
			assert.False(t, s.Dirty())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			current, done, ok := Decode(data)
			require.True(t, ok)
			assert.Equal(t, "a", current)
			assert.Equal(t, []string{"a"}, done)
		})
	}
}

// nextPendingReference spells out the selection rule directly.
func nextPendingReference(done []bool, current int) (int, bool) {
	for i := range done {
		if i > current && !done[i] {
			return i, true
		}
	}
	for i := range done {
		if i < current && !done[i] {
			return i, true
		}
	}
	return 0, false
}

func TestNextPending_Exhaustive(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 8; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			done := make([]bool, n)
			for i := range done {
				done[i] = mask&(1<<i) != 0
			}
			for current := 0; current < n; current++ {
				wantIdx, wantOK := nextPendingReference(done, current)
				gotIdx, gotOK := NextPending(done, current)
				require.Equal(t, wantOK, gotOK, "n=%d mask=%b current=%d", n, mask, current)
				if wantOK {
					require.Equal(t, wantIdx, gotIdx, "n=%d mask=%b current=%d", n, mask, current)
				}
			}
		}
	}
}

func TestNextPending_Examples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		done    []bool
		current int
		want    int
		wantOK  bool
	}{
		{"next after current", []bool{false, false, false}, 0, 1, true},
		{"skips done", []bool{false, true, false}, 0, 2, true},
		{"wraps to start", []bool{false, true, true}, 2, 0, true},
		{"all done", []bool{true, true, true}, 1, 0, false},
		{"only current pending", []bool{true, false, true}, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NextPending(tt.done, tt.current)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	current, done, ok := Decode(Encode("b", []string{"a", "c"}))
	require.True(t, ok)
	assert.Equal(t, "b", current)
	assert.Equal(t, []string{"a", "c"}, done)

	_, _, ok = Decode([]byte("only one line"))
	assert.False(t, ok)

	_, _, ok = Decode([]byte("h\nnot blank\nc\n"))
	assert.False(t, ok)

	current, done, ok = Decode([]byte("h\r\n\r\nb\r\n\r\na\r\n"))
	require.True(t, ok)
	assert.Equal(t, "b", current)
	assert.Equal(t, []string{"a"}, done)
}
