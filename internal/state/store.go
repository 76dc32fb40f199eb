// Package state persists learner progress: which exercise is current and
// which exercises are done. The state file is plain text and rewritten in
// full on every change.
package state

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/config"
	"github.com/thruflo/rustlings/internal/fsutil"
)

// header is the first line of the state file. It is ignored on read.
const header = "DON'T EDIT THIS FILE!"

// FileStatus reports whether OpenOrInit found a previous state file.
type FileStatus int

const (
	// FileCreated means no usable state file existed; a fresh one was written.
	FileCreated FileStatus = iota
	// FileRead means prior progress was loaded.
	FileRead
)

// String returns a human-readable description of the status.
func (s FileStatus) String() string {
	switch s {
	case FileRead:
		return "read"
	case FileCreated:
		return "created"
	default:
		return "unknown"
	}
}

// Store is the in-memory progress record plus its backing file. It is not
// safe for concurrent use; the watch loop owns it.
type Store struct {
	path    string
	names   []string
	current int
	done    []bool
	nDone   int
	// dirty is set while memory holds changes the file does not.
	dirty bool
}

// OpenOrInit loads the state file in dir for the given catalogue, creating
// it when missing. Unknown names in the file are dropped. A missing or
// stale current exercise falls back to the first pending one, or 0.
func OpenOrInit(dir string, cat *catalogue.Catalogue) (*Store, FileStatus, error) {
	s := &Store{
		path:  filepath.Join(dir, config.StateFile),
		names: cat.Names(),
		done:  make([]bool, cat.Len()),
	}

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, FileCreated, fmt.Errorf("failed to read state file: %w", err)
	}

	status := FileCreated
	if err == nil {
		if current, doneNames, ok := Decode(data); ok {
			status = FileRead
			s.apply(cat, current, doneNames)
		}
	}

	if status == FileCreated {
		if err := s.Flush(); err != nil {
			return nil, status, err
		}
	}

	return s, status, nil
}

func (s *Store) apply(cat *catalogue.Catalogue, current string, doneNames []string) {
	for _, name := range doneNames {
		if i, ok := cat.FindByName(name); ok && !s.done[i] {
			s.done[i] = true
			s.nDone++
		}
	}

	if i, ok := cat.FindByName(current); ok {
		s.current = i
		return
	}
	if i, ok := NextPending(s.done, -1); ok {
		s.current = i
	}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of exercises tracked.
func (s *Store) Len() int {
	return len(s.done)
}

// Current returns the current exercise index.
func (s *Store) Current() int {
	return s.current
}

// Done reports whether exercise i is done.
func (s *Store) Done(i int) bool {
	return s.done[i]
}

// DoneSet returns a copy of the done flags.
func (s *Store) DoneSet() []bool {
	out := make([]bool, len(s.done))
	copy(out, s.done)
	return out
}

// NDone returns the number of done exercises.
func (s *Store) NDone() int {
	return s.nDone
}

// NextPending returns the next pending exercise after the current one.
func (s *Store) NextPending() (int, bool) {
	return NextPending(s.done, s.current)
}

// SetCurrent records i as the current exercise and flushes when it changed
// or an earlier flush failed.
func (s *Store) SetCurrent(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if s.current == i {
		return s.retryFlush()
	}
	s.current = i
	return s.Flush()
}

// MarkDone marks exercise i done. It is idempotent: a second call neither
// changes the count nor rewrites the file, unless the last write failed.
func (s *Store) MarkDone(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if s.done[i] {
		return s.retryFlush()
	}
	s.done[i] = true
	s.nDone++
	return s.Flush()
}

// MarkPending marks exercise i pending. It is idempotent.
func (s *Store) MarkPending(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if !s.done[i] {
		return s.retryFlush()
	}
	s.done[i] = false
	s.nDone--
	return s.Flush()
}

// Dirty reports whether the file lags behind memory after a failed flush.
func (s *Store) Dirty() bool {
	return s.dirty
}

func (s *Store) retryFlush() error {
	if !s.dirty {
		return nil
	}
	return s.Flush()
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.done) {
		return fmt.Errorf("exercise index %d out of range [0, %d)", i, len(s.done))
	}
	return nil
}

// Flush rewrites the state file from memory. The write goes to a temporary
// file that is renamed over the old one, so readers never observe a
// truncated file.
func (s *Store) Flush() error {
	doneNames := make([]string, 0, s.nDone)
	for i, d := range s.done {
		if d {
			doneNames = append(doneNames, s.names[i])
		}
	}
	data := Encode(s.names[s.current], doneNames)

	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		s.dirty = true
		return fmt.Errorf("failed to write state file: %w", err)
	}
	s.dirty = false
	return nil
}

// Encode renders the state file contents.
func Encode(current string, doneNames []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("\n\n")
	buf.WriteString(current)
	buf.WriteString("\n\n")
	for _, name := range doneNames {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Decode parses state file contents. The header line is ignored. ok is
// false when the file does not have the expected shape.
func Decode(data []byte) (current string, doneNames []string, ok bool) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if scanner.Err() != nil || len(lines) < 3 {
		return "", nil, false
	}
	if lines[1] != "" {
		return "", nil, false
	}

	current = strings.TrimSpace(lines[2])
	if len(lines) > 3 && lines[3] != "" {
		return "", nil, false
	}
	for _, line := range lines[min(4, len(lines)):] {
		if name := strings.TrimSpace(line); name != "" {
			doneNames = append(doneNames, name)
		}
	}
	return current, doneNames, true
}

// NextPending returns the lowest pending index strictly after current, or
// failing that the lowest pending index strictly before it.
func NextPending(done []bool, current int) (int, bool) {
	for i := current + 1; i < len(done); i++ {
		if !done[i] {
			return i, true
		}
	}
	for i := 0; i < current && i < len(done); i++ {
		if !done[i] {
			return i, true
		}
	}
	return 0, false
}
