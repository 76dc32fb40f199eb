// Package catalogue holds the immutable, ordered list of exercises built
// from the manifest. Progress (done/pending) is not stored here; see the
// state package.
package catalogue

import (
	"errors"
	"fmt"
	"iter"
	"path"

	"github.com/thruflo/rustlings/internal/config"
	"github.com/thruflo/rustlings/internal/manifest"
)

// ErrEmptyCatalogue is returned when the manifest lists no exercises.
var ErrEmptyCatalogue = errors.New("the manifest lists no exercises")

// DuplicateNameError reports two manifest entries sharing a name.
type DuplicateNameError struct {
	Name   string
	First  int
	Second int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate exercise name %q (entries %d and %d)", e.Name, e.First+1, e.Second+1)
}

// Exercise is one exercise with its precomputed paths.
type Exercise struct {
	Name         string
	Dir          string
	Test         bool
	StrictClippy bool
	Hint         string
	// Path is the learner-editable source, e.g. "exercises/00_intro/intro1.rs".
	Path string
	// SolutionPath is the reference solution, e.g. "solutions/00_intro/intro1.rs".
	SolutionPath string
}

// Catalogue is the ordered exercise list. It is safe for concurrent reads.
type Catalogue struct {
	exercises      []Exercise
	welcomeMessage string
	finalMessage   string
}

// Load builds a Catalogue from a parsed manifest. Order follows the
// manifest; names must be unique.
func Load(m *manifest.Manifest) (*Catalogue, error) {
	if m == nil || len(m.Exercises) == 0 {
		return nil, ErrEmptyCatalogue
	}

	seen := make(map[string]int, len(m.Exercises))
	exercises := make([]Exercise, 0, len(m.Exercises))
	for i, info := range m.Exercises {
		if first, ok := seen[info.Name]; ok {
			return nil, &DuplicateNameError{Name: info.Name, First: first, Second: i}
		}
		seen[info.Name] = i
		exercises = append(exercises, newExercise(info))
	}

	return &Catalogue{
		exercises:      exercises,
		welcomeMessage: m.WelcomeMessage,
		finalMessage:   m.FinalMessage,
	}, nil
}

// LoadFile parses the manifest at manifestPath and builds a Catalogue.
func LoadFile(manifestPath string) (*Catalogue, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	return Load(m)
}

func newExercise(info manifest.ExerciseInfo) Exercise {
	file := info.Name + config.SourceExt
	return Exercise{
		Name:         info.Name,
		Dir:          info.Dir,
		Test:         info.Test,
		StrictClippy: info.StrictClippy,
		Hint:         info.Hint,
		Path:         path.Join(config.ExercisesDir, info.Dir, file),
		SolutionPath: path.Join(config.SolutionsDir, info.Dir, file),
	}
}

// Len returns the number of exercises.
func (c *Catalogue) Len() int {
	return len(c.exercises)
}

// Get returns the exercise at index i. It panics if i is out of range.
func (c *Catalogue) Get(i int) Exercise {
	return c.exercises[i]
}

// All iterates over exercises in manifest order.
func (c *Catalogue) All() iter.Seq2[int, Exercise] {
	return func(yield func(int, Exercise) bool) {
		for i, ex := range c.exercises {
			if !yield(i, ex) {
				return
			}
		}
	}
}

// Exercises returns a copy of the exercise slice.
func (c *Catalogue) Exercises() []Exercise {
	out := make([]Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// FindByName returns the index of the named exercise.
func (c *Catalogue) FindByName(name string) (int, bool) {
	for i := range c.exercises {
		if c.exercises[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// Names returns the exercise names in order.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.exercises))
	for i := range c.exercises {
		names[i] = c.exercises[i].Name
	}
	return names
}

// WelcomeMessage is shown once to a learner without prior state.
func (c *Catalogue) WelcomeMessage() string {
	return c.welcomeMessage
}

// FinalMessage is shown once every exercise is verified done.
func (c *Catalogue) FinalMessage() string {
	return c.finalMessage
}
