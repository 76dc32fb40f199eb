package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/manifest"
)

// SampleManifest is a small info.toml with one exercise of each kind.
const SampleManifest = `format_version = 1

welcome_message = "Welcome to the exercises."
final_message = "All done. Well played."

[[exercises]]
name = "intro1"
dir = "00_intro"
test = false
hint = "Remove the marker comment."

[[exercises]]
name = "variables1"
dir = "01_variables"
test = false
hint = "Declare the variable with let."

[[exercises]]
name = "functions1"
dir = "02_functions"
hint = "Functions need a body."

[[exercises]]
name = "quiz1"
strict_clippy = true
hint = "No hints this time ;)"
`

// SampleExerciseSource is a placeholder exercise source file.
const SampleExerciseSource = "fn main() {\n    // TODO\n}\n"

// SampleCatalogue parses SampleManifest.
func SampleCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()

	m, err := manifest.Parse([]byte(SampleManifest))
	require.NoError(t, err)
	cat, err := catalogue.Load(m)
	require.NoError(t, err)
	return cat
}

// ManifestFor renders an info.toml listing names in order, all in the
// exercises root with tests disabled.
func ManifestFor(names ...string) string {
	var b strings.Builder
	b.WriteString("format_version = 1\n")
	for _, name := range names {
		fmt.Fprintf(&b, "\n[[exercises]]\nname = %q\ntest = false\nhint = %q\n", name, "hint for "+name)
	}
	return b.String()
}

// NewCatalogue builds a catalogue of the named exercises.
func NewCatalogue(t *testing.T, names ...string) *catalogue.Catalogue {
	t.Helper()

	m, err := manifest.Parse([]byte(ManifestFor(names...)))
	require.NoError(t, err)
	cat, err := catalogue.Load(m)
	require.NoError(t, err)
	return cat
}
