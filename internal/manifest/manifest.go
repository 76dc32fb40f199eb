// Package manifest parses info.toml, the declarative list of exercises.
package manifest

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

// CurrentFormatVersion is the only manifest format this build understands.
const CurrentFormatVersion = 1

// ExerciseInfo describes one exercise as listed in the manifest.
type ExerciseInfo struct {
	Name string
	// Dir is an optional grouping folder under exercises/ and solutions/.
	Dir          string
	Test         bool
	StrictClippy bool
	Hint         string
	// SkipCheckUnsolved marks exercises that already compile in their
	// unsolved form.
	SkipCheckUnsolved bool
}

// Manifest is the parsed info.toml.
type Manifest struct {
	FormatVersion  int
	WelcomeMessage string
	FinalMessage   string
	Exercises      []ExerciseInfo
}

type rawExercise struct {
	Name              string  `toml:"name"`
	Dir               *string `toml:"dir"`
	Test              *bool   `toml:"test"`
	StrictClippy      bool    `toml:"strict_clippy"`
	Hint              string  `toml:"hint"`
	SkipCheckUnsolved bool    `toml:"skip_check_unsolved"`
}

type rawManifest struct {
	FormatVersion  int           `toml:"format_version"`
	WelcomeMessage string        `toml:"welcome_message"`
	FinalMessage   string        `toml:"final_message"`
	Exercises      []rawExercise `toml:"exercises"`
}

// Parse decodes manifest bytes. Unknown keys are rejected so that typos in
// exercise entries surface at startup.
func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	dec := toml.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if raw.FormatVersion != 0 && raw.FormatVersion != CurrentFormatVersion {
		return nil, fmt.Errorf("unsupported manifest format_version %d (expected %d)", raw.FormatVersion, CurrentFormatVersion)
	}

	m := &Manifest{
		FormatVersion:  CurrentFormatVersion,
		WelcomeMessage: strings.TrimSpace(raw.WelcomeMessage),
		FinalMessage:   strings.TrimSpace(raw.FinalMessage),
		Exercises:      make([]ExerciseInfo, 0, len(raw.Exercises)),
	}

	for i, re := range raw.Exercises {
		if err := validateName(re.Name); err != nil {
			return nil, fmt.Errorf("exercise #%d: %w", i+1, err)
		}
		info := ExerciseInfo{
			Name:              re.Name,
			Test:              true,
			StrictClippy:      re.StrictClippy,
			Hint:              strings.TrimSpace(re.Hint),
			SkipCheckUnsolved: re.SkipCheckUnsolved,
		}
		if re.Dir != nil {
			if err := validateName(*re.Dir); err != nil {
				return nil, fmt.Errorf("exercise %q: dir: %w", re.Name, err)
			}
			info.Dir = *re.Dir
		}
		if re.Test != nil {
			info.Test = *re.Test
		}
		m.Exercises = append(m.Exercises, info)
	}

	return m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// validateName rejects names that would escape their directory, are
// awkward on common filesystems, or would break the line-based state file.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name")
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return fmt.Errorf("name %q contains control characters", name)
	}
	if strings.ContainsAny(name, `/\ `) || name == "." || name == ".." {
		return fmt.Errorf("name %q is not filesystem-safe", name)
	}
	return nil
}
