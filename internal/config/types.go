package config

// Watch controls the interactive watch loop.
type Watch struct {
	ManualRun      bool `yaml:"manual_run"`
	ConfirmAdvance bool `yaml:"confirm_advance"`
	DebounceMS     int  `yaml:"debounce_ms"`
}

// Verify controls the all-done re-verification pass.
type Verify struct {
	// MaxWorkers caps parallel checks. Zero means one worker per exercise.
	MaxWorkers int `yaml:"max_workers"`
}

// Toolchain selects the external build tool.
type Toolchain struct {
	Program string `yaml:"program"`
}

// Reset configures where pristine exercise sources come from.
type Reset struct {
	// DefaultsDir holds unmodified exercise sources laid out like the
	// exercises directory. When empty, reset falls back to git stash.
	DefaultsDir string `yaml:"defaults_dir,omitempty"`
}

// Log configures the log file used while the terminal is in raw mode.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config represents the .rustlings/config.yaml file.
type Config struct {
	Watch     Watch     `yaml:"watch"`
	Verify    Verify    `yaml:"verify"`
	Toolchain Toolchain `yaml:"toolchain"`
	Reset     Reset     `yaml:"reset"`
	Log       Log       `yaml:"log"`
}

// Project layout, relative to the project root.
const (
	Dir           = ".rustlings"
	ConfigFile    = "config.yaml"
	ManifestFile  = "info.toml"
	StateFile     = ".rustlings-state.txt"
	ExercisesDir  = "exercises"
	SolutionsDir  = "solutions"
	SourceExt     = ".rs"
	EditorEnvName = "TERM_PROGRAM"
)
