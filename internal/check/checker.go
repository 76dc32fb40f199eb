// Package check runs the build, lint, test and run sequence for a single
// exercise.
package check

import (
	"context"
	"fmt"

	"github.com/thruflo/rustlings/internal/catalogue"
	"github.com/thruflo/rustlings/internal/cmdrunner"
)

// Runner is the subset of cmdrunner.CmdRunner the checker needs.
type Runner interface {
	RunCheck(ctx context.Context, sub cmdrunner.Subcommand, binName string, extra []string, capture bool) (bool, []byte, error)
	RunBinary(ctx context.Context, binName string, capture bool) (bool, []byte, error)
}

// Step identifies the stage of the check sequence.
type Step int

const (
	StepBuild Step = iota
	StepLint
	StepTest
	StepRun
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepBuild:
		return "build"
	case StepLint:
		return "lint"
	case StepTest:
		return "test"
	case StepRun:
		return "run"
	default:
		return "unknown"
	}
}

// Outcome is the result of one check sequence. On failure Output holds the
// captured output of the failing step and FailedStep names it. On success
// Output holds the output of the exercise binary.
type Outcome struct {
	Success    bool
	FailedStep Step
	Output     []byte
}

// Arguments appended after the subcommand's own flags.
var (
	lintStrictArgs = []string{"--profile", "test", "--", "-D", "warnings"}
	lintArgs       = []string{"--profile", "test"}
	testArgs       = []string{"--", "--show-output"}
)

// Checker runs the check sequence. It holds no mutable state and may be used
// from several goroutines.
type Checker struct {
	runner Runner
}

// New creates a Checker over runner.
func New(runner Runner) *Checker {
	return &Checker{runner: runner}
}

// Check runs build, lint, test (when enabled) and the binary in order,
// stopping at the first failing step. A non-nil error means the sequence
// was cancelled or a process could not be spawned; a failing step is a
// normal Outcome.
func (c *Checker) Check(ctx context.Context, ex catalogue.Exercise) (Outcome, error) {
	ok, out, err := c.runner.RunCheck(ctx, cmdrunner.CmdBuild, ex.Name, nil, true)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s %s: %w", StepBuild, ex.Name, err)
	}
	if !ok {
		return failure(StepBuild, out), nil
	}

	args := lintArgs
	if ex.StrictClippy {
		args = lintStrictArgs
	}
	ok, out, err = c.runner.RunCheck(ctx, cmdrunner.CmdLint, ex.Name, args, true)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s %s: %w", StepLint, ex.Name, err)
	}
	if !ok {
		return failure(StepLint, out), nil
	}

	if ex.Test {
		ok, out, err = c.runner.RunCheck(ctx, cmdrunner.CmdTest, ex.Name, testArgs, true)
		if err != nil {
			return Outcome{}, fmt.Errorf("%s %s: %w", StepTest, ex.Name, err)
		}
		if !ok {
			return failure(StepTest, out), nil
		}
	}

	ok, out, err = c.runner.RunBinary(ctx, ex.Name, true)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s %s: %w", StepRun, ex.Name, err)
	}
	if !ok {
		return failure(StepRun, out), nil
	}

	return Outcome{Success: true, Output: out}, nil
}

func failure(step Step, out []byte) Outcome {
	return Outcome{FailedStep: step, Output: out}
}
