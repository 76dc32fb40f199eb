// Package cmdrunner runs the external toolchain (cargo) against a single
// exercise binary and captures its output.
package cmdrunner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Subcommand is a toolchain role.
type Subcommand string

const (
	CmdBuild Subcommand = "build"
	CmdTest  Subcommand = "test"
	CmdLint  Subcommand = "clippy"
)

// ColorMode is passed to every toolchain invocation.
type ColorMode string

const (
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// waitDelay bounds how long Wait keeps draining the output pipe after the
// child was killed.
const waitDelay = 2 * time.Second

// SpawnError means the child process could not be started at all, as
// opposed to starting and exiting unsuccessfully.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsSpawnError reports whether err is or wraps a SpawnError.
func IsSpawnError(err error) bool {
	var se *SpawnError
	return errors.As(err, &se)
}

// ToolchainError is a fatal setup error with an actionable hint.
type ToolchainError struct {
	Msg  string
	Hint string
	Err  error
}

func (e *ToolchainError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if e.Hint != "" {
		sb.WriteString("\nhint: ")
		sb.WriteString(e.Hint)
	}
	return sb.String()
}

func (e *ToolchainError) Unwrap() error {
	return e.Err
}

// Options configures a CmdRunner.
type Options struct {
	// Program is the toolchain executable, e.g. "cargo".
	Program string
	// PrefixArgs are inserted before the subcommand, e.g. ["+stable"].
	PrefixArgs []string
	// Dir is the project root. Empty means the current directory.
	Dir   string
	Color ColorMode
}

// CmdRunner spawns toolchain subprocesses. It is safe for concurrent use.
type CmdRunner struct {
	program    string
	prefixArgs []string
	dir        string
	color      ColorMode
	targetDir  string
}

type metadata struct {
	TargetDirectory string `json:"target_directory"`
}

// Build queries the toolchain metadata once and resolves the target
// directory. It fails when the toolchain is missing or the directory is not
// a project root.
func Build(ctx context.Context, opts Options) (*CmdRunner, error) {
	if opts.Program == "" {
		opts.Program = "cargo"
	}
	if opts.Color == "" {
		opts.Color = ColorNever
	}

	r := &CmdRunner{
		program:    opts.Program,
		prefixArgs: opts.PrefixArgs,
		dir:        opts.Dir,
		color:      opts.Color,
	}

	args := r.args("metadata", "-q", "--no-deps", "--format-version", "1")
	cmd := exec.CommandContext(ctx, r.program, args...)
	cmd.Dir = r.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ToolchainError{
				Msg:  fmt.Sprintf("`%s metadata` failed", r.program),
				Err:  errors.New(strings.TrimSpace(stderr.String())),
				Hint: "run rustlings from the directory that contains Cargo.toml and info.toml",
			}
		}
		return nil, &ToolchainError{
			Msg:  fmt.Sprintf("failed to run %s", r.program),
			Err:  err,
			Hint: "make sure the Rust toolchain is installed (https://rustup.rs)",
		}
	}

	targetDir, err := parseTargetDir(out)
	if err != nil {
		return nil, &ToolchainError{
			Msg:  "failed to read the toolchain metadata",
			Err:  err,
			Hint: "make sure your Rust toolchain is up to date (rustup update)",
		}
	}
	r.targetDir = targetDir
	return r, nil
}

func parseTargetDir(out []byte) (string, error) {
	var md metadata
	if err := json.Unmarshal(out, &md); err != nil {
		return "", fmt.Errorf("invalid metadata JSON: %w", err)
	}
	if md.TargetDirectory == "" {
		return "", errors.New("metadata has no target_directory")
	}
	return md.TargetDirectory, nil
}

// TargetDir returns the resolved build target directory.
func (r *CmdRunner) TargetDir() string {
	return r.targetDir
}

// Color returns the colour mode passed to the toolchain.
func (r *CmdRunner) Color() ColorMode {
	return r.color
}

func (r *CmdRunner) args(rest ...string) []string {
	args := make([]string, 0, len(r.prefixArgs)+len(rest))
	args = append(args, r.prefixArgs...)
	return append(args, rest...)
}

// RunCheck runs a toolchain subcommand against one binary. With capture,
// stdout and stderr share a single pipe so their interleaving is kept;
// without it both are discarded. The returned bool is the child's exit
// status; err is non-nil only when the child could not be started or the
// context was cancelled.
func (r *CmdRunner) RunCheck(ctx context.Context, sub Subcommand, binName string, extra []string, capture bool) (bool, []byte, error) {
	args := r.args(string(sub), "-q", "--bin", binName, "--color", string(r.color))
	args = append(args, extra...)
	return r.run(ctx, r.program, args, capture)
}

// RunBinary runs a previously built debug binary.
func (r *CmdRunner) RunBinary(ctx context.Context, binName string, capture bool) (bool, []byte, error) {
	return r.run(ctx, r.BinaryPath(binName), nil, capture)
}

// BinaryPath returns the debug binary path for binName.
func (r *CmdRunner) BinaryPath(binName string) string {
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	return filepath.Join(r.targetDir, "debug", binName)
}

func (r *CmdRunner) run(ctx context.Context, program string, args []string, capture bool) (bool, []byte, error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = r.dir
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)

	var buf bytes.Buffer
	if capture {
		// The same writer for both streams makes exec use one pipe.
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	if err := cmd.Start(); err != nil {
		return false, nil, &SpawnError{Program: program, Err: err}
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, nil, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, buf.Bytes(), nil
		}
		if errors.Is(err, exec.ErrWaitDelay) || errors.Is(err, os.ErrProcessDone) {
			return cmd.ProcessState != nil && cmd.ProcessState.Success(), buf.Bytes(), nil
		}
		return false, nil, fmt.Errorf("failed to wait for %s: %w", program, err)
	}
	return true, buf.Bytes(), nil
}
