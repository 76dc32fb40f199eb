package cmdrunner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests spawn real processes through `sh script`, so they are not
// parallel: writing an executable while another test forks can fail with
// ETXTBSY.

const fakeToolchain = `#!/bin/sh
case "$1" in
metadata)
	printf '{"target_directory":"%s","packages":[]}' "$TARGET"
	;;
build)
	echo "building $4"
	echo "warning: to stderr" >&2
	[ "$4" != "broken" ]
	;;
clippy|test)
	echo "$@"
	;;
sleep)
	sleep 30
	;;
esac
`

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func newRunner(t *testing.T) (*CmdRunner, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	script := writeScript(t, dir, "cargo.sh", fakeToolchain)
	t.Setenv("TARGET", target)

	r, err := Build(context.Background(), Options{
		Program:    "sh",
		PrefixArgs: []string{script},
		Dir:        dir,
	})
	require.NoError(t, err)
	return r, dir
}

func TestBuild_ResolvesTargetDir(t *testing.T) {
	r, dir := newRunner(t)
	assert.Equal(t, filepath.Join(dir, "target"), r.TargetDir())
	assert.Equal(t, ColorNever, r.Color())
	assert.Equal(t, filepath.Join(dir, "target", "debug", "intro1"), r.BinaryPath("intro1"))
}

func TestBuild_MissingProgram(t *testing.T) {
	_, err := Build(context.Background(), Options{Program: "definitely-not-a-toolchain-xyz"})
	require.Error(t, err)

	var te *ToolchainError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Hint, "rustup")
}

func TestBuild_MetadataFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := t.TempDir()
	script := writeScript(t, dir, "cargo.sh", "#!/bin/sh\necho 'could not find Cargo.toml' >&2\nexit 101\n")

	_, err := Build(context.Background(), Options{Program: "sh", PrefixArgs: []string{script}, Dir: dir})
	require.Error(t, err)

	var te *ToolchainError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, te.Error(), "could not find Cargo.toml")
	assert.Contains(t, te.Hint, "Cargo.toml")
}

func TestParseTargetDir(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", `{"target_directory":"/p/target","version":1}`, "/p/target", false},
		{"missing field", `{"version":1}`, "", true},
		{"not json", `nope`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTargetDir([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunCheck_CapturesMergedOutput(t *testing.T) {
	r, _ := newRunner(t)

	ok, out, err := r.RunCheck(context.Background(), CmdBuild, "intro1", nil, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "building intro1\nwarning: to stderr\n", string(out))
}

func TestRunCheck_FailureIsNotAnError(t *testing.T) {
	r, _ := newRunner(t)

	ok, out, err := r.RunCheck(context.Background(), CmdBuild, "broken", nil, true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, string(out), "building broken")
}

func TestRunCheck_ArgumentLayout(t *testing.T) {
	r, _ := newRunner(t)

	ok, out, err := r.RunCheck(context.Background(), CmdLint, "vars1", []string{"--", "-D", "warnings"}, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "clippy -q --bin vars1 --color never -- -D warnings", strings.TrimSpace(string(out)))
}

func TestRunCheck_NoCapture(t *testing.T) {
	r, _ := newRunner(t)

	ok, out, err := r.RunCheck(context.Background(), CmdBuild, "intro1", nil, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out)
}

func TestRunBinary(t *testing.T) {
	r, _ := newRunner(t)
	debug := filepath.Join(r.TargetDir(), "debug")
	require.NoError(t, os.MkdirAll(debug, 0o755))
	writeScript(t, debug, "hello", "#!/bin/sh\necho hello from binary\n")

	ok, out, err := r.RunBinary(context.Background(), "hello", true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello from binary\n", string(out))
}

func TestRunBinary_MissingIsSpawnError(t *testing.T) {
	r, _ := newRunner(t)

	_, _, err := r.RunBinary(context.Background(), "missing", true)
	require.Error(t, err)
	assert.True(t, IsSpawnError(err))
}

func TestRun_CancelKillsChild(t *testing.T) {
	r, _ := newRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := r.RunCheck(ctx, Subcommand("sleep"), "x", nil, true)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("child was not killed on cancellation")
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	r, _ := newRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := r.RunCheck(ctx, CmdBuild, "intro1", nil, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToolchainError_Format(t *testing.T) {
	err := &ToolchainError{Msg: "failed", Err: errors.New("boom"), Hint: "try again"}
	assert.Equal(t, "failed: boom\nhint: try again", err.Error())
	assert.ErrorContains(t, errors.Unwrap(err), "boom")
}
