package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"replcheck/pkg/model"
	"replcheck/pkg/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helpInvocation(command, dir string) model.Invocation {
	return model.Invocation{
		Command:   command,
		Args:      []string{"--repl"},
		Dir:       dir,
		Input:     model.Payload([]string{"/help", "", "/exit", ""}),
		Timeout:   10 * time.Second,
		Transport: model.TransportPipe,
	}
}

func TestLiveInteractor_HelpCommand(t *testing.T) {
	dir := t.TempDir()
	test.WriteScript(t, dir, "esa", test.FakeREPLScript)

	r := &LiveInteractor{}
	capture, err := r.Interact(context.Background(), helpInvocation("./esa", dir))
	require.NoError(t, err)

	assert.Contains(t, capture.Stderr, "Available commands:")
	assert.NotContains(t, capture.Stdout, "Available commands:")
	assert.Equal(t, 0, capture.ExitCode)
	assert.NotEmpty(t, capture.RunID)
	assert.False(t, capture.Merged)
}

func TestLiveInteractor_Idempotent(t *testing.T) {
	dir := t.TempDir()
	test.WriteScript(t, dir, "esa", test.FakeREPLScript)
	r := &LiveInteractor{}

	first, err := r.Interact(context.Background(), helpInvocation("./esa", dir))
	require.NoError(t, err)
	second, err := r.Interact(context.Background(), helpInvocation("./esa", dir))
	require.NoError(t, err)

	assert.Equal(t, first.Stderr, second.Stderr)
	assert.Equal(t, first.ExitCode, second.ExitCode)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestLiveInteractor_StdoutAndEnv(t *testing.T) {
	dir := t.TempDir()
	script := test.WriteScript(t, dir, "env.sh", "#!/bin/sh\nread -r line\necho \"$line $REPLCHECK_TEST\"\n")

	inv := helpInvocation(script, dir)
	inv.Args = nil
	inv.Input = "hello\n"
	inv.Env = []string{"REPLCHECK_TEST=from-env"}

	capture, err := (&LiveInteractor{}).Interact(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, "hello from-env\n", capture.Stdout)
	assert.Empty(t, capture.Stderr)
}

func TestLiveInteractor_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	script := test.WriteScript(t, dir, "fail.sh", "#!/bin/sh\necho oops >&2\nexit 3\n")

	capture, err := (&LiveInteractor{}).Interact(context.Background(), helpInvocation(script, dir))
	require.NoError(t, err)
	assert.Equal(t, 3, capture.ExitCode)
	assert.Equal(t, "oops\n", capture.Stderr)
}

func TestLiveInteractor_IgnoresUnreadInput(t *testing.T) {
	dir := t.TempDir()
	script := test.WriteScript(t, dir, "deaf.sh", "#!/bin/sh\nexit 0\n")

	capture, err := (&LiveInteractor{}).Interact(context.Background(), helpInvocation(script, dir))
	require.NoError(t, err)
	assert.Equal(t, 0, capture.ExitCode)
}

func TestLiveInteractor_LaunchFailure(t *testing.T) {
	tests := []struct {
		name    string
		command string
		dir     func(t *testing.T) string
	}{
		{
			name:    "missing binary",
			command: "./does-not-exist",
			dir:     func(t *testing.T) string { return t.TempDir() },
		},
		{
			name:    "binary not on PATH",
			command: "nonexistent-binary-xyz-123",
			dir:     func(t *testing.T) string { return t.TempDir() },
		},
		{
			name:    "missing working directory",
			command: "/bin/sh",
			dir:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "gone") },
		},
		{
			name:    "not executable",
			command: "./plain.txt",
			dir: func(t *testing.T) string {
				dir := t.TempDir()
				test.WriteScript(t, dir, "plain.txt", "just text")
				require.NoError(t, os.Chmod(filepath.Join(dir, "plain.txt"), 0644))
				return dir
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture, err := (&LiveInteractor{}).Interact(context.Background(), helpInvocation(tt.command, tt.dir(t)))
			require.Error(t, err)
			assert.Nil(t, capture)
			assert.Equal(t, model.KindLaunchFailure, model.KindOf(err))
		})
	}
}

func TestLiveInteractor_Timeout(t *testing.T) {
	dir := t.TempDir()
	script := test.WriteScript(t, dir, "hang.sh", test.HangingScript)

	inv := helpInvocation(script, dir)
	inv.Timeout = 200 * time.Millisecond

	r := &LiveInteractor{WaitDelay: 500 * time.Millisecond}
	start := time.Now()
	capture, err := r.Interact(context.Background(), inv)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, model.KindTimeoutExceeded, model.KindOf(err))
	assert.Less(t, elapsed, 5*time.Second)
	require.NotNil(t, capture)
	assert.Contains(t, capture.Stderr, "started")
	assert.NotEqual(t, 0, capture.ExitCode)
}

func TestLiveInteractor_RequiresTimeout(t *testing.T) {
	inv := helpInvocation("/bin/sh", t.TempDir())
	inv.Timeout = 0

	_, err := (&LiveInteractor{}).Interact(context.Background(), inv)
	require.Error(t, err)
	assert.Equal(t, model.KindUnexpected, model.KindOf(err))
}

func TestLiveInteractor_ParentCancelled(t *testing.T) {
	dir := t.TempDir()
	script := test.WriteScript(t, dir, "hang.sh", test.HangingScript)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := (&LiveInteractor{WaitDelay: 500 * time.Millisecond}).Interact(ctx, helpInvocation(script, dir))
	require.Error(t, err)
	assert.Equal(t, model.KindUnexpected, model.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher(t *testing.T) {
	dir := t.TempDir()
	test.WriteScript(t, dir, "esa", test.FakeREPLScript)
	d := NewDispatcher()

	t.Run("routes every known transport", func(t *testing.T) {
		require.Len(t, d.interactors, len(model.ValidTransports))
		assert.IsType(t, &LiveInteractor{}, d.interactors[model.TransportPipe])
		assert.IsType(t, &PTYInteractor{}, d.interactors[model.TransportPTY])
	})

	t.Run("empty transport uses pipes", func(t *testing.T) {
		inv := helpInvocation("./esa", dir)
		inv.Transport = ""
		capture, err := d.Interact(context.Background(), inv)
		require.NoError(t, err)
		assert.Contains(t, capture.Stderr, "Available commands:")
	})

	t.Run("unknown transport", func(t *testing.T) {
		inv := helpInvocation("./esa", dir)
		inv.Transport = "serial"
		_, err := d.Interact(context.Background(), inv)
		require.Error(t, err)
		assert.Equal(t, model.KindUnexpected, model.KindOf(err))
	})
}

func TestNewInteractor(t *testing.T) {
	i, err := NewInteractor(model.TransportPipe)
	require.NoError(t, err)
	assert.IsType(t, &LiveInteractor{}, i)

	i, err = NewInteractor(model.TransportPTY)
	require.NoError(t, err)
	assert.IsType(t, &PTYInteractor{}, i)

	_, err = NewInteractor("serial")
	assert.Error(t, err)
}
