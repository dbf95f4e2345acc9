package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"replcheck/pkg/model"
	"replcheck/pkg/system"
	"replcheck/pkg/test"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFs(t *testing.T) afero.Fs {
	t.Helper()
	orig := system.AppFs
	system.AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { system.AppFs = orig })
	return system.AppFs
}

func TestDefault(t *testing.T) {
	suite := Default()

	require.Len(t, suite.Checks, 1)
	c := suite.Checks[0]
	assert.Equal(t, "help", c.Name)
	assert.Equal(t, "./esa", c.Command)
	assert.Equal(t, []string{"--repl"}, c.Args)
	assert.Equal(t, "10s", c.Timeout)
	assert.Equal(t, model.TransportPipe, c.Transport)
	assert.Equal(t, []string{"Available commands:"}, c.Expect.StderrContains)

	inv, err := c.Invocation()
	require.NoError(t, err)
	assert.Equal(t, "/help\n\n/exit\n\n", inv.Input)
	assert.Empty(t, suite.Validate())
}

func TestLoadConfig(t *testing.T) {
	logger := test.NewMockLogger(slog.LevelInfo)

	t.Run("successfully loads a valid config", func(t *testing.T) {
		fs := setupFs(t)
		test.CreateTestFile(t, fs, "/repo/replcheck.yaml", test.SampleConfigYAML())

		suite, err := LoadConfig("/repo/replcheck.yaml", logger)
		require.NoError(t, err)

		require.Len(t, suite.Checks, 2)
		help := suite.Checks[0]
		assert.Equal(t, "help", help.Name)
		assert.Equal(t, "/help command", help.Description)
		assert.Equal(t, "./esa", help.Command)
		assert.Equal(t, []string{"--repl"}, help.Args)
		assert.Equal(t, "10s", help.Timeout)
		assert.Equal(t, model.TransportPipe, help.Transport)

		quit := suite.Checks[1]
		assert.Equal(t, "quit", quit.Description)
		assert.Equal(t, []string{"Unknown command"}, quit.Expect.StderrExcludes)
	})

	t.Run("returns an error if the file does not exist", func(t *testing.T) {
		setupFs(t)
		_, err := LoadConfig("non-existent-file.yaml", logger)
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err), "expected a file not found error")
	})

	t.Run("returns an error for malformed YAML", func(t *testing.T) {
		fs := setupFs(t)
		test.CreateTestFile(t, fs, "/bad.yaml", "checks: [name: help\n  input: -")

		_, err := LoadConfig("/bad.yaml", logger)
		assert.Error(t, err)
	})

	t.Run("returns validation errors", func(t *testing.T) {
		fs := setupFs(t)
		test.CreateTestFile(t, fs, "/invalid.yaml", `
checks:
  - name: help
    input: ["/help"]
    timeout: forever
`)

		_, err := LoadConfig("/invalid.yaml", logger)
		require.Error(t, err)
		var errs model.ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Contains(t, err.Error(), "checks[0].command")
		assert.Contains(t, err.Error(), "checks[0].timeout")
	})

	t.Run("resolves paths against the config file", func(t *testing.T) {
		fs := setupFs(t)
		test.CreateTestFile(t, fs, "/repo/checks/replcheck.yaml", `
defaults:
  command: ./esa
  dir: ..
checks:
  - name: help
    input: ["/help"]
    golden:
      stream: stderr
      path: testdata/help.stderr
  - name: abs
    dir: /opt/esa
    input: ["/help"]
`)

		suite, err := LoadConfig("/repo/checks/replcheck.yaml", logger)
		require.NoError(t, err)
		assert.Equal(t, "/repo", suite.Checks[0].Dir)
		assert.Equal(t, "/repo/checks/testdata/help.stderr", suite.Checks[0].Golden.Path)
		assert.Equal(t, "/opt/esa", suite.Checks[1].Dir)
	})
}

func TestLoadConfig_Includes(t *testing.T) {
	t.Run("merges included files, including file wins", func(t *testing.T) {
		fs := setupFs(t)
		logger := test.NewMockLogger(slog.LevelInfo)
		test.CreateTestFile(t, fs, "/cfg/common.yaml", `
defaults:
  command: ./esa
  args: [--repl]
  timeout: 5s
  env: [NO_COLOR=1]
checks:
  - name: help
    input: ["/help"]
    expect:
      stderr_contains: ["old text"]
  - name: quit
    input: ["/quit"]
`)
		test.CreateTestFile(t, fs, "/cfg/main.yaml", `
includes: [common.yaml]
defaults:
  timeout: 20s
checks:
  - name: help
    input: ["/help", ""]
    expect:
      stderr_contains: ["Available commands:"]
  - name: config
    input: ["/config"]
`)

		suite, err := LoadConfig("/cfg/main.yaml", logger)
		require.NoError(t, err)

		names := []string{}
		for _, c := range suite.Checks {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"help", "quit", "config"}, names)

		help := suite.Checks[0]
		assert.Equal(t, []string{"Available commands:"}, help.Expect.StderrContains)
		assert.Equal(t, "20s", help.Timeout)
		assert.Equal(t, "./esa", help.Command)
		assert.Equal(t, []string{"NO_COLOR=1"}, help.Env)
		test.AssertLogContains(t, logger, "Check overridden")
	})

	t.Run("detects circular includes", func(t *testing.T) {
		fs := setupFs(t)
		test.CreateTestFile(t, fs, "/cfg/a.yaml", "includes: [b.yaml]\nchecks: []\n")
		test.CreateTestFile(t, fs, "/cfg/b.yaml", "includes: [a.yaml]\nchecks: []\n")

		_, err := LoadConfig("/cfg/a.yaml", test.NewMockLogger(slog.LevelInfo))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "circular include detected")
	})

	t.Run("shared include reached through two branches", func(t *testing.T) {
		fs := setupFs(t)
		test.CreateTestFile(t, fs, "/c/top.yaml", "includes: [a.yaml, b.yaml]\n")
		test.CreateTestFile(t, fs, "/c/a.yaml", `
includes: [leaf.yaml]
checks:
  - name: help
    input: ["/help"]
`)
		test.CreateTestFile(t, fs, "/c/b.yaml", `
includes: [leaf.yaml]
checks:
  - name: quit
    input: ["/quit"]
`)
		test.CreateTestFile(t, fs, "/c/leaf.yaml", `
includes: [empty.yaml]
defaults:
  command: ./esa
  args: [--repl]
`)
		test.CreateTestFile(t, fs, "/c/empty.yaml", "checks: []\n")

		suite, err := LoadConfig("/c/top.yaml", test.NewMockLogger(slog.LevelInfo))
		require.NoError(t, err)

		require.Len(t, suite.Checks, 2)
		assert.Equal(t, "help", suite.Checks[0].Name)
		assert.Equal(t, "quit", suite.Checks[1].Name)
		assert.Equal(t, "./esa", suite.Checks[1].Command)
	})

	t.Run("rejects empty include paths", func(t *testing.T) {
		fs := setupFs(t)
		test.CreateTestFile(t, fs, "/cfg/a.yaml", "includes: [\"  \"]\n")

		_, err := LoadConfig("/cfg/a.yaml", test.NewMockLogger(slog.LevelInfo))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "include path cannot be empty")
	})

	t.Run("missing include", func(t *testing.T) {
		fs := setupFs(t)
		test.CreateTestFile(t, fs, "/cfg/a.yaml", "includes: [missing.yaml]\n")

		_, err := LoadConfig("/cfg/a.yaml", test.NewMockLogger(slog.LevelInfo))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load include 'missing.yaml'")
	})
}

func TestExists(t *testing.T) {
	fs := setupFs(t)
	test.CreateTestFile(t, fs, "/here.yaml", "checks: []")

	assert.True(t, Exists("/here.yaml"))
	assert.False(t, Exists("/there.yaml"))
}

func TestOverrides_Apply(t *testing.T) {
	suite := Default()

	t.Run("replaces the target of every check", func(t *testing.T) {
		out, err := Overrides{
			Command:   "/usr/local/bin/esa",
			Dir:       "/srv",
			Timeout:   3 * time.Second,
			Transport: model.TransportPTY,
		}.Apply(suite)
		require.NoError(t, err)

		c := out.Checks[0]
		assert.Equal(t, "/usr/local/bin/esa", c.Command)
		assert.Equal(t, []string{"--repl"}, c.Args)
		assert.Equal(t, "/srv", c.Dir)
		assert.Equal(t, "3s", c.Timeout)
		assert.Equal(t, model.TransportPTY, c.Transport)
		assert.Equal(t, "./esa", suite.Checks[0].Command, "input suite must not change")
	})

	t.Run("zero overrides keep the suite", func(t *testing.T) {
		out, err := Overrides{}.Apply(suite)
		require.NoError(t, err)
		assert.Equal(t, suite.Checks, out.Checks)
	})

	t.Run("invalid result is rejected", func(t *testing.T) {
		_, err := Overrides{Timeout: -time.Second}.Apply(suite)
		assert.Error(t, err)
	})
}

func TestFilter(t *testing.T) {
	suite := &model.Suite{Checks: []model.Check{{Name: "help"}, {Name: "quit"}, {Name: "config"}}}

	out, err := Filter(suite, []string{"config", "help"})
	require.NoError(t, err)
	require.Len(t, out.Checks, 2)
	assert.Equal(t, "help", out.Checks[0].Name)
	assert.Equal(t, "config", out.Checks[1].Name)

	out, err = Filter(suite, nil)
	require.NoError(t, err)
	assert.Len(t, out.Checks, 3)

	_, err = Filter(suite, []string{"help", "model"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}
