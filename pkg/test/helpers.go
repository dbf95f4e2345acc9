package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// FakeREPLScript behaves like a minimal REPL: /help lists the commands on
// stderr, /exit, /quit or an empty line end the session, anything else is
// echoed on stdout.
const FakeREPLScript = `#!/bin/sh
echo "[REPL] Starting interactive mode" >&2
while IFS= read -r line; do
  case "$line" in
    /help)
      echo "[REPL] Available commands:" >&2
      echo "  /exit, /quit - Exit the session" >&2
      echo "  /help - Show this help message" >&2
      ;;
    /exit|/quit|"")
      echo "[REPL] Goodbye!" >&2
      exit 0
      ;;
    *)
      echo "esa> $line"
      ;;
  esac
done
echo "[REPL] Goodbye!" >&2
`

// HangingScript never reads its input and never exits on its own.
const HangingScript = `#!/bin/sh
echo "started" >&2
sleep 30
`

// SetupMockFilesystem creates an in-memory filesystem for testing.
// The caller is responsible for setting system.AppFs if needed.
func SetupMockFilesystem(t *testing.T) afero.Fs {
	return afero.NewMemMapFs()
}

// CreateTestFile creates a file with content in the test filesystem.
func CreateTestFile(t *testing.T, fs afero.Fs, path, content string) {
	err := fs.MkdirAll(filepath.Dir(path), 0755)
	require.NoError(t, err)
	err = afero.WriteFile(fs, path, []byte(content), 0644)
	require.NoError(t, err)
}

// AssertFileExists checks that a file exists and has expected content.
func AssertFileExists(t *testing.T, fs afero.Fs, path, expectedContent string) {
	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	require.True(t, exists, "File %s should exist", path)

	if expectedContent != "" {
		content, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		require.Equal(t, expectedContent, string(content))
	}
}

// WriteScript writes an executable shell script on the real filesystem and
// returns its path.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

// AssertLogContains checks that the logger captured a message containing the substring.
func AssertLogContains(t *testing.T, logger *MockLogger, substring string) {
	require.True(t, logger.HasMessage(substring), "Log should contain: %s", substring)
}
