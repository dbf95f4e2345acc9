package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"replcheck/pkg/model"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// TranscriptWriter stores the captures of one suite run under
// <Dir>/<RunID>/<check>/.
type TranscriptWriter struct {
	Fs    afero.Fs
	Dir   string
	RunID string
}

type transcriptResult struct {
	Check       string          `yaml:"check"`
	Description string          `yaml:"description"`
	Command     string          `yaml:"command"`
	Passed      bool            `yaml:"passed"`
	Kind        model.ErrorKind `yaml:"kind,omitempty"`
	Failures    []string        `yaml:"failures,omitempty"`
	RunID       string          `yaml:"run_id,omitempty"`
	ExitCode    int             `yaml:"exit_code"`
	Duration    string          `yaml:"duration,omitempty"`
	Merged      bool            `yaml:"merged,omitempty"`
}

func NewTranscriptWriter(fs afero.Fs, dir string) *TranscriptWriter {
	return &TranscriptWriter{Fs: fs, Dir: dir, RunID: uuid.NewString()}
}

// Write stores one outcome and returns the directory it was written to.
func (w *TranscriptWriter) Write(o model.Outcome) (string, error) {
	dir := filepath.Join(w.Dir, w.RunID, safeName(o.Check))
	if err := w.Fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating transcript directory %s: %w", dir, err)
	}

	result := transcriptResult{
		Check:       o.Check,
		Description: o.Description,
		Command:     o.Command,
		Passed:      o.Passed,
		Kind:        o.Kind,
		Failures:    o.Failures,
	}
	files := map[string]string{}
	if c := o.Capture; c != nil {
		result.RunID = c.RunID
		result.ExitCode = c.ExitCode
		result.Duration = c.Duration.String()
		result.Merged = c.Merged
		files["stdout.txt"] = c.Stdout
		if !c.Merged {
			files["stderr.txt"] = c.Stderr
		}
	}
	if o.Diff != "" {
		files["golden.diff"] = o.Diff
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshaling transcript result: %w", err)
	}
	files["result.yaml"] = string(data)

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(w.Fs, path, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return dir, nil
}

func safeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ' ' || r == ':':
			return '_'
		default:
			return r
		}
	}, name)
}
