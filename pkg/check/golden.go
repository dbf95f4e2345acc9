package check

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/afero"
)

// CompareGolden returns a line diff between the golden file and got, or an
// empty string when they are equal.
func CompareGolden(fs afero.Fs, path, got string) (string, error) {
	want, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("reading golden file %s: %w", path, err)
	}
	if string(want) == got {
		return "", nil
	}
	return LineDiff(string(want), got), nil
}

func WriteGolden(fs afero.Fs, path, content string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating golden directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing golden file %s: %w", path, err)
	}
	return nil
}

// LineDiff renders want -> got as lines prefixed with "-", "+" or " ".
func LineDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
