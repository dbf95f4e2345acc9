package check

import (
	"fmt"
	"strings"

	"replcheck/pkg/model"

	"github.com/charmbracelet/x/ansi"
)

// Evaluate compares a capture with the check's expectations and returns one
// message per unmet expectation. An empty result means the check passed.
func Evaluate(chk model.Check, capture *model.Capture) []string {
	exp := chk.Expect
	stderr := streamText(capture, model.StreamStderr, exp.KeepANSI)
	stdout := streamText(capture, model.StreamStdout, exp.KeepANSI)

	var failures []string
	failures = append(failures, missing(model.StreamStderr, stderr, exp.StderrContains)...)
	failures = append(failures, missing(model.StreamStdout, stdout, exp.StdoutContains)...)
	failures = append(failures, present(model.StreamStderr, stderr, exp.StderrExcludes)...)
	failures = append(failures, present(model.StreamStdout, stdout, exp.StdoutExcludes)...)

	if want, ok := exp.WantExitCode(); ok && capture.ExitCode != want {
		failures = append(failures, fmt.Sprintf("exit code %d, want %d", capture.ExitCode, want))
	}
	return failures
}

func missing(stream model.Stream, text string, wants []string) []string {
	var failures []string
	for _, want := range wants {
		if !strings.Contains(text, want) {
			failures = append(failures, fmt.Sprintf("%s does not contain %q", stream, want))
		}
	}
	return failures
}

func present(stream model.Stream, text string, excluded []string) []string {
	var failures []string
	for _, ex := range excluded {
		if strings.Contains(text, ex) {
			failures = append(failures, fmt.Sprintf("%s contains excluded %q", stream, ex))
		}
	}
	return failures
}

// streamText returns a captured stream, with escape sequences removed
// unless keepANSI is set.
func streamText(capture *model.Capture, stream model.Stream, keepANSI bool) string {
	text := capture.Text(stream)
	if keepANSI {
		return text
	}
	return ansi.Strip(text)
}
