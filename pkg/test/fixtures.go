package test

import (
	"replcheck/pkg/model"
)

// HelpCheck returns the resolved /help scenario pointed at command.
func HelpCheck(command, dir string) model.Check {
	return model.Check{
		Name:        "help",
		Description: "/help command",
		Target: model.Target{
			Command:   command,
			Args:      []string{"--repl"},
			Dir:       dir,
			Timeout:   "10s",
			Transport: model.TransportPipe,
		},
		Input: []string{"/help", "", "/exit", ""},
		Expect: model.Expectation{
			StderrContains: []string{"Available commands:"},
		},
	}
}

// HelpCapture is what a conforming REPL prints for the /help scenario.
func HelpCapture() *model.Capture {
	return &model.Capture{
		RunID:  "run-1",
		Stderr: "[REPL] Starting interactive mode\n[REPL] Available commands:\n  /exit, /quit - Exit the session\n[REPL] Goodbye!\n",
	}
}

// SampleConfigYAML returns a sample check configuration.
func SampleConfigYAML() string {
	return `defaults:
  command: ./esa
  args: [--repl]
  timeout: 10s
checks:
  - name: help
    description: /help command
    input: ["/help", "", "/exit", ""]
    expect:
      stderr_contains: ["Available commands:"]
  - name: quit
    input: ["/quit"]
    expect:
      stderr_contains: ["Goodbye!"]
      stderr_excludes: ["Unknown command"]
`
}
