package model

import (
	"fmt"
	"strings"
	"time"
)

const DefaultTimeout = 10 * time.Second

// Suite is the top-level layout of a check configuration file.
type Suite struct {
	Includes []string `yaml:"includes,omitempty" json:"includes,omitempty"`
	Defaults Target   `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Checks   []Check  `yaml:"checks" json:"checks"`
}

// Target names the program under test. Suite defaults and individual
// checks share it; unset check fields fall back to the defaults.
type Target struct {
	Command   string    `yaml:"command,omitempty" json:"command,omitempty"`
	Args      []string  `yaml:"args,omitempty" json:"args,omitempty"`
	Dir       string    `yaml:"dir,omitempty" json:"dir,omitempty"`
	Env       []string  `yaml:"env,omitempty" json:"env,omitempty"`
	Timeout   string    `yaml:"timeout,omitempty" json:"timeout,omitempty"` // e.g. "10s"
	Transport Transport `yaml:"transport,omitempty" json:"transport,omitempty"`
}

type Check struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Target `yaml:",inline"`

	Input  []string    `yaml:"input" json:"input"`
	Expect Expectation `yaml:"expect" json:"expect"`
	Golden *Golden     `yaml:"golden,omitempty" json:"golden,omitempty"`
}

type Expectation struct {
	StderrContains []string `yaml:"stderr_contains,omitempty" json:"stderr_contains,omitempty"`
	StdoutContains []string `yaml:"stdout_contains,omitempty" json:"stdout_contains,omitempty"`
	StderrExcludes []string `yaml:"stderr_excludes,omitempty" json:"stderr_excludes,omitempty"`
	StdoutExcludes []string `yaml:"stdout_excludes,omitempty" json:"stdout_excludes,omitempty"`
	ExitCode       *int     `yaml:"exit_code,omitempty" json:"exit_code,omitempty"`
	IgnoreExitCode bool     `yaml:"ignore_exit_code,omitempty" json:"ignore_exit_code,omitempty"`
	KeepANSI       bool     `yaml:"keep_ansi,omitempty" json:"keep_ansi,omitempty"`
}

// WantExitCode returns the exit status the check requires, and false when
// the exit status is not part of the verdict.
func (e Expectation) WantExitCode() (int, bool) {
	if e.IgnoreExitCode {
		return 0, false
	}
	if e.ExitCode == nil {
		return 0, true
	}
	return *e.ExitCode, true
}

// Golden compares one captured stream with the content of a file.
type Golden struct {
	Stream Stream `yaml:"stream" json:"stream"`
	Path   string `yaml:"path" json:"path"`
}

// Resolve returns a copy of the check with unset target fields taken from
// defaults.
func (c Check) Resolve(defaults Target) Check {
	r := c
	if r.Command == "" {
		r.Command = defaults.Command
		if r.Args == nil {
			r.Args = append([]string(nil), defaults.Args...)
		}
	}
	if r.Dir == "" {
		r.Dir = defaults.Dir
	}
	if len(defaults.Env) > 0 {
		r.Env = append(append([]string(nil), defaults.Env...), c.Env...)
	}
	if r.Timeout == "" {
		r.Timeout = defaults.Timeout
	}
	if r.Timeout == "" {
		r.Timeout = DefaultTimeout.String()
	}
	if r.Transport == "" {
		r.Transport = defaults.Transport
	}
	if r.Transport == "" {
		r.Transport = TransportPipe
	}
	if r.Description == "" {
		r.Description = r.Name
	}
	return r
}

// Invocation builds the immutable run description of a resolved check.
func (c Check) Invocation() (Invocation, error) {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return Invocation{}, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return Invocation{
		Command:   c.Command,
		Args:      append([]string(nil), c.Args...),
		Dir:       c.Dir,
		Env:       append([]string(nil), c.Env...),
		Input:     Payload(c.Input),
		Timeout:   timeout,
		Transport: c.Transport,
	}, nil
}

// Validate expects checks that were already resolved against the suite
// defaults.
func (s Suite) Validate() ValidationErrors {
	var errs ValidationErrors
	if len(s.Checks) == 0 {
		errs = append(errs, ValidationError{Field: "checks", Message: "at least one check is required"})
	}
	seen := make(map[string]bool)
	for i, c := range s.Checks {
		field := fmt.Sprintf("checks[%d]", i)
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "name cannot be empty"})
		} else if seen[c.Name] {
			errs = append(errs, ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate check name %q", c.Name)})
		}
		seen[c.Name] = true

		if strings.TrimSpace(c.Command) == "" {
			errs = append(errs, ValidationError{Field: field + ".command", Message: "command cannot be empty"})
		}
		if d, err := time.ParseDuration(c.Timeout); err != nil {
			errs = append(errs, ValidationError{Field: field + ".timeout", Message: fmt.Sprintf("invalid duration %q", c.Timeout)})
		} else if d <= 0 {
			errs = append(errs, ValidationError{Field: field + ".timeout", Message: "timeout must be positive"})
		}
		if !ValidTransports[c.Transport] {
			errs = append(errs, ValidationError{Field: field + ".transport", Message: fmt.Sprintf("unknown transport %q", c.Transport)})
		}
		if len(c.Input) == 0 {
			errs = append(errs, ValidationError{Field: field + ".input", Message: "input cannot be empty"})
		}
		if c.Golden != nil {
			if !ValidStreams[c.Golden.Stream] {
				errs = append(errs, ValidationError{Field: field + ".golden.stream", Message: fmt.Sprintf("unknown stream %q", c.Golden.Stream)})
			}
			if strings.TrimSpace(c.Golden.Path) == "" {
				errs = append(errs, ValidationError{Field: field + ".golden.path", Message: "path cannot be empty"})
			}
		}
	}
	return errs
}
