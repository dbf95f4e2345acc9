package cmd

import "replcheck/pkg/model"

// outcomeForJSON is a struct used for marshaling an outcome to JSON for machine-readable output.
type outcomeForJSON struct {
	Check       string   `json:"check"`
	Description string   `json:"description"`
	Command     string   `json:"command"`
	Passed      bool     `json:"passed"`
	Kind        string   `json:"kind,omitempty"`
	Failures    []string `json:"failures,omitempty"`
	Diff        string   `json:"diff,omitempty"`
	RunID       string   `json:"run_id,omitempty"`
	ExitCode    *int     `json:"exit_code,omitempty"`
	DurationMS  int64    `json:"duration_ms,omitempty"`
	Merged      bool     `json:"merged,omitempty"`
	Stdout      string   `json:"stdout"`
	Stderr      string   `json:"stderr"`
}

func newOutcomeForJSON(o model.Outcome) outcomeForJSON {
	out := outcomeForJSON{
		Check:       o.Check,
		Description: o.Description,
		Command:     o.Command,
		Passed:      o.Passed,
		Kind:        string(o.Kind),
		Failures:    o.Failures,
		Diff:        o.Diff,
	}
	if c := o.Capture; c != nil {
		exitCode := c.ExitCode
		out.RunID = c.RunID
		out.ExitCode = &exitCode
		out.DurationMS = c.Duration.Milliseconds()
		out.Merged = c.Merged
		out.Stdout = c.Stdout
		out.Stderr = c.Stderr
	}
	return out
}
