package model

// Outcome is the verdict of one check. Every failure, including launch
// failures and timeouts, ends up here instead of propagating further.
type Outcome struct {
	Check       string    `json:"check" yaml:"check"`
	Description string    `json:"description" yaml:"description"`
	Command     string    `json:"command" yaml:"command"`
	Passed      bool      `json:"passed" yaml:"passed"`
	Kind        ErrorKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Failures    []string  `json:"failures,omitempty" yaml:"failures,omitempty"`
	Diff        string    `json:"diff,omitempty" yaml:"diff,omitempty"`
	Capture     *Capture  `json:"capture,omitempty" yaml:"capture,omitempty"`
}

// Fail records a failure reason. The first kind recorded wins.
func (o *Outcome) Fail(kind ErrorKind, reason string) {
	o.Passed = false
	if o.Kind == "" {
		o.Kind = kind
	}
	o.Failures = append(o.Failures, reason)
}
