package config

import (
	"fmt"
	"strings"
	"time"

	"replcheck/pkg/model"
)

// Overrides are command-line settings that replace the target of every
// check. Zero values leave the suite untouched.
type Overrides struct {
	Command   string
	Args      []string
	Dir       string
	Timeout   time.Duration
	Transport model.Transport
}

// Apply returns a copy of the suite with the overrides applied, validated
// again.
func (o Overrides) Apply(suite *model.Suite) (*model.Suite, error) {
	result := &model.Suite{Defaults: suite.Defaults}
	for _, c := range suite.Checks {
		if o.Command != "" {
			c.Command = o.Command
		}
		if o.Args != nil {
			c.Args = append([]string(nil), o.Args...)
		}
		if o.Dir != "" {
			c.Dir = o.Dir
		}
		if o.Timeout != 0 {
			c.Timeout = o.Timeout.String()
		}
		if o.Transport != "" {
			c.Transport = o.Transport
		}
		result.Checks = append(result.Checks, c)
	}
	if errs := result.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return result, nil
}

// Filter keeps only the named checks, in suite order. No names keeps all.
func Filter(suite *model.Suite, names []string) (*model.Suite, error) {
	if len(names) == 0 {
		return suite, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	result := &model.Suite{Defaults: suite.Defaults}
	for _, c := range suite.Checks {
		if wanted[c.Name] {
			result.Checks = append(result.Checks, c)
			delete(wanted, c.Name)
		}
	}

	if len(wanted) > 0 {
		var unknown []string
		for _, n := range names {
			if wanted[n] {
				unknown = append(unknown, n)
			}
		}
		return nil, fmt.Errorf("unknown check(s): %s", strings.Join(unknown, ", "))
	}
	return result, nil
}
