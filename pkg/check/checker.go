// Package check drives a program through its scripted input and turns what
// it printed into a verdict.
package check

import (
	"context"
	"errors"
	"fmt"

	"replcheck/pkg/log"
	"replcheck/pkg/model"
	"replcheck/pkg/runner"
	"replcheck/pkg/system"

	"github.com/spf13/afero"
)

// Checker runs checks one after another. It is not safe for concurrent use.
type Checker struct {
	Interactor runner.Interactor
	Logger     log.Logger
	// Fs holds golden files. Nil means system.AppFs.
	Fs afero.Fs
	// UpdateGolden rewrites golden files from the capture instead of
	// comparing against them.
	UpdateGolden bool
}

// Run executes a resolved check: launch, write the payload, wait and
// collect, compare. It never returns an error; every failure is recorded in
// the outcome with its kind.
func (c *Checker) Run(ctx context.Context, chk model.Check) (outcome model.Outcome) {
	outcome = model.Outcome{
		Check:       chk.Name,
		Description: chk.Description,
		Passed:      true,
	}
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error("Check aborted", "check", chk.Name, "panic", r)
			outcome.Fail(model.KindUnexpected, fmt.Sprintf("internal error: %v", r))
		}
	}()

	inv, err := chk.Invocation()
	if err != nil {
		outcome.Fail(model.KindUnexpected, err.Error())
		return outcome
	}
	outcome.Command = inv.CommandLine()

	c.Logger.Info("Running check",
		"check", chk.Name,
		"command", inv.CommandLine(),
		"dir", inv.Dir,
		"timeout", inv.Timeout,
		"transport", inv.Transport)

	capture, err := c.Interactor.Interact(ctx, inv)
	outcome.Capture = capture
	if err != nil {
		c.Logger.Error("Interaction failed", "check", chk.Name, "kind", model.KindOf(err), "error", err)
		outcome.Fail(model.KindOf(err), err.Error())
		return outcome
	}
	if capture == nil {
		outcome.Fail(model.KindUnexpected, "interaction returned no capture")
		return outcome
	}

	c.Logger.Debug("Interaction finished",
		"check", chk.Name,
		"run_id", capture.RunID,
		"exit_code", capture.ExitCode,
		"duration", capture.Duration,
		"stdout_bytes", len(capture.Stdout),
		"stderr_bytes", len(capture.Stderr))

	for _, failure := range Evaluate(chk, capture) {
		outcome.Fail(model.KindExpectationFailed, failure)
	}

	if chk.Golden != nil {
		c.checkGolden(chk, capture, &outcome)
	}

	c.Logger.Info("Check finished", "check", chk.Name, "passed", outcome.Passed)
	return outcome
}

func (c *Checker) checkGolden(chk model.Check, capture *model.Capture, outcome *model.Outcome) {
	got := streamText(capture, chk.Golden.Stream, chk.Expect.KeepANSI)

	if c.UpdateGolden {
		if err := WriteGolden(c.fs(), chk.Golden.Path, got); err != nil {
			outcome.Fail(model.KindUnexpected, err.Error())
			return
		}
		c.Logger.Info("Golden file updated", "check", chk.Name, "path", chk.Golden.Path)
		return
	}

	diff, err := CompareGolden(c.fs(), chk.Golden.Path, got)
	if err != nil {
		outcome.Fail(model.KindUnexpected, err.Error())
		return
	}
	if diff != "" {
		outcome.Fail(model.KindExpectationFailed,
			fmt.Sprintf("%s differs from golden file %s", chk.Golden.Stream, chk.Golden.Path))
		outcome.Diff = diff
	}
}

// RunSuite runs every check the given number of rounds and returns the
// outcomes of the last round. A check whose verdict changed between rounds
// is reported as failed.
func (c *Checker) RunSuite(ctx context.Context, checks []model.Check, rounds int) []model.Outcome {
	if rounds < 1 {
		rounds = 1
	}

	verdicts := make(map[string]map[bool]bool, len(checks))
	var outcomes []model.Outcome
	for round := 1; round <= rounds; round++ {
		outcomes = make([]model.Outcome, 0, len(checks))
		for _, chk := range checks {
			if errors.Is(ctx.Err(), context.Canceled) {
				o := model.Outcome{Check: chk.Name, Description: chk.Description}
				o.Fail(model.KindUnexpected, "run cancelled")
				outcomes = append(outcomes, o)
				continue
			}
			o := c.Run(ctx, chk)
			if verdicts[chk.Name] == nil {
				verdicts[chk.Name] = map[bool]bool{}
			}
			verdicts[chk.Name][o.Passed] = true
			outcomes = append(outcomes, o)
		}
		if rounds > 1 {
			c.Logger.Debug("Round finished", "round", round, "rounds", rounds)
		}
	}

	for i := range outcomes {
		if len(verdicts[outcomes[i].Check]) > 1 {
			c.Logger.Warn("Check is not repeatable", "check", outcomes[i].Check, "rounds", rounds)
			outcomes[i].Fail(model.KindExpectationFailed, fmt.Sprintf("verdict changed across %d rounds", rounds))
		}
	}
	return outcomes
}

func (c *Checker) fs() afero.Fs {
	if c.Fs != nil {
		return c.Fs
	}
	return system.AppFs
}
