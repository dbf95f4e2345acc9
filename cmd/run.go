package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"replcheck/pkg/check"
	"replcheck/pkg/config"
	"replcheck/pkg/log"
	"replcheck/pkg/model"
	"replcheck/pkg/report"
	"replcheck/pkg/system"

	"github.com/spf13/cobra"
)

var (
	runCommand      string
	runArgs         []string
	runDir          string
	runTimeout      time.Duration
	runTransport    string
	runChecks       []string
	runRepeat       int
	runTranscripts  string
	runUpdateGolden bool
	runQuiet        bool
	runNoColor      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the configured checks against the REPL program",
	Long: `The run command starts the program of every check, feeds it the scripted input,
waits for it to exit (killing it when the timeout elapses) and compares the
captured output with the check's expectations.

The command exits with status 0 when every check passed and 1 otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFrom(cmd)

		if runRepeat < 1 {
			return fmt.Errorf("--repeat must be at least 1, got %d", runRepeat)
		}

		suite, err := loadSuite(logger)
		if err != nil {
			return err
		}
		suite, err = config.Filter(suite, runChecks)
		if err != nil {
			return err
		}
		overrides := config.Overrides{
			Command:   runCommand,
			Dir:       runDir,
			Timeout:   runTimeout,
			Transport: model.Transport(runTransport),
		}
		if len(runArgs) > 0 {
			overrides.Args = runArgs
		}
		suite, err = overrides.Apply(suite)
		if err != nil {
			return err
		}

		checker := &check.Checker{
			Interactor:   interactor,
			Logger:       logger,
			UpdateGolden: runUpdateGolden,
		}
		outcomes := checker.RunSuite(cmd.Context(), suite.Checks, runRepeat)

		var errs []error
		if runTranscripts != "" {
			errs = append(errs, writeTranscripts(outcomes, logger)...)
		}

		if jsonOutput {
			outcomesForJSON := make([]outcomeForJSON, 0, len(outcomes))
			for _, o := range outcomes {
				outcomesForJSON = append(outcomesForJSON, newOutcomeForJSON(o))
			}
			jsonBytes, err := json.MarshalIndent(outcomesForJSON, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal outcomes to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		} else {
			printer := &report.Printer{Out: cmd.OutOrStdout(), ShowOutput: !runQuiet, NoColor: runNoColor}
			for _, o := range outcomes {
				printer.PrintOutcome(o)
			}
			if len(outcomes) > 1 {
				printer.PrintSummary(outcomes)
			}
		}

		failed := 0
		for _, o := range outcomes {
			if !o.Passed {
				failed++
			}
		}
		if failed > 0 {
			errs = append(errs, fmt.Errorf("%d of %d checks failed", failed, len(outcomes)))
		}
		return errors.Join(errs...)
	},
}

func writeTranscripts(outcomes []model.Outcome, logger log.Logger) []error {
	var errs []error
	w := report.NewTranscriptWriter(system.AppFs, runTranscripts)
	for _, o := range outcomes {
		dir, err := w.Write(o)
		if err != nil {
			logger.Error("Failed to write transcript", "check", o.Check, "error", err)
			errs = append(errs, err)
			continue
		}
		logger.Info("Transcript written", "check", o.Check, "dir", dir)
	}
	return errs
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runCommand, "command", "", "Override the program of every check")
	runCmd.Flags().StringSliceVar(&runArgs, "arg", nil, "Override the program arguments (repeatable)")
	runCmd.Flags().StringVar(&runDir, "dir", "", "Override the working directory of every check")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Override the timeout of every check (e.g. 10s)")
	runCmd.Flags().StringVar(&runTransport, "transport", "", "Override the transport of every check (pipe, pty)")
	runCmd.Flags().StringSliceVar(&runChecks, "check", nil, "Only run the named checks (repeatable)")
	runCmd.Flags().IntVar(&runRepeat, "repeat", 1, "Run the suite this many times and fail checks whose verdict changes")
	runCmd.Flags().StringVar(&runTranscripts, "transcripts", "", "Write captured output of every check below this directory")
	runCmd.Flags().BoolVar(&runUpdateGolden, "update-golden", false, "Rewrite golden files from the captured output")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Do not print the captured output")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "Disable colored output")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the outcomes in JSON format")
}
