package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"replcheck/pkg/config"
	"replcheck/pkg/log"
	"replcheck/pkg/model"
	"replcheck/pkg/runner"
	"replcheck/pkg/system"

	"github.com/spf13/cobra"
)

type loggerKey struct{}

var (
	cfgFile    string
	logLevel   string
	logFormat  string
	jsonOutput bool
	interactor runner.Interactor = system.NewDispatcher()
	rootCmd                      = &cobra.Command{
		Use:   "replcheck",
		Short: "replcheck drives interactive REPL programs through scripted sessions",
		Long: `A smoke tester for programs with an interactive REPL mode.

replcheck starts the program, writes a scripted sequence of input lines to it,
waits for it to exit within a timeout and checks what it printed. Without a
configuration file it runs the built-in check: "./esa --repl" fed with
"/help", "", "/exit", "" must print "Available commands:" on stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			format, err := log.ParseFormat(logFormat)
			if err != nil {
				return err
			}
			logger := log.NewSlogLoggerWithFormat(level, format, cmd.ErrOrStderr())
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, log.Logger(logger)))
			return nil
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loggerFrom(cmd *cobra.Command) log.Logger {
	return cmd.Context().Value(loggerKey{}).(log.Logger)
}

// loadSuite reads --config, falls back to replcheck.yaml in the working
// directory and finally to the built-in /help check.
func loadSuite(logger log.Logger) (*model.Suite, error) {
	switch {
	case cfgFile != "":
		return config.LoadConfig(cfgFile, logger)
	case config.Exists(config.DefaultFile):
		return config.LoadConfig(config.DefaultFile, logger)
	default:
		logger.Debug("No config file found, using the built-in check", "file", config.DefaultFile)
		return config.Default(), nil
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./replcheck.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}
