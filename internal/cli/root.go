// Package cli implements the answereval command line.
package cli

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/datar-psa/answereval/internal/bootstrap"
	"github.com/datar-psa/answereval/internal/config"
)

// Version is set at build time
//
//nolint:gochecknoglobals // set via -ldflags
var Version = "dev"

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "answereval",
	Short: "Score spoken quiz answers against a reference",
	Long: `answereval grades free-form answers to quiz questions.

It asks a remote LLM judge when a credential is configured and falls back to
local scoring (embeddings, key terms, structure, length) when the judge is
unavailable. Settings come from --config, a .env file and ANSWEREVAL_* variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.Version = Version
}

// loadApp reads configuration and wires the evaluator
func loadApp(ctx context.Context, opts bootstrap.Options) (app *bootstrap.App, err error) {
	var cfg config.Config
	cfg, err = config.Load(configFile)
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return nil, err
	}

	logger := bootstrap.NewLogger(cfg.LogLevel, verbose)
	app, err = bootstrap.New(ctx, cfg, logger, opts)
	if err != nil {
		err = errors.Wrap(err, "failed to initialise evaluator")
		return nil, err
	}
	return app, nil
}
