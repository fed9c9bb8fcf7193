package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbit-ml/specfile/pkg/cli"
	"github.com/orbit-ml/specfile/pkg/config"
	"github.com/orbit-ml/specfile/pkg/specfile"
	"github.com/orbit-ml/specfile/pkg/telemetry"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "specfile",
	Short: "Validate and expand experiment specification files",
	Long: `Specfile reads experiment specification files, resolves their for/if
directives and {{ }} references, validates them and expands groups into
the experiments of their hyperparameter search space.

Supported kinds: experiment, group, job and plugin.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil {
		var invalid *cli.InvalidError
		if !errors.As(err, &invalid) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	return cli.ExitCode(err)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// setup loads the configuration, publishes it and builds telemetry. Logs
// go to the command's error stream so that stdout only carries results.
func setup(cmd *cobra.Command) (*config.Config, *telemetry.Telemetry, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, cli.NewConfigError("--config", err.Error())
	}
	switch {
	case logLevel != "":
		cfg.Telemetry.Logging.Level = logLevel
	case verbose:
		cfg.Telemetry.Logging.Level = "debug"
	}
	config.SetConfig(cfg)

	tel, err := telemetry.New(&cfg.Telemetry,
		telemetry.WithLogWriter(cmd.ErrOrStderr()),
		telemetry.WithBuildInfo(Version, GitCommit))
	if err != nil {
		return nil, nil, cli.NewConfigError("telemetry", err.Error())
	}
	return cfg, tel, nil
}

// newLoader returns a loader wired to tel with the limits of cfg.
func newLoader(cfg *config.Config, tel *telemetry.Telemetry) *specfile.Loader {
	return specfile.NewLoader(&cfg.Specification, specfile.WithTelemetry(tel))
}

// specFiles returns the files named by flags and arguments, falling back
// to the configured defaults.
func specFiles(cfg *config.Config, flagged, args []string) ([]string, error) {
	files := append(append([]string(nil), flagged...), args...)
	if len(files) == 0 {
		files = cfg.Specification.Files
	}
	if len(files) == 0 {
		return nil, cli.NewConfigError("--file", "no specification files given")
	}
	return files, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shutdown(tel *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultTracingTimeout)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		tel.Logger().Warn("failed to flush telemetry", "error", err)
	}
}
