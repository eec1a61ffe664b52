package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/moh-tz/hfrsync/cmd/hfrsync/cmd/locations"
	"github.com/moh-tz/hfrsync/cmd/hfrsync/cmd/synccmd"
	"github.com/moh-tz/hfrsync/cmd/hfrsync/cmd/version"
	"github.com/moh-tz/hfrsync/internal/cmd/output"
	"github.com/moh-tz/hfrsync/pkg/errors"
)

// Execute runs the hfrsync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "hfrsync",
		Short:   "Reconcile the location registry with the Health Facility Registry",
		Version: a.version,
		Long: `hfrsync keeps the OpenMRS location hierarchy aligned with the
Health Facility Registry.

It reads the facility and administrative hierarchy feeds page by page and
the hamlet CSV, creates missing locations and fixes drifted names and
parents. Lookups go by code, so a repeated run over unchanged upstream
data makes no writes.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.hfrsync.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("hfrsync {{.Version}}\n")
	if a.out != nil {
		rootCmd.SetOut(a.out)
	}

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	if _, err := output.ParseFormat(format); err != nil {
		return errors.NewValidationError("format", format, err.Error())
	}

	// An explicit config file replaces the one found at startup
	if cmd.Flags().Changed("config") {
		config, err := LoadConfig(a.config.ConfigFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(synccmd.NewCommand(a))
	rootCmd.AddCommand(locations.NewCommand(a))
	rootCmd.AddCommand(version.NewCommand(a))
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
