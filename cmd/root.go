// Package cmd implements the birdstrike command line.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/birdstrike/internal/buildinfo"
	"github.com/tphakala/birdstrike/internal/conf"
	"github.com/tphakala/birdstrike/internal/logger"
	"github.com/tphakala/birdstrike/internal/pipeline"
	"github.com/tphakala/birdstrike/internal/telemetry"
)

// app carries state shared by the root command and its subcommands
type app struct {
	viper      *viper.Viper
	configFile string
	settings   *conf.Settings
	cleanup    []func()
}

// Execute runs the command line with args and returns the process exit code.
// Errors are printed to stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	defer a.close()

	root, err := a.rootCommand()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// rootCommand creates the root command and its subcommands
func (a *app) rootCommand() (*cobra.Command, error) {
	v, err := conf.NewViper()
	if err != nil {
		return nil, err
	}
	a.viper = v

	rootCmd := &cobra.Command{
		Use:   "birdstrike [flags] <light-levels.json> <collision-data.json> <flight-call.json> <output.csv>",
		Short: "Merge light levels, bird collisions and flight call data into one CSV",
		Long: `birdstrike cleans three JSON datasets and joins collision records to the light
level of their date and to the flight call traits of their species. The merged table
is written as CSV, sorted by date.`,
		Args:          cobra.ExactArgs(4),
		Version:       buildinfo.Current().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := pipeline.Run(a.settings, pipeline.Paths{
				LightLevels: args[0],
				Collisions:  args[1],
				FlightCalls: args[2],
				Output:      args[3],
			})
			return err
		},
	}

	if err := setupFlags(rootCmd, v, &a.configFile); err != nil {
		return nil, err
	}
	rootCmd.AddCommand(a.inspectCommand())
	return rootCmd, nil
}

// initialize loads settings and sets up logging and telemetry before any command runs
func (a *app) initialize(cmd *cobra.Command) error {
	enableOutputs(cmd, a.viper)

	settings, err := conf.Load(a.viper, conf.LoadOptions{
		ConfigFile: a.configFile,
		EnvFile:    ".env",
	})
	if err != nil {
		return err
	}
	a.settings = settings

	central, err := logger.NewCentralLogger(settings.LoggingConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)
	a.cleanup = append(a.cleanup, func() { _ = central.Close() })

	flush, err := telemetry.Init(&settings.Sentry, buildinfo.Current().GetVersion())
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, flush)
	return nil
}

// close runs cleanup in reverse order
func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}
