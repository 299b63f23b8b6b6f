package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// outputFlags name the root flags that enable a side output; giving a path sets
// <key>.enabled and <key>.path.
var outputFlags = []struct {
	flag, key, usage string
}{
	{"xlsx", "output.xlsx", "Also write the merged table to this XLSX file"},
	{"report", "output.report", "Write a YAML summary report to this file"},
	{"metrics", "output.metrics", "Write run metrics in Prometheus textfile format to this file"},
	{"database", "output.database", "Export the merged rows to this SQLite database"},
}

// setupFlags defines the command line flags and binds them into v
func setupFlags(rootCmd *cobra.Command, v *viper.Viper, configFile *string) error {
	rootCmd.PersistentFlags().StringVar(configFile, "config", "", "Config file (default: config.yaml in ., ~/.config/birdstrike, /etc/birdstrike)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().String("log-level", "", "Console log level: trace, debug, info, warn or error")

	for _, f := range outputFlags {
		rootCmd.Flags().String(f.flag, "", f.usage)
	}

	if err := v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	if err := v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// enableOutputs turns on the side outputs whose flags were given
func enableOutputs(cmd *cobra.Command, v *viper.Viper) {
	for _, f := range outputFlags {
		flag := cmd.Flags().Lookup(f.flag)
		if flag == nil || !flag.Changed {
			continue
		}
		v.Set(f.key+".enabled", true)
		v.Set(f.key+".path", flag.Value.String())
	}
}
