// Package cfg provides configuration and command-line setup for vidgrab.
package cfg

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vidgrab/internal/domain/consts"
	"vidgrab/internal/domain/keys"
)

var rootCmd = &cobra.Command{
	Use:   "vidgrab",
	Short: "vidgrab is a browser-driven video downloading and metatagging server.",
	RunE: func(_ *cobra.Command, _ []string) error {
		viper.Set(keys.Execute, true)
		return nil
	},
}

// InitCommands initializes the root command flags and environment bindings.
func InitCommands() error {
	viper.AutomaticEnv()

	if err := initFlags(rootCmd); err != nil {
		return err
	}

	// Environment names honored for parity with existing deployments.
	if err := viper.BindEnv(keys.Port, keys.EnvPort); err != nil {
		return err
	}
	if err := viper.BindEnv(keys.Proxy, keys.EnvProxy); err != nil {
		return err
	}

	viper.SetDefault(keys.Port, "3000")
	viper.SetDefault(keys.OutputDir, "downloads")
	viper.SetDefault(keys.BinDir, "bin")
	viper.SetDefault(keys.PublicDir, "public")
	viper.SetDefault(keys.UnplayablePhrases, consts.DefaultUnplayablePhrases)

	return nil
}

// Execute parses flags and environment into viper.
func Execute() error {
	return rootCmd.Execute()
}

// ShouldRun reports whether the server should start (false when e.g. --help
// was invoked).
func ShouldRun() bool {
	return viper.GetBool(keys.Execute)
}
