package cfg

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vidgrab/internal/domain/keys"
)

// initFlags binds the server's persistent flags into viper.
func initFlags(rootCmd *cobra.Command) error {
	rootCmd.PersistentFlags().StringP(keys.Port, "p", "3000", "HTTP listen port")
	if err := viper.BindPFlag(keys.Port, rootCmd.PersistentFlags().Lookup(keys.Port)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().StringP(keys.OutputDir, "o", "downloads", "Directory for finished artifacts")
	if err := viper.BindPFlag(keys.OutputDir, rootCmd.PersistentFlags().Lookup(keys.OutputDir)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.BinDir, "bin", "Directory holding bundled tool binaries (preferred over PATH)")
	if err := viper.BindPFlag(keys.BinDir, rootCmd.PersistentFlags().Lookup(keys.BinDir)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.PublicDir, "public", "Directory holding the static web UI")
	if err := viper.BindPFlag(keys.PublicDir, rootCmd.PersistentFlags().Lookup(keys.PublicDir)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.CookieFile, "", "Netscape cookie file passed to the extraction tool (default <bin-dir>/cookies.txt when present)")
	if err := viper.BindPFlag(keys.CookieFile, rootCmd.PersistentFlags().Lookup(keys.CookieFile)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.CookieSource, "", "Export cookies from the named browser into the cookie file at startup")
	if err := viper.BindPFlag(keys.CookieSource, rootCmd.PersistentFlags().Lookup(keys.CookieSource)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.Proxy, "", "Proxy URL injected into extraction-tool invocations")
	if err := viper.BindPFlag(keys.Proxy, rootCmd.PersistentFlags().Lookup(keys.Proxy)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.DebugLevel, 0, "Debug level (0-5)")
	if err := viper.BindPFlag(keys.DebugLevel, rootCmd.PersistentFlags().Lookup(keys.DebugLevel)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().StringSlice(keys.UnplayablePhrases, nil, "Output phrases marking an exit-0 run as unplayable content (overrides the built-in set)")
	if err := viper.BindPFlag(keys.UnplayablePhrases, rootCmd.PersistentFlags().Lookup(keys.UnplayablePhrases)); err != nil {
		return err
	}

	return nil
}
