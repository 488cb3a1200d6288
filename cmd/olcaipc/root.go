package olcaipc

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	// windows only
	cobra.MousetrapHelpText = ""

	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "debug")
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "", "config dir, defaults to $OLCAIPC_DIR or ~/.olcaipc")
	rootCmd.PersistentPreRun = initLog
	addFindFlags(rootCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("command execution failed")
	}
}

var configDir string

var rootCmd = &cobra.Command{
	Use:     "olcaipc",
	Short:   "openLCA IPC client",
	Long:    `olcaipc queries an openLCA IPC server over JSON-RPC and serves a GWP calculation proxy in front of it.`,
	Example: `olcaipc --endpoint http://localhost:3000`,
	Args:    cobra.MinimumNArgs(0),
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Run: Find,
}
