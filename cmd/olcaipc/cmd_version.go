package olcaipc

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Fergus4506/olca-ipc-container/pkg/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionM, "module", "m", false, "module version information")
}

var versionM bool
var versionCmd = &cobra.Command{
	Use:   "version [-m]",
	Short: "Show the version of olcaipc",
	Run: func(cmd *cobra.Command, args []string) {
		if versionM {
			fmt.Println(version.GetMore(true))
		} else {
			fmt.Printf("olcaipc %s\n", version.GetMore(false))
		}
	},
}
