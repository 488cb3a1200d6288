package olcaipc

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/conf"
)

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&serverAddr, "addr", "a", conf.DefaultHTTPAddr, "server address")
	serverCmd.Flags().StringVarP(&serverEndpoint, "endpoint", "e", conf.DefaultEndpoint, "openLCA IPC endpoint")
}

var (
	serverAddr     string
	serverEndpoint string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the calculation HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		cmdConf := make(map[string]any)
		if cmd.Flags().Changed("addr") {
			cmdConf["http_addr"] = serverAddr
		}
		if cmd.Flags().Changed("endpoint") {
			cmdConf["endpoint"] = serverEndpoint
		}

		m, err := olcaipc.New(configDir, cmdConf)
		if err != nil {
			log.Err(err).Msg("failed to create olcaipc instance")
			return
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := m.CommandHTTPServer(ctx); err != nil {
			log.Err(err).Msg("failed to start server")
			return
		}
	},
}
