package olcaipc

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/conf"
)

func init() {
	rootCmd.AddCommand(findCmd)
	addFindFlags(findCmd)
}

var findCmd = &cobra.Command{
	Use:     "find",
	Short:   "Fetch the configured entities concurrently and print the results",
	Example: `olcaipc find --query Project:0a36b0b4-6836-4b4e-a275-a51b7f9f2633 --query ProductSystem:724bff37-cc16-4af4-a059-a1948f61af93`,
	Run:     Find,
}

func addFindFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("endpoint", "e", conf.DefaultEndpoint, "openLCA IPC endpoint")
	cmd.Flags().DurationP("timeout", "t", conf.DefaultTimeout, "timeout of each call")
	cmd.Flags().StringArrayP("query", "q", nil, "entity to fetch as [Label=]Type:UUID, repeatable")
	cmd.Flags().Bool("show-result", true, "print the result of successful calls")
}

// Find never fails on a call error; every outcome is part of the report.
func Find(cmd *cobra.Command, args []string) {
	cmdConf, err := findConf(cmd)
	if err != nil {
		log.Err(err).Msg("invalid flags")
		return
	}

	m, err := olcaipc.New(configDir, cmdConf)
	if err != nil {
		log.Err(err).Msg("failed to create olcaipc instance")
		return
	}

	if err := m.CommandFind(cmd.Context(), os.Stdout); err != nil {
		log.Err(err).Msg("failed to write report")
	}
}

// findConf returns the flags the user set, keyed by config key.
func findConf(cmd *cobra.Command) (map[string]any, error) {
	cmdConf := make(map[string]any)
	flags := cmd.Flags()

	if flags.Changed("endpoint") {
		v, _ := flags.GetString("endpoint")
		cmdConf["endpoint"] = v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		cmdConf["timeout"] = v.String()
	}
	if flags.Changed("show-result") {
		v, _ := flags.GetBool("show-result")
		cmdConf["show_result"] = v
	}
	if flags.Changed("query") {
		raw, _ := flags.GetStringArray("query")
		queries := make([]map[string]any, 0, len(raw))
		for _, s := range raw {
			q, err := conf.ParseQuery(s)
			if err != nil {
				return nil, err
			}
			queries = append(queries, map[string]any{"label": q.Label, "type": q.Type, "id": q.ID})
		}
		cmdConf["queries"] = queries
	}
	return cmdConf, nil
}
