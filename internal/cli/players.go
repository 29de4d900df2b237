package cli

import (
	"github.com/spf13/cobra"
)

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List connected players and their stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayersResult

			if err := client.Get(cmd.Context(), "/api/v1/players", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
