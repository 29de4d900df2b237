package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newMatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Match history commands",
	}

	cmd.AddCommand(newMatchesListCmd())
	cmd.AddCommand(newMatchesGetCmd())

	return cmd
}

func newMatchesListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent matches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/matches"
			if limit != 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var result MatchesResult
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum matches to show (server default when unset)")

	return cmd
}

func newMatchesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("match id is required")
			}

			var result Match
			if err := client.Get(cmd.Context(), "/api/v1/matches/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
