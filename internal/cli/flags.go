package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/response"
)

func newFlagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flags [code]",
		Short: "List the flag catalog or show one flag with its hints",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if len(args) == 1 {
				var result response.Flag
				if err := client.Get(cmd.Context(), "/api/v1/flags/"+url.PathEscape(args[0]), &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			var result response.FlagList
			if err := client.Get(cmd.Context(), "/api/v1/flags", &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}
}

func newRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Show players currently online",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Roster

			if err := client.Get(cmd.Context(), "/api/v1/presence", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
