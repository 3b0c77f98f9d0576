package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/request"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/response"
)

func newGuestCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Obtain a signed guest identity token",
		Long: `Ask the server to mint a guest identity token and save it to the token file.

The saved token is sent with the register event by "flagduel connect".
Servers running without a JWT secret do not issue tokens.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateGuestRequest{DisplayName: name}
			var result response.GuestToken

			if err := client.Post(cmd.Context(), "/api/v1/players/guest", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (a generated guest name when empty)")

	return cmd
}
