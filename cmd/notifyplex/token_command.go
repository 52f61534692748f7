package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect or reset the persisted Plex token",
	}

	tokenCmd.AddCommand(newTokenStatusCommand(ctx))
	tokenCmd.AddCommand(newTokenClearCommand(ctx))

	return tokenCmd
}

func newTokenStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the persisted authentication state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tokenStore()
			if err != nil {
				return err
			}

			record, ok, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "State file: %s\n", store.Path())
			fmt.Fprintf(out, "Token present: %s\n", yesNo(ok))
			if record.ClientIdentifier != "" {
				fmt.Fprintf(out, "Client identifier: %s\n", record.ClientIdentifier)
			}
			if record.ServerURL != "" {
				fmt.Fprintf(out, "Last server: %s\n", record.ServerURL)
			}
			return nil
		},
	}
}

func newTokenClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted token so the next run signs in again",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tokenStore()
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token state cleared.")
			return nil
		},
	}
}
