package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTestCommand(ctx *commandContext) *cobra.Command {
	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Exercise the Plex wiring without a download",
	}

	testCmd.AddCommand(newTestConnectionCommand(ctx))
	testCmd.AddCommand(newTestRefreshCommand(ctx))

	return testCmd
}

func newTestConnectionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "connection",
		Short: "Authenticate to plex.tv and probe for a reachable server",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.tokenStore()
			if err != nil {
				return err
			}
			auth, err := ctx.authenticator(store)
			if err != nil {
				return err
			}
			record, err := auth.ObtainToken(cmd.Context(), false)
			if err != nil {
				return err
			}

			locator, err := ctx.locator()
			if err != nil {
				return err
			}
			conn, err := locator.Locate(cmd.Context(), record)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Authentication OK.")
			fmt.Fprintf(out, "Reachable server: %s\n", conn.BaseURL)
			return nil
		},
	}
}

func newTestRefreshCommand(ctx *commandContext) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run a full refresh for a category as if a download finished",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.runner()
			if err != nil {
				return err
			}

			sections, err := runner.Run(cmd.Context(), category)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sections) == 0 {
				fmt.Fprintf(out, "No sections resolved for category %q.\n", category)
				return nil
			}
			ids := make([]string, len(sections))
			for i, id := range sections {
				ids[i] = fmt.Sprint(id)
			}
			fmt.Fprintf(out, "Refreshed sections %s for category %q.\n", strings.Join(ids, ", "), category)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Download category to resolve")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
