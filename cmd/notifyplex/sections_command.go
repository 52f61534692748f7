package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"notifyplex/internal/plex"
)

func newSectionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List the library sections of the reachable Plex server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

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

			client := plex.NewClient(conn, record.ClientIdentifier,
				time.Duration(cfg.Plex.ServerTimeout)*time.Second)
			sections, err := client.Sections(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server: %s\n", conn.BaseURL)
			if len(sections) == 0 {
				fmt.Fprintln(out, "No library sections found.")
				return nil
			}

			rows := make([][]string, 0, len(sections))
			for _, section := range sections {
				rows = append(rows, []string{
					strconv.Itoa(section.ID),
					section.Title,
					section.Kind,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Kind"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
