package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"notifyplex/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent refresh runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "History journal is disabled in the configuration.")
				return nil
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				sections := make([]string, len(run.Sections))
				for i, id := range run.Sections {
					sections[i] = strconv.Itoa(id)
				}
				rows = append(rows, []string{
					run.CreatedAt.Local().Format(time.DateTime),
					run.NZBName,
					run.Category,
					strings.Join(sections, ","),
					run.Outcome,
					truncateDetail(run.Detail, 60),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "NZB", "Category", "Sections", "Outcome", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

// truncateDetail shortens detail text by rune so multi-byte characters in
// error messages (quoted NZB names, for one) are never split mid-sequence.
func truncateDetail(detail string, max int) string {
	runes := []rune(detail)
	if len(runes) <= max {
		return detail
	}
	return string(runes[:max-3]) + "..."
}
