package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"notifyplex/internal/config"
	"notifyplex/internal/history"
	"notifyplex/internal/notify"
	"notifyplex/internal/nzbget"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process a finished download (invoked by NZBGet)",
		Long: "Reads the NZBPP_* job environment, sends the optional GUI notification,\n" +
			"refreshes the resolved Plex library sections, and exits with the NZBGet\n" +
			"post-processing codes: 93 on success, 94 on error, 95 when skipped.",
		// Config errors must surface as exit code 94, not cobra's generic 1.
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPostProcess(cmd, ctx)
		},
	}
}

func runPostProcess(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return exitWithMessage(nzbget.ExitError, "configuration error: %v", err)
	}
	logger := ctx.ensureLogger()

	download := nzbget.FromEnv(os.LookupEnv)
	if download.Name == "" && !download.HasStatus() {
		return exitWithMessage(nzbget.ExitError,
			"no NZBGet job environment found; this command is meant to run as an NZBGet post-processing script")
	}

	if !download.Succeeded() {
		logger.Info("download did not succeed, skipping",
			"nzb", download.Name, "status", download.Status)
		return exitWith(nzbget.ExitNone)
	}

	// The on-screen notification is best effort and never affects the exit
	// code.
	service := notify.NewService(cfg.GUI, logger)
	message := notify.NotificationText(download, cfg.GUI.UseDNZBHeaders)
	if err := service.Send(cmd.Context(), "Downloaded", message); err != nil {
		logger.Warn("gui notification incomplete", "error", err)
	}

	if !cfg.Refresh.Enabled {
		logger.Info("library refresh disabled", "nzb", download.Name)
		recordRun(cmd, ctx, cfg, history.Run{
			NZBName:  download.Name,
			Category: download.Category,
			Mode:     cfg.Refresh.Mode,
			Outcome:  history.OutcomeSkipped,
			Detail:   "refresh disabled",
		})
		return exitWith(nzbget.ExitSuccess)
	}

	runner, err := ctx.runner()
	if err != nil {
		return refreshFailure(cfg, logger, cmd, ctx, download, err)
	}

	sections, err := runner.Run(cmd.Context(), download.Category)
	if err != nil {
		return refreshFailure(cfg, logger, cmd, ctx, download, err)
	}

	outcome := history.OutcomeRefreshed
	if len(sections) == 0 {
		outcome = history.OutcomeSkipped
	}
	recordRun(cmd, ctx, cfg, history.Run{
		NZBName:  download.Name,
		Category: download.Category,
		Mode:     cfg.Refresh.Mode,
		Sections: sections,
		Outcome:  outcome,
	})
	return exitWith(nzbget.ExitSuccess)
}

func refreshFailure(cfg *config.Config, logger *slog.Logger, cmd *cobra.Command, ctx *commandContext, download nzbget.Download, err error) error {
	recordRun(cmd, ctx, cfg, history.Run{
		NZBName:  download.Name,
		Category: download.Category,
		Mode:     cfg.Refresh.Mode,
		Outcome:  history.OutcomeFailed,
		Detail:   err.Error(),
	})
	if cfg.Refresh.SilentFailure {
		logger.Warn("refresh failed, reporting success to keep processing going", "error", err)
		return exitWith(nzbget.ExitSuccess)
	}
	return exitWithMessage(nzbget.ExitError, "refresh failed: %v", err)
}

// recordRun journals the run when history is enabled. Journal problems are
// logged and swallowed; they must never change the exit code NZBGet sees.
func recordRun(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, run history.Run) {
	if !cfg.History.Enabled {
		return
	}
	logger := ctx.ensureLogger()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("open history journal failed", "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(cmd.Context(), run); err != nil {
		logger.Warn("record history entry failed", "error", err)
	}
}
