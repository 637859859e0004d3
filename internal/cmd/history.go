package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/perr"

	localconstants "github.com/turbot/adfupgrade/internal/constants"
	"github.com/turbot/adfupgrade/internal/store"
	"github.com/turbot/adfupgrade/internal/types"
)

const defaultRetention = "720h"

func historyCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "history",
		Short: "Inspect previous runs",
		Long:  `Inspect the runs recorded in the history database.`,
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	cmd.AddCommand(historyEventsCmd())
	cmd.AddCommand(historyCleanupCmd())
	return cmd
}

func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "List recorded runs, newest first",
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()
			h, err := requireHistory()
			if err != nil {
				fail(ctx, err)
				return
			}
			runs, err := h.ListRuns()
			if err != nil {
				fail(ctx, err)
				return
			}
			if err := printResource(ctx, cmd, &PrintableRuns{Runs: runs}); err != nil {
				fail(ctx, err)
			}
		},
	}

	cmdconfig.OnCmd(cmd)
	return cmd
}

func historyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Args:  cobra.ExactArgs(1),
		Short: "Print the progress document a run produced",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			h, err := requireHistory()
			if err != nil {
				fail(ctx, err)
				return
			}
			run, err := h.GetRun(args[0])
			if err != nil {
				fail(ctx, err)
				return
			}
			if err := printResource(ctx, cmd, types.NewPrintableProgress(run.Progress)); err != nil {
				fail(ctx, err)
			}
		},
	}

	cmdconfig.OnCmd(cmd)
	return cmd
}

func historyEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events <run-id>",
		Args:  cobra.ExactArgs(1),
		Short: "List the events an export run raised",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			h, err := requireHistory()
			if err != nil {
				fail(ctx, err)
				return
			}
			if _, err := h.GetRun(args[0]); err != nil {
				fail(ctx, err)
				return
			}
			events, err := h.ListEvents(args[0])
			if err != nil {
				fail(ctx, err)
				return
			}
			if err := printResource(ctx, cmd, &PrintableEvents{Events: events}); err != nil {
				fail(ctx, err)
			}
		},
	}

	cmdconfig.OnCmd(cmd)
	return cmd
}

func historyCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Args:  cobra.NoArgs,
		Short: "Delete runs older than the retention period",
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()
			h, err := requireHistory()
			if err != nil {
				fail(ctx, err)
				return
			}
			retention, err := time.ParseDuration(viper.GetString(localconstants.ArgRetention))
			if err != nil || retention < 0 {
				fail(ctx, perr.BadRequestWithMessage(fmt.Sprintf("invalid retention '%s'", viper.GetString(localconstants.ArgRetention))))
				return
			}
			deleted, err := h.Cleanup(time.Now().UTC(), -retention)
			if err != nil {
				fail(ctx, err)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs\n", deleted)
		},
	}

	cmdconfig.OnCmd(cmd).
		AddStringFlag(localconstants.ArgRetention, defaultRetention, "Keep runs updated within this period")

	return cmd
}

func requireHistory() (*store.HistoryDB, error) {
	h, err := historyDB()
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, perr.BadRequestWithMessage("history is disabled by --" + localconstants.ArgNoHistory)
	}
	return h, nil
}
