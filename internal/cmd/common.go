package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/constants"
	"github.com/turbot/pipe-fittings/error_helpers"

	localconstants "github.com/turbot/adfupgrade/internal/constants"
	"github.com/turbot/adfupgrade/internal/fperr"
	"github.com/turbot/adfupgrade/internal/parse"
	"github.com/turbot/adfupgrade/internal/printers"
	"github.com/turbot/adfupgrade/internal/store"
	"github.com/turbot/adfupgrade/internal/types"
	"github.com/turbot/adfupgrade/internal/util"
)

// readProgress decodes the progress document named by the input flag, stdin by default.
func readProgress(cmd *cobra.Command) (*types.Progress, error) {
	data, err := util.ReadInput(viper.GetString(constants.ArgInput), cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	return types.ParseProgress(data), nil
}

// loadOverrides collects the caller supplied resolutions: the workspace flag first, then the
// resolutions file in file order.
func loadOverrides() ([]types.Resolution, error) {
	var overrides []types.Resolution
	if ws := viper.GetString(localconstants.ArgWorkspaceId); ws != "" {
		overrides = append(overrides, types.Resolution{Type: types.ResolutionWorkspaceID, Value: ws})
	}
	if path := viper.GetString(localconstants.ArgResolutions); path != "" {
		fromFile, err := parse.LoadResolutions(path)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, fromFile...)
	}
	return overrides, nil
}

// historyDB returns nil when history is disabled.
func historyDB() (*store.HistoryDB, error) {
	if viper.GetBool(localconstants.ArgNoHistory) {
		return nil, nil
	}
	h := store.NewHistoryDB(viper.GetString(localconstants.ArgHistoryDb))
	if err := h.Initialize(); err != nil {
		return nil, err
	}
	return h, nil
}

func printResource(ctx context.Context, cmd *cobra.Command, r types.PrintableResource) error {
	printer, err := printers.GetPrinter(cmd)
	if err != nil {
		return err
	}
	return printer.PrintResource(ctx, r, cmd.OutOrStdout())
}

// finishRun records the produced progress, prints it and sets the exit code from its state.
// Failing to record history is reported but does not change the outcome of the run.
func finishRun(cmd *cobra.Command, h *store.HistoryDB, runID, command string, p *types.Progress) {
	ctx := cmd.Context()
	if h != nil {
		if err := h.RecordRun(runID, command, p); err != nil {
			slog.Warn("unable to record run", "run_id", runID, "error", err)
		}
	}

	if err := printResource(ctx, cmd, types.NewPrintableProgress(p)); err != nil {
		error_helpers.ShowErrorWithMessage(ctx, err, "failed when printing")
		exitCode = fperr.ExitCodeUnknownError
		return
	}
	exitCode = fperr.ExitCodeForProgress(p)
}

func fail(ctx context.Context, err error) {
	error_helpers.ShowError(ctx, err)
	exitCode = fperr.GetExitCode(err, false)
}
