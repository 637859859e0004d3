package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/constants"
	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/cache"
	localconstants "github.com/turbot/adfupgrade/internal/constants"
	"github.com/turbot/adfupgrade/internal/es"
	"github.com/turbot/adfupgrade/internal/es/event"
	"github.com/turbot/adfupgrade/internal/export"
	"github.com/turbot/adfupgrade/internal/fabric"
	"github.com/turbot/adfupgrade/internal/resolution"
	"github.com/turbot/adfupgrade/internal/store"
	"github.com/turbot/adfupgrade/internal/types"
	"github.com/turbot/adfupgrade/internal/util"
)

func exportCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "export",
		Args:  cobra.NoArgs,
		Run:   runExportFunc,
		Short: "Create the upgraded resources in a Fabric workspace",
		Long: `Create the upgraded resources in a Fabric workspace.

Reads a progress document carrying exportableFabricResources, creates or updates
each resource in order and writes a progress document carrying the ids of the
created resources.`,
	}

	cmdconfig.OnCmd(cmd).
		AddStringFlag(constants.ArgInput, "-", "Progress document to read, - for stdin").
		AddFilepathFlag(localconstants.ArgResolutions, "", "HCL file of resolutions that take precedence over those in the input").
		AddStringFlag(localconstants.ArgWorkspaceId, "", "Fabric workspace to export to").
		AddStringFlag(localconstants.ArgFabricEndpoint, localconstants.DefaultFabricEndpoint, "Base URL of the Fabric REST API").
		AddStringFlag(localconstants.ArgFabricToken, "", "Bearer token for the Fabric REST API").
		AddStringFlag(localconstants.ArgTimeout, localconstants.DefaultExportTimeout, "Time allowed for the whole export")

	return cmd
}

func runExportFunc(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()

	in, err := readProgress(cmd)
	if err != nil {
		fail(ctx, err)
		return
	}
	overrides, err := loadOverrides()
	if err != nil {
		fail(ctx, err)
		return
	}
	timeout, err := time.ParseDuration(viper.GetString(localconstants.ArgTimeout))
	if err != nil || timeout <= 0 {
		fail(ctx, perr.BadRequestWithMessage(fmt.Sprintf("invalid timeout '%s'", viper.GetString(localconstants.ArgTimeout))))
		return
	}
	h, err := historyDB()
	if err != nil {
		fail(ctx, err)
		return
	}

	runID := util.NewRunId()
	bus := es.NewEventBus(runID)
	if h != nil {
		pending := types.NewProgress()
		pending.State = types.ProgressInProgress
		if err := h.RecordRun(runID, localconstants.CommandExport, pending); err != nil {
			slog.Warn("unable to record run", "run_id", runID, "error", err)
		} else if err := recordEvents(ctx, bus, h); err != nil {
			slog.Warn("unable to record export events", "run_id", runID, "error", err)
		}
	}

	registry := resolution.NewRegistry(in.Resolutions...)
	registry.Prepend(overrides...)
	workspaceID, _ := registry.WorkspaceID()
	client := fabricClient(workspaceID, viper.GetString(localconstants.ArgFabricEndpoint), viper.GetString(localconstants.ArgFabricToken))

	exportCtx, cancel := context.WithTimeout(ctx, timeout)
	out := export.NewExporter(client, export.WithPublisher(bus)).Export(exportCtx, in, overrides)
	cancel()

	exported := 0
	if out.Result != nil {
		exported = len(out.Result.ExportedFabricResources)
	}
	if err := bus.PublishExportFinished(ctx, string(out.State), exported, len(out.Alerts)); err != nil {
		slog.Warn("unable to publish export finished", "run_id", runID, "error", err)
	}
	if err := bus.Close(); err != nil {
		slog.Warn("error closing event bus", "run_id", runID, "error", err)
	}

	finishRun(cmd, h, runID, localconstants.CommandExport, out)
}

// fabricClient returns a client that fails every call when there is nothing to authenticate with,
// so the export reports it against the first resource instead of aborting up front.
func fabricClient(workspaceID, endpoint, token string) fabric.Client {
	if token == "" {
		return failingClient(perr.BadRequestWithMessage("no Fabric token was supplied, set --" + localconstants.ArgFabricToken + " or ADFUPGRADE_FABRIC_TOKEN"))
	}
	c, err := fabric.NewHTTPClient(fabric.HTTPClientConfig{
		BaseURL:     endpoint,
		WorkspaceID: workspaceID,
		Token:       token,
		Cache:       cache.GetCache(),
	})
	if err != nil {
		return failingClient(err)
	}
	return c
}

func failingClient(err error) fabric.Client {
	return fabric.ClientFunc(func(context.Context, string, string, string, map[string]any) (map[string]any, error) {
		return nil, err
	})
}

// recordEvents stores every event raised on the bus against the run in the history database.
func recordEvents(ctx context.Context, bus *es.EventBus, h *store.HistoryDB) error {
	record := func(evt event.RaisedEvent) error {
		data, err := json.Marshal(evt)
		if err != nil {
			return err
		}
		return h.RecordEvent(bus.RunID(), evt.HandlerName(), evt.GetEvent().CreatedAt, data)
	}

	err := bus.HandleResourceExported(ctx, func(_ context.Context, evt *event.ResourceExported) error {
		return record(evt)
	})
	if err != nil {
		return err
	}
	return bus.HandleExportFinished(ctx, func(_ context.Context, evt *event.ExportFinished) error {
		return record(evt)
	})
}
