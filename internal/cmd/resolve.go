package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/constants"
	"github.com/turbot/pipe-fittings/perr"

	localconstants "github.com/turbot/adfupgrade/internal/constants"
	"github.com/turbot/adfupgrade/internal/types"
	"github.com/turbot/adfupgrade/internal/util"
)

func resolveCmd() *cobra.Command {
	names := make([]string, len(types.ResolutionTypes))
	for i, t := range types.ResolutionTypes {
		names[i] = string(t)
	}

	var cmd = &cobra.Command{
		Use:   "resolve <type> <key> <value>",
		Args:  cobra.ExactArgs(3),
		Run:   runResolveFunc,
		Short: "Add a resolution to a progress document",
		Long: fmt.Sprintf(`Add a resolution to a progress document.

The resolution shadows any existing resolution with the same type and key.
Use an empty key ("") for WorkspaceId.

Types: %s`, strings.Join(names, ", ")),
	}

	cmdconfig.OnCmd(cmd).
		AddStringFlag(constants.ArgInput, "-", "Progress document to read, - for stdin")

	return cmd
}

func runResolveFunc(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	r, err := parseResolutionArgs(args)
	if err != nil {
		fail(ctx, err)
		return
	}
	in, err := readProgress(cmd)
	if err != nil {
		fail(ctx, err)
		return
	}
	h, err := historyDB()
	if err != nil {
		fail(ctx, err)
		return
	}

	in.Resolutions = prependResolutions(in.Resolutions, []types.Resolution{r})
	finishRun(cmd, h, util.NewRunId(), localconstants.CommandResolve, in)
}

func parseResolutionArgs(args []string) (types.Resolution, error) {
	t := types.ResolutionType(args[0])
	if !t.Valid() {
		return types.Resolution{}, perr.BadRequestWithMessage(fmt.Sprintf("unknown resolution type '%s'", args[0]))
	}
	r := types.Resolution{Type: t, Key: args[1], Value: args[2]}
	if err := types.ValidateResolution(r); err != nil {
		return types.Resolution{}, perr.BadRequestWithMessage(fmt.Sprintf("invalid resolution %s '%s': %s", t, r.Key, err))
	}
	return r, nil
}
