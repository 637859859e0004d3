package cmd

import (
	"github.com/spf13/cobra"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/constants"

	localconstants "github.com/turbot/adfupgrade/internal/constants"
	"github.com/turbot/adfupgrade/internal/types"
	"github.com/turbot/adfupgrade/internal/upgrade"
	"github.com/turbot/adfupgrade/internal/util"
)

func upgradeCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "upgrade",
		Args:  cobra.NoArgs,
		Run:   runUpgradeFunc,
		Short: "Upgrade imported factory resources to Fabric resource descriptions",
		Long: `Upgrade imported factory resources to Fabric resource descriptions.

Reads a progress document carrying importedResources and writes one carrying
exportableFabricResources, ordered so that every resource comes after the
resources it refers to.`,
	}

	cmdconfig.OnCmd(cmd).
		AddStringFlag(constants.ArgInput, "-", "Progress document to read, - for stdin").
		AddFilepathFlag(localconstants.ArgResolutions, "", "HCL file of resolutions to carry into the result").
		AddStringFlag(localconstants.ArgWorkspaceId, "", "Fabric workspace the resources will be exported to")

	return cmd
}

func runUpgradeFunc(cmd *cobra.Command, _ []string) {
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
	h, err := historyDB()
	if err != nil {
		fail(ctx, err)
		return
	}

	out := upgradeProgress(upgrade.NewUpgrader(), in, overrides)
	finishRun(cmd, h, util.NewRunId(), localconstants.CommandUpgrade, out)
}

// upgradeProgress prepends the overrides to the resolutions of a successful input and upgrades it.
func upgradeProgress(u *upgrade.Upgrader, in *types.Progress, overrides []types.Resolution) *types.Progress {
	if in.Succeeded() && len(overrides) > 0 {
		in.Resolutions = prependResolutions(in.Resolutions, overrides)
	}
	return u.Upgrade(in)
}

// prependResolutions puts overrides ahead of existing, dropping existing entries they shadow.
func prependResolutions(existing, overrides []types.Resolution) []types.Resolution {
	out := make([]types.Resolution, 0, len(existing)+len(overrides))
	out = append(out, overrides...)
	for _, r := range existing {
		shadowed := false
		for _, o := range overrides {
			if o.Matches(r.Type, r.Key) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, r)
		}
	}
	return out
}
