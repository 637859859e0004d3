package cmd

import (
	"github.com/spf13/cobra"
	"github.com/turbot/pipe-fittings/cmdconfig"
	"github.com/turbot/pipe-fittings/constants"

	"github.com/turbot/adfupgrade/internal/types"
	"github.com/turbot/adfupgrade/internal/upgrade"
)

func planCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "plan",
		Args:  cobra.NoArgs,
		Run:   runPlanFunc,
		Short: "Show the order the imported resources would be upgraded in",
		Long: `Show the order the imported resources would be upgraded in.

Builds and sorts the resource graph without generating anything. Resources in
the same rank do not depend on each other.`,
	}

	cmdconfig.OnCmd(cmd).
		AddStringFlag(constants.ArgInput, "-", "Progress document to read, - for stdin")

	return cmd
}

func runPlanFunc(cmd *cobra.Command, _ []string) {
	ctx := cmd.Context()

	in, err := readProgress(cmd)
	if err != nil {
		fail(ctx, err)
		return
	}

	plan, failed := buildPlan(upgrade.NewUpgrader(), in)
	if failed != nil {
		finishRun(cmd, nil, "", "", failed)
		return
	}
	if err := printResource(ctx, cmd, plan); err != nil {
		fail(ctx, err)
	}
}

// buildPlan sorts the imported resources of in. When that is not possible the returned progress
// explains why.
func buildPlan(u *upgrade.Upgrader, in *types.Progress) (*PrintablePlan, *types.Progress) {
	if !in.Succeeded() {
		return nil, in
	}
	if in.Result == nil || in.Result.ImportedResources == nil {
		alerts := types.NewAlerts(in.Alerts...)
		alerts.Permanent("progress does not contain imported resources")
		return nil, types.FailedProgress(alerts.Items(), in.Resolutions)
	}

	g, ok := u.Build(in.Result.ImportedResources)
	if !ok {
		alerts := types.NewAlerts(in.Alerts...)
		for _, a := range g.Alerts.Items() {
			alerts.Add(a.Severity, "%s", a.Details)
		}
		return nil, types.FailedProgress(alerts.Items(), in.Resolutions)
	}

	plan := &PrintablePlan{}
	for i, rank := range g.Ranks() {
		for _, e := range rank {
			step := PlanStep{Rank: i, Kind: e.Kind, Name: e.Name}
			for _, h := range e.Dependencies() {
				step.DependsOn = append(step.DependsOn, g.Entity(h).String())
			}
			plan.Steps = append(plan.Steps, step)
		}
	}
	return plan, nil
}
