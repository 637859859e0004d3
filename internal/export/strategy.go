package export

import (
	"context"
	"fmt"

	"github.com/turbot/adfupgrade/internal/resolution"
	"github.com/turbot/adfupgrade/internal/types"
)

// Strategy materializes one resource type. PreCheck runs before anything is exported and must not
// have side effects; Materialize receives the payload with every resolve step already spliced in.
type Strategy interface {
	PreCheck(r types.ExportableResource, check *PreCheck)
	Materialize(ctx context.Context, r types.ExportableResource, payload map[string]any) (map[string]any, error)
}

// PreCheck collects the alerts of the pre-checking phase. A missing resolution is reported once
// per (type, key) however many resources need it.
type PreCheck struct {
	registry *resolution.Registry
	alerts   *types.Alerts
	reported map[string]bool
}

func newPreCheck(registry *resolution.Registry, alerts *types.Alerts) *PreCheck {
	return &PreCheck{registry: registry, alerts: alerts, reported: map[string]bool{}}
}

// Require records a MissingResolution alert unless (t, key) is registered.
func (p *PreCheck) Require(t types.ResolutionType, key, hint string) {
	if p.registry.Has(t, key) {
		return
	}
	id := string(t) + "|" + key
	if p.reported[id] {
		return
	}
	p.reported[id] = true
	if hint == "" {
		p.alerts.MissingResolution("%s '%s' is missing", t, key)
		return
	}
	p.alerts.MissingResolution("%s '%s' is missing: %s", t, key, hint)
}

func (p *PreCheck) Unsupported(r types.ExportableResource) {
	p.alerts.Unsupported("%s '%s' cannot be exported", r.ResourceType, r.ResourceName)
}

func (p *PreCheck) Permanent(format string, args ...any) {
	p.alerts.Permanent(format, args...)
}

// requireWorkspace is shared by the strategies that create items inside the workspace.
func requireWorkspace(r types.ExportableResource, check *PreCheck) {
	check.Require(types.ResolutionWorkspaceID, "", fmt.Sprintf("the Fabric workspace to export %s '%s' into", r.ResourceType, r.ResourceName))
}
