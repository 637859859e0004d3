// Package export materializes upgraded resource descriptions against Fabric, one at a time and in
// the order the upgrade produced them, splicing the identifiers of earlier resources into the
// payloads of later ones.
package export

import (
	"context"
	"log/slog"

	"github.com/turbot/adfupgrade/internal/copier"
	"github.com/turbot/adfupgrade/internal/fabric"
	"github.com/turbot/adfupgrade/internal/resolution"
	"github.com/turbot/adfupgrade/internal/types"
)

// Publisher receives one notification per materialized resource. *es.EventBus satisfies it.
type Publisher interface {
	PublishResourceExported(ctx context.Context, resourceType, resourceName, id string) error
}

type ExporterOption func(*Exporter)

func WithStrategy(resourceType string, s Strategy) ExporterOption {
	return func(e *Exporter) {
		e.strategies[resourceType] = s
	}
}

func WithPublisher(p Publisher) ExporterOption {
	return func(e *Exporter) {
		e.publisher = p
	}
}

type Exporter struct {
	strategies  map[string]Strategy
	unsupported Strategy
	publisher   Publisher
}

func NewExporter(client fabric.Client, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		strategies: map[string]Strategy{
			types.FabricDataPipeline:     NewItemStrategy(client),
			types.FabricPipelineSchedule: NewScheduleStrategy(client),
			types.FabricConnection:       NewConnectionStrategy(),
		},
		unsupported: &unsupportedStrategy{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter) strategy(resourceType string) Strategy {
	if s, ok := e.strategies[resourceType]; ok {
		return s
	}
	return e.unsupported
}

// run carries the state of a single Export call.
type run struct {
	resources []types.ExportableResource
	registry  *resolution.Registry
	alerts    *types.Alerts
	exported  map[string]map[string]any
	owners    map[string]string
}

// Export runs Building, PreChecking and Exporting over the exportable resources of in. Overrides
// shadow any resolution already carried by in. A progress that has not succeeded is returned as is.
func (e *Exporter) Export(ctx context.Context, in *types.Progress, overrides []types.Resolution) *types.Progress {
	if in == nil {
		in = types.NewProgress()
	}
	if !in.Succeeded() {
		return in
	}

	r := &run{
		registry: resolution.NewRegistry(in.Resolutions...),
		alerts:   types.NewAlerts(in.Alerts...),
		exported: map[string]map[string]any{},
		owners:   map[string]string{},
	}
	r.registry.Prepend(overrides...)

	if in.Result == nil || in.Result.ImportedResources != nil || in.Result.ExportedFabricResources != nil {
		r.alerts.Permanent("progress does not contain exportable Fabric resources")
		return types.FailedProgress(r.alerts.Items(), r.registry.Items())
	}
	r.resources = in.Result.ExportableFabricResources

	phases := []struct {
		name string
		fn   func(context.Context, *run)
	}{
		{"building", e.build},
		{"prechecking", e.precheck},
		{"exporting", e.export},
	}
	for _, phase := range phases {
		slog.Debug("export phase starting", "phase", phase.name, "resources", len(r.resources))
		phase.fn(ctx, r)
		if r.alerts.Failed() {
			slog.Info("export failed", "phase", phase.name, "alerts", r.alerts.Len())
			return types.FailedProgress(r.alerts.Items(), r.registry.Items())
		}
	}

	out := types.NewProgress()
	out.Alerts = r.alerts.Items()
	out.Resolutions = r.registry.Items()
	out.Result = &types.ProgressResult{ExportedFabricResources: r.exported}
	slog.Info("export succeeded", "exported", len(r.exported), "alerts", len(out.Alerts))
	return out
}

func (e *Exporter) build(_ context.Context, r *run) {
	seen := map[string]bool{}
	for _, res := range r.resources {
		if err := types.ValidateResource(res); err != nil {
			r.alerts.Permanent("%s '%s' is not a valid exportable resource: %s", res.ResourceType, res.ResourceName, err)
			continue
		}
		if seen[res.Key()] {
			r.alerts.Permanent("duplicate %s '%s'", res.ResourceType, res.ResourceName)
			continue
		}
		seen[res.Key()] = true
	}
}

func (e *Exporter) precheck(_ context.Context, r *run) {
	check := newPreCheck(r.registry, r.alerts)
	earlier := map[string]bool{}
	for _, res := range r.resources {
		for _, step := range res.Resolve {
			if step.Type == types.ResolutionFabricResourceID && earlier[step.Key] {
				continue
			}
			check.Require(step.Type, step.Key, step.Hint)
		}
		e.strategy(res.ResourceType).PreCheck(res, check)
		earlier[res.Key()] = true
	}
}

func (e *Exporter) export(ctx context.Context, r *run) {
	for _, res := range r.resources {
		if ctx.Err() != nil {
			r.alerts.Permanent("export cancelled before %s '%s'", res.ResourceType, res.ResourceName)
			return
		}
		if !e.exportOne(ctx, r, res) {
			return
		}
	}
}

func (e *Exporter) exportOne(ctx context.Context, r *run, res types.ExportableResource) bool {
	payload, _ := copier.DeepCopy(res.Export).(map[string]any)
	if payload == nil {
		payload = map[string]any{}
	}
	for _, step := range res.Resolve {
		value, ok := r.registry.Lookup(step.Type, step.Key)
		if !ok {
			r.alerts.Permanent("%s '%s' is missing while exporting %s '%s'", step.Type, step.Key, res.ResourceType, res.ResourceName)
			return false
		}
		if err := copier.SetPath(payload, step.TargetPath, value); err != nil {
			r.alerts.Permanent("cannot apply %s '%s' to %s '%s': %s", step.Type, step.Key, res.ResourceType, res.ResourceName, err)
			return false
		}
	}

	// cancellation is honoured between resources only; a resource that has started is finished
	// so its id is recorded
	doc, err := e.strategy(res.ResourceType).Materialize(context.WithoutCancel(ctx), res, payload)
	if err != nil {
		r.alerts.Permanent("failed to export %s '%s': %s", res.ResourceType, res.ResourceName, err)
		return false
	}
	id, _ := doc["id"].(string)
	if id == "" {
		r.alerts.Permanent("failed to export %s '%s': no id was returned", res.ResourceType, res.ResourceName)
		return false
	}

	r.registry.Append(types.Resolution{Type: types.ResolutionFabricResourceID, Key: res.Key(), Value: id})
	slog.Debug("resource exported", "type", res.ResourceType, "name", res.ResourceName, "id", id)

	if e.publisher != nil {
		if err := e.publisher.PublishResourceExported(ctx, res.ResourceType, res.ResourceName, id); err != nil {
			r.alerts.Warning("could not publish export of %s '%s': %s", res.ResourceType, res.ResourceName, err)
		}
	}

	key := res.ResourceName
	if owner, taken := r.owners[key]; taken && owner != res.ResourceType {
		key = res.Key()
		r.alerts.Warning("%s '%s' shares its name with a %s; recorded as '%s'", res.ResourceType, res.ResourceName, owner, key)
	} else {
		r.owners[key] = res.ResourceType
	}
	r.exported[key] = doc
	return true
}
