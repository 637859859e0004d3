// Package upgrade lowers imported ADF resources into exportable Fabric resources.
//
// Every source resource becomes an Entity in a Graph. The run walks the entities through a fixed
// sequence of phases and stops at the first phase after which a fatal alert is present.
package upgrade

import (
	"log/slog"

	"github.com/turbot/adfupgrade/internal/types"
)

const AttrExportResources = "exportResources"

type Upgrader struct {
	lowerings map[string]Constructor
}

type UpgraderOption func(*Upgrader)

// WithLowering installs (or replaces) the lowering used for kind.
func WithLowering(kind string, c Constructor) UpgraderOption {
	return func(u *Upgrader) {
		u.lowerings[kind] = c
	}
}

func NewUpgrader(opts ...UpgraderOption) *Upgrader {
	u := &Upgrader{lowerings: DefaultLowerings()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type phase struct {
	name string
	run  func() bool
}

type upgradeRun struct {
	upgrader  *Upgrader
	sources   []types.SourceResource
	graph     *Graph
	resources []types.ExportableResource
}

// Upgrade runs Building, Compiling, PreSorting, Sorting and Generating over the imported resources
// carried by in. A progress that did not succeed is returned unchanged.
func (u *Upgrader) Upgrade(in *types.Progress) *types.Progress {
	if in == nil {
		in = types.NewProgress()
	}
	if !in.Succeeded() {
		return in
	}

	alerts := types.NewAlerts(in.Alerts...)
	if in.Result == nil || in.Result.ImportedResources == nil {
		alerts.Permanent("progress does not contain imported resources")
		return types.FailedProgress(alerts.Items(), in.Resolutions)
	}

	run := &upgradeRun{
		upgrader: u,
		sources:  in.Result.ImportedResources.SourceResources(),
		graph:    NewGraph(alerts),
	}
	return run.execute(in)
}

// Build runs every phase up to and including Sorting and returns the resulting graph, without
// generating resources. Used by the plan command to report ranks.
func (u *Upgrader) Build(in *types.ImportedResources) (*Graph, bool) {
	run := &upgradeRun{
		upgrader: u,
		sources:  in.SourceResources(),
		graph:    NewGraph(nil),
	}
	for _, p := range run.phases()[:4] {
		if !p.run() || run.graph.Alerts.Failed() {
			return run.graph, false
		}
	}
	return run.graph, true
}

func (r *upgradeRun) phases() []phase {
	return []phase{
		{"building", r.build},
		{"compiling", r.compile},
		{"presorting", r.presort},
		{"sorting", r.sort},
		{"generating", r.generate},
	}
}

func (r *upgradeRun) execute(in *types.Progress) *types.Progress {
	for _, p := range r.phases() {
		slog.Debug("upgrade phase starting", "phase", p.name, "entities", len(r.graph.entities))
		if !p.run() || r.graph.Alerts.Failed() {
			slog.Debug("upgrade phase failed", "phase", p.name, "alerts", r.graph.Alerts.Len())
			return types.FailedProgress(r.graph.Alerts.Items(), in.Resolutions)
		}
	}

	out := types.NewProgress()
	out.Alerts = r.graph.Alerts.Items()
	out.Resolutions = append(out.Resolutions, in.Resolutions...)
	out.Result = &types.ProgressResult{ExportableFabricResources: r.resources}
	slog.Info("upgrade succeeded", "resources", len(r.resources), "alerts", len(out.Alerts))
	return out
}

func (r *upgradeRun) build() bool {
	for _, s := range r.sources {
		ctor, ok := r.upgrader.lowerings[s.Kind]
		if !ok {
			ctor = func() Lowering { return &unsupportedLowering{} }
		}
		r.graph.Add(s.Kind, s.Name, s.Document, ctor())
	}
	return true
}

func (r *upgradeRun) compile() bool {
	for _, e := range r.graph.entities {
		e.lowering.Compile(r.graph, e)
	}
	return true
}

func (r *upgradeRun) presort() bool {
	for _, e := range r.graph.entities {
		e.lowering.Link(r.graph, e)
	}
	return true
}

func (r *upgradeRun) sort() bool {
	return r.graph.Sort()
}

func (r *upgradeRun) generate() bool {
	r.resources = []types.ExportableResource{}
	producers := map[string]*Entity{}
	for _, e := range r.graph.Ordered() {
		s := r.graph.Symbol(e, AttrExportResources, nil)
		if !s.IsReady() {
			r.graph.Alerts.Permanent("cannot upgrade %s", e)
			continue
		}
		resources, ok := s.Value.([]types.ExportableResource)
		if !ok && s.Value != nil {
			r.graph.Alerts.Permanent("cannot upgrade %s: %s produced %T instead of resources", e, AttrExportResources, s.Value)
			continue
		}
		for _, res := range resources {
			if err := types.ValidateResource(res); err != nil {
				r.graph.Alerts.Permanent("%s produced an invalid %s resource '%s': %s", e, res.ResourceType, res.ResourceName, err.Error())
				continue
			}
			if first, taken := producers[res.Key()]; taken {
				if first == e {
					r.graph.Alerts.Permanent("%s produces %s '%s' more than once", e, res.ResourceType, res.ResourceName)
				} else {
					r.graph.Alerts.Permanent("%s produces %s '%s' which %s already produces", e, res.ResourceType, res.ResourceName, first)
				}
				continue
			}
			producers[res.Key()] = e
			r.resources = append(r.resources, res)
		}
	}
	return true
}
