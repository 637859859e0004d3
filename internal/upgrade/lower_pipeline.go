package upgrade

import (
	"github.com/turbot/adfupgrade/internal/copier"
	"github.com/turbot/adfupgrade/internal/types"
)

const AttrActivities = "activities"

// loweredActivities is the value of a pipeline's activities attribute.
type loweredActivities struct {
	Activities []any
	Resolve    []types.ResolveStep
}

// pipeline properties carried over verbatim
var pipelineProperties = []string{"description", "parameters", "variables", "annotations", "concurrency"}

type pipelineLowering struct{}

func (l *pipelineLowering) Compile(g *Graph, e *Entity) {
	if !requireFields(g, e, "properties.activities") {
		return
	}
	v, _ := copier.Get(e.Source, "properties.activities")
	if asList(v) == nil {
		g.Alerts.Permanent("%s: 'properties.activities' is not a list", e)
	}
}

func (l *pipelineLowering) Link(g *Graph, e *Entity) {
	v, _ := copier.Get(e.Source, "properties.activities")
	walkActivities(asList(v), func(act map[string]any) {
		for _, ref := range activityReferences(act) {
			if ref.name == "" {
				g.Alerts.Permanent("activity '%s' of %s has a %s reference without a name", copier.GetString(act, "name"), e, ref.kind)
				continue
			}
			g.DependOn(e, ref.kind, ref.name)
		}
	})
}

func (l *pipelineLowering) Evaluate(g *Graph, e *Entity, attribute string, params Params) Symbol {
	switch attribute {
	case AttrActivities:
		v, _ := copier.Get(e.Source, "properties.activities")
		al := newActivityLowerer(g, e)
		acts := al.lowerList(asList(v), "properties.activities")
		if !al.ok {
			return Failed()
		}
		return Ready(loweredActivities{Activities: acts, Resolve: al.resolve})
	case AttrExportResources:
		return l.exportResources(g, e)
	}
	return unknownAttribute(g, e, attribute)
}

func (l *pipelineLowering) exportResources(g *Graph, e *Entity) Symbol {
	s := g.Symbol(e, AttrActivities, nil)
	if !s.IsReady() {
		return Failed()
	}
	lowered := s.Value.(loweredActivities)

	c := copier.New(e.Source, nil, nil)
	for _, p := range pipelineProperties {
		_ = c.Copy("properties."+p, "properties."+p, false)
	}
	if err := copier.SetPath(c.Destination(), "properties.activities", copier.DeepCopy(lowered.Activities)); err != nil {
		g.Alerts.Permanent("%s: %s", e, err.Error())
		return Failed()
	}
	if _, found := copier.Get(e.Source, "properties.folder"); found {
		g.Alerts.Warning("folder of %s is not carried over", e)
	}

	resolve := make([]types.ResolveStep, len(lowered.Resolve))
	copy(resolve, lowered.Resolve)
	return Ready([]types.ExportableResource{{
		ResourceType:        types.FabricDataPipeline,
		ResourceName:        e.Name,
		ResourceDescription: copier.GetString(e.Source, "properties.description"),
		Resolve:             resolve,
		Export:              c.Destination(),
	}})
}
