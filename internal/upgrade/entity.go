package upgrade

import (
	"fmt"

	"github.com/turbot/adfupgrade/internal/types"
)

type SortState int

const (
	Unvisited SortState = iota
	InProgress
	Sorted
)

// Handle is the stable index of an entity inside its graph.
type Handle int

// Entity is one node of the upgrade graph, built from a single source resource.
type Entity struct {
	Kind   string
	Name   string
	Source map[string]any

	handle     Handle
	state      SortState
	deps       []Handle
	lowering   Lowering
	symbols    map[string]Symbol
	evaluating map[string]bool
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s '%s'", e.Kind, e.Name)
}

func (e *Entity) Handle() Handle {
	return e.handle
}

func (e *Entity) State() SortState {
	return e.state
}

// Dependencies returns the handles of the entities this entity must be ordered after.
func (e *Entity) Dependencies() []Handle {
	out := make([]Handle, len(e.deps))
	copy(out, e.deps)
	return out
}

// Lowering is the per-kind rule set behind an entity. Compile validates the source document,
// Link turns symbolic references into graph edges and Evaluate computes one named attribute.
type Lowering interface {
	Compile(g *Graph, e *Entity)
	Link(g *Graph, e *Entity)
	Evaluate(g *Graph, e *Entity, attribute string, params Params) Symbol
}

// Constructor creates the lowering for one entity.
type Constructor func() Lowering

// DefaultLowerings maps source kinds to their lowering. Kinds without an entry are unsupported.
func DefaultLowerings() map[string]Constructor {
	return map[string]Constructor{
		types.KindLinkedService: func() Lowering { return &linkedServiceLowering{} },
		types.KindDataset:       func() Lowering { return &datasetLowering{} },
		types.KindPipeline:      func() Lowering { return &pipelineLowering{} },
		types.KindTrigger:       func() Lowering { return &triggerLowering{} },
	}
}

// Graph is the arena of entities for one upgrade run.
type Graph struct {
	Alerts *types.Alerts

	entities []*Entity
	index    map[string]Handle
	order    []Handle
}

func NewGraph(alerts *types.Alerts) *Graph {
	if alerts == nil {
		alerts = types.NewAlerts()
	}
	return &Graph{
		Alerts: alerts,
		index:  map[string]Handle{},
	}
}

func entityKey(kind, name string) string {
	return kind + ":" + name
}

// Add creates an entity. Identity (kind, name) must be unique; a duplicate is reported and the
// existing entity returned.
func (g *Graph) Add(kind, name string, source map[string]any, lowering Lowering) *Entity {
	key := entityKey(kind, name)
	if h, ok := g.index[key]; ok {
		g.Alerts.Permanent("duplicate %s '%s'", kind, name)
		return g.entities[h]
	}

	e := &Entity{
		Kind:       kind,
		Name:       name,
		Source:     source,
		handle:     Handle(len(g.entities)),
		lowering:   lowering,
		symbols:    map[string]Symbol{},
		evaluating: map[string]bool{},
	}
	g.entities = append(g.entities, e)
	g.index[key] = e.handle
	return e
}

func (g *Graph) Find(kind, name string) (*Entity, bool) {
	h, ok := g.index[entityKey(kind, name)]
	if !ok {
		return nil, false
	}
	return g.entities[h], true
}

func (g *Graph) Entity(h Handle) *Entity {
	return g.entities[h]
}

// Entities returns the entities in construction order.
func (g *Graph) Entities() []*Entity {
	out := make([]*Entity, len(g.entities))
	copy(out, g.entities)
	return out
}

// Ordered returns the entities in sorted order. It is empty until Sort succeeds.
func (g *Graph) Ordered() []*Entity {
	out := make([]*Entity, 0, len(g.order))
	for _, h := range g.order {
		out = append(out, g.entities[h])
	}
	return out
}

// DependOn records that from must be ordered after the entity (kind, name). A reference to an
// entity that does not exist is reported and nil returned.
func (g *Graph) DependOn(from *Entity, kind, name string) *Entity {
	to, ok := g.Find(kind, name)
	if !ok {
		g.Alerts.Permanent("%s references %s '%s' which does not exist", from, kind, name)
		return nil
	}
	for _, h := range from.deps {
		if h == to.handle {
			return to
		}
	}
	from.deps = append(from.deps, to.handle)
	return to
}
