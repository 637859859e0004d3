package upgrade

// unsupportedLowering backs every kind without a dedicated lowering, data flows included.
type unsupportedLowering struct{}

func (l *unsupportedLowering) Compile(g *Graph, e *Entity) {
	g.Alerts.Unsupported("%s cannot be upgraded", e)
}

func (l *unsupportedLowering) Link(g *Graph, e *Entity) {}

func (l *unsupportedLowering) Evaluate(g *Graph, e *Entity, attribute string, params Params) Symbol {
	return Failed()
}
