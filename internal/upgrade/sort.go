package upgrade

// Sort orders the entities so that every entity follows the entities it depends on. Roots are
// taken in construction order and dependencies in the order they were linked, so the result is
// deterministic. A cycle is reported once and no order is kept.
func (g *Graph) Sort() bool {
	for _, e := range g.entities {
		e.state = Unvisited
	}

	order := make([]Handle, 0, len(g.entities))
	for _, e := range g.entities {
		if e.state != Unvisited {
			continue
		}
		if !g.visit(e, &order) {
			g.order = nil
			return false
		}
	}
	g.order = order
	return true
}

func (g *Graph) visit(e *Entity, order *[]Handle) bool {
	e.state = InProgress
	for _, h := range e.deps {
		dep := g.entities[h]
		switch dep.state {
		case InProgress:
			g.Alerts.Permanent("dependency cycle detected: %s depends on %s which is already being sorted", e, dep)
			return false
		case Unvisited:
			if !g.visit(dep, order) {
				return false
			}
		}
	}
	e.state = Sorted
	*order = append(*order, e.handle)
	return true
}

// Ranks groups the sorted entities into ranks: every entity sits one rank above the highest rank
// of its dependencies, so entities within a rank are mutually independent.
func (g *Graph) Ranks() [][]*Entity {
	rank := make(map[Handle]int, len(g.order))
	var ranks [][]*Entity
	for _, h := range g.order {
		e := g.entities[h]
		r := 0
		for _, d := range e.deps {
			if rank[d]+1 > r {
				r = rank[d] + 1
			}
		}
		rank[h] = r
		for len(ranks) <= r {
			ranks = append(ranks, nil)
		}
		ranks[r] = append(ranks[r], e)
	}
	return ranks
}
