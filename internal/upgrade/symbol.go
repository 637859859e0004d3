package upgrade

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

type SymbolState int

const (
	SymbolReady SymbolState = iota
	SymbolFailed
)

// Symbol is the memoized result of evaluating one attribute of one entity.
type Symbol struct {
	State SymbolState
	Value any
}

func Ready(v any) Symbol {
	return Symbol{State: SymbolReady, Value: v}
}

func Failed() Symbol {
	return Symbol{State: SymbolFailed}
}

func (s Symbol) IsReady() bool {
	return s.State == SymbolReady
}

// Params is the parameter assignment an attribute is evaluated under.
type Params map[string]any

// Signature is the canonical form of the assignment used in the symbol cache key.
func (p Params) Signature() string {
	if len(p) == 0 {
		return ""
	}
	// encoding/json writes map keys sorted, which makes the output canonical
	b, err := json.Marshal(map[string]any(p))
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(p))
	}
	return string(b)
}

// Symbol evaluates attribute of e under params. Results are cached per (attribute, params) for
// the lifetime of the entity. Re-entering an evaluation that is still running is reported as a
// circular reference and yields a failed symbol.
func (g *Graph) Symbol(e *Entity, attribute string, params Params) Symbol {
	key := attribute + "|" + params.Signature()
	if s, ok := e.symbols[key]; ok {
		return s
	}
	if e.evaluating[key] {
		g.Alerts.Permanent("circular reference evaluating '%s' of %s", attribute, e)
		return Failed()
	}

	e.evaluating[key] = true
	s := e.lowering.Evaluate(g, e, attribute, params)
	delete(e.evaluating, key)

	if !s.IsReady() {
		slog.Debug("symbol failed", "entity", e.String(), "attribute", attribute)
	}
	e.symbols[key] = s
	return s
}

func unknownAttribute(g *Graph, e *Entity, attribute string) Symbol {
	g.Alerts.Permanent("%s has no attribute '%s'", e, attribute)
	return Failed()
}
