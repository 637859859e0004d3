package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbot/adfupgrade/internal/types"
)

func TestSymbolIsMemoized(t *testing.T) {
	assert := assert.New(t)

	calls := map[string]int{}
	g := NewGraph(nil)
	e := g.Add("node", "a", nil, &stubLowering{
		evaluate: func(g *Graph, e *Entity, attribute string, params Params) Symbol {
			calls[attribute+params.Signature()]++
			return Ready(params["x"])
		},
	})

	for i := 0; i < 5; i++ {
		assert.Equal(1, g.Symbol(e, "value", Params{"x": 1, "y": "b"}).Value)
		assert.Equal(2, g.Symbol(e, "value", Params{"y": "b", "x": 2}).Value)
		assert.Nil(g.Symbol(e, "value", nil).Value)
	}

	assert.Len(calls, 3)
	for key, n := range calls {
		assert.Equal(1, n, key)
	}
}

func TestFailedSymbolIsMemoized(t *testing.T) {
	calls := 0
	g := NewGraph(nil)
	e := g.Add("node", "a", nil, &stubLowering{
		evaluate: func(g *Graph, e *Entity, attribute string, params Params) Symbol {
			calls++
			g.Alerts.Permanent("broken")
			return Failed()
		},
	})

	assert.False(t, g.Symbol(e, "value", nil).IsReady())
	assert.False(t, g.Symbol(e, "value", nil).IsReady())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, g.Alerts.Len())
}

func TestParamsSignatureIsCanonical(t *testing.T) {
	a := Params{"b": 1, "a": map[string]any{"y": 2, "x": 1}}
	b := Params{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	assert.Equal(t, a.Signature(), b.Signature())
	assert.NotEqual(t, a.Signature(), Params{"b": 2}.Signature())
	assert.Equal(t, "", Params(nil).Signature())
	assert.Equal(t, "", Params{}.Signature())
}

func TestReentrantEvaluationFails(t *testing.T) {
	assert := assert.New(t)

	g := NewGraph(nil)
	var a, b *Entity
	a = g.Add("node", "a", nil, &stubLowering{
		evaluate: func(g *Graph, e *Entity, attribute string, params Params) Symbol {
			s := g.Symbol(b, "value", nil)
			if !s.IsReady() {
				return Failed()
			}
			return Ready("a")
		},
	})
	b = g.Add("node", "b", nil, &stubLowering{
		evaluate: func(g *Graph, e *Entity, attribute string, params Params) Symbol {
			return g.Symbol(a, "value", nil)
		},
	})

	s := g.Symbol(a, "value", nil)
	assert.False(s.IsReady())

	alerts := g.Alerts.Items()
	require.Len(t, alerts, 1)
	assert.Equal(types.SeverityPermanent, alerts[0].Severity)
	assert.Equal("circular reference evaluating 'value' of node 'a'", alerts[0].Details)

	// the failure is cached, no further alerts on re-evaluation
	assert.False(g.Symbol(a, "value", nil).IsReady())
	assert.False(g.Symbol(b, "value", nil).IsReady())
	assert.Equal(1, g.Alerts.Len())
}

func TestDifferentParamsAreNotReentrant(t *testing.T) {
	g := NewGraph(nil)
	var e *Entity
	e = g.Add("node", "a", nil, &stubLowering{
		evaluate: func(g *Graph, _ *Entity, attribute string, params Params) Symbol {
			depth, _ := params["depth"].(int)
			if depth == 3 {
				return Ready(depth)
			}
			return g.Symbol(e, attribute, Params{"depth": depth + 1})
		},
	})

	s := g.Symbol(e, "value", Params{"depth": 0})
	require.True(t, s.IsReady())
	assert.Equal(t, 3, s.Value)
	assert.Zero(t, g.Alerts.Len())
}
