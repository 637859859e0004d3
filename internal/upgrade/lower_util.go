package upgrade

import (
	"encoding/json"
	"math"

	"github.com/turbot/adfupgrade/internal/copier"
)

// requireFields reports a Permanent alert for every path missing (or null) in the entity source.
func requireFields(g *Graph, e *Entity, paths ...string) bool {
	ok := true
	for _, p := range paths {
		if v, found := copier.Get(e.Source, p); !found || v == nil {
			g.Alerts.Permanent("%s is missing required field '%s'", e, p)
			ok = false
		}
	}
	return ok
}

// referenceName returns the referenceName of an ADF reference object such as
// {"referenceName": "x", "type": "DatasetReference"}.
func referenceName(ref any) string {
	return copier.GetString(ref, "referenceName")
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	}
	return nil
}

// asInt converts a JSON number to an int. The boolean is false for non-numbers and fractions.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}
