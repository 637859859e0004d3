// Package copier moves values between two JSON shaped documents by path.
//
// Paths are dot separated property names with optional array indexes, for example
// "properties.activities[2].typeProperties". A Copier reads from a source document and writes to
// the destination being built, replacing dataset parameter references with the values assigned by
// the caller.
package copier

import (
	"regexp"
)

var parameterReference = regexp.MustCompile(`^@\{?dataset\(\)\.([A-Za-z_][A-Za-z0-9_]*)\}?$`)

type Copier struct {
	source map[string]any
	dest   map[string]any
	params map[string]any
}

// New creates a copier. A nil destination starts a fresh document; params may be nil.
func New(source, dest map[string]any, params map[string]any) *Copier {
	if dest == nil {
		dest = map[string]any{}
	}
	return &Copier{source: source, dest: dest, params: params}
}

// Copy writes the value found at sourcePath to destPath. An explicit null is written as null. A
// missing source value leaves the destination untouched unless copyIfNull is set, in which case
// null is written.
func (c *Copier) Copy(sourcePath, destPath string, copyIfNull bool) error {
	v, found := Get(c.source, sourcePath)
	if !found {
		if !copyIfNull {
			return nil
		}
		return SetPath(c.dest, destPath, nil)
	}
	if v == nil {
		return SetPath(c.dest, destPath, nil)
	}
	return SetPath(c.dest, destPath, c.Substitute(v))
}

// Set writes value at destPath, substituting parameter references.
func (c *Copier) Set(destPath string, value any) error {
	return SetPath(c.dest, destPath, c.Substitute(value))
}

func (c *Copier) Destination() map[string]any {
	return c.dest
}

// Substitute returns a copy of v with every parameter reference replaced by its assigned value.
// References to parameters that were not assigned are kept as they are.
func (c *Copier) Substitute(v any) any {
	v = DeepCopy(v)
	if len(c.params) == 0 {
		return v
	}
	return substitute(v, c.params)
}

func substitute(v any, params map[string]any) any {
	if name, ok := ParameterName(v); ok {
		if assigned, ok := params[name]; ok {
			return DeepCopy(assigned)
		}
		return v
	}

	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = substitute(child, params)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = substitute(child, params)
		}
		return t
	}
	return v
}

// ParameterName reports whether v is a dataset parameter reference and, if so, which parameter.
// Both the bare expression string and the {"type": "Expression", "value": ...} object are accepted.
func ParameterName(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if m := parameterReference.FindStringSubmatch(t); m != nil {
			return m[1], true
		}
	case map[string]any:
		if len(t) != 2 || t["type"] != "Expression" {
			return "", false
		}
		if s, ok := t["value"].(string); ok {
			return ParameterName(s)
		}
	}
	return "", false
}
