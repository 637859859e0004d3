package copier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turbot/pipe-fittings/perr"
)

type segment struct {
	key     string
	index   int
	isIndex bool
}

func (s segment) String() string {
	if s.isIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.key
}

// parsePath splits "a.b[0].c" into its segments.
func parsePath(path string) ([]segment, error) {
	if path == "" {
		return nil, perr.BadRequestWithMessage("empty document path")
	}

	var segs []segment
	for _, part := range strings.Split(path, ".") {
		name := part
		var indexes []int
		if open := strings.IndexByte(part, '['); open >= 0 {
			name = part[:open]
			rest := part[open:]
			for rest != "" {
				if rest[0] != '[' {
					return nil, perr.BadRequestWithMessage("malformed document path " + path)
				}
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					return nil, perr.BadRequestWithMessage("malformed document path " + path)
				}
				n, err := strconv.Atoi(rest[1:end])
				if err != nil || n < 0 {
					return nil, perr.BadRequestWithMessage("malformed array index in document path " + path)
				}
				indexes = append(indexes, n)
				rest = rest[end+1:]
			}
		}
		if name == "" && len(indexes) == 0 {
			return nil, perr.BadRequestWithMessage("malformed document path " + path)
		}
		if name != "" {
			segs = append(segs, segment{key: name})
		}
		for _, n := range indexes {
			segs = append(segs, segment{index: n, isIndex: true})
		}
	}
	return segs, nil
}

// Get reads the value at path. The boolean distinguishes a missing value from an explicit null.
func Get(doc any, path string) (any, bool) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, false
	}

	node := doc
	for _, s := range segs {
		if s.isIndex {
			arr, ok := node.([]any)
			if !ok || s.index >= len(arr) {
				return nil, false
			}
			node = arr[s.index]
			continue
		}
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		v, exists := m[s.key]
		if !exists {
			return nil, false
		}
		node = v
	}
	return node, true
}

// GetString returns the string at path, or "" when missing or not a string.
func GetString(doc any, path string) string {
	v, _ := Get(doc, path)
	s, _ := v.(string)
	return s
}

// SetPath writes value at path inside doc, creating intermediate objects and arrays.
func SetPath(doc map[string]any, path string, value any) error {
	segs, err := parsePath(path)
	if err != nil {
		return err
	}
	if segs[0].isIndex {
		return perr.BadRequestWithMessage("document path must start with a property name: " + path)
	}
	_, err = setIn(doc, segs, value, path)
	return err
}

func setIn(node any, segs []segment, value any, path string) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	s := segs[0]

	if s.isIndex {
		arr, ok := node.([]any)
		if node == nil {
			ok = true
		}
		if !ok {
			return nil, perr.BadRequestWithMessage(fmt.Sprintf("segment %s of %s does not address an array", s, path))
		}
		for len(arr) <= s.index {
			arr = append(arr, nil)
		}
		child, err := setIn(arr[s.index], segs[1:], value, path)
		if err != nil {
			return nil, err
		}
		arr[s.index] = child
		return arr, nil
	}

	m, ok := node.(map[string]any)
	if node == nil {
		m, ok = map[string]any{}, true
	}
	if !ok {
		return nil, perr.BadRequestWithMessage(fmt.Sprintf("segment %s of %s does not address an object", s, path))
	}
	child, err := setIn(m[s.key], segs[1:], value, path)
	if err != nil {
		return nil, err
	}
	m[s.key] = child
	return m, nil
}

// DeepCopy clones JSON shaped values so that writes to the copy never alias the source.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = DeepCopy(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = DeepCopy(child)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = DeepCopy(child)
		}
		return out
	default:
		return v
	}
}
