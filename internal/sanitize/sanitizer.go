package sanitize

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

const redactedStr = "<redacted>"

type SanitizerOptions struct {
	// ExcludeFields is a list of fields to exclude from sanitization
	ExcludeFields []string
	// ExcludePatterns is a list of regexes - any capture groups are redacted
	ExcludePatterns []string
}

type Sanitizer struct {
	fields   map[string]struct{}
	patterns []*regexp.Regexp
}

func NewSanitizer(opts SanitizerOptions) *Sanitizer {
	s := &Sanitizer{fields: make(map[string]struct{}, len(opts.ExcludeFields))}

	// dedupe patterns using map
	var patterns = make(map[string]struct{}, len(opts.ExcludeFields)+len(opts.ExcludePatterns))

	// first convert exclude fields to regex patterns to exclude the fields from both JSON and YAML
	for _, f := range opts.ExcludeFields {
		s.fields[strings.ToLower(f)] = struct{}{}

		patterns[getExcludeFromJsonRegex(f)] = struct{}{}
		patterns[getExcludeFromYamlRegex(f)] = struct{}{}
		patterns[getExcludeFromConnectionStringRegex(f)] = struct{}{}
	}

	// add in custom patterns
	for _, p := range opts.ExcludePatterns {
		patterns[p] = struct{}{}
	}

	// sorted so that redaction is applied in a stable order
	keys := make([]string, 0, len(patterns))
	for p := range patterns {
		keys = append(keys, p)
	}
	sort.Strings(keys)

	for _, p := range keys {
		re, err := regexp.Compile(p)
		if err != nil {
			slog.Warn("Invalid regex pattern", slog.String("pattern", p), "error", err)
			continue
		}
		s.patterns = append(s.patterns, re)
	}
	return s
}

func getExcludeFromYamlRegex(fieldName string) string {
	return fmt.Sprintf(`(?i)%s:[ \t]*([^\s"][^\n]*)`, regexp.QuoteMeta(fieldName))
}

func getExcludeFromJsonRegex(fieldName string) string {
	return fmt.Sprintf(`(?i)"%s"\s*:\s*"([^"]+)"`, regexp.QuoteMeta(fieldName))
}

// connection strings carry secrets as "Password=...;" segments
func getExcludeFromConnectionStringRegex(fieldName string) string {
	return fmt.Sprintf(`(?i)\b%s\s*=\s*([^;"]+)`, regexp.QuoteMeta(fieldName))
}

// FieldExcluded reports whether values under the given key are always redacted.
func (s *Sanitizer) FieldExcluded(key string) bool {
	_, ok := s.fields[strings.ToLower(key)]
	return ok
}

// SanitizeKeyValue redacts v entirely when k is an excluded field, and otherwise redacts excluded
// fields found inside v.
func (s *Sanitizer) SanitizeKeyValue(k string, v any) any {
	if s.FieldExcluded(k) {
		return redactedStr
	}
	return s.Sanitize(v)
}

func (s *Sanitizer) Sanitize(v any) any {
	switch t := v.(type) {
	case string:
		return s.SanitizeString(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = s.SanitizeKeyValue(k, child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = s.Sanitize(child)
		}
		return out
	case error:
		return s.SanitizeString(t.Error())
	default:
		return v
	}
}

// SanitizeString replaces every capture group of every pattern match with the redaction marker.
func (s *Sanitizer) SanitizeString(v string) string {
	for _, re := range s.patterns {
		matches := re.FindAllStringSubmatchIndex(v, -1)
		if len(matches) == 0 {
			continue
		}

		var b strings.Builder
		last := 0
		for _, m := range matches {
			for i := 2; i+1 < len(m); i += 2 {
				start, end := m[i], m[i+1]
				if start < 0 || start < last || v[start:end] == redactedStr {
					continue
				}
				b.WriteString(v[last:start])
				b.WriteString(redactedStr)
				last = end
			}
		}
		b.WriteString(v[last:])
		v = b.String()
	}
	return v
}
