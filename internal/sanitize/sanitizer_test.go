package sanitize

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_SanitizeString(t *testing.T) {

	tests := []struct {
		name  string
		opts  SanitizerOptions
		input string
		want  string
	}{
		{
			name: "json field",
			opts: SanitizerOptions{
				ExcludeFields: []string{"password"},
			},
			input: `{"password":"foo"}`,
			want:  `{"password":"` + redactedStr + `"}`,
		},
		{
			name: "yaml field",
			opts: SanitizerOptions{
				ExcludeFields: []string{"password"},
			},
			input: "user: admin\npassword: pass\n",
			want:  "user: admin\npassword: " + redactedStr + "\n",
		},
		{
			name: "connection string segment",
			opts: SanitizerOptions{
				ExcludeFields: []string{"password"},
			},
			input: "Server=tcp:db;Initial Catalog=sales;Password=s3cret;Encrypt=True",
			want:  "Server=tcp:db;Initial Catalog=sales;Password=" + redactedStr + ";Encrypt=True",
		},
		{
			name: "multiple capture groups",
			opts: SanitizerOptions{
				ExcludePatterns: []string{`user=(\S+) key=(\S+)`},
			},
			input: "user=bob key=abc",
			want:  fmt.Sprintf("user=%s key=%s", redactedStr, redactedStr),
		},
		{
			name: "no capture groups",
			opts: SanitizerOptions{
				ExcludePatterns: []string{`key=\S+`},
			},
			input: "key=abc",
			want:  "key=abc",
		},
		{
			name: "case insensitive field",
			opts: SanitizerOptions{
				ExcludeFields: []string{"connectionString"},
			},
			input: `{"ConnectionString":"Server=x"}`,
			want:  `{"ConnectionString":"` + redactedStr + `"}`,
		},
		{
			name:  "nothing to redact",
			opts:  SanitizerOptions{ExcludeFields: []string{"password"}},
			input: `{"name":"orders"}`,
			want:  `{"name":"orders"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSanitizer(tt.opts)
			if got := s.SanitizeString(tt.input); got != tt.want {
				t.Errorf("SanitizeString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSanitizer_SanitizeKeyValue(t *testing.T) {
	assert := assert.New(t)
	s := NewSanitizer(SanitizerOptions{ExcludeFields: []string{"password", "connectionString"}})

	assert.Equal(redactedStr, s.SanitizeKeyValue("Password", "foo"))
	assert.Equal("orders", s.SanitizeKeyValue("name", "orders"))
	assert.Equal(42, s.SanitizeKeyValue("count", 42))

	nested := map[string]any{
		"name": "sql",
		"typeProperties": map[string]any{
			"connectionString": "Server=x",
			"servers":          []any{map[string]any{"password": "p"}, "plain"},
		},
	}
	assert.Equal(map[string]any{
		"name": "sql",
		"typeProperties": map[string]any{
			"connectionString": redactedStr,
			"servers":          []any{map[string]any{"password": redactedStr}, "plain"},
		},
	}, s.SanitizeKeyValue("doc", nested))

	// the input is left untouched
	assert.Equal("Server=x", nested["typeProperties"].(map[string]any)["connectionString"])

	assert.Equal("dial failed: Password="+redactedStr, s.Sanitize(errors.New("dial failed: Password=p")))
}

func TestSanitizeLogEntries(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(SanitizeLogEntries([]any{"odd"}))
	assert.Equal([]any{"token", redactedStr, "name", "a"}, SanitizeLogEntries([]any{"token", "abc", "name", "a"}))
}

func TestNullSanitizer(t *testing.T) {
	assert.Equal(t, `{"password":"foo"}`, NullSanitizer.SanitizeString(`{"password":"foo"}`))
}
