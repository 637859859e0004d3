package copier

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func source() map[string]any {
	return map[string]any{
		"properties": map[string]any{
			"type":        "DelimitedText",
			"description": nil,
			"typeProperties": map[string]any{
				"location": map[string]any{
					"container": "raw",
					"fileName":  map[string]any{"type": "Expression", "value": "@dataset().fileName"},
					"folder":    "@{dataset().folder}",
				},
			},
			"annotations": []any{"a", "b"},
		},
	}
}

func TestCopyExistingValue(t *testing.T) {
	c := New(source(), nil, nil)
	require.NoError(t, c.Copy("properties.type", "type", false))
	assert.Equal(t, map[string]any{"type": "DelimitedText"}, c.Destination())
}

func TestCopyMissingAndNull(t *testing.T) {
	assert := assert.New(t)

	// without copyIfNull a missing value is skipped but an explicit null is still written
	c := New(source(), map[string]any{"keep": 1}, nil)
	require.NoError(t, c.Copy("properties.missing", "missing", false))
	require.NoError(t, c.Copy("properties.description", "description", false))
	_, found := Get(c.Destination(), "missing")
	assert.False(found)
	v, found := Get(c.Destination(), "description")
	assert.True(found)
	assert.Nil(v)

	// with copyIfNull both are written as null
	c = New(source(), map[string]any{"keep": 1}, nil)
	require.NoError(t, c.Copy("properties.missing", "missing", true))
	require.NoError(t, c.Copy("properties.description", "description", true))
	v, found = Get(c.Destination(), "missing")
	assert.True(found)
	assert.Nil(v)
	v, found = Get(c.Destination(), "description")
	assert.True(found)
	assert.Nil(v)
	assert.Equal(1, c.Destination()["keep"])
}

func TestCopyExplicitNullOverwrites(t *testing.T) {
	c := New(map[string]any{"a": nil}, map[string]any{"a": "old"}, nil)
	require.NoError(t, c.Copy("a", "a", false))
	v, found := Get(c.Destination(), "a")
	assert.True(t, found)
	assert.Nil(t, v)
}

func TestGetDistinguishesMissingFromNull(t *testing.T) {
	doc := source()
	v, found := Get(doc, "properties.description")
	assert.True(t, found)
	assert.Nil(t, v)

	_, found = Get(doc, "properties.nothing")
	assert.False(t, found)

	v, found = Get(doc, "properties.annotations[1]")
	assert.True(t, found)
	assert.Equal(t, "b", v)

	_, found = Get(doc, "properties.annotations[5]")
	assert.False(t, found)
}

func TestCopyCreatesIntermediateNodes(t *testing.T) {
	c := New(source(), nil, nil)
	require.NoError(t, c.Copy("properties.annotations", "a.b[2].c", false))

	want := map[string]any{
		"a": map[string]any{
			"b": []any{nil, nil, map[string]any{"c": []any{"a", "b"}}},
		},
	}
	if diff := cmp.Diff(want, c.Destination()); diff != "" {
		t.Errorf("unexpected destination (-want +got):\n%s", diff)
	}
}

func TestCopySubstitutesParameters(t *testing.T) {
	src := source()
	c := New(src, nil, map[string]any{
		"fileName": "input.csv",
		"folder":   map[string]any{"type": "Expression", "value": "@pipeline().parameters.folder"},
	})
	require.NoError(t, c.Copy("properties.typeProperties", "typeProperties", false))

	want := map[string]any{
		"typeProperties": map[string]any{
			"location": map[string]any{
				"container": "raw",
				"fileName":  "input.csv",
				"folder":    map[string]any{"type": "Expression", "value": "@pipeline().parameters.folder"},
			},
		},
	}
	if diff := cmp.Diff(want, c.Destination()); diff != "" {
		t.Errorf("unexpected destination (-want +got):\n%s", diff)
	}

	// the source document is never modified
	fileName, _ := Get(src, "properties.typeProperties.location.fileName")
	assert.Equal(t, map[string]any{"type": "Expression", "value": "@dataset().fileName"}, fileName)
}

func TestUnassignedParameterIsKept(t *testing.T) {
	c := New(source(), nil, map[string]any{"other": 1})
	require.NoError(t, c.Copy("properties.typeProperties.location.folder", "folder", false))
	assert.Equal(t, "@{dataset().folder}", c.Destination()["folder"])
}

func TestSetOverwritesAndSubstitutes(t *testing.T) {
	c := New(nil, map[string]any{"x": map[string]any{"y": 1}}, map[string]any{"p": "v"})
	require.NoError(t, c.Set("x.y", "@dataset().p"))
	assert.Equal(t, "v", GetString(c.Destination(), "x.y"))
}

func TestSetPathErrors(t *testing.T) {
	doc := map[string]any{"s": "scalar", "arr": []any{1}}

	assert.Error(t, SetPath(doc, "", 1))
	assert.Error(t, SetPath(doc, "s.child", 1))
	assert.Error(t, SetPath(doc, "arr.child", 1))
	assert.Error(t, SetPath(doc, "a[x]", 1))
	assert.Error(t, SetPath(doc, "a[1", 1))
}

func TestParameterName(t *testing.T) {
	tests := []struct {
		in   any
		name string
		ok   bool
	}{
		{"@dataset().table", "table", true},
		{"@{dataset().table}", "table", true},
		{map[string]any{"type": "Expression", "value": "@dataset().schema"}, "schema", true},
		{"@concat(dataset().table, 'x')", "", false},
		{"@pipeline().parameters.table", "", false},
		{map[string]any{"type": "Expression", "value": "@dataset().a", "extra": 1}, "", false},
		{42, "", false},
	}
	for _, tt := range tests {
		name, ok := ParameterName(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.name, name, "%v", tt.in)
	}
}
