package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turbot/adfupgrade/internal/types"
)

func TestPrependShadowsOlderEntry(t *testing.T) {
	assert := assert.New(t)

	r := NewRegistry(types.Resolution{Type: types.ResolutionLinkedServiceToConn, Key: "x", Value: "old"})
	r.Prepend(types.Resolution{Type: types.ResolutionLinkedServiceToConn, Key: "x", Value: "new"})

	v, ok := r.Lookup(types.ResolutionLinkedServiceToConn, "x")
	assert.True(ok)
	assert.Equal("new", v)
	assert.Equal(2, r.Len())

	// the shadowed entry is still recorded
	items := r.Items()
	assert.Equal("new", items[0].Value)
	assert.Equal("old", items[1].Value)
}

func TestAppendDoesNotShadow(t *testing.T) {
	assert := assert.New(t)

	r := NewRegistry(types.Resolution{Type: types.ResolutionFabricResourceID, Key: "DataPipeline:p", Value: "first"})
	r.Append(types.Resolution{Type: types.ResolutionFabricResourceID, Key: "DataPipeline:p", Value: "second"})

	v, ok := r.Lookup(types.ResolutionFabricResourceID, "DataPipeline:p")
	assert.True(ok)
	assert.Equal("first", v)
}

func TestLookupDistinguishesTypeAndKey(t *testing.T) {
	assert := assert.New(t)

	r := NewRegistry(
		types.Resolution{Type: types.ResolutionWorkspaceID, Value: "ws-1"},
		types.Resolution{Type: types.ResolutionURLHostToConn, Key: "example.com", Value: "conn-web"},
	)

	_, ok := r.Lookup(types.ResolutionLinkedServiceToConn, "example.com")
	assert.False(ok)
	assert.False(r.Has(types.ResolutionURLHostToConn, "other.com"))

	ws, ok := r.WorkspaceID()
	assert.True(ok)
	assert.Equal("ws-1", ws)
}

func TestItemsIsACopy(t *testing.T) {
	r := NewRegistry(types.Resolution{Type: types.ResolutionWorkspaceID, Value: "ws-1"})
	items := r.Items()
	items[0].Value = "changed"

	v, _ := r.WorkspaceID()
	assert.Equal(t, "ws-1", v)
}
