// Package resolution holds the ordered list of (type, key) -> value bindings that close
// references the upgrader cannot resolve from the source documents alone.
package resolution

import (
	"github.com/turbot/adfupgrade/internal/types"
)

// Registry is an ordered sequence of resolutions. Lookup returns the first match, so a
// prepended entry shadows any later entry with the same (type, key).
type Registry struct {
	items []types.Resolution
}

func NewRegistry(initial ...types.Resolution) *Registry {
	r := &Registry{}
	r.items = append(r.items, initial...)
	return r
}

// Prepend adds caller supplied overrides ahead of everything already recorded.
func (r *Registry) Prepend(resolutions ...types.Resolution) {
	items := make([]types.Resolution, 0, len(resolutions)+len(r.items))
	items = append(items, resolutions...)
	r.items = append(items, r.items...)
}

// Append records resolutions discovered during the run.
func (r *Registry) Append(resolutions ...types.Resolution) {
	r.items = append(r.items, resolutions...)
}

func (r *Registry) Lookup(t types.ResolutionType, key string) (string, bool) {
	for _, item := range r.items {
		if item.Matches(t, key) {
			return item.Value, true
		}
	}
	return "", false
}

func (r *Registry) Has(t types.ResolutionType, key string) bool {
	_, ok := r.Lookup(t, key)
	return ok
}

// WorkspaceID is a convenience for the single workspace binding.
func (r *Registry) WorkspaceID() (string, bool) {
	return r.Lookup(types.ResolutionWorkspaceID, "")
}

func (r *Registry) Len() int {
	return len(r.items)
}

// Items returns a copy of the registry in lookup order.
func (r *Registry) Items() []types.Resolution {
	out := make([]types.Resolution, len(r.items))
	copy(out, r.items)
	return out
}
