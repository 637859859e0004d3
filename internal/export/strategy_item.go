package export

import (
	"context"

	"github.com/turbot/adfupgrade/internal/fabric"
	"github.com/turbot/adfupgrade/internal/types"
)

// itemStrategy creates workspace items, data pipelines in particular, through the client.
type itemStrategy struct {
	client fabric.Client
}

func NewItemStrategy(client fabric.Client) Strategy {
	return &itemStrategy{client: client}
}

func (s *itemStrategy) PreCheck(r types.ExportableResource, check *PreCheck) {
	requireWorkspace(r, check)
	if _, ok := r.Export["properties"]; !ok {
		check.Permanent("%s '%s' has no properties to export", r.ResourceType, r.ResourceName)
	}
}

func (s *itemStrategy) Materialize(ctx context.Context, r types.ExportableResource, payload map[string]any) (map[string]any, error) {
	return s.client.CreateOrUpdate(ctx, r.ResourceType, r.ResourceName, r.ResourceDescription, payload)
}
