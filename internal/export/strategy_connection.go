package export

import (
	"context"

	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/types"
)

// connectionStrategy stands in for a connection that already exists in Fabric. Nothing is
// created; the id supplied as a resolution is reported as the exported resource.
type connectionStrategy struct{}

func NewConnectionStrategy() Strategy {
	return &connectionStrategy{}
}

func (s *connectionStrategy) PreCheck(r types.ExportableResource, check *PreCheck) {}

func (s *connectionStrategy) Materialize(_ context.Context, r types.ExportableResource, payload map[string]any) (map[string]any, error) {
	id, _ := payload["id"].(string)
	if id == "" {
		return nil, perr.BadRequestWithMessage("connection id was not resolved")
	}
	return map[string]any{
		"type":        r.ResourceType,
		"id":          id,
		"displayName": r.ResourceName,
	}, nil
}
