package export

import (
	"context"

	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/fabric"
	"github.com/turbot/adfupgrade/internal/types"
)

type scheduleStrategy struct {
	client fabric.Client
}

func NewScheduleStrategy(client fabric.Client) Strategy {
	return &scheduleStrategy{client: client}
}

func (s *scheduleStrategy) PreCheck(r types.ExportableResource, check *PreCheck) {
	requireWorkspace(r, check)
	if _, ok := r.Export["configuration"].(map[string]any); !ok {
		check.Permanent("%s '%s' has no schedule configuration", r.ResourceType, r.ResourceName)
	}
}

func (s *scheduleStrategy) Materialize(ctx context.Context, r types.ExportableResource, payload map[string]any) (map[string]any, error) {
	if id, _ := payload["itemId"].(string); id == "" {
		return nil, perr.BadRequestWithMessage("schedule has no pipeline to run")
	}
	return s.client.CreateOrUpdate(ctx, r.ResourceType, r.ResourceName, r.ResourceDescription, payload)
}
