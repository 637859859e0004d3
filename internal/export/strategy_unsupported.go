package export

import (
	"context"

	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/types"
)

type unsupportedStrategy struct{}

func (s *unsupportedStrategy) PreCheck(r types.ExportableResource, check *PreCheck) {
	check.Unsupported(r)
}

func (s *unsupportedStrategy) Materialize(_ context.Context, r types.ExportableResource, _ map[string]any) (map[string]any, error) {
	return nil, perr.BadRequestWithMessage(r.ResourceType + " resources cannot be exported")
}
