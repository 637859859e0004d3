package util

import (
	"github.com/rs/xid"

	"github.com/turbot/adfupgrade/internal/constants"
)

func NewUniqueId() string {
	return xid.New().String()
}

func NewRunId() string {
	return constants.RunIdPrefix + NewUniqueId()
}
