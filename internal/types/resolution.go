package types

import (
	"encoding/json"
	"fmt"
)

// ResolutionType is the closed set of reference kinds a Resolution can close.
type ResolutionType string

const (
	ResolutionWorkspaceID          ResolutionType = "WorkspaceId"
	ResolutionFabricResourceID     ResolutionType = "AdfResourceNameToFabricResourceId"
	ResolutionLinkedServiceToConn  ResolutionType = "LinkedServiceToConnectionId"
	ResolutionURLHostToConn        ResolutionType = "UrlHostToConnectionId"
	ResolutionCredentialConnection ResolutionType = "CredentialConnectionId"
)

var ResolutionTypes = []ResolutionType{
	ResolutionWorkspaceID,
	ResolutionFabricResourceID,
	ResolutionLinkedServiceToConn,
	ResolutionURLHostToConn,
	ResolutionCredentialConnection,
}

func (t ResolutionType) Valid() bool {
	for _, known := range ResolutionTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t *ResolutionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	rt := ResolutionType(s)
	if !rt.Valid() {
		return fmt.Errorf("unknown resolution type %q", s)
	}
	*t = rt
	return nil
}

// Resolution binds (type, key) to a concrete value.
type Resolution struct {
	Type  ResolutionType `json:"type" validate:"required,resolutiontype"`
	Key   string         `json:"key" validate:"required_unless=Type WorkspaceId"`
	Value string         `json:"value" validate:"required"`
}

func (r Resolution) Matches(t ResolutionType, key string) bool {
	return r.Type == t && r.Key == key
}

// FabricResourceKey is the registry key under which the id of a materialized resource is recorded.
func FabricResourceKey(resourceType, resourceName string) string {
	return resourceType + ":" + resourceName
}
