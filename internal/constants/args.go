package constants

const (
	ArgResolutions    = "resolutions"
	ArgWorkspaceId    = "workspace-id"
	ArgFabricEndpoint = "fabric-endpoint"
	ArgFabricToken    = "fabric-token"
	ArgHistoryDb      = "history-db"
	ArgNoHistory      = "no-history"
	ArgTimeout        = "timeout"
	ArgRetention      = "retention"
)
