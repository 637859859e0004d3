package constants

const (
	Name = "adfupgrade"

	DefaultFabricEndpoint = "https://api.fabric.microsoft.com/v1"
	DefaultHistoryDBName  = "history.db"
	DefaultExportTimeout  = "30m"

	// run ids are prefixed so they are recognisable in the history
	RunIdPrefix = "run_"

	CommandUpgrade = "upgrade"
	CommandExport  = "export"
	CommandResolve = "resolve"
)
