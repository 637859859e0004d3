package event

const (
	HandlerResourceExported = "handler.resource_exported"
	HandlerExportFinished   = "handler.export_finished"
)
