package event

type ExportFinished struct {
	Event    *Event `json:"event"`
	State    string `json:"state"`
	Exported int    `json:"exported"`
	Alerts   int    `json:"alerts"`
}

func (e *ExportFinished) GetEvent() *Event {
	return e.Event
}

func (e *ExportFinished) HandlerName() string {
	return HandlerExportFinished
}

func NewExportFinished(runID, state string, exported, alerts int) *ExportFinished {
	return &ExportFinished{
		Event:    NewEventForRunID(runID),
		State:    state,
		Exported: exported,
		Alerts:   alerts,
	}
}
