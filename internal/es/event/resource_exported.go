package event

// ResourceExported is raised once a resource has been materialized and its id recorded.
type ResourceExported struct {
	Event        *Event `json:"event"`
	ResourceType string `json:"resource_type"`
	ResourceName string `json:"resource_name"`
	ID           string `json:"id"`
}

func (e *ResourceExported) GetEvent() *Event {
	return e.Event
}

func (e *ResourceExported) HandlerName() string {
	return HandlerResourceExported
}

func NewResourceExported(runID, resourceType, resourceName, id string) *ResourceExported {
	return &ResourceExported{
		Event:        NewEventForRunID(runID),
		ResourceType: resourceType,
		ResourceName: resourceName,
		ID:           id,
	}
}
