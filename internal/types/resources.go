package types

import (
	"sort"
)

// Source resource kinds yielded by the importer.
const (
	KindLinkedService = "linkedService"
	KindDataset       = "dataset"
	KindPipeline      = "pipeline"
	KindTrigger       = "trigger"
	KindDataflow      = "dataflow"
)

// Target resource types.
const (
	FabricDataPipeline     = "DataPipeline"
	FabricConnection       = "Connection"
	FabricPipelineSchedule = "PipelineSchedule"
)

const ImportedResourcesType = "AdfSupportFile"

// ImportedResources is the result of importing an ADF support file.
type ImportedResources struct {
	Type           string                    `json:"type" validate:"required,eq=AdfSupportFile"`
	AdfName        string                    `json:"adfName,omitempty"`
	Pipelines      map[string]map[string]any `json:"pipelines,omitempty"`
	Datasets       map[string]map[string]any `json:"datasets,omitempty"`
	LinkedServices map[string]map[string]any `json:"linkedServices,omitempty"`
	Triggers       map[string]map[string]any `json:"triggers,omitempty"`
	Dataflows      map[string]map[string]any `json:"dataflows,omitempty"`
}

// SourceResource is one (kind, name, document) tuple handed to the upgrader.
type SourceResource struct {
	Kind     string
	Name     string
	Document map[string]any
}

// SourceResources flattens the imported documents in a fixed kind order, names sorted,
// so that graph construction is deterministic.
func (r *ImportedResources) SourceResources() []SourceResource {
	if r == nil {
		return nil
	}
	groups := []struct {
		kind string
		docs map[string]map[string]any
	}{
		{KindLinkedService, r.LinkedServices},
		{KindDataset, r.Datasets},
		{KindPipeline, r.Pipelines},
		{KindTrigger, r.Triggers},
		{KindDataflow, r.Dataflows},
	}

	var out []SourceResource
	for _, g := range groups {
		names := make([]string, 0, len(g.docs))
		for name := range g.docs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, SourceResource{Kind: g.kind, Name: name, Document: g.docs[name]})
		}
	}
	return out
}

// ResolveStep names a value that must be spliced into a resource payload before export.
type ResolveStep struct {
	Type       ResolutionType `json:"type" validate:"required,resolutiontype"`
	Key        string         `json:"key"`
	Hint       string         `json:"hint,omitempty"`
	TargetPath string         `json:"targetPath" validate:"required"`
}

// ExportableResource is a target-schema resource description produced by the upgrade stage.
type ExportableResource struct {
	ResourceType        string         `json:"resourceType" validate:"required"`
	ResourceName        string         `json:"resourceName" validate:"required"`
	ResourceDescription string         `json:"resourceDescription,omitempty"`
	Resolve             []ResolveStep  `json:"resolve,omitempty" validate:"dive"`
	Export              map[string]any `json:"export"`
}

func (r ExportableResource) Key() string {
	return FabricResourceKey(r.ResourceType, r.ResourceName)
}
