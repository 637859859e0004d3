package types

import (
	"fmt"
	"sort"
)

type PrintableResource interface {
	GetItems() any
	GetTable() (Table, error)
}

// PrintableProgress renders a progress document. The table form lists the alerts followed by a
// one line summary per result entry; json and yaml print the whole document.
type PrintableProgress struct {
	Progress *Progress
}

func NewPrintableProgress(p *Progress) PrintableProgress {
	return PrintableProgress{Progress: p}
}

func (p PrintableProgress) GetItems() any {
	return p.Progress
}

func (p PrintableProgress) GetTable() (Table, error) {
	var rows []TableRow
	rows = append(rows, TableRow{Cells: []any{"state", string(p.Progress.State), ""}})

	for _, a := range p.Progress.Alerts {
		rows = append(rows, TableRow{Cells: []any{"alert", a.Severity.String(), a.Details}})
	}

	if r := p.Progress.Result; r != nil {
		if r.ImportedResources != nil {
			for _, src := range r.ImportedResources.SourceResources() {
				rows = append(rows, TableRow{Cells: []any{"imported", src.Kind, src.Name}})
			}
		}
		for _, res := range r.ExportableFabricResources {
			rows = append(rows, TableRow{Cells: []any{"exportable", res.ResourceType, res.ResourceName}})
		}
		names := make([]string, 0, len(r.ExportedFabricResources))
		for name := range r.ExportedFabricResources {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			id := r.ExportedFabricResources[name]["id"]
			rows = append(rows, TableRow{Cells: []any{"exported", name, fmt.Sprintf("%v", id)}})
		}
	}

	for _, res := range p.Progress.Resolutions {
		rows = append(rows, TableRow{Cells: []any{"resolution", string(res.Type), res.Key}})
	}

	return Table{
		Rows:    rows,
		Columns: p.GetColumns(),
	}, nil
}

func (PrintableProgress) GetColumns() []TableColumnDefinition {
	return []TableColumnDefinition{
		{Name: "ENTRY", Type: "string", Description: "Which part of the progress document the row comes from"},
		{Name: "KIND", Type: "string", Description: "State, severity, resource type or resolution type"},
		{Name: "DETAIL", Type: "string", Description: "Alert details, resource name or resolution key"},
	}
}
