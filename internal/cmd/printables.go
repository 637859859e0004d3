package cmd

import (
	"strings"
	"time"

	"github.com/turbot/adfupgrade/internal/store"
	"github.com/turbot/adfupgrade/internal/types"
)

type PlanStep struct {
	Rank      int      `json:"rank"`
	Kind      string   `json:"kind"`
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on,omitempty"`
}

type PrintablePlan struct {
	Steps []PlanStep
}

func (p *PrintablePlan) GetItems() any {
	return p.Steps
}

func (p *PrintablePlan) GetTable() (types.Table, error) {
	var rows []types.TableRow
	for _, s := range p.Steps {
		rows = append(rows, types.TableRow{Cells: []any{s.Rank, s.Kind, s.Name, strings.Join(s.DependsOn, ", ")}})
	}
	return types.Table{
		Rows: rows,
		Columns: []types.TableColumnDefinition{
			{Name: "RANK", Type: "integer", Description: "Resources in the same rank are independent of each other"},
			{Name: "KIND", Type: "string", Description: "Kind of the source resource"},
			{Name: "NAME", Type: "string", Description: "Name of the source resource"},
			{Name: "DEPENDS ON", Type: "string", Description: "Resources that must be upgraded first"},
		},
	}, nil
}

type PrintableRuns struct {
	Runs []store.Run
}

func (p *PrintableRuns) GetItems() any {
	return p.Runs
}

func (p *PrintableRuns) GetTable() (types.Table, error) {
	var rows []types.TableRow
	for _, r := range p.Runs {
		rows = append(rows, types.TableRow{Cells: []any{r.RunID, r.Command, string(r.State), r.Alerts, r.UpdatedAt.Format(time.RFC3339)}})
	}
	return types.Table{
		Rows: rows,
		Columns: []types.TableColumnDefinition{
			{Name: "RUN", Type: "string"},
			{Name: "COMMAND", Type: "string"},
			{Name: "STATE", Type: "string"},
			{Name: "ALERTS", Type: "integer"},
			{Name: "UPDATED", Type: "string"},
		},
	}, nil
}

type PrintableEvents struct {
	Events []store.EventRecord
}

func (p *PrintableEvents) GetItems() any {
	return p.Events
}

func (p *PrintableEvents) GetTable() (types.Table, error) {
	var rows []types.TableRow
	for _, e := range p.Events {
		rows = append(rows, types.TableRow{Cells: []any{e.CreatedAt.Format(time.RFC3339), e.Type, e.Data}})
	}
	return types.Table{
		Rows: rows,
		Columns: []types.TableColumnDefinition{
			{Name: "CREATED", Type: "string"},
			{Name: "TYPE", Type: "string"},
			{Name: "DATA", Type: "string"},
		},
	}, nil
}
