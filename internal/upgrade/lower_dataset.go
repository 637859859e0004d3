package upgrade

import (
	"github.com/turbot/adfupgrade/internal/copier"
	"github.com/turbot/adfupgrade/internal/types"
)

const (
	AttrDatasetSettings   = "datasetSettings"
	AttrLinkedServiceName = "linkedServiceName"
)

// dataset types whose settings carry the database of their linked service
var sqlTableTypes = map[string]bool{
	"AzureSqlTable":   true,
	"AzureSqlDWTable": true,
	"SqlServerTable":  true,
	"AzureSqlMITable": true,
}

type datasetLowering struct{}

func (l *datasetLowering) Compile(g *Graph, e *Entity) {
	requireFields(g, e, "properties.type", "properties.linkedServiceName.referenceName")
}

func (l *datasetLowering) Link(g *Graph, e *Entity) {
	g.DependOn(e, types.KindLinkedService, copier.GetString(e.Source, "properties.linkedServiceName.referenceName"))
}

func (l *datasetLowering) Evaluate(g *Graph, e *Entity, attribute string, params Params) Symbol {
	switch attribute {
	case AttrLinkedServiceName:
		return Ready(copier.GetString(e.Source, "properties.linkedServiceName.referenceName"))
	case AttrDatasetSettings:
		return l.datasetSettings(g, e, params)
	case AttrExportResources:
		// datasets only exist inlined into the activities that use them
		return Ready([]types.ExportableResource{})
	}
	return unknownAttribute(g, e, attribute)
}

// effectiveParams overlays the assignment made by the caller on the declared parameter defaults.
func effectiveParams(e *Entity, assigned Params) map[string]any {
	out := map[string]any{}
	declared, _ := copier.Get(e.Source, "properties.parameters")
	for name, decl := range asMap(declared) {
		if def, found := copier.Get(decl, "defaultValue"); found {
			out[name] = def
		}
	}
	for name, v := range assigned {
		out[name] = v
	}
	return out
}

func (l *datasetLowering) datasetSettings(g *Graph, e *Entity, params Params) Symbol {
	c := copier.New(e.Source, nil, effectiveParams(e, params))
	for _, field := range []struct {
		from, to string
	}{
		{"properties.annotations", "annotations"},
		{"properties.type", "type"},
		{"properties.typeProperties", "typeProperties"},
		{"properties.schema", "schema"},
	} {
		if err := c.Copy(field.from, field.to, false); err != nil {
			g.Alerts.Permanent("%s: %s", e, err.Error())
			return Failed()
		}
	}

	if sqlTableTypes[copier.GetString(e.Source, "properties.type")] {
		ls, ok := g.Find(types.KindLinkedService, copier.GetString(e.Source, "properties.linkedServiceName.referenceName"))
		if !ok {
			g.Alerts.Permanent("%s references a linked service which does not exist", e)
			return Failed()
		}
		db := g.Symbol(ls, AttrDatabaseName, nil)
		if !db.IsReady() {
			return Failed()
		}
		if name, _ := db.Value.(string); name != "" {
			_ = c.Set("typeProperties.database", name)
		}
	}
	return Ready(c.Destination())
}
