package upgrade

import (
	"fmt"
	"strings"

	"github.com/turbot/adfupgrade/internal/copier"
	"github.com/turbot/adfupgrade/internal/types"
)

const (
	AttrDatabaseName          = "databaseName"
	AttrConnectionResolveStep = "connectionResolveStep"
)

// connection string keys naming the database, compared case-insensitively
var databaseKeys = []string{"initial catalog", "database"}

type linkedServiceLowering struct{}

func (l *linkedServiceLowering) Compile(g *Graph, e *Entity) {
	requireFields(g, e, "properties.type")
}

func (l *linkedServiceLowering) Link(g *Graph, e *Entity) {}

func (l *linkedServiceLowering) Evaluate(g *Graph, e *Entity, attribute string, params Params) Symbol {
	switch attribute {
	case AttrDatabaseName:
		return l.databaseName(g, e)
	case AttrConnectionResolveStep:
		return Ready(types.ResolveStep{
			Type: types.ResolutionFabricResourceID,
			Key:  types.FabricResourceKey(types.FabricConnection, e.Name),
			Hint: fmt.Sprintf("the Fabric connection standing in for linked service '%s'", e.Name),
		})
	case AttrExportResources:
		return l.exportResources(e)
	}
	return unknownAttribute(g, e, attribute)
}

func (l *linkedServiceLowering) databaseName(g *Graph, e *Entity) Symbol {
	if db := copier.GetString(e.Source, "properties.typeProperties.database"); db != "" {
		return Ready(db)
	}

	cs, _ := copier.Get(e.Source, "properties.typeProperties.connectionString")
	// secure strings wrap the literal value
	if m := asMap(cs); m != nil {
		cs = m["value"]
	}
	if s, ok := cs.(string); ok {
		if db := databaseFromConnectionString(s); db != "" {
			return Ready(db)
		}
	}

	g.Alerts.Warning("could not determine the database name of %s", e)
	return Ready("")
}

func databaseFromConnectionString(cs string) string {
	for _, part := range strings.Split(cs, ";") {
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		for _, want := range databaseKeys {
			if k == want {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

func (l *linkedServiceLowering) exportResources(e *Entity) Symbol {
	description := copier.GetString(e.Source, "properties.description")
	c := copier.New(e.Source, nil, nil)
	_ = c.Set("id", nil)
	_ = c.Copy("properties.type", "adfType", false)
	_ = c.Copy("properties.description", "description", false)

	return Ready([]types.ExportableResource{{
		ResourceType:        types.FabricConnection,
		ResourceName:        e.Name,
		ResourceDescription: description,
		Resolve: []types.ResolveStep{{
			Type:       types.ResolutionLinkedServiceToConn,
			Key:        e.Name,
			Hint:       fmt.Sprintf("create a Fabric connection equivalent to linked service '%s' and supply its id", e.Name),
			TargetPath: "id",
		}},
		Export: c.Destination(),
	}})
}
