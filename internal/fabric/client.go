// Package fabric materializes upgraded resources in a Microsoft Fabric workspace.
package fabric

import (
	"context"
)

// Client creates or updates one resource in the target workspace and returns the
// identifier-bearing document describing it. The document always carries an "id".
type Client interface {
	CreateOrUpdate(ctx context.Context, resourceType, name, description string, payload map[string]any) (map[string]any, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, resourceType, name, description string, payload map[string]any) (map[string]any, error)

func (f ClientFunc) CreateOrUpdate(ctx context.Context, resourceType, name, description string, payload map[string]any) (map[string]any, error) {
	return f(ctx, resourceType, name, description, payload)
}
