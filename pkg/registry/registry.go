// Package registry talks to the canonical location registry (an OpenMRS
// instance) over its REST API.
package registry

import (
	"context"

	"github.com/moh-tz/hfrsync/pkg/locations"
)

// NewLocation describes a location to create.
type NewLocation struct {
	Name     string
	ParentID string
	Tags     []locations.Tag
	// Attributes maps attribute type uuid to value.
	Attributes map[string]string
}

// Client is the set of registry operations the reconciler depends on.
//
//go:generate mockgen -source=registry.go -destination=mocks/mock_client.go -package=mocks Client
type Client interface {
	// List returns every location in the registry.
	List(ctx context.Context) ([]*locations.Location, error)
	// Create creates a location and returns its registry id.
	Create(ctx context.Context, loc NewLocation) (string, error)
	Rename(ctx context.Context, id, name string) error
	Reparent(ctx context.Context, id, parentID string) error
	// SetAttribute updates the location's attribute of the given type,
	// creating it when the location has none.
	SetAttribute(ctx context.Context, id, attributeType, value string) error
	// Retag replaces the location's tag set.
	Retag(ctx context.Context, id string, tags []locations.Tag) error
}
