// Package hfrsync keeps an OpenMRS location registry aligned with the
// Health Facility Registry (HFR) and the administrative hierarchy feeds.
//
// A run lists the whole registry into an in-memory index, then walks the
// facility feed, the hierarchy feed and the hamlet CSV, creating missing
// locations and healing drift in names and parents. Every lookup goes by
// code, so repeating a run over unchanged upstream data makes no writes.
//
// Example usage:
//
//	reg := registry.NewHTTPClient(registry.Config{BaseURL: url, User: u, Password: p})
//	feeds := hfr.NewClient(hfr.Config{FacilitiesURL: f, HierarchyURL: h})
//
//	c, err := hfrsync.New(reg, feeds,
//	    hfrsync.WithAttributeTypes(reconciler.AttributeTypes{Code: code, FacilityCode: hfrCode}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c.OnLocationCreated(func(loc *locations.Location) {
//	    log.Printf("created %s", loc.Name)
//	})
//
//	result, err := c.Sync(ctx, sync.WithFeeds(sync.FeedFacility))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package hfrsync

import (
	"context"
	stdsync "sync"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/hfr"
	"github.com/moh-tz/hfrsync/pkg/index"
	"github.com/moh-tz/hfrsync/pkg/logging"
	"github.com/moh-tz/hfrsync/pkg/registry"
	"github.com/moh-tz/hfrsync/pkg/sync"
)

// Feeds fetches single pages of the paginated upstream feeds.
type Feeds interface {
	Facilities(ctx context.Context, page int) (*hfr.Page, error)
	Hierarchy(ctx context.Context, page int) (*hfr.Page, error)
}

var _ Feeds = (*hfr.Client)(nil)

// Client runs reconciliation against one registry.
type Client interface {
	// Sync runs the selected feeds against a fresh registry index.
	Sync(ctx context.Context, opts ...sync.Option) (*sync.Result, error)

	// Index lists the registry into a new index.
	Index(ctx context.Context) (*index.Index, []index.Duplicate, error)

	// OnLocationCreated registers a callback for created locations
	OnLocationCreated(LocationCreatedHook)

	// OnLocationChanged registers a callback for renamed, reparented, realigned or retagged locations
	OnLocationChanged(LocationChangedHook)

	// OnAnomaly registers a callback for skipped records and levels
	OnAnomaly(AnomalyHook)
}

// client is the internal implementation of the Client interface
type client struct {
	mu       stdsync.Mutex // one run at a time
	registry registry.Client
	feeds    Feeds
	config   *config
	hooks    *hooks
}

// New creates a Client writing to reg and reading from feeds.
func New(reg registry.Client, feeds Feeds, opts ...Option) (Client, error) {
	if reg == nil {
		return nil, &errors.ValidationError{Field: "registry", Message: "cannot be nil"}
	}
	if feeds == nil {
		return nil, &errors.ValidationError{Field: "feeds", Message: "cannot be nil"}
	}

	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &client{
		registry: reg,
		feeds:    feeds,
		config:   cfg,
		hooks:    newHooks(),
	}, nil
}

// Index lists the registry into a new index. Locations whose code was
// already claimed are returned as duplicates.
func (c *client) Index(ctx context.Context) (*index.Index, []index.Duplicate, error) {
	logger := logging.FromContext(ctx)

	locs, err := c.registry.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	idx := index.New()
	dups := idx.IndexAll(locs)
	logger.Info().
		Int("locations", idx.Len()).
		Int("codes", idx.Codes()).
		Int("duplicates", len(dups)).
		Msg("Registry indexed")
	return idx, dups, nil
}
