package hfrsync

import (
	stdsync "sync"

	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

// Change names the kind of update applied to an existing location.
type Change string

// Changes reported to LocationChangedHook.
const (
	ChangeRenamed    Change = "renamed"
	ChangeReparented Change = "reparented"
	ChangeRealigned  Change = "realigned"
	ChangeRetagged   Change = "retagged"
)

// Hook function types for location events
type (
	// LocationCreatedHook is called when a location is created in the registry
	LocationCreatedHook func(loc *locations.Location)

	// LocationChangedHook is called when an existing location is updated
	LocationChangedHook func(loc *locations.Location, change Change)

	// AnomalyHook is called when a record or level is skipped
	AnomalyHook func(a reconciler.Anomaly)
)

// hooks manages event callbacks and adapts them to reconciler.Recorder
type hooks struct {
	mu        stdsync.RWMutex
	onCreated []LocationCreatedHook
	onChanged []LocationChangedHook
	onAnomaly []AnomalyHook
}

var _ reconciler.Recorder = (*hooks)(nil)

func newHooks() *hooks {
	return &hooks{}
}

// OnLocationCreated registers a callback for created locations
func (c *client) OnLocationCreated(fn LocationCreatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onCreated = append(c.hooks.onCreated, fn)
}

// OnLocationChanged registers a callback for updated locations
func (c *client) OnLocationChanged(fn LocationChangedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onChanged = append(c.hooks.onChanged, fn)
}

// OnAnomaly registers a callback for skipped records and levels
func (c *client) OnAnomaly(fn AnomalyHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onAnomaly = append(c.hooks.onAnomaly, fn)
}

func (h *hooks) Created(loc *locations.Location) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onCreated {
		fn(loc)
	}
}

func (h *hooks) changed(loc *locations.Location, change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onChanged {
		fn(loc, change)
	}
}

func (h *hooks) Renamed(loc *locations.Location, _ string)    { h.changed(loc, ChangeRenamed) }
func (h *hooks) Reparented(loc *locations.Location, _ string) { h.changed(loc, ChangeReparented) }
func (h *hooks) Realigned(loc *locations.Location)            { h.changed(loc, ChangeRealigned) }

func (h *hooks) Retagged(loc *locations.Location, _ locations.Tag) {
	h.changed(loc, ChangeRetagged)
}

func (h *hooks) Anomaly(a reconciler.Anomaly) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onAnomaly {
		fn(a)
	}
}
