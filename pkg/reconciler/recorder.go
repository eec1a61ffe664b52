package reconciler

import (
	"github.com/moh-tz/hfrsync/pkg/locations"
)

// AnomalyKind classifies a data problem that was skipped rather than fixed.
type AnomalyKind string

// Anomaly kinds.
const (
	AnomalyTagMismatch   AnomalyKind = "tag_mismatch"
	AnomalyOrphan        AnomalyKind = "orphan"
	AnomalyCodeConflict  AnomalyKind = "code_conflict"
	AnomalyDuplicateCode AnomalyKind = "duplicate_code"
	AnomalyMissingParent AnomalyKind = "missing_parent"
	AnomalyMissingName   AnomalyKind = "missing_name"
	AnomalyParentCycle   AnomalyKind = "parent_cycle"
)

// Anomaly describes one skipped record or level.
type Anomaly struct {
	Kind       AnomalyKind   `json:"kind" yaml:"kind"`
	Code       string        `json:"code,omitempty" yaml:"code,omitempty"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	Tag        locations.Tag `json:"tag,omitempty" yaml:"tag,omitempty"`
	LocationID string        `json:"location_id,omitempty" yaml:"location_id,omitempty"`
	Detail     string        `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Recorder is notified of every registry change and anomaly.
type Recorder interface {
	Created(loc *locations.Location)
	Renamed(loc *locations.Location, from string)
	Reparented(loc *locations.Location, fromParentID string)
	Realigned(loc *locations.Location)
	Retagged(loc *locations.Location, added locations.Tag)
	Anomaly(a Anomaly)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) Created(*locations.Location)                 {}
func (NopRecorder) Renamed(*locations.Location, string)         {}
func (NopRecorder) Reparented(*locations.Location, string)      {}
func (NopRecorder) Realigned(*locations.Location)               {}
func (NopRecorder) Retagged(*locations.Location, locations.Tag) {}
func (NopRecorder) Anomaly(Anomaly)                             {}

// MultiRecorder fans out to several recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) Created(loc *locations.Location) {
	for _, r := range m {
		r.Created(loc)
	}
}

func (m MultiRecorder) Renamed(loc *locations.Location, from string) {
	for _, r := range m {
		r.Renamed(loc, from)
	}
}

func (m MultiRecorder) Reparented(loc *locations.Location, fromParentID string) {
	for _, r := range m {
		r.Reparented(loc, fromParentID)
	}
}

func (m MultiRecorder) Realigned(loc *locations.Location) {
	for _, r := range m {
		r.Realigned(loc)
	}
}

func (m MultiRecorder) Retagged(loc *locations.Location, added locations.Tag) {
	for _, r := range m {
		r.Retagged(loc, added)
	}
}

func (m MultiRecorder) Anomaly(a Anomaly) {
	for _, r := range m {
		r.Anomaly(a)
	}
}
