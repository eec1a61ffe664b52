package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

// Result represents the complete result of a sync run.
type Result struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Started  time.Time     `json:"started" yaml:"started"`
	Finished time.Time     `json:"finished" yaml:"finished"`
	Feeds    []*FeedResult `json:"feeds" yaml:"feeds"`

	// Registry state at the start of the run
	Locations  int `json:"locations" yaml:"locations"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
}

// Changes counts the registry writes of a feed.
type Changes struct {
	Created    int `json:"created" yaml:"created"`
	Renamed    int `json:"renamed" yaml:"renamed"`
	Reparented int `json:"reparented" yaml:"reparented"`
	Realigned  int `json:"realigned" yaml:"realigned"`
	Retagged   int `json:"retagged" yaml:"retagged"`
}

// Total returns the number of location writes.
func (c Changes) Total() int {
	return c.Created + c.Renamed + c.Reparented + c.Realigned + c.Retagged
}

// FeedResult collects what one feed changed and what it could not.
// It implements reconciler.Recorder and is not safe for concurrent use.
type FeedResult struct {
	Feed     string        `json:"feed" yaml:"feed"`
	Pages    int           `json:"pages" yaml:"pages"`
	Records  int           `json:"records" yaml:"records"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Changes  Changes       `json:"changes" yaml:"changes"`

	Anomalies []reconciler.Anomaly `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	Errors    []string             `json:"errors,omitempty" yaml:"errors,omitempty"`
	Aborted   bool                 `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	Skipped   bool                 `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	errs []error
}

var _ reconciler.Recorder = (*FeedResult)(nil)

// NewFeedResult returns an empty result for feed.
func NewFeedResult(feed string) *FeedResult {
	return &FeedResult{Feed: feed}
}

func (f *FeedResult) Created(*locations.Location)            { f.Changes.Created++ }
func (f *FeedResult) Renamed(*locations.Location, string)    { f.Changes.Renamed++ }
func (f *FeedResult) Reparented(*locations.Location, string) { f.Changes.Reparented++ }
func (f *FeedResult) Realigned(*locations.Location)          { f.Changes.Realigned++ }

func (f *FeedResult) Retagged(*locations.Location, locations.Tag) { f.Changes.Retagged++ }

// Anomaly implements reconciler.Recorder.
func (f *FeedResult) Anomaly(a reconciler.Anomaly) {
	f.Anomalies = append(f.Anomalies, a)
}

// AddErrors records record-level failures. Nil entries are ignored.
func (f *FeedResult) AddErrors(errs ...error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		f.errs = append(f.errs, err)
		f.Errors = append(f.Errors, err.Error())
	}
}

// Err returns every recorded failure joined, or nil.
func (f *FeedResult) Err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return joinErrors(f.errs)
}

// HasErrors reports whether the feed aborted or had failed records.
func (f *FeedResult) HasErrors() bool {
	return f.Aborted || len(f.Errors) > 0
}

// AnomalyCount returns how many anomalies of kind were recorded.
func (f *FeedResult) AnomalyCount(kind reconciler.AnomalyKind) int {
	n := 0
	for _, a := range f.Anomalies {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Summary returns a one-line summary of the feed.
func (f *FeedResult) Summary() string {
	if f.Skipped {
		return fmt.Sprintf("%s: skipped", f.Feed)
	}
	parts := []string{
		fmt.Sprintf("%d records", f.Records),
		fmt.Sprintf("%d created", f.Changes.Created),
		fmt.Sprintf("%d renamed", f.Changes.Renamed),
		fmt.Sprintf("%d reparented", f.Changes.Reparented),
	}
	if f.Changes.Realigned > 0 {
		parts = append(parts, fmt.Sprintf("%d realigned", f.Changes.Realigned))
	}
	if f.Changes.Retagged > 0 {
		parts = append(parts, fmt.Sprintf("%d retagged", f.Changes.Retagged))
	}
	if len(f.Anomalies) > 0 {
		parts = append(parts, fmt.Sprintf("%d anomalies", len(f.Anomalies)))
	}
	if len(f.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", len(f.Errors)))
	}
	line := fmt.Sprintf("%s: %s", f.Feed, strings.Join(parts, ", "))
	if f.Aborted {
		line += " (aborted)"
	}
	return line
}

// Feed returns the result for the named feed, or nil.
func (r *Result) Feed(name string) *FeedResult {
	for _, f := range r.Feeds {
		if f.Feed == name {
			return f
		}
	}
	return nil
}

// Changes returns the write counts summed over every feed.
func (r *Result) Changes() Changes {
	var total Changes
	for _, f := range r.Feeds {
		total.Created += f.Changes.Created
		total.Renamed += f.Changes.Renamed
		total.Reparented += f.Changes.Reparented
		total.Realigned += f.Changes.Realigned
		total.Retagged += f.Changes.Retagged
	}
	return total
}

// Anomalies returns how many anomalies were recorded across every feed.
func (r *Result) Anomalies() int {
	n := 0
	for _, f := range r.Feeds {
		n += len(f.Anomalies)
	}
	return n
}

// HasErrors reports whether any feed aborted or failed records.
func (r *Result) HasErrors() bool {
	for _, f := range r.Feeds {
		if f.HasErrors() {
			return true
		}
	}
	return false
}

// Err joins the failures of every feed, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.Feeds {
		if err := f.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return joinErrors(errs)
}

// Duration returns the wall time of the run.
func (r *Result) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var b strings.Builder
	c := r.Changes()
	fmt.Fprintf(&b, "Sync %s: %d writes, %d anomalies across %d feeds in %s",
		r.RunID, c.Total(), r.Anomalies(), len(r.Feeds), r.Duration().Round(time.Millisecond))
	for _, f := range r.Feeds {
		b.WriteString("\n  ")
		b.WriteString(f.Summary())
	}
	return b.String()
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}
