// Package sync provides the options and the end-of-run summary of a
// registry reconciliation run.
package sync

import (
	"fmt"
	"slices"
	"time"

	"github.com/moh-tz/hfrsync/pkg/constants"
	"github.com/moh-tz/hfrsync/pkg/errors"
)

// Feed names, in the order a run processes them.
const (
	FeedFacility  = "facility"
	FeedHierarchy = "hierarchy"
	FeedHamlet    = "hamlet"
)

// AllFeeds returns every feed in run order.
func AllFeeds() []string {
	return []string{FeedFacility, FeedHierarchy, FeedHamlet}
}

// Options controls a single run of Client.Sync().
type Options struct {
	// Feed selection
	Feeds     []string // Which feeds to run (empty means all)
	StartPage int      // First page of the paginated feeds

	// Retry control
	FacilityAttempts  int           // Attempts per facility feed page
	HierarchyAttempts int           // Attempts per hierarchy feed page
	Backoff           time.Duration // Wait before the first retry
	MaxBackoff        time.Duration // Cap on the wait between retries

	// Inputs
	HamletPath string // Hamlet CSV location (empty skips the hamlet feed)

	Timeout time.Duration // Timeout for the entire run (zero means none)
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		Feeds:             nil,
		StartPage:         constants.DefaultStartPage,
		FacilityAttempts:  constants.FacilityFeedAttempts,
		HierarchyAttempts: constants.HierarchyFeedAttempts,
		Backoff:           constants.RetryBackoff,
		MaxBackoff:        constants.MaxRetryBackoff,
	}
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	for _, f := range s.Feeds {
		if !slices.Contains(AllFeeds(), f) {
			return &errors.ValidationError{
				Field:   "Feeds",
				Value:   f,
				Message: fmt.Sprintf("unknown feed %q (want one of %v)", f, AllFeeds()),
			}
		}
	}
	if s.StartPage < 1 {
		return &errors.ValidationError{Field: "StartPage", Value: s.StartPage, Message: "must be at least 1"}
	}
	if s.FacilityAttempts < 1 || s.HierarchyAttempts < 1 {
		return &errors.ValidationError{Field: "Attempts", Message: "retry attempts must be at least 1"}
	}
	if s.Backoff < 0 || s.MaxBackoff < 0 {
		return &errors.ValidationError{Field: "Backoff", Message: "backoff must be non-negative"}
	}
	if s.Timeout < 0 {
		return &errors.ValidationError{Field: "Timeout", Value: s.Timeout, Message: "timeout must be non-negative"}
	}
	return nil
}

// Runs reports whether feed is selected.
func (s *Options) Runs(feed string) bool {
	return len(s.Feeds) == 0 || slices.Contains(s.Feeds, feed)
}

// WithFeeds restricts the run to the named feeds.
func WithFeeds(feeds ...string) Option {
	return func(opts *Options) {
		opts.Feeds = feeds
	}
}

// WithStartPage sets the first page fetched from the paginated feeds.
func WithStartPage(page int) Option {
	return func(opts *Options) {
		opts.StartPage = page
	}
}

// WithFacilityAttempts sets the per-page attempt ceiling of the facility feed.
func WithFacilityAttempts(n int) Option {
	return func(opts *Options) {
		opts.FacilityAttempts = n
	}
}

// WithHierarchyAttempts sets the per-page attempt ceiling of the hierarchy feed.
func WithHierarchyAttempts(n int) Option {
	return func(opts *Options) {
		opts.HierarchyAttempts = n
	}
}

// WithBackoff sets the initial and maximum wait between retries.
func WithBackoff(initial, max time.Duration) Option {
	return func(opts *Options) {
		opts.Backoff = initial
		opts.MaxBackoff = max
	}
}

// WithHamletPath sets the hamlet CSV to import.
func WithHamletPath(path string) Option {
	return func(opts *Options) {
		opts.HamletPath = path
	}
}

// WithTimeout bounds the whole run.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}
