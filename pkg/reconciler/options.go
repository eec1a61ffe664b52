package reconciler

import (
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/locations"
)

// TagMismatchPolicy decides what happens when a code resolves to a location
// carrying a different level tag.
type TagMismatchPolicy string

// Tag mismatch policies.
const (
	// TagMismatchLog leaves the location untouched and records an anomaly.
	TagMismatchLog TagMismatchPolicy = "log"
	// TagMismatchAddTag adds the requested tag to the location's existing tags.
	TagMismatchAddTag TagMismatchPolicy = "add-tag"
)

// ParseTagMismatchPolicy parses a policy name; the empty string means log.
func ParseTagMismatchPolicy(s string) (TagMismatchPolicy, error) {
	switch TagMismatchPolicy(s) {
	case "", TagMismatchLog:
		return TagMismatchLog, nil
	case TagMismatchAddTag:
		return TagMismatchAddTag, nil
	}
	return "", &errors.ValidationError{
		Field:   "policy.tag_mismatch",
		Value:   s,
		Message: "must be one of: log, add-tag",
	}
}

// AttributeTypes holds the registry uuids of the two code attribute types.
type AttributeTypes struct {
	Code         string
	FacilityCode string
}

// For returns the attribute type uuid holding the code for tag.
func (a AttributeTypes) For(tag locations.Tag) string {
	if locations.IsFacility(tag) {
		return a.FacilityCode
	}
	return a.Code
}

type options struct {
	attributeTypes AttributeTypes
	policy         TagMismatchPolicy
	rootTags       []locations.Tag
	recorder       Recorder
}

func defaultOptions() *options {
	return &options{
		policy:   TagMismatchLog,
		rootTags: []locations.Tag{locations.TagCountry, locations.TagRegion},
		recorder: NopRecorder{},
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

func newOptions(opts ...Option) (*options, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.attributeTypes.Code == "" || o.attributeTypes.FacilityCode == "" {
		return nil, &errors.ValidationError{
			Field:   "attribute_types",
			Message: "code and facility code attribute types are required",
		}
	}
	return o, nil
}

// WithAttributeTypes sets the attribute type uuids written on create.
func WithAttributeTypes(types AttributeTypes) Option {
	return func(o *options) error {
		o.attributeTypes = types
		return nil
	}
}

// WithTagMismatchPolicy sets how tag mismatches are handled.
func WithTagMismatchPolicy(policy TagMismatchPolicy) Option {
	return func(o *options) error {
		if _, err := ParseTagMismatchPolicy(string(policy)); err != nil {
			return err
		}
		o.policy = policy
		return nil
	}
}

// WithRootTags sets the levels that may be created without a parent.
func WithRootTags(tags ...locations.Tag) Option {
	return func(o *options) error {
		o.rootTags = append([]locations.Tag(nil), tags...)
		return nil
	}
}

// WithRecorder sets the recorder notified of every change and anomaly.
func WithRecorder(r Recorder) Option {
	return func(o *options) error {
		if r == nil {
			return &errors.ValidationError{
				Field:   "recorder",
				Message: "cannot be nil",
			}
		}
		o.recorder = r
		return nil
	}
}
