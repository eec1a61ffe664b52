package hfrsync

import (
	"github.com/moh-tz/hfrsync/pkg/constants"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

type config struct {
	attributeTypes reconciler.AttributeTypes
	policy         reconciler.TagMismatchPolicy
	countryCode    string
	recorders      []reconciler.Recorder
}

func newConfig(opts ...Option) (*config, error) {
	c := &config{
		policy:      reconciler.TagMismatchLog,
		countryCode: constants.DefaultCountryCode,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.attributeTypes.Code == "" || c.attributeTypes.FacilityCode == "" {
		return nil, &errors.ValidationError{
			Field:   "attribute_types",
			Message: "code and facility code attribute types are required",
		}
	}
	return c, nil
}

// Option is a function that configures a Client
type Option func(*config) error

// WithAttributeTypes sets the registry attribute type uuids for the
// general code and the facility code.
func WithAttributeTypes(types reconciler.AttributeTypes) Option {
	return func(c *config) error {
		c.attributeTypes = types
		return nil
	}
}

// WithTagMismatchPolicy configures what happens when a code resolves to a
// location carrying a different level tag
func WithTagMismatchPolicy(policy reconciler.TagMismatchPolicy) Option {
	return func(c *config) error {
		p, err := reconciler.ParseTagMismatchPolicy(string(policy))
		if err != nil {
			return err
		}
		c.policy = p
		return nil
	}
}

// WithCountryCode sets the code of the country level, which the hierarchy
// feed does not carry
func WithCountryCode(code string) Option {
	return func(c *config) error {
		if code == "" {
			return &errors.ValidationError{Field: "country_code", Message: "cannot be empty"}
		}
		c.countryCode = code
		return nil
	}
}

// WithRecorder adds a recorder notified of every change and anomaly of
// every run, such as a metrics exporter
func WithRecorder(r reconciler.Recorder) Option {
	return func(c *config) error {
		if r == nil {
			return &errors.ValidationError{Field: "recorder", Message: "cannot be nil"}
		}
		c.recorders = append(c.recorders, r)
		return nil
	}
}
