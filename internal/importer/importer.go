// Package importer maps upstream records onto chains of reconciler calls,
// one call per hierarchy level, each resolved level becoming the parent of
// the next.
package importer

import (
	"context"
	"encoding/json"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/hfr"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/logging"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

// chain collects the errors of one record's level resolutions so that a
// failing level does not stop the levels after it.
type chain struct {
	ctx  context.Context
	r    *reconciler.Reconciler
	errs []error
}

func (c *chain) ensure(parent *locations.Location, name, code string, tag locations.Tag) *locations.Location {
	loc, err := c.r.Ensure(c.ctx, parent, name, code, tag)
	if err != nil {
		c.errs = append(c.errs, err)
	}
	return loc
}

func (c *chain) add(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *chain) err() error {
	return errors.Join(c.errs...)
}

// processPage decodes and handles each record of p, returning one
// RecordError per record that failed.
func processPage(ctx context.Context, feed string, p *hfr.Page, handle func(ctx context.Context, raw json.RawMessage) (string, error)) []error {
	logger := logging.FromContext(ctx)
	page := p.MetaData.CurrentPage

	var errs []error
	for i, raw := range p.Data {
		code, err := handle(logging.WithField(ctx, "record", i), raw)
		if err == nil {
			continue
		}
		logger.Error().Err(err).Int("record", i).Str("code", code).Msg("Failed to process record")
		errs = append(errs, &errors.RecordError{Feed: feed, Page: page, Index: i, Code: code, Err: err})
	}
	return errs
}
