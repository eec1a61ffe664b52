package importer

import (
	"context"
	"encoding/json"

	"github.com/moh-tz/hfrsync/pkg/constants"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/hfr"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/names"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

// Admin imports the administrative hierarchy feed: country, zone and
// region, and separately ward and village.
type Admin struct {
	r           *reconciler.Reconciler
	countryCode string
}

// NewAdmin returns an admin hierarchy importer. The feed carries no country
// code, so every record's country resolves to countryCode.
func NewAdmin(r *reconciler.Reconciler, countryCode string) *Admin {
	if countryCode == "" {
		countryCode = constants.DefaultCountryCode
	}
	return &Admin{r: r, countryCode: countryCode}
}

// ProcessPage imports every record of p.
func (a *Admin) ProcessPage(ctx context.Context, p *hfr.Page) []error {
	return processPage(ctx, hfr.FeedHierarchy, p, func(ctx context.Context, raw json.RawMessage) (string, error) {
		rec, err := hfr.DecodeAdmin(raw)
		if err != nil {
			return "", errors.WrapParse("json", "hierarchy record", err)
		}
		return rec.RegionCode.String(), a.Import(ctx, rec)
	})
}

// Import resolves one record's levels.
func (a *Admin) Import(ctx context.Context, rec hfr.AdminRecord) error {
	c := &chain{ctx: ctx, r: a.r}

	country := c.ensure(nil, names.Title(rec.Country.String()), a.countryCode, locations.TagCountry)
	zone := c.ensure(country, names.Title(rec.Zone.String()), rec.ZoneCode.String(), locations.TagZone)
	c.ensure(zone, names.Title(rec.Region.String()), rec.RegionCode.String(), locations.TagRegion)

	ward := c.ensure(nil,
		names.Compose(rec.Ward.String(), rec.Council.String()),
		rec.WardCode.String(), locations.TagWard)
	c.ensure(ward,
		names.Compose(rec.VillageMtaa.String(), rec.Ward.String(), rec.Council.String()),
		rec.VillageMtaaCode.String(), locations.TagVillage)

	return c.err()
}
