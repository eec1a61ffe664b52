package importer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/hfr"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/names"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

// Facility imports the facility registry feed: region, district, council,
// ward and facility, then the facility's village.
type Facility struct {
	r *reconciler.Reconciler
}

// NewFacility returns a facility importer.
func NewFacility(r *reconciler.Reconciler) *Facility {
	return &Facility{r: r}
}

// ProcessPage imports every record of p.
func (f *Facility) ProcessPage(ctx context.Context, p *hfr.Page) []error {
	return processPage(ctx, hfr.FeedFacility, p, func(ctx context.Context, raw json.RawMessage) (string, error) {
		rec, err := hfr.DecodeFacility(raw)
		if err != nil {
			return "", errors.WrapParse("json", "facility record", err)
		}
		return rec.FacIDNumber.String(), f.Import(ctx, rec)
	})
}

// Import resolves one record's levels and realigns the facility's stale
// village children.
func (f *Facility) Import(ctx context.Context, rec hfr.FacilityRecord) error {
	c := &chain{ctx: ctx, r: f.r}
	council := rec.Council.String()
	wardName := rec.Ward.String()

	region := c.ensure(nil, names.Title(rec.Region.String()), rec.RegionCode.String(), locations.TagRegion)
	district := c.ensure(region, names.Title(rec.District.String()), rec.DistrictCode.String(), locations.TagDistrict)
	councilLoc := c.ensure(district, names.Title(council), rec.CouncilCode.String(), locations.TagCouncil)
	ward := c.ensure(councilLoc, names.Compose(wardName, council), rec.WardCode.String(), locations.TagWard)
	facility := c.ensure(ward,
		names.Compose(rec.Name.String(), rec.FacIDNumber.String()),
		rec.FacIDNumber.String(), locations.TagFacility)

	// Only records naming and coding a village realign.
	village := reconciler.VillageRef{Code: strings.TrimSpace(rec.VillageCode.String())}
	if v := strings.TrimSpace(rec.Village.String()); v != "" {
		village.Name = names.Compose(v, wardName, council)
	}

	if facility != nil && village.Name != "" && village.Code != "" {
		if facility.HasParent() {
			_, err := f.r.RealignChildren(ctx, facility.ID, facility.ParentID, village)
			c.add(err)
		} else {
			_, err := f.r.RealignByCode(ctx, facility.ID, village)
			c.add(err)
		}
	}

	c.ensure(ward, village.Name, village.Code, locations.TagVillage)

	return c.err()
}
