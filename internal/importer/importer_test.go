package importer

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moh-tz/hfrsync/internal/sources/hamlets"
	"github.com/moh-tz/hfrsync/pkg/errors"
	"github.com/moh-tz/hfrsync/pkg/hfr"
	"github.com/moh-tz/hfrsync/pkg/index"
	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/logging"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
	"github.com/moh-tz/hfrsync/pkg/registry/registrytest"
)

var attrTypes = reconciler.AttributeTypes{Code: "code-type", FacilityCode: "hfr-code-type"}

type anomalies struct {
	reconciler.NopRecorder
	kinds []reconciler.AnomalyKind
}

func (a *anomalies) Anomaly(x reconciler.Anomaly) { a.kinds = append(a.kinds, x.Kind) }

func setup(t *testing.T, seed ...*locations.Location) (*reconciler.Reconciler, *registrytest.Fake, *anomalies) {
	t.Helper()
	fake := registrytest.New(map[string]string{
		attrTypes.Code:         locations.AttrCode,
		attrTypes.FacilityCode: locations.AttrFacilityCode,
	})
	fake.Seed(seed...)
	listed, err := fake.List(context.Background())
	require.NoError(t, err)
	idx := index.New()
	idx.IndexAll(listed)

	rec := &anomalies{}
	r, err := reconciler.New(idx, fake, reconciler.WithAttributeTypes(attrTypes), reconciler.WithRecorder(rec))
	require.NoError(t, err)
	return r, fake, rec
}

func page(t *testing.T, records ...any) *hfr.Page {
	t.Helper()
	p := &hfr.Page{MetaData: hfr.MetaData{CurrentPage: 1, PageCount: 1}}
	for _, r := range records {
		b, err := json.Marshal(r)
		require.NoError(t, err)
		p.Data = append(p.Data, b)
	}
	return p
}

func TestAdminScenario(t *testing.T) {
	r, fake, _ := setup(t)
	a := NewAdmin(r, "")

	errs := a.ProcessPage(context.Background(), page(t, map[string]string{
		"country": "tz", "zone": "north", "zone_code": "Z1",
		"region": "kilimanjaro", "region_code": "R9",
	}))

	assert.Empty(t, errs)
	assert.Equal(t, 3, fake.Len())

	country, ok := r.Resolve("TZ")
	require.True(t, ok)
	assert.Equal(t, "Tz", country.Name)
	assert.Empty(t, country.ParentID)
	assert.True(t, country.HasTag(locations.TagCountry))

	zone, ok := r.Resolve("Z1")
	require.True(t, ok)
	assert.Equal(t, "North", zone.Name)
	assert.Equal(t, country.ID, zone.ParentID)

	region, ok := r.Resolve("R9")
	require.True(t, ok)
	assert.Equal(t, "Kilimanjaro", region.Name)
	assert.Equal(t, zone.ID, region.ParentID)
}

func TestAdminWardAndVillage(t *testing.T) {
	ward := &locations.Location{ID: "w1", Name: "Old", Tags: []locations.Tag{locations.TagWard},
		Attributes: map[string]string{locations.AttrCode: "W1"}, ParentID: "c1"}
	r, _, rec := setup(t, ward)
	a := NewAdmin(r, "TZ")

	errs := a.ProcessPage(context.Background(), page(t,
		map[string]string{
			"ward": "mbokomu", "ward_code": "W1", "council": "moshi",
			"village_mtaa": "majengo", "village_mtaa_code": "V1",
		},
		map[string]string{
			"ward": "kiboriloni", "ward_code": "W2", "council": "moshi",
			"village_mtaa": "kiusa", "village_mtaa_code": "V2",
		},
	))

	assert.Empty(t, errs)

	got, _ := r.Resolve("W1")
	assert.Equal(t, "Mbokomu - Moshi", got.Name)
	assert.Equal(t, "c1", got.ParentID, "ward keeps its parent")

	village, ok := r.Resolve("V1")
	require.True(t, ok)
	assert.Equal(t, "Majengo - Mbokomu - Moshi", village.Name)
	assert.Equal(t, "w1", village.ParentID)

	_, ok = r.Resolve("W2")
	assert.False(t, ok, "wards are never created without a parent")
	_, ok = r.Resolve("V2")
	assert.False(t, ok)
	assert.Contains(t, rec.kinds, reconciler.AnomalyOrphan)
}

func TestAdminBadRecord(t *testing.T) {
	r, _, _ := setup(t)
	a := NewAdmin(r, "TZ")

	p := page(t, map[string]string{"country": "tz", "zone": "north", "zone_code": "Z1"})
	p.Data = append([]json.RawMessage{json.RawMessage(`{"zone": {}}`)}, p.Data...)

	errs := a.ProcessPage(context.Background(), p)

	require.Len(t, errs, 1)
	var recErr *errors.RecordError
	require.ErrorAs(t, errs[0], &recErr)
	assert.Equal(t, "hierarchy", recErr.Feed)
	assert.Equal(t, 0, recErr.Index)

	_, ok := r.Resolve("Z1")
	assert.True(t, ok, "later records still processed")
}

func facilityRecord() map[string]any {
	return map[string]any{
		"region": "kilimanjaro", "Region_Code": "R9",
		"district": "moshi", "District_Code": "D1",
		"council": "moshi municipal", "Council_Code": "C1",
		"ward": "mbokomu", "ward_Code": "W1",
		"Name": "kibosho hospital", "Fac_IDNumber": "104512-1",
		"village": "majengo", "Village_Code": "V1",
	}
}

func TestFacilityChain(t *testing.T) {
	r, _, _ := setup(t)
	f := NewFacility(r)

	errs := f.ProcessPage(context.Background(), page(t, facilityRecord()))
	require.Empty(t, errs)

	region, _ := r.Resolve("R9")
	district, _ := r.Resolve("D1")
	council, _ := r.Resolve("C1")
	ward, _ := r.Resolve("W1")
	facility, _ := r.Resolve("104512-1")
	village, _ := r.Resolve("V1")

	require.NotNil(t, region)
	assert.Empty(t, region.ParentID)
	assert.Equal(t, region.ID, district.ParentID)
	assert.Equal(t, district.ID, council.ParentID)
	assert.Equal(t, "Moshi Municipal", council.Name)
	assert.Equal(t, council.ID, ward.ParentID)
	assert.Equal(t, "Mbokomu - Moshi Municipal", ward.Name)
	assert.Equal(t, ward.ID, facility.ParentID)
	assert.Equal(t, "Kibosho Hospital - 104512-1", facility.Name)
	assert.True(t, facility.HasTag(locations.TagFacility))
	v, _ := facility.Attribute(locations.AttrFacilityCode)
	assert.Equal(t, "104512-1", v)
	assert.Equal(t, ward.ID, village.ParentID)
	assert.Equal(t, "Majengo - Mbokomu - Moshi Municipal", village.Name)
}

func TestFacilityIdempotence(t *testing.T) {
	r, fake, _ := setup(t)
	f := NewFacility(r)
	ctx := context.Background()
	p := page(t, facilityRecord())

	require.Empty(t, f.ProcessPage(ctx, p))
	assert.Equal(t, 6, fake.Writes())
	fake.Reset()

	require.Empty(t, f.ProcessPage(ctx, p))
	assert.Zero(t, fake.Writes())
	assert.Equal(t, 6, r.Index().Len())
}

func TestFacilityIdempotenceAcrossRuns(t *testing.T) {
	first, fake, _ := setup(t)
	ctx := context.Background()
	p := page(t, facilityRecord())
	require.Empty(t, NewFacility(first).ProcessPage(ctx, p))

	listed, err := fake.List(ctx)
	require.NoError(t, err)
	idx := index.New()
	idx.IndexAll(listed)
	second, err := reconciler.New(idx, fake, reconciler.WithAttributeTypes(attrTypes))
	require.NoError(t, err)
	fake.Reset()

	require.Empty(t, NewFacility(second).ProcessPage(ctx, p))
	assert.Zero(t, fake.Writes(), "%v", fake.Calls())
}

func TestFacilityRealignsStaleVillage(t *testing.T) {
	ward := &locations.Location{ID: "w1", Name: "Mbokomu - Moshi Municipal", Tags: []locations.Tag{locations.TagWard},
		Attributes: map[string]string{locations.AttrCode: "W1"}, ParentID: "c1"}
	council := &locations.Location{ID: "c1", Name: "Moshi Municipal", Tags: []locations.Tag{locations.TagCouncil},
		Attributes: map[string]string{locations.AttrCode: "C1"}, ParentID: "d1"}
	district := &locations.Location{ID: "d1", Name: "Moshi", Tags: []locations.Tag{locations.TagDistrict},
		Attributes: map[string]string{locations.AttrCode: "D1"}, ParentID: "r1"}
	region := &locations.Location{ID: "r1", Name: "Kilimanjaro", Tags: []locations.Tag{locations.TagRegion},
		Attributes: map[string]string{locations.AttrCode: "R9"}}
	facility := &locations.Location{ID: "f1", Name: "Kibosho Hospital - 104512-1", Tags: []locations.Tag{locations.TagFacility},
		Attributes: map[string]string{locations.AttrFacilityCode: "104512-1"}, ParentID: "w1"}
	stale := &locations.Location{ID: "v1", Name: "majengo old", Tags: []locations.Tag{locations.TagVillage},
		Attributes: map[string]string{locations.AttrCode: "OLD"}, ParentID: "f1"}

	r, fake, _ := setup(t, region, district, council, ward, facility, stale)

	errs := NewFacility(r).ProcessPage(context.Background(), page(t, facilityRecord()))
	require.Empty(t, errs)

	got, ok := r.Resolve("V1")
	require.True(t, ok)
	assert.Equal(t, "v1", got.ID, "stale village takes the upstream code instead of a new node")
	assert.Equal(t, "w1", got.ParentID)
	assert.Equal(t, "Majengo - Mbokomu - Moshi Municipal", got.Name)

	stored, _ := fake.Get("v1")
	assert.Equal(t, "V1", stored.Code())
	assert.Equal(t, 6, fake.Len())
}

func TestFacilityWithoutVillageLeavesChildrenAlone(t *testing.T) {
	ward := &locations.Location{ID: "w1", Name: "Mbokomu - Moshi Municipal", Tags: []locations.Tag{locations.TagWard},
		Attributes: map[string]string{locations.AttrCode: "W1"}, ParentID: "c1"}
	facility := &locations.Location{ID: "f1", Name: "Kibosho Hospital - 104512-1", Tags: []locations.Tag{locations.TagFacility},
		Attributes: map[string]string{locations.AttrFacilityCode: "104512-1"}, ParentID: "w1"}
	village := &locations.Location{ID: "v1", Name: "Nkoaranga - Mbokomu - Moshi Municipal", Tags: []locations.Tag{locations.TagVillage},
		Attributes: map[string]string{locations.AttrCode: "V7"}, ParentID: "f1"}
	r, fake, _ := setup(t, ward, facility, village)

	tests := []struct {
		name   string
		remove []string
	}{
		{name: "no village fields", remove: []string{"village", "Village_Code"}},
		{name: "village code only", remove: []string{"village"}},
		{name: "village name only", remove: []string{"Village_Code"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := facilityRecord()
			for _, k := range tt.remove {
				delete(rec, k)
			}

			errs := NewFacility(r).ProcessPage(context.Background(), page(t, rec))

			require.Empty(t, errs)
			stored, _ := fake.Get("v1")
			assert.Equal(t, "Nkoaranga - Mbokomu - Moshi Municipal", stored.Name)
			assert.Equal(t, "f1", stored.ParentID)
			assert.Equal(t, "V7", stored.Code())
			for _, c := range fake.Calls() {
				assert.NotEqual(t, "v1", c.ID, "%s %s", c.Op, c.Value)
			}
		})
	}
}

func TestHamletImport(t *testing.T) {
	village := &locations.Location{ID: "v1", Name: "Majengo - Mbokomu - Moshi", Tags: []locations.Tag{locations.TagVillage},
		Attributes: map[string]string{locations.AttrCode: "V1"}, ParentID: "w1"}
	r, fake, rec := setup(t, village)
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	errs := NewHamlet(r).Import(ctx, []hamlets.Row{
		{Line: 2, VillageCode: "v1", Village: "majengo", Ward: "mbokomu", HamletCode: "H1", Hamlet: "kitongoji"},
		{Line: 3, VillageCode: "V404", Village: "nowhere", Ward: "x", HamletCode: "H2", Hamlet: "lost"},
	})

	assert.Empty(t, errs)
	h, ok := r.Resolve("H1")
	require.True(t, ok)
	assert.Equal(t, "Kitongoji - Majengo - Mbokomu", h.Name)
	assert.Equal(t, "v1", h.ParentID)
	assert.True(t, h.HasTag(locations.TagHamlet))

	_, ok = r.Resolve("H2")
	assert.False(t, ok)
	assert.Equal(t, []reconciler.AnomalyKind{reconciler.AnomalyMissingParent}, rec.kinds)
	assert.Equal(t, 1, tl.CountField("anomaly", "missing_parent"))
	assert.Equal(t, 1, fake.Writes())
}

func TestHamletImportFromMinistryFile(t *testing.T) {
	village := &locations.Location{ID: "v1", Name: "Nkoaranga - Mbokomu - Moshi", Tags: []locations.Tag{locations.TagVillage},
		Attributes: map[string]string{locations.AttrCode: "V1"}, ParentID: "w1"}
	r, fake, rec := setup(t, village)

	rows, rowErrs := hamlets.Read(strings.NewReader(
		"region_code,region,council_code,council,ward_code,ward,street_code,street,village_code,Village,hamlet_code,hamlet\n" +
			"R9,Kilimanjaro,C1,Moshi,W1,Mbokomu,V1,Nkoaranga,H1,Kombo,K1,Juu\n" +
			"R9,Kilimanjaro,C1,Moshi,W1,Mbokomu,V1,Nkoaranga,H2,,K2,Chini\n"))
	require.Empty(t, rowErrs)

	errs := NewHamlet(r).Import(context.Background(), rows)

	assert.Empty(t, errs)
	h, ok := r.Resolve("H1")
	require.True(t, ok)
	assert.Equal(t, "Kombo - Nkoaranga - Mbokomu", h.Name)
	assert.Equal(t, "v1", h.ParentID)
	_, ok = r.Resolve("K1")
	assert.False(t, ok)
	_, ok = r.Resolve("H2")
	assert.False(t, ok)
	assert.Equal(t, []reconciler.AnomalyKind{reconciler.AnomalyMissingName}, rec.kinds)
	assert.Equal(t, 2, fake.Len())
}

func TestHamletCreateFailure(t *testing.T) {
	village := &locations.Location{ID: "v1", Name: "V", Tags: []locations.Tag{locations.TagVillage},
		Attributes: map[string]string{locations.AttrCode: "V1"}}
	r, fake, _ := setup(t, village)
	fake.Fail["create"] = "*"

	errs := NewHamlet(r).Import(context.Background(), []hamlets.Row{
		{VillageCode: "V1", HamletCode: "H1", Hamlet: "a"},
		{VillageCode: "V1", HamletCode: "H2", Hamlet: "b"},
	})

	require.Len(t, errs, 2)
	var recErr *errors.RecordError
	require.ErrorAs(t, errs[1], &recErr)
	assert.Equal(t, "H2", recErr.Code)
	assert.Equal(t, 1, recErr.Index)
}
