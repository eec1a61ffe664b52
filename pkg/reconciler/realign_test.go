package reconciler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moh-tz/hfrsync/pkg/locations"
	"github.com/moh-tz/hfrsync/pkg/reconciler"
)

func TestRealignChildren(t *testing.T) {
	ward := newLoc("w1", "Mbokomu - Moshi", "W1", locations.TagWard, "")
	facility := newLoc("f1", "Kibosho Hospital - F1", "F1", locations.TagFacility, "w1")
	stale := newLoc("v1", "Old Village", "OLDV", locations.TagVillage, "f1")
	aligned := newLoc("v2", "Majengo - Mbokomu - Moshi", "V2", locations.TagVillage, "f1")
	notVillage := newLoc("h1", "Something", "H1", locations.TagHamlet, "f1")
	r, fake, rec := setup(t, ward, facility, stale, aligned, notVillage)

	n, err := r.RealignChildren(context.Background(), "f1", "w1", reconciler.VillageRef{
		Name: "Majengo - Mbokomu - Moshi",
		Code: "V9",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, rec.realigned)

	got, ok := r.Index().ByCode("V9")
	require.True(t, ok)
	assert.Equal(t, "v1", got.ID)
	assert.Equal(t, "Majengo - Mbokomu - Moshi", got.Name)
	assert.Equal(t, "w1", got.ParentID)
	_, ok = r.Index().ByCode("OLDV")
	assert.False(t, ok)

	stored, _ := fake.Get("v1")
	assert.Equal(t, "V9", stored.Code())
	assert.Equal(t, "w1", stored.ParentID)

	untouched, _ := fake.Get("v2")
	assert.Equal(t, "f1", untouched.ParentID)
}

func TestRealignChildrenIsIdempotent(t *testing.T) {
	ward := newLoc("w1", "Mbokomu - Moshi", "W1", locations.TagWard, "")
	facility := newLoc("f1", "Kibosho Hospital - F1", "F1", locations.TagFacility, "w1")
	stale := newLoc("v1", "Old Village", "OLDV", locations.TagVillage, "f1")
	r, fake, _ := setup(t, ward, facility, stale)
	ref := reconciler.VillageRef{Name: "Majengo - Mbokomu - Moshi", Code: "V9"}
	ctx := context.Background()

	_, err := r.RealignChildren(ctx, "f1", "w1", ref)
	require.NoError(t, err)
	writes := fake.Writes()

	n, err := r.RealignChildren(ctx, "f1", "w1", ref)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, writes, fake.Writes())
}

func TestRealignChildrenRenameFailureSkipsRest(t *testing.T) {
	facility := newLoc("f1", "Kibosho Hospital - F1", "F1", locations.TagFacility, "w1")
	stale := newLoc("v1", "Old Village", "OLDV", locations.TagVillage, "f1")
	r, fake, _ := setup(t, facility, stale)
	fake.Fail["rename"] = "v1"

	n, err := r.RealignChildren(context.Background(), "f1", "w1", reconciler.VillageRef{Name: "New", Code: "V9"})

	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Zero(t, fake.Writes())
	got, _ := r.Index().ByID("v1")
	assert.Equal(t, "f1", got.ParentID)
	assert.Equal(t, "OLDV", got.Code())
}

func TestRealignChildrenCodeConflict(t *testing.T) {
	facility := newLoc("f1", "Kibosho Hospital - F1", "F1", locations.TagFacility, "w1")
	stale := newLoc("v1", "Old Village", "OLDV", locations.TagVillage, "f1")
	owner := newLoc("v2", "Majengo", "V9", locations.TagVillage, "w1")
	r, fake, rec := setup(t, facility, stale, owner)

	n, err := r.RealignChildren(context.Background(), "f1", "w1", reconciler.VillageRef{Name: "Majengo", Code: "V9"})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, rec.anomalies, 1)
	assert.Equal(t, reconciler.AnomalyCodeConflict, rec.anomalies[0].Kind)

	got, _ := r.Index().ByCode("V9")
	assert.Equal(t, "v2", got.ID, "owner keeps the code")

	for _, c := range fake.Calls() {
		assert.NotEqual(t, "set-attribute", c.Op)
	}
}

func TestRealignByCode(t *testing.T) {
	facility := newLoc("f1", "Kibosho Hospital - F1", "F1", locations.TagFacility, "")
	village := newLoc("v1", "Old Village", "v9", locations.TagVillage, "f1")
	other := newLoc("v2", "Other", "V2", locations.TagVillage, "f1")
	r, fake, rec := setup(t, facility, village, other)
	ref := reconciler.VillageRef{Name: "Majengo - Mbokomu - Moshi", Code: "V9"}

	n, err := r.RealignByCode(context.Background(), "f1", ref)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, rec.realigned)

	stored, _ := fake.Get("v1")
	assert.Equal(t, "V9", stored.Code())
	assert.Equal(t, "Majengo - Mbokomu - Moshi", stored.Name)
	assert.Equal(t, "f1", stored.ParentID, "realign by code does not reparent")

	untouched, _ := fake.Get("v2")
	assert.Equal(t, "Other", untouched.Name)

	writes := fake.Writes()
	n, err = r.RealignByCode(context.Background(), "f1", ref)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, writes, fake.Writes())
}

func TestRealignByCodeEmptyCode(t *testing.T) {
	r, _ := strict(t)

	n, err := r.RealignByCode(context.Background(), "f1", reconciler.VillageRef{Name: "X"})

	assert.NoError(t, err)
	assert.Zero(t, n)
}
