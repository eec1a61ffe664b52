package hfr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moh-tz/hfrsync/pkg/errors"
)

func TestTextUnmarshal(t *testing.T) {
	r, err := DecodeFacility([]byte(`{"Region_Code": 12, "Fac_IDNumber": "104512-1", "Village_Code": null, "Name": " Kibosho "}`))
	require.NoError(t, err)

	assert.Equal(t, Text("12"), r.RegionCode)
	assert.Equal(t, Text("104512-1"), r.FacIDNumber)
	assert.Equal(t, Text(""), r.VillageCode)
	assert.Equal(t, "Kibosho", r.Name.String())
}

func TestTextRejectsObjects(t *testing.T) {
	_, err := DecodeAdmin([]byte(`{"zone": {"a": 1}}`))
	assert.Error(t, err)
}

func TestDecodeAdmin(t *testing.T) {
	r, err := DecodeAdmin([]byte(`{
		"country": "tz", "zone": "north", "zone_code": "Z1",
		"region": "kilimanjaro", "region_code": "R9",
		"ward": "mbokomu", "ward_code": "W1", "council": "moshi",
		"village_mtaa": "majengo", "village_mtaa_code": "V1"
	}`))
	require.NoError(t, err)

	assert.Equal(t, Text("tz"), r.Country)
	assert.Equal(t, Text("Z1"), r.ZoneCode)
	assert.Equal(t, Text("V1"), r.VillageMtaaCode)
}

func TestClientPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "hfr", user)
		assert.Equal(t, "pw", pass)
		fmt.Fprintf(w, `{"metaData": {"pageCount": 4, "currentPage": 2}, "data": [{"path": %q}]}`, r.URL.Path+"?"+r.URL.RawQuery)
	}))
	defer srv.Close()

	c := NewClient(Config{
		FacilitiesURL: srv.URL + "/facilities?page=",
		HierarchyURL:  srv.URL + "/hierarchy?page=",
		User:          "hfr",
		Password:      "pw",
	})

	p, err := c.Facilities(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 4, p.MetaData.PageCount)
	assert.Equal(t, 2, p.MetaData.CurrentPage)
	require.Len(t, p.Data, 1)
	assert.JSONEq(t, `{"path": "/facilities?page=2"}`, string(p.Data[0]))

	p, err = c.Hierarchy(context.Background(), 7)
	require.NoError(t, err)
	assert.JSONEq(t, `{"path": "/hierarchy?page=7"}`, string(p.Data[0]))
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(Config{FacilitiesURL: srv.URL + "/?page="}).Facilities(context.Background(), 1)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClientMissingURL(t *testing.T) {
	_, err := NewClient(Config{}).Hierarchy(context.Background(), 1)

	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
