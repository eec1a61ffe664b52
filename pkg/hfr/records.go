package hfr

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// MetaData is the pagination envelope shared by both feeds.
type MetaData struct {
	PageCount   int `json:"pageCount"`
	CurrentPage int `json:"currentPage"`
}

// Page is one page of a feed. Records are kept raw so that a single bad
// record can be reported without losing the rest of the page.
type Page struct {
	MetaData MetaData          `json:"metaData"`
	Data     []json.RawMessage `json:"data"`
}

// Text is a string field that tolerates numbers and nulls on the wire.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*t = Text(strconv.FormatInt(i, 10))
		return nil
	}
	*t = Text(n.String())
	return nil
}

// String returns the field value.
func (t Text) String() string {
	return string(t)
}

// AdminRecord is one record of the administrative hierarchy feed.
type AdminRecord struct {
	Country         Text `json:"country"`
	Zone            Text `json:"zone"`
	ZoneCode        Text `json:"zone_code"`
	Region          Text `json:"region"`
	RegionCode      Text `json:"region_code"`
	Ward            Text `json:"ward"`
	WardCode        Text `json:"ward_code"`
	Council         Text `json:"council"`
	VillageMtaa     Text `json:"village_mtaa"`
	VillageMtaaCode Text `json:"village_mtaa_code"`
}

// FacilityRecord is one record of the facility registry feed. The feed's
// field names are inconsistently cased and are kept verbatim in the tags.
type FacilityRecord struct {
	Region       Text `json:"region"`
	RegionCode   Text `json:"Region_Code"`
	District     Text `json:"district"`
	DistrictCode Text `json:"District_Code"`
	Council      Text `json:"council"`
	CouncilCode  Text `json:"Council_Code"`
	Ward         Text `json:"ward"`
	WardCode     Text `json:"ward_Code"`
	Name         Text `json:"Name"`
	FacIDNumber  Text `json:"Fac_IDNumber"`
	Village      Text `json:"village"`
	VillageCode  Text `json:"Village_Code"`
}

// DecodeAdmin decodes a raw admin hierarchy record.
func DecodeAdmin(raw json.RawMessage) (AdminRecord, error) {
	var r AdminRecord
	err := json.Unmarshal(raw, &r)
	return r, err
}

// DecodeFacility decodes a raw facility record.
func DecodeFacility(raw json.RawMessage) (FacilityRecord, error) {
	var r FacilityRecord
	err := json.Unmarshal(raw, &r)
	return r, err
}
