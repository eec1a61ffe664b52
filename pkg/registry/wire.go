package registry

import (
	"strings"

	"github.com/moh-tz/hfrsync/pkg/locations"
)

type ref struct {
	UUID    string `json:"uuid"`
	Display string `json:"display,omitempty"`
}

type link struct {
	Rel string `json:"rel"`
	URI string `json:"uri"`
}

type attributeDTO struct {
	UUID          string `json:"uuid,omitempty"`
	Display       string `json:"display,omitempty"`
	AttributeType *ref   `json:"attributeType,omitempty"`
	Value         any    `json:"value,omitempty"`
	Voided        bool   `json:"voided,omitempty"`
}

type locationDTO struct {
	UUID           string         `json:"uuid"`
	Display        string         `json:"display"`
	Name           string         `json:"name"`
	Attributes     []attributeDTO `json:"attributes"`
	Tags           []ref          `json:"tags"`
	ParentLocation *ref           `json:"parentLocation"`
}

type listResponse struct {
	Results []locationDTO `json:"results"`
	Links   []link        `json:"links"`
}

func (r listResponse) hasNext() bool {
	for _, l := range r.Links {
		if strings.EqualFold(l.Rel, "next") {
			return true
		}
	}
	return false
}

type tagName struct {
	Name string `json:"name"`
}

type attributeWrite struct {
	UUID          string `json:"uuid,omitempty"`
	AttributeType string `json:"attributeType"`
	Value         string `json:"value"`
}

type createRequest struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	ParentLocation string           `json:"parentLocation,omitempty"`
	Tags           []tagName        `json:"tags,omitempty"`
	Attributes     []attributeWrite `json:"attributes,omitempty"`
}

type createResponse struct {
	UUID string `json:"uuid"`
}

// toLocation converts a listing entry. Attribute names and values come from
// the "Name: value" display string; voided attributes are dropped.
func (d locationDTO) toLocation() *locations.Location {
	name := d.Name
	if name == "" {
		name = d.Display
	}
	loc := &locations.Location{ID: d.UUID, Name: name}
	for _, t := range d.Tags {
		if t.Display != "" {
			loc.Tags = append(loc.Tags, locations.Tag(t.Display))
		}
	}
	for _, a := range d.Attributes {
		if a.Voided {
			continue
		}
		if k, v, ok := parseAttributeDisplay(a.Display); ok {
			loc.SetAttribute(k, v)
		}
	}
	if d.ParentLocation != nil {
		loc.ParentID = d.ParentLocation.UUID
	}
	return loc
}

func parseAttributeDisplay(display string) (string, string, bool) {
	k, v, ok := strings.Cut(display, ":")
	if !ok {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	if k == "" {
		return "", "", false
	}
	return k, strings.TrimSpace(v), true
}
