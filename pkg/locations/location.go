// Package locations defines the registry's location node and the fixed set
// of hierarchy levels it can occupy.
package locations

import (
	"strings"
)

// Tag is a hierarchy level label carried by a location.
type Tag string

// String returns the string representation of a Tag.
func (t Tag) String() string {
	return string(t)
}

// Equal reports whether two tags name the same level, ignoring case.
func (t Tag) Equal(other Tag) bool {
	return strings.EqualFold(strings.TrimSpace(string(t)), strings.TrimSpace(string(other)))
}

// Hierarchy levels, coarsest first.
const (
	TagCountry  Tag = "Country"
	TagZone     Tag = "Zone"
	TagRegion   Tag = "Region"
	TagDistrict Tag = "District"
	TagCouncil  Tag = "Council"
	TagWard     Tag = "Ward"
	TagVillage  Tag = "Village"
	TagFacility Tag = "Facility"
	TagHamlet   Tag = "Hamlet"
)

// Tags returns every known level, coarsest first.
func Tags() []Tag {
	return []Tag{
		TagCountry, TagZone, TagRegion, TagDistrict, TagCouncil,
		TagWard, TagVillage, TagFacility, TagHamlet,
	}
}

// ParseTag resolves a case-insensitive level name to its canonical Tag.
func ParseTag(s string) (Tag, bool) {
	for _, t := range Tags() {
		if t.Equal(Tag(s)) {
			return t, true
		}
	}
	return "", false
}

// Attribute display names used as reconciliation keys.
const (
	AttrCode         = "Code"     // general code, every non-facility level
	AttrFacilityCode = "HFR Code" // facility registry identifier
)

// IsFacility reports whether tag is the facility level.
func IsFacility(tag Tag) bool {
	return tag.Equal(TagFacility)
}

// CodeAttribute returns the attribute name holding the code for tag.
func CodeAttribute(tag Tag) string {
	if IsFacility(tag) {
		return AttrFacilityCode
	}
	return AttrCode
}

// NormalizeCode returns the index key for an upstream code.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Location is a node in the registry tree. The parent is held by id only
// and resolved through the index when needed.
type Location struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Tags       []Tag             `json:"tags" yaml:"tags"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	ParentID   string            `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// HasTag reports whether the location carries tag.
func (l *Location) HasTag(tag Tag) bool {
	for _, t := range l.Tags {
		if t.Equal(tag) {
			return true
		}
	}
	return false
}

// Level returns the first known hierarchy tag on the location, if any.
func (l *Location) Level() Tag {
	for _, t := range l.Tags {
		if canonical, ok := ParseTag(string(t)); ok {
			return canonical
		}
	}
	return ""
}

// Attribute returns the value of the named attribute.
func (l *Location) Attribute(name string) (string, bool) {
	if l.Attributes == nil {
		return "", false
	}
	v, ok := l.Attributes[name]
	return v, ok
}

// SetAttribute sets the named attribute, allocating the map if needed.
func (l *Location) SetAttribute(name, value string) {
	if l.Attributes == nil {
		l.Attributes = make(map[string]string)
	}
	l.Attributes[name] = value
}

// Code returns the reconciliation key: the facility code for facility nodes,
// the general code otherwise. A facility without a facility code falls back
// to its general code.
func (l *Location) Code() string {
	if l.HasTag(TagFacility) {
		if v, ok := l.Attribute(AttrFacilityCode); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	v, _ := l.Attribute(AttrCode)
	return v
}

// HasParent reports whether the location points at a parent.
func (l *Location) HasParent() bool {
	return l.ParentID != ""
}

// Clone returns a deep copy of the location.
func (l *Location) Clone() *Location {
	if l == nil {
		return nil
	}
	c := *l
	c.Tags = append([]Tag(nil), l.Tags...)
	if l.Attributes != nil {
		c.Attributes = make(map[string]string, len(l.Attributes))
		for k, v := range l.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}
