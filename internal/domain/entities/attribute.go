package entities

import (
	"sort"
	"strings"
)

// AttributeKind classifies an attribute key.
type AttributeKind string

const (
	AttributeDate     AttributeKind = "date"
	AttributeLocation AttributeKind = "location"
	AttributeText     AttributeKind = "text"
)

const (
	// DateAttributeKey is the media attribute used for date filtering.
	DateAttributeKey = "date"
	// LocationAttributeKey is the media attribute matched by location queries.
	LocationAttributeKey = "location"
)

// Attribute is a typed key/value pair recorded for a person or media file.
type Attribute struct {
	Key   string        `json:"key"`
	Kind  AttributeKind `json:"kind"`
	Value string        `json:"value"`
	Date  *PartialDate  `json:"date,omitempty"`
}

// KindForKey derives the attribute kind from its key. Any key mentioning
// "date" ("date", "date of birth") holds a partial date.
func KindForKey(key string) AttributeKind {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.Contains(k, "date"):
		return AttributeDate
	case k == LocationAttributeKey:
		return AttributeLocation
	default:
		return AttributeText
	}
}

// NormalizeKey lowercases and trims an attribute key for storage.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// NewAttribute builds a typed attribute, parsing date-kind values.
func NewAttribute(key, value string) (Attribute, error) {
	attr := Attribute{
		Key:   NormalizeKey(key),
		Kind:  KindForKey(key),
		Value: strings.TrimSpace(value),
	}
	if attr.Kind == AttributeDate {
		d, err := ParsePartialDate(attr.Value)
		if err != nil {
			return Attribute{}, err
		}
		attr.Date = &d
	}
	return attr, nil
}

// SortAttributes orders attributes by key.
func SortAttributes(attrs []Attribute) {
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
}
