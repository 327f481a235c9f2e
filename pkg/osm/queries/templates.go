// Package queries provides utilities for building Overpass API queries.
package queries

import (
	"fmt"
	"strings"

	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
)

// Builder provides a fluent interface for composing Overpass QL queries
// with proper syntax and formatting. All queries request JSON output.
type Builder struct {
	buf        strings.Builder
	hasElement bool
}

// NewBuilder creates a new Overpass query builder.
func NewBuilder() *Builder {
	b := &Builder{}
	b.buf.WriteString("[out:json];")
	return b
}

// WithNodeInBbox adds a node query within a bounding box with the given filter.
func (b *Builder) WithNodeInBbox(box geo.BoundingBox, filter string) *Builder {
	b.addElement("node", box, filter)
	return b
}

// WithWayInBbox adds a way query within a bounding box with the given filter.
func (b *Builder) WithWayInBbox(box geo.BoundingBox, filter string) *Builder {
	b.addElement("way", box, filter)
	return b
}

// WithRelationInBbox adds a relation query within a bounding box with the given filter.
func (b *Builder) WithRelationInBbox(box geo.BoundingBox, filter string) *Builder {
	b.addElement("relation", box, filter)
	return b
}

// WithAllInBbox adds node, way, and relation queries for the same filter.
func (b *Builder) WithAllInBbox(box geo.BoundingBox, filter string) *Builder {
	return b.WithNodeInBbox(box, filter).
		WithWayInBbox(box, filter).
		WithRelationInBbox(box, filter)
}

// WithOutput closes the union group and appends the output statement.
// Common output types are "body" and "center"; "center" adds centroid
// coordinates to ways and relations.
func (b *Builder) WithOutput(outputType string) *Builder {
	if b.hasElement {
		b.buf.WriteString(fmt.Sprintf(");out %s;", outputType))
	}
	return b
}

// Build returns the complete Overpass query string. It should be called
// after WithOutput.
func (b *Builder) Build() string {
	return b.buf.String()
}

// addElement appends one element statement inside the union group.
func (b *Builder) addElement(elementType string, box geo.BoundingBox, filter string) {
	if !b.hasElement {
		b.buf.WriteString("(")
		b.hasElement = true
	}
	b.buf.WriteString(fmt.Sprintf("%s%s(%s);", elementType, filter, box))
}

// KeyFilter returns a tag filter matching the presence of a key,
// e.g. ["amenity"].
func KeyFilter(key string) string {
	return fmt.Sprintf("[%q]", key)
}

// ValueFilter returns a tag filter matching an exact key=value pair,
// e.g. ["amenity"="cafe"].
func ValueFilter(key, value string) string {
	return fmt.Sprintf("[%q=%q]", key, value)
}

// ValuesFilter returns a tag filter matching any of the given values for
// a key using an anchored regular expression, e.g. ["amenity"~"^(cafe|bar)$"].
// With no values it degrades to a key-presence filter.
func ValuesFilter(key string, values []string) string {
	if len(values) == 0 {
		return KeyFilter(key)
	}
	if len(values) == 1 {
		return ValueFilter(key, values[0])
	}
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = regexpEscape(v)
	}
	return fmt.Sprintf("[%q~\"^(%s)$\"]", key, strings.Join(escaped, "|"))
}

// regexpEscape escapes Overpass regular expression metacharacters in a
// tag value. OSM tag values are almost always plain words, so this only
// needs to cover the common cases.
func regexpEscape(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch r {
		case '.', '(', ')', '[', ']', '{', '}', '^', '$', '|', '*', '+', '?', '\\':
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// NearbyPOIs builds a query returning nodes in the box that carry any of
// the given category keys (amenity, shop, tourism, ...).
func NearbyPOIs(box geo.BoundingBox, categories []string) string {
	b := NewBuilder()
	for _, category := range categories {
		b.WithNodeInBbox(box, KeyFilter(category))
	}
	return b.WithOutput("body").Build()
}

// CategorySearch builds a query returning nodes, ways, and relations in
// the box carrying the category key, optionally restricted to the given
// subcategory values. The output includes centroids for ways and
// relations so callers can resolve coordinates.
func CategorySearch(box geo.BoundingBox, category string, subcategories []string) string {
	filter := ValuesFilter(category, subcategories)
	return NewBuilder().
		WithAllInBbox(box, filter).
		WithOutput("center").
		Build()
}
