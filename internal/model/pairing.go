// Package model defines the pairing domain types shared by the store,
// matcher, and HTTP layers.
package model

import (
	"math"
	"time"

	"github.com/twpayne/go-geom"
)

// LatLng is a coordinate pair in planar degrees, serialized as a
// two-element JSON array [lat, lng].
type LatLng [2]float64

// Lat returns the latitude component.
func (c LatLng) Lat() float64 { return c[0] }

// Lng returns the longitude component.
func (c LatLng) Lng() float64 { return c[1] }

// Coord converts the pair to a go-geom coordinate.
func (c LatLng) Coord() geom.Coord { return geom.Coord{c[0], c[1]} }

// Finite reports whether both components are finite numbers.
func (c LatLng) Finite() bool {
	return !math.IsNaN(c[0]) && !math.IsInf(c[0], 0) &&
		!math.IsNaN(c[1]) && !math.IsInf(c[1], 0)
}

// LocationPoint is a named place on one city's map. Immutable once
// constructed.
type LocationPoint struct {
	Label       string `json:"label"`
	Coordinates LatLng `json:"coordinates"`
}

// Pairing associates one LocationPoint per city key. A well-formed
// pairing carries at least two city entries; records that fail that bar
// are rejected by validation before they reach the matcher.
type Pairing struct {
	ID        string                   `json:"id"`
	Locations map[string]LocationPoint `json:"locations"`
	CreatedAt time.Time                `json:"created_at"`
}

// Location resolves the entry for the given city key.
func (p Pairing) Location(cityKey string) (LocationPoint, bool) {
	lp, ok := p.Locations[cityKey]
	return lp, ok
}

// MatchedPoint is an ephemeral highlight computed for one pairing near a
// hover coordinate. It is recomputed on every evaluation and never
// persisted. ID correlates the point back to the (source, target) role
// pair that produced it and is not globally unique.
type MatchedPoint struct {
	ID                 string  `json:"id"`
	Coordinates        LatLng  `json:"coordinates"`
	NormalizedDistance float64 `json:"normalized_distance"`
	Color              string  `json:"color"`
}
