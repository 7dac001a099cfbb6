// Package match computes which paired points to highlight near a hover
// coordinate, and assigns each highlight a color that is stable for its
// pairing across renders and sessions. Every function here is pure:
// all state comes in through the arguments, nothing is retained between
// calls, and identical inputs always produce identical outputs.
package match

import (
	"github.com/twpayne/go-geom/xy"

	"github.com/twinmaps/twinmap/internal/model"
)

// DefaultMaxDistance is the proximity radius in planar degrees, roughly
// 5 km at mid-latitudes. Distances are straight Euclidean over raw
// degrees, not geodesic.
const DefaultMaxDistance = 0.05

// Match evaluates the pairing set against a hover coordinate.
//
// For each pairing whose sourceKey point lies strictly within
// maxDistance of hover, one MatchedPoint is emitted carrying the
// targetKey point's coordinates, the distance normalized by maxDistance,
// and the pairing's color. sourceKey and targetKey may be equal
// (self-matching on the map being hovered). Pairings missing either role
// key are skipped silently; a nil hover yields no matches. Input order
// is preserved and no deduplication is performed.
func Match(hover *model.LatLng, pairings []model.Pairing, sourceKey, targetKey string, maxDistance float64) []model.MatchedPoint {
	return DefaultPalette.Match(hover, pairings, sourceKey, targetKey, maxDistance)
}

// Match is the palette-parameterized form of the package-level Match.
func (p Palette) Match(hover *model.LatLng, pairings []model.Pairing, sourceKey, targetKey string, maxDistance float64) []model.MatchedPoint {
	if hover == nil {
		return nil
	}

	var matches []model.MatchedPoint
	for _, pairing := range pairings {
		src, ok := pairing.Location(sourceKey)
		if !ok {
			continue
		}
		dst, ok := pairing.Location(targetKey)
		if !ok {
			continue
		}

		d := xy.Distance(hover.Coord(), src.Coordinates.Coord())
		if d >= maxDistance {
			continue
		}

		matches = append(matches, model.MatchedPoint{
			ID:                 sourceKey + targetKey,
			Coordinates:        dst.Coordinates,
			NormalizedDistance: d / maxDistance,
			Color:              p.ColorFor(src.Coordinates, dst.Coordinates),
		})
	}
	return matches
}
