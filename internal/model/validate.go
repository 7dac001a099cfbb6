package model

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// RawLocation is an unvalidated location entry as it comes out of
// storage or an API request body.
type RawLocation struct {
	Label       string    `json:"label"`
	Coordinates []float64 `json:"coordinates"`
}

// RawPairing is an unvalidated pairing record. Locations is a city-keyed
// map of raw entries; keys are arbitrary strings, not a fixed pair of
// field names.
type RawPairing struct {
	ID        string                 `json:"id"`
	Locations map[string]RawLocation `json:"locations"`
	CreatedAt time.Time              `json:"created_at"`
}

// Pairing validates the raw record and converts it. A location entry is
// valid when its coordinate array holds exactly two finite numbers; the
// record as a whole is well-formed when at least two city entries are
// valid. Invalid entries are dropped, and a record left with fewer than
// two is rejected.
func (r RawPairing) Pairing() (Pairing, error) {
	locs := make(map[string]LocationPoint, len(r.Locations))
	for key, raw := range r.Locations {
		if len(raw.Coordinates) != 2 {
			continue
		}
		c := LatLng{raw.Coordinates[0], raw.Coordinates[1]}
		if !c.Finite() {
			continue
		}
		locs[key] = LocationPoint{
			Label:       norm.NFC.String(raw.Label),
			Coordinates: c,
		}
	}
	if len(locs) < 2 {
		return Pairing{}, eris.Errorf("model: pairing %s has %d valid locations, need at least 2", r.ID, len(locs))
	}
	return Pairing{ID: r.ID, Locations: locs, CreatedAt: r.CreatedAt}, nil
}

// FilterValid converts raw records to well-formed Pairings, logging and
// skipping rejects. One malformed row never blanks the whole set.
func FilterValid(raws []RawPairing) []Pairing {
	pairings := make([]Pairing, 0, len(raws))
	for _, raw := range raws {
		p, err := raw.Pairing()
		if err != nil {
			zap.L().Warn("model: skipping malformed pairing",
				zap.String("id", raw.ID),
				zap.Error(err),
			)
			continue
		}
		pairings = append(pairings, p)
	}
	return pairings
}

// DecodeRawLocations parses a JSON city-keyed location map, the boundary
// shape shared by the store column and the create-pairing request body.
func DecodeRawLocations(data []byte) (map[string]RawLocation, error) {
	var locs map[string]RawLocation
	if err := json.Unmarshal(data, &locs); err != nil {
		return nil, eris.Wrap(err, "model: decode locations")
	}
	return locs, nil
}
