// Package store persists pairing records behind a backend-agnostic
// interface. List results are raw: callers run them through
// model.FilterValid before handing them to the matcher.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/twinmaps/twinmap/internal/model"
)

// ErrNotFound is returned when a pairing id does not exist.
var ErrNotFound = eris.New("store: pairing not found")

// Store defines the persistence interface for pairing records.
type Store interface {
	CreatePairing(ctx context.Context, locations map[string]model.RawLocation) (*model.Pairing, error)
	GetPairing(ctx context.Context, id string) (*model.Pairing, error)
	ListPairings(ctx context.Context) ([]model.RawPairing, error)
	DeletePairing(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
