// Package watch keeps matcher output live: it holds the current pairing
// snapshot and hover state, recomputes matches synchronously on every
// change, and publishes fresh results to subscribers. The matcher itself
// stays pure; all state lives here.
package watch

import (
	"sync"

	"github.com/twinmaps/twinmap/internal/match"
	"github.com/twinmaps/twinmap/internal/model"
)

// View identifies one evaluation the hub keeps live: which city's
// entries sit near the hover (Source), which city's entries get
// highlighted (Target), and the matching radius. Source and Target may
// be equal for self-matching.
type View struct {
	Source      string
	Target      string
	MaxDistance float64
}

// Update carries freshly computed matches for one view. A later Update
// for the same view supersedes earlier ones; subscribers simply discard
// stale results.
type Update struct {
	View    View
	Matches []model.MatchedPoint
}

// Hub fans hover and pairing-set changes out to recomputed match sets.
type Hub struct {
	palette match.Palette

	mu       sync.Mutex
	views    []View
	hovers   map[string]*model.LatLng // source city key -> current hover
	pairings []model.Pairing
	subs     map[int]chan Update
	nextSub  int
}

// NewHub creates a hub evaluating the given views.
func NewHub(palette match.Palette, views ...View) *Hub {
	return &Hub{
		palette: palette,
		views:   views,
		hovers:  make(map[string]*model.LatLng),
		subs:    make(map[int]chan Update),
	}
}

// Subscribe registers a listener for match updates. The returned cancel
// function unregisters it and closes the channel. Slow subscribers miss
// intermediate updates rather than blocking recomputation.
func (h *Hub) Subscribe(buffer int) (<-chan Update, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	ch := make(chan Update, buffer)
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// SetHover records the cursor position over one city's map (nil for no
// hover) and recomputes every view sourced from that city.
func (h *Hub) SetHover(cityKey string, hover *model.LatLng) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if hover != nil {
		c := *hover
		h.hovers[cityKey] = &c
	} else {
		h.hovers[cityKey] = nil
	}

	for _, v := range h.views {
		if v.Source == cityKey {
			h.publishLocked(v)
		}
	}
}

// SetPairings replaces the pairing snapshot and recomputes every view.
// The caller must have filtered the set through model.FilterValid.
func (h *Hub) SetPairings(pairings []model.Pairing) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pairings = append([]model.Pairing(nil), pairings...)
	for _, v := range h.views {
		h.publishLocked(v)
	}
}

// Pairings returns a copy of the current snapshot.
func (h *Hub) Pairings() []model.Pairing {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.Pairing(nil), h.pairings...)
}

func (h *Hub) publishLocked(v View) {
	matches := h.palette.Match(h.hovers[v.Source], h.pairings, v.Source, v.Target, v.MaxDistance)
	u := Update{View: v, Matches: matches}
	for _, ch := range h.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
