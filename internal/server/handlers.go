package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/twinmaps/twinmap/internal/model"
	"github.com/twinmaps/twinmap/internal/store"
)

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cities": s.opts.Cities})
}

func (s *Server) handleListPairings(w http.ResponseWriter, r *http.Request) {
	raws, err := s.opts.Store.ListPairings(r.Context())
	if err != nil {
		zap.L().Error("server: list pairings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list pairings failed")
		return
	}
	pairings := model.FilterValid(raws)
	writeJSON(w, http.StatusOK, map[string]any{"pairings": pairings})
}

func (s *Server) handleCreatePairing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Locations map[string]model.RawLocation `json:"locations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Locations) == 0 {
		writeError(w, http.StatusBadRequest, "locations are required")
		return
	}

	pairing, err := s.opts.Store.CreatePairing(r.Context(), req.Locations)
	if err != nil {
		writeError(w, http.StatusBadRequest, "pairing needs at least two locations with [lat, lng] coordinates")
		return
	}

	s.syncHub(r.Context())
	writeJSON(w, http.StatusCreated, pairing)
}

func (s *Server) handleDeletePairing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.opts.Store.DeletePairing(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "pairing not found")
		return
	}
	if err != nil {
		zap.L().Error("server: delete pairing", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "delete pairing failed")
		return
	}

	s.syncHub(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required numbers")
		return
	}

	source := q.Get("source")
	target := q.Get("target")
	if source == "" || target == "" {
		writeError(w, http.StatusBadRequest, "source and target city keys are required")
		return
	}

	maxDistance := s.opts.MaxDistance
	if raw := q.Get("max_distance"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "max_distance must be a non-negative number")
			return
		}
		maxDistance = v
	}

	pairings, err := s.currentPairings(r.Context())
	if err != nil {
		zap.L().Error("server: fetch pairings for match", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "match evaluation failed")
		return
	}

	hover := model.LatLng{lat, lng}
	resp := map[string]any{
		"matches": s.opts.Palette.Match(&hover, pairings, source, target, maxDistance),
	}
	if q.Get("self") == "true" {
		resp["self_matches"] = s.opts.Palette.Match(&hover, pairings, source, source, maxDistance)
	}
	writeJSON(w, http.StatusOK, resp)
}

// currentPairings prefers the hub's polled snapshot and falls back to a
// direct store read when no hub is wired in.
func (s *Server) currentPairings(ctx context.Context) ([]model.Pairing, error) {
	if s.opts.Hub != nil {
		return s.opts.Hub.Pairings(), nil
	}
	raws, err := s.opts.Store.ListPairings(ctx)
	if err != nil {
		return nil, err
	}
	return model.FilterValid(raws), nil
}

// syncHub pushes the post-mutation pairing set into the hub so live
// match output does not wait for the next poll tick.
func (s *Server) syncHub(ctx context.Context) {
	if s.opts.Hub == nil {
		return
	}
	raws, err := s.opts.Store.ListPairings(ctx)
	if err != nil {
		zap.L().Warn("server: hub sync failed", zap.Error(err))
		return
	}
	s.opts.Hub.SetPairings(model.FilterValid(raws))
}
