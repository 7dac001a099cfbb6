package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/twinmaps/twinmap/internal/model"
	"github.com/twinmaps/twinmap/internal/store"
)

// Poller refetches the pairing set from storage on a fixed interval and
// feeds the validated result to a Hub. Other writers (the HTTP API, the
// import command) become visible to live match output within one tick.
type Poller struct {
	store    store.Store
	hub      *Hub
	interval time.Duration
}

// NewPoller creates a poller. The interval must be positive.
func NewPoller(st store.Store, hub *Hub, interval time.Duration) *Poller {
	return &Poller{store: st, hub: hub, interval: interval}
}

// Run refreshes immediately, then on every tick until ctx is canceled.
// Fetch failures are logged and retried on the next tick; the previous
// snapshot stays live in the meantime.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Refresh(ctx); err != nil {
		zap.L().Warn("watch: initial pairing fetch failed", zap.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				zap.L().Warn("watch: pairing refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh fetches, validates, and installs the pairing set once.
func (p *Poller) Refresh(ctx context.Context) error {
	raws, err := p.store.ListPairings(ctx)
	if err != nil {
		return err
	}
	p.hub.SetPairings(model.FilterValid(raws))
	return nil
}
