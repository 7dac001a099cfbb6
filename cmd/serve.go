package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/twinmaps/twinmap/internal/config"
	"github.com/twinmaps/twinmap/internal/server"
	"github.com/twinmaps/twinmap/internal/watch"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pairing and match API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		hub := watch.NewHub(cfg.Color.Palette(), buildViews(cfg)...)
		poller := watch.NewPoller(st, hub, cfg.Refresh.Interval())

		srv := server.New(server.Options{
			Store:       st,
			Hub:         hub,
			Palette:     cfg.Color.Palette(),
			Cities:      cfg.Cities,
			MaxDistance: cfg.Match.MaxDistance,
			CORSOrigins: cfg.Server.CORSOrigins,
			RateLimit:   cfg.Server.RateLimit,
			RateBurst:   cfg.Server.RateBurst,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Router(),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return poller.Run(ctx)
		})
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// buildViews derives the hub's live evaluations from the configured
// cities: every ordered cross-city pair, plus self-matching views when
// enabled.
func buildViews(cfg *config.Config) []watch.View {
	var views []watch.View
	for _, src := range cfg.Cities {
		for _, dst := range cfg.Cities {
			if src.Key == dst.Key {
				continue
			}
			views = append(views, watch.View{
				Source:      src.Key,
				Target:      dst.Key,
				MaxDistance: cfg.Match.MaxDistance,
			})
		}
		if cfg.Match.SelfMatch {
			views = append(views, watch.View{
				Source:      src.Key,
				Target:      src.Key,
				MaxDistance: cfg.Match.MaxDistance,
			})
		}
	}
	return views
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
