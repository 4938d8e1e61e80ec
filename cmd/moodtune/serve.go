package main

import (
	"github.com/spf13/cobra"

	"github.com/justestif/moodtune/internal/playlists"
	"github.com/justestif/moodtune/internal/web"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = g.cfg.Addr
			}
			if !g.cfg.HasCredentials() {
				g.logger.Warn("SPOTIFY_ID and SPOTIFY_SECRET are not set; only classification will work")
			}

			a, err := newApp(ctx, g.cfg, g.logger)
			if err != nil {
				return err
			}
			defer a.Close()
			a.pruneCache(ctx)

			server := web.NewServer(web.ServerConfig{
				Addr:          addr,
				SearchTimeout: g.cfg.SearchTimeout,
				Logger:        g.logger.Named("http"),
				Gatherer:      a.registry,
			}, web.Services{
				Classifier:  a.classifier,
				Finder:      a.finder,
				Recommender: a.recommender,
				Playlists:   playlists.NewStore(),
			})
			return server.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from ADDR)")
	return cmd
}
