package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/internal/server"
	"github.com/kintreehq/kintree/pkg/cache"
)

// serveCommand creates the serve command exposing the layout API over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		redisURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Exposes POST /v1/layout, which accepts a family snapshot plus layout options
and returns a positioned diagram, GET /v1/snapshot/{hash} to retrieve the
family document behind a previous layout, and GET /healthz for liveness
checks.

Diagrams are cached between requests: by default in the local file cache,
or in Redis when --redis is set, which lets multiple instances share one
cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Server entries live under their own key prefix so a Redis
			// shared with CLI users never collides.
			keyer := cache.NewScopedKeyer(nil, "api:")
			runner, err := c.newRunner(ctx, noCache, redisURL, keyer)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(addr, runner, c.Logger)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL for shared caching (default: local file cache)")

	return cmd
}
