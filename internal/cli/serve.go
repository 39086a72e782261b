package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nprs/internal/server"
	"github.com/matzehuels/nprs/pkg/cache"
	"github.com/matzehuels/nprs/pkg/passes"
)

// serveOpts holds the flags of the serve command. Zero values fall back to
// the config file.
type serveOpts struct {
	addr       string
	redisAddr  string
	timeout    time.Duration
	noCache    bool
	allowFiles bool
}

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		Long: `Serve the render pipeline over HTTP.

Routes:
  POST /render   multipart form: script, image, arg (repeatable), format
  POST /check    form: script, arg
  POST /graph    form: script, arg, format (dot, svg, json)
  GET  /passes   catalog of the passes scripts may use
  GET  /healthz  liveness and build info

Rendered outputs share the configured cache. Pass --redis to share it
between several server instances.

Passes that read files on the server (Texture) are disabled unless
--allow-files is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "use the redis cache at this address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default from config, 1m)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.allowFiles, "allow-files", false, "allow scripts to read files on the server")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	c.applyServeFlags(opts)
	cfg := c.Config

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "serve:")

	srvOpts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout.Duration),
		server.WithMaxUploadBytes(cfg.Server.MaxUploadMB<<20),
		server.WithDefaultArgs(cfg.Args...),
	}
	if opts.allowFiles {
		srvOpts = append(srvOpts, server.WithRegistry(passes.Registry()))
	}
	srv := server.New(runner, c.Logger, srvOpts...)

	printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
	printDetail("cache: %s", cfg.Cache.Backend)

	err = srv.ListenAndServe(ctx, cfg.Server.Addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// applyServeFlags overrides config values with the flags that were set.
func (c *CLI) applyServeFlags(opts serveOpts) {
	if opts.addr != "" {
		c.Config.Server.Addr = opts.addr
	}
	if opts.timeout > 0 {
		c.Config.Server.Timeout.Duration = opts.timeout
	}
	if opts.redisAddr != "" {
		c.Config.Cache.Backend = backendRedis
		c.Config.Cache.Redis.Addr = opts.redisAddr
	}
	if opts.noCache {
		c.Config.Cache.Backend = backendNone
	}
}
