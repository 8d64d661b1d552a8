package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/chartdir/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command interpreter over HTTP",
		Long: `Serve runs the HTTP host and the periodic sweep of idle chart handles.

Endpoints:
  POST   /exec                      run one command (JSON) or a script (text/plain)
  GET    /charts                    list live handles
  DELETE /charts/{id}               destroy a handle
  GET    /charts/{id}/image.{fmt}   render a handle
  POST   /gc                        sweep idle handles now
  GET    /run/{name}                run <script_dir>/<name>.chart with query variables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			sess, err := c.open(ctx, "", noCache)
			if err != nil {
				return err
			}
			defer sess.Close()

			srv := server.New(server.Options{
				Interp:       sess.interp,
				ScriptDir:    c.cfg.Server.ScriptDir,
				ReadTimeout:  c.cfg.Server.ReadTimeout.Std(),
				WriteTimeout: c.cfg.Server.WriteTimeout.Std(),
				Logger:       c.Logger,
			})

			c.Logger.Info("starting chartdir",
				"store", c.cfg.Charts.Store,
				"idle_timeout", c.cfg.Charts.IdleTimeout,
				"gc_interval", c.cfg.Charts.GCInterval,
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(gctx, addr) })
			g.Go(func() error { return sess.reg.Run(gctx, c.cfg.Charts.GCInterval.Std()) })
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the rendered image cache")

	return cmd
}
