package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qfactor/am"
	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/factor/store"
	"github.com/teranos/qfactor/logger"
	"github.com/teranos/qfactor/server"
	"github.com/teranos/qfactor/version"
)

// ServeCmd runs the HTTP and WebSocket API
var ServeCmd = newServeCmd()

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Serve the parser over HTTP and WebSocket",
		Long: `Start the factor API.

Endpoints:
  POST /api/factors/parse     {"text": "...", "league": "...", "save": true}
  POST /api/factors/batch     {"texts": ["...", "..."]}
  POST /api/factors/validate  factor JSON
  POST /api/factors/explain   factor JSON
  GET  /api/factors/history   ?limit=
  GET  /api/factors/{id}
  GET  /api/catalog/lookup    ?q=&type=&threshold=
  GET  /health
  GET  /ws                    one factor per text frame

Config and catalog files are reloaded on change without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, p, err := loadParser()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			var st *store.FactorStore
			if cfg.Storage.Enabled {
				var closeStore func()
				st, closeStore, err = openStore(cfg)
				defer closeStore()
				if err != nil {
					return err
				}
			}

			srv, err := server.New(server.Options{
				Parser:         p,
				Store:          st,
				AllowedOrigins: cfg.GetServerAllowedOrigins(),
				RateLimitRPS:   cfg.Server.RateLimitRPS,
				RateLimitBurst: cfg.Server.RateLimitBurst,
				MaxBatchSize:   cfg.Server.MaxBatchSize,
				Logger:         logger.ComponentLogger("server"),
			})
			if err != nil {
				return err
			}

			if stop := watchConfig(cfg, srv); stop != nil {
				defer stop()
			}

			ln, err := server.Listen(fmt.Sprintf(":%d", cfg.GetServerPort()))
			if err != nil {
				return err
			}
			printBanner(cmd, cfg, srv, ln.Addr().String())

			errChan := make(chan error, 1)
			go func() { errChan <- srv.Serve(ln) }()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case err := <-errChan:
				return errors.Wrap(err, "server stopped unexpectedly")
			case <-sigChan:
				pterm.Info.Println("Shutting down gracefully (press Ctrl+C again to force)...")
			}

			shutdownDone := make(chan error, 1)
			go func() { shutdownDone <- srv.Stop(context.Background()) }()
			select {
			case err := <-shutdownDone:
				if err != nil {
					return errors.Wrap(err, "shutdown error")
				}
				pterm.Success.Println("Server stopped cleanly")
				return nil
			case <-sigChan:
				pterm.Warning.Println("Force shutdown - exiting immediately")
				os.Exit(1)
				return nil
			}
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", am.DefaultServerPort, "Port to listen on (overrides server.port)")
	return cmd
}

// watchConfig hot-reloads the parser when a loaded config file or a
// watched catalog changes. It returns nil when there is nothing to watch.
func watchConfig(cfg *am.Config, srv *server.FactorServer) func() {
	paths := append([]string(nil), am.ConfigFilesLoaded...)
	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		paths = append(paths, cfg.Catalog.Path)
	}
	if len(paths) == 0 {
		return nil
	}

	w, err := am.NewConfigWatcher(paths...)
	if err != nil {
		logger.Warnw("config hot reload disabled", logger.FieldError, err)
		return nil
	}
	w.OnReload(func(next *am.Config) error {
		p, err := buildParser(next)
		if err != nil {
			return err
		}
		srv.SetParser(p)
		return nil
	})
	am.SetGlobalWatcher(w)
	w.Start()
	logger.Infow("watching config for changes", logger.FieldCount, len(paths))
	return func() {
		am.SetGlobalWatcher(nil)
		_ = w.Stop()
	}
}

func printBanner(cmd *cobra.Command, cfg *am.Config, srv *server.FactorServer, addr string) {
	info := version.Get()
	storage := "off"
	if cfg.Storage.Enabled {
		storage = cfg.GetDatabasePath()
	}
	stats := srv.Parser().Stats()
	rows := [][]string{
		{"qfactor", fmt.Sprintf("%s (commit %s)", info.Version, info.Short())},
		{"Listening", "http://" + addr},
		{"Backend", string(stats.Backend)},
		{"Cache", stats.String()},
		{"History", storage},
		{"Verbosity", logger.LevelName(Verbosity(cmd))},
	}
	if logger.ShouldOutput(Verbosity(cmd), logger.OutputConfig) {
		for _, path := range am.ConfigFilesLoaded {
			rows = append(rows, []string{"Config", path})
		}
	}
	_ = pterm.DefaultTable.WithData(rows).WithWriter(cmd.OutOrStdout()).Render()
	pterm.Info.WithWriter(cmd.OutOrStdout()).Println("Press Ctrl+C to stop")
}
