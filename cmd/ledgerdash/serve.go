package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shravanasati/ledgerdash/internal/config"
	"github.com/shravanasati/ledgerdash/internal/dispatch"
	"github.com/shravanasati/ledgerdash/internal/ledger"
	"github.com/shravanasati/ledgerdash/internal/logging"
	"github.com/shravanasati/ledgerdash/internal/middleware"
	"github.com/shravanasati/ledgerdash/internal/server"
	"github.com/shravanasati/ledgerdash/internal/static"
	"github.com/shravanasati/ledgerdash/internal/web"
)

type serveFlags struct {
	configPath string
	port       int
	assets     string
	db         string
	verbose    bool
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the dashboard server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath, os.LookupEnv)
			if err != nil {
				return err
			}
			f.applyTo(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Log.Level,
				Development: cfg.Log.Development,
				Verbose:     f.verbose,
			})
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger, nil)
		},
	}

	f.bind(cmd)
	return cmd
}

func (f *serveFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a config.yaml file")
	cmd.Flags().IntVar(&f.port, "port", 0, fmt.Sprintf("port to listen on (default $PORT or %d)", config.DefaultPort))
	cmd.Flags().StringVar(&f.assets, "assets", "", "directory of the built client bundle")
	cmd.Flags().StringVar(&f.db, "db", "", "path to the ledger SQLite file")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log at debug level")
}

// applyTo copies the flags the user actually set over cfg.
func (f *serveFlags) applyTo(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.HTTP.Port = f.port
	}
	if cmd.Flags().Changed("assets") {
		cfg.Assets.Root = f.assets
	}
	if cmd.Flags().Changed("db") {
		cfg.Ledger.Path = f.db
	}
}

// serve wires the components and runs the server until ctx is done. ready,
// when set, receives the bound address once the listener is up.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, ready func(net.Addr)) error {
	resolver, err := static.NewResolver(cfg.Assets.Root, cfg.AllowList())
	if err != nil {
		return err
	}
	if info, err := os.Stat(resolver.Root()); err != nil || !info.IsDir() {
		logger.Warn("asset root is not a directory, static requests will fall through", zap.String("root", resolver.Root()))
	}

	store, err := ledger.Open(ctx, cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	handler := web.New(store, web.Options{
		Accounts:      cfg.Auth.Accounts,
		PageTransfers: cfg.Ledger.PageTransfers,
		Logger:        logger.Named("web"),
	})
	d := dispatch.New(resolver, static.DefaultMimeTable(), handler, logger.Named("dispatch"))

	accessLog := middleware.LoggingMiddleware(logger.Named("access"))
	if cfg.Log.Color {
		accessLog = middleware.LoggingMiddlewareColored(logger.Named("access"))
	}

	srv := server.New(server.ServerOpts{
		Address:          cfg.Address(),
		ReadTimeout:      cfg.HTTP.ReadTimeout,
		WriteTimeout:     cfg.HTTP.WriteTimeout,
		KeepAliveTimeout: cfg.HTTP.KeepAliveTimeout,
		MaxHeaderBytes:   cfg.HTTP.MaxHeaderBytes,
		Logger:           logger.Named("server"),
	}, accessLog(d.Dispatch))
	if err := srv.Listen(); err != nil {
		return err
	}
	logger.Info("serving dashboard",
		zap.Stringer("address", srv.Addr()),
		zap.String("assets", resolver.Root()),
		zap.String("ledger", store.Path()),
	)
	if ready != nil {
		ready(srv.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(); !errors.Is(err, server.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return srv.Close()
	})
	return g.Wait()
}
