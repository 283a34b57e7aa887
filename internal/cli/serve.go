package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"plp-bookstore/internal/daemon"
	"plp-bookstore/internal/db"
	"plp-bookstore/internal/handlers"
	"plp-bookstore/internal/seed"
	"plp-bookstore/internal/server"
	"plp-bookstore/internal/utils"
)

type ServeOptions struct {
	*RootOptions
	Port      string
	SeedEmpty bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Long: `Serve the books catalog as a JSON API.

Reads are public. Mutations and /admin routes need a bearer token from
POST /login. Prometheus metrics are exposed on /metrics.

Example:
  bookstore serve --port 8080 --seed-empty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().BoolVar(&opts.SeedEmpty, "seed-empty", false, "load the seed dataset when the books collection is empty")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := opts.Config
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if cfg.JWTSecret == "" {
		return NewExitError(ExitCommandError, "JWT_SECRET must be set to serve")
	}
	utils.InitJwtSecret(cfg.JWTSecret)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.close()

	if opts.SeedEmpty {
		if err := seedIfEmpty(ctx, opts.RootOptions, s); err != nil {
			return WrapExitError(ExitFailure, "seeding failed", err)
		}
	}

	deps := server.Deps{
		Books:       s.books,
		AuditLogger: s.logger,
		StatsCache:  handlers.NewStatsCache(cfg.StatsCacheTTL),
		Timeout:     cfg.RequestTimeout,
		Ping:        db.Ping,
	}
	deps.Credentials.UserId = cfg.UserId
	deps.Credentials.Username = cfg.UserName
	deps.Credentials.UserPassword = cfg.UserPassword

	exporter := &daemon.LogExporter{Coll: s.audit, Interval: cfg.AuditExportInterval}
	stopExporter := exporter.Start(ctx)
	defer stopExporter()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitCommandError, "server failed", err)
		}
	}

	zap.S().Info("Shutting down gracefully...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "graceful shutdown failed", err)
	}
	zap.S().Info("Server shut down.")
	return nil
}

func seedIfEmpty(ctx context.Context, opts *RootOptions, s *session) error {
	n, err := s.books.CountDocuments(ctx, bson.D{})
	if err != nil {
		return err
	}
	if n > 0 {
		zap.S().Debugf("Books collection has %d documents, skipping seed", n)
		return nil
	}
	books, err := seed.Load(opts.Config.SeedFile)
	if err != nil {
		return err
	}
	_, err = seed.Insert(ctx, s.books, books, false)
	return err
}
