package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/brk3/habitkeeper/internal/cache/boltcache"
	"github.com/brk3/habitkeeper/internal/cache/redis"
	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/internal/server"
	"github.com/brk3/habitkeeper/internal/storage/bolt"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return startServer(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func openCache(ctx context.Context, store *bolt.Store) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return redis.Open(ctx, cfg.Cache.Redis)
	case "memory":
		return cache.NewMemory(), nil
	default:
		return boltcache.New(store.DB())
	}
}

func startServer(ctx context.Context) error {
	store, err := bolt.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}
	defer store.Close()

	c, err := openCache(ctx, store)
	if err != nil {
		return fmt.Errorf("opening %s cache: %w", cfg.Cache.Backend, err)
	}
	defer c.Close()

	s, err := server.New(cfg, store, server.WithCache(c))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", cfg.ListenAddr, "db", cfg.DBPath,
			"cache", cfg.Cache.Backend, "auth_enabled", cfg.AuthEnabled)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
