package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"gangster-ledger/internal/api"
	"gangster-ledger/internal/config"
	"gangster-ledger/internal/feed"
	"gangster-ledger/internal/ledger"
	"gangster-ledger/internal/ratelimit"
	"gangster-ledger/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Seed bool
	Port string
}

// NewServeCommand runs the HTTP API until interrupted.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "load the sample roster and contract board")
	cmd.Flags().StringVar(&opts.Port, "port", "", "HTTP port (overrides HTTP_PORT)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg := opts.cfg
	if opts.Port != "" {
		cfg.HTTPPort = opts.Port
	}
	logger := slog.Default()

	st := store.New(time.Now)
	if opts.Seed || cfg.SeedSampleData {
		st.SeedSampleData()
		logger.Info("sample data loaded")
	}

	var (
		limiter    api.Limiter
		feedReader api.FeedReader
		svcOpts    = []ledger.Option{ledger.WithLogger(logger)}
	)
	if cfg.UsesRedis() {
		client := newRedisClient(cfg)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		if cfg.RateLimitEnabled {
			limiter = ratelimit.NewTokenBucket(client, cfg.RateLimitCapacity, cfg.RateLimitRefill, time.Hour)
		}
		if cfg.FeedEnabled {
			rf := feed.NewRedisFeed(client, cfg.FeedKey, cfg.FeedMaxLen)
			feedReader = rf
			svcOpts = append(svcOpts, ledger.WithFeed(rf))
		}
	}

	svc := ledger.New(st, svcOpts...)
	server := api.New(svc, limiter, feedReader, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", httpServer.Addr, "env", cfg.Env,
			"rate_limit", cfg.RateLimitEnabled, "feed", cfg.FeedEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
