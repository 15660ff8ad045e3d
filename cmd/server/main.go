package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/brawler"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/config"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/feed"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/httpapi"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/lobby"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/logging"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/matcherino"
	"github.com/DoyleJ11/brawl-draft-tracker/internal/tracker"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids, err := brawler.LoadIdentityMap(cfg.IDMapPath)
	if err != nil {
		logger.Warn("brawler id map unavailable, ids will pass through",
			zap.String("path", cfg.IDMapPath), zap.Error(err))
	}
	logger.Info("brawler id map loaded", zap.Int("entries", ids.Len()))

	client := matcherino.New(matcherino.WithBaseURL(cfg.MatcherinoBaseURL))
	tr := tracker.New(client, ids, tracker.Config{
		PollInterval: cfg.PollInterval,
		FetchTimeout: cfg.FetchTimeout,
	}, logger)

	lb := lobby.NewLobby(ctx, tr.Current(), logger)
	tr.AddPublisher(lb)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = feed.Connect(ctx, cfg.RedisURL)
		if err != nil {
			// the mirror is optional, the overlay keeps working without it
			logger.Warn("redis unavailable, feed disabled", zap.Error(err))
		} else {
			tr.AddPublisher(feed.NewRedisPublisher(rdb, cfg.RedisTTL))
			logger.Info("redis feed enabled", zap.String("stream", feed.DefaultStream))
		}
	}

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		tr.Run(ctx)
	}()

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.SetupRoutes(httpapi.Options{
			Tracker:       tr,
			Lobby:         lb,
			ControlSecret: cfg.ControlSecret,
			CORSOrigins:   cfg.CORSOrigins,
			Log:           logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lb.Send(lobby.Shutdown{})
	err = srv.Shutdown(shutdownCtx)

	// Run waits for in-flight ticks, so nothing publishes to redis after this
	stop()
	select {
	case <-pollDone:
	case <-shutdownCtx.Done():
		err = multierr.Append(err, fmt.Errorf("waiting for poll loop: %w", shutdownCtx.Err()))
	}

	if rdb != nil {
		err = multierr.Append(err, rdb.Close())
	}
	return err
}
