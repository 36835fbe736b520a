// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/sirco-master/chess-online/internal/cache"
	"github.com/sirco-master/chess-online/internal/config"
	"github.com/sirco-master/chess-online/internal/game"
	"github.com/sirco-master/chess-online/internal/handlers"
	"github.com/sirco-master/chess-online/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging, os.Stdout)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var recorder game.Recorder
	if cfg.Redis.Enabled {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			logger.Warnf("game archive disabled: %v", err)
		} else {
			defer rdb.Close()
			recorder = cache.NewActionQueue(rdb, cfg.Redis.Queue, logger)
			logger.Infof("Archiving game actions to redis list %q", cfg.Redis.Queue)
		}
	}

	hub := handlers.NewHub(logger)
	srv := game.NewServer(hub, game.Options{
		SettleDelay: cfg.Match.SettleDelay,
		GraceWindow: cfg.Match.GraceWindow,
		Recorder:    recorder,
		Logger:      logger,
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handlers.NewRouter(logger, srv, hub, handlers.WSConfig{
			OriginPatterns: cfg.Server.OriginPatterns,
			OutboxSize:     cfg.Match.OutboxSize,
			PingInterval:   cfg.Match.PingInterval,
		}),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Infof("Running on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to shutdown server")
	}
	logger.WithFields(logrus.Fields{"games": srv.Stats().Games}).Info("server stopped")
}
