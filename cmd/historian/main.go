// cmd/historian/main.go drains archived game actions from the Redis queue into Postgres.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/sirco-master/chess-online/internal/cache"
	"github.com/sirco-master/chess-online/internal/config"
	"github.com/sirco-master/chess-online/internal/database"
	"github.com/sirco-master/chess-online/internal/historian"
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

	rdb, err := cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		logger.Fatal(err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()

	store := database.NewActionStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal(err)
	}

	svc := historian.NewService(
		cache.NewActionQueue(rdb, cfg.Redis.Queue, logger),
		store,
		cfg.Historian.BatchSize,
		cfg.Historian.FlushInterval,
		logger,
	)
	if err := svc.Start(ctx); err != nil {
		logger.Fatal(err)
	}

	<-ctx.Done()
	logger.Info("historian shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("final flush failed")
	}
	logger.Info("Historian shutdown complete.")
}
