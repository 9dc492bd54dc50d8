package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Sadragit2004/sumsungmarkaz/internal/config"
	"github.com/Sadragit2004/sumsungmarkaz/internal/fulfillment"
	kafkax "github.com/Sadragit2004/sumsungmarkaz/internal/kafka"
	"github.com/Sadragit2004/sumsungmarkaz/internal/orders"
	"github.com/Sadragit2004/sumsungmarkaz/internal/postgres"
	"github.com/Sadragit2004/sumsungmarkaz/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, logger)
	prod.Start()

	svc := &fulfillment.Service{
		Orders:      &orders.Repo{DB: db},
		Redis:       rdb,
		Producer:    prod,
		ServiceName: cfg.ServiceName + "-fulfillment",
		Log:         logger,
	}

	group := getenv("FULFILLMENT_GROUP", "fulfillment-svc")
	workers := getint(os.Getenv("FULFILLMENT_WORKERS"), 8)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderCreated, workers, logger)

	go func() {
		logger.Info("fulfillment consumer started",
			zap.String("group", group),
			zap.String("topic", orders.TopicOrderCreated),
			zap.Int("workers", workers))
		if err := cons.Start(ctx, svc.HandleOrderCreated); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down consumer")
	cancel()
	time.Sleep(500 * time.Millisecond)
	prod.Close()
	prod.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
