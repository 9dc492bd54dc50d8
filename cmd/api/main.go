package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Sadragit2004/sumsungmarkaz/internal/cart"
	"github.com/Sadragit2004/sumsungmarkaz/internal/catalog"
	"github.com/Sadragit2004/sumsungmarkaz/internal/config"
	"github.com/Sadragit2004/sumsungmarkaz/internal/httpx"
	kafkax "github.com/Sadragit2004/sumsungmarkaz/internal/kafka"
	"github.com/Sadragit2004/sumsungmarkaz/internal/orders"
	"github.com/Sadragit2004/sumsungmarkaz/internal/postgres"
	"github.com/Sadragit2004/sumsungmarkaz/internal/redisx"
	"github.com/Sadragit2004/sumsungmarkaz/internal/session"
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

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsDir); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, logger)
	prod.Start()

	// Collaborators
	lookup := &catalog.PG{DB: db}
	carts := &session.RedisStore{RDB: rdb, TTL: cfg.CartTTL}
	engine := &cart.Engine{Store: carts, Catalog: lookup, Log: logger}
	repo := &orders.Repo{DB: db}
	builder := &orders.Builder{Orders: repo, Catalog: lookup, Carts: carts, Log: logger}

	router := httpx.NewRouter(15 * time.Second)
	ch := &httpx.CartHandler{Engine: engine, Log: logger}
	ch.Register(router)
	oh := &httpx.OrdersHandler{
		Builder:  builder,
		Orders:   repo,
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName,
		TaxRate:  cfg.TaxRatePercent,
		Log:      logger,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
}
