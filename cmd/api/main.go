package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/barewire/storefront-orders/internal/catalog"
	"github.com/barewire/storefront-orders/internal/config"
	"github.com/barewire/storefront-orders/internal/httpx"
	kafkax "github.com/barewire/storefront-orders/internal/kafka"
	"github.com/barewire/storefront-orders/internal/notify"
	"github.com/barewire/storefront-orders/internal/orders"
	"github.com/barewire/storefront-orders/internal/postgres"
	"github.com/barewire/storefront-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for confirmation events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicOrderConfirmation, 1024, log)
	prod.Start(ctx)

	// Wiring
	ledger := &catalog.Ledger{DB: db}
	// The catalog service owns product records in production; local runs can
	// seed a few so placements have stock to reserve.
	if os.Getenv("SEED_DEMO_PRODUCTS") != "" {
		for _, p := range []catalog.Product{
			{ID: "64f1b2c3d4e5f6a7b8c9d0e1", Name: "Widget", Price: 1000, Qty: 100},
			{ID: "64f1b2c3d4e5f6a7b8c9d0e2", Name: "Gadget", Price: 500, Qty: 50},
		} {
			if err := ledger.Upsert(ctx, p); err != nil {
				log.Warn("seed product", zap.String("product_id", p.ID), zap.Error(err))
			}
		}
	}
	repo := &orders.Repo{DB: db}
	svc := &orders.Service{
		Ledger:    ledger,
		Store:     repo,
		Notifier:  &notify.Trigger{Producer: prod, Service: cfg.ServiceName},
		Validator: orders.NewValidator(),
		Log:       log,
	}

	router := httpx.NewRouter(cfg.ServiceName)
	oh := &httpx.OrdersHandler{
		Placer:    svc,
		Directory: repo,
		Products:  ledger,
		Cache:     &httpx.RedisCache{Client: rdb},
		Log:       log,
		JWTSecret: cfg.JWT.Secret,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	msrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
		if err := msrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
		case <-gctx.Done():
		}

		log.Info("shutting down...")
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
		_ = msrv.Shutdown(sctx)
		prod.Close() // flush remaining confirmation events
		cancel()
		prod.WaitClosed()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
