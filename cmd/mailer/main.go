package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/barewire/storefront-orders/internal/config"
	kafkax "github.com/barewire/storefront-orders/internal/kafka"
	"github.com/barewire/storefront-orders/internal/mailer"
	"github.com/barewire/storefront-orders/internal/notify"
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

	// Redis (event dedup)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// SMTP sender; credentials come in through config, never ambient state.
	sender, err := mailer.NewSender(cfg.SMTP, log)
	if err != nil {
		log.Fatal("smtp client", zap.Error(err))
	}

	svc := &mailer.Service{
		Sender:      sender,
		Dedup:       &mailer.RedisDedup{Client: rdb, Service: cfg.ServiceName + "-mailer"},
		Log:         log,
		CompanyName: getenv("COMPANY_NAME", "Storefront"),
	}

	group := getenv("MAILER_GROUP", "mailer-svc")
	workers := mustAtoi(os.Getenv("MAILER_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, notify.TopicOrderConfirmation, workers, log)

	go func() {
		log.Info("mailer consumer started",
			zap.String("group", group),
			zap.String("topic", notify.TopicOrderConfirmation),
			zap.Int("workers", workers))
		if err := cons.Start(ctx, svc.HandleConfirmation); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
