package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/checkins/internal/config/checkins"
	"github.com/NordCoder/checkins/internal/foursquare"
	"github.com/NordCoder/checkins/internal/obs"
	"github.com/NordCoder/checkins/internal/obs/retry"
	kafkaRepo "github.com/NordCoder/checkins/internal/repository/kafka"
	"github.com/NordCoder/checkins/internal/services/checkins"
	"github.com/NordCoder/checkins/internal/services/relay"
	"github.com/NordCoder/checkins/internal/services/relay/repo"

	"go.uber.org/zap"
)

func main() {
	// init
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := flag.String("config", os.Getenv("CHECKINS_CONFIG"), "path to yaml config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("starting relay",
		zap.Any("kafka_out", cfg.Kafka),
		zap.Duration("tick", cfg.Relay.Tick),
		zap.String("metrics_addr", cfg.Relay.MetricsAddr),
	)

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// foursquare
	api, err := foursquare.New(cfg.API.AsClientConfig(), foursquare.WithLogger(l))
	if err != nil {
		l.Fatal("foursquare client", zap.Error(err))
	}
	client := checkins.New(api, l)

	// kafka
	prod := kafkaRepo.BootstrapProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, l)
	defer func() { _ = prod.Close() }()
	events := kafkaRepo.NewCheckinEventsKafka(prod, cfg.App.Name)

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Relay.MetricsAddr, nil, l)

	// wiring
	uc := relay.NewUC(
		repo.Feed{C: client},
		repo.Events{P: events, Policy: retry.DefaultKafkaPolicy(l)},
		relay.Options{
			Latitude:  cfg.Relay.Latitude,
			Longitude: cfg.Relay.Longitude,
			Start:     time.Now().Add(-cfg.Relay.Lookback),
		},
	)
	runner := relay.New(l, uc, cfg.Relay.Tick, cfg.Relay.BatchLimit)

	// run
	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	l.Info("relay started")

	// loop
	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
