package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/NordCoder/checkins/internal/config/checkins"
	"github.com/NordCoder/checkins/internal/foursquare"
	"github.com/NordCoder/checkins/internal/obs"
	"github.com/NordCoder/checkins/internal/services/checkins"

	"go.uber.org/zap"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := flag.String("config", os.Getenv("CHECKINS_CONFIG"), "path to yaml config")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Print(err)
		return 2
	}

	// logger
	l, err := obs.NewLogger(cfg.AsLoggerConfig())
	if err != nil {
		log.Print(err)
		return 1
	}
	defer func() { _ = l.Sync() }()

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.AsOTELConfig())
	if err != nil {
		l.Error("otel init", zap.Error(err))
		return 1
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = otelCloser.Shutdown(shCtx)
	}()

	// wiring
	api, err := foursquare.New(cfg.API.AsClientConfig(), foursquare.WithLogger(l))
	if err != nil {
		l.Error("foursquare client", zap.Error(err))
		return 1
	}
	client := checkins.New(api, l)

	err = run(ctx, client, flag.Args(), os.Stdout)
	if err != nil {
		if exitCode(err) == 2 {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		} else {
			l.Error("command failed", zap.Strings("args", flag.Args()), zap.Error(err))
		}
	}
	return exitCode(err)
}
