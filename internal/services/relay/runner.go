package relay

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	mFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_checkins_fetched_total", Help: "Recent checkins fetched from Foursquare",
	})
	mSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_sent_total", Help: "Checkins published to Kafka",
	})
	mErr = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_errors_total", Help: "Errors in relay loop",
	})
	mCursor = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_cursor_timestamp_seconds", Help: "createdAt of the newest relayed checkin",
	})
	mLoopDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "relay_loop_duration_seconds", Help: "Relay tick duration",
		Buckets: prometheus.DefBuckets,
	})
)

type Runner struct {
	Log        *zap.Logger
	UC         *Usecase
	Tick       time.Duration
	BatchLimit int
}

func New(log *zap.Logger, uc *Usecase, tick time.Duration, batchLimit int) *Runner {
	if tick <= 0 {
		tick = time.Minute
	}
	return &Runner{Log: log, UC: uc, Tick: tick, BatchLimit: batchLimit}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	fetched, sent, errs, err := r.UC.Tick(ctx, r.BatchLimit)
	if err != nil {
		mErr.Inc()
		r.Log.Warn("tick error", zap.Error(err))
	}
	if fetched > 0 {
		mFetched.Add(float64(fetched))
		mSent.Add(float64(sent))
		if errs > 0 {
			mErr.Add(float64(errs))
		}
		r.Log.Debug("relayed batch", zap.Int("fetched", fetched), zap.Int("sent", sent), zap.Int("errors", errs))
	}
	mCursor.Set(float64(r.UC.Cursor()))
	mLoopDur.Observe(time.Since(start).Seconds())
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Tick)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
