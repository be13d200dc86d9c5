package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/checkins/internal/domain/checkin"
	"github.com/NordCoder/checkins/internal/services/relay/repo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Usecase relays the friends' recent checkins feed to Kafka. Each tick asks
// only for checkins created after the newest one already relayed.
// Tick is not safe for concurrent use; the Runner drives it from one goroutine.
type Usecase struct {
	Feed   repo.Feed
	Events repo.Events

	lat, lng *float64
	cursor   int64
	atCursor map[string]struct{}
}

type Options struct {
	Latitude  *float64
	Longitude *float64
	// Start is the initial afterTimestamp. Zero or pre-epoch means from 0.
	Start time.Time
}

func NewUC(feed repo.Feed, events repo.Events, opts Options) *Usecase {
	var cursor int64
	if !opts.Start.IsZero() && opts.Start.Unix() > 0 {
		cursor = opts.Start.Unix()
	}
	return &Usecase{
		Feed:     feed,
		Events:   events,
		lat:      opts.Latitude,
		lng:      opts.Longitude,
		cursor:   cursor,
		atCursor: map[string]struct{}{},
	}
}

func (u *Usecase) Cursor() int64 { return u.cursor }

func (u *Usecase) Tick(ctx context.Context, limit int) (int, int, int, error) {
	if limit <= 0 {
		limit = 100
	}

	tr := otel.Tracer("relay.uc")
	ctxTick, span := tr.Start(ctx, "relay.tick",
		trace.WithAttributes(
			attribute.Int("batch.limit", limit),
			attribute.Int64("batch.after", u.cursor),
		),
	)
	defer span.End()

	after := u.cursor
	recent, err := u.Feed.Recent(ctxTick, checkin.RecentQuery{
		Latitude:       u.lat,
		Longitude:      u.lng,
		AfterTimestamp: &after,
		Limit:          &limit,
	})
	if err != nil {
		span.RecordError(err)
		return 0, 0, 1, fmt.Errorf("fetch recent: %w", err)
	}
	span.SetAttributes(attribute.Int("batch.fetched", len(recent)))

	sent, errs := 0, 0
	// the feed is newest first; relay oldest first so the cursor only moves forward
	for i := len(recent) - 1; i >= 0; i-- {
		c := recent[i]
		if !u.isNew(c) {
			continue
		}
		_, sp := tr.Start(ctxTick, "relay.publish",
			trace.WithAttributes(
				attribute.String("checkin.id", c.ID),
				attribute.Int64("checkin.created_at", c.CreatedAt),
			),
		)
		if pubErr := u.Events.PublishCheckinSeen(ctxTick, c); pubErr != nil {
			errs++
			sp.RecordError(pubErr)
			sp.SetAttributes(attribute.String("publish.status", "error"))
			sp.End()
			// keep the cursor here so the rest is retried next tick
			break
		}
		u.advance(c)
		sent++
		sp.SetAttributes(attribute.String("publish.status", "ok"))
		sp.End()
	}

	span.SetAttributes(
		attribute.Int("batch.sent", sent),
		attribute.Int("batch.errors", errs),
		attribute.Int64("batch.cursor", u.cursor),
	)
	return len(recent), sent, errs, nil
}

func (u *Usecase) isNew(c checkin.Checkin) bool {
	if c.CreatedAt > u.cursor {
		return true
	}
	if c.CreatedAt < u.cursor {
		return false
	}
	_, seen := u.atCursor[c.ID]
	return !seen
}

func (u *Usecase) advance(c checkin.Checkin) {
	if c.CreatedAt > u.cursor {
		u.cursor = c.CreatedAt
		clear(u.atCursor)
	}
	u.atCursor[c.ID] = struct{}{}
}
