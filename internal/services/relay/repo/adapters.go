package repo

import (
	"context"

	"github.com/NordCoder/checkins/internal/domain/checkin"
	"github.com/NordCoder/checkins/internal/domain/kafka"
	"github.com/NordCoder/checkins/internal/obs/retry"
)

type Feed struct{ C checkin.Operations }

type Events struct {
	P      kafka.CheckinEvents
	Policy retry.Policy
}

func (f Feed) Recent(ctx context.Context, q checkin.RecentQuery) ([]checkin.Checkin, error) {
	return f.C.GetRecent(ctx, q)
}

func (e Events) PublishCheckinSeen(ctx context.Context, c checkin.Checkin) error {
	return retry.Do(ctx, func() error {
		return e.P.PublishCheckinSeen(ctx, c)
	}, e.Policy)
}
