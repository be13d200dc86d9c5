package kafka

import (
	"context"

	"github.com/NordCoder/checkins/internal/domain/checkin"
)

type CheckinEvents interface {
	PublishCheckinSeen(ctx context.Context, c checkin.Checkin) error
}
