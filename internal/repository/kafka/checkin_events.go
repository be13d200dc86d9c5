package kafka

import (
	"context"
	"time"

	"github.com/NordCoder/checkins/internal/domain/checkin"
	domainkafka "github.com/NordCoder/checkins/internal/domain/kafka"
)

// CheckinSeen is the message published for every newly relayed checkin.
type CheckinSeen struct {
	Checkin  checkin.Checkin `json:"checkin"`
	SeenAt   time.Time       `json:"seenAt"`
	Producer string          `json:"producer"`
}

type CheckinEventsKafka struct {
	p    *Producer
	name string
	now  func() time.Time
}

func NewCheckinEventsKafka(p *Producer, name string) *CheckinEventsKafka {
	return &CheckinEventsKafka{p: p, name: name, now: func() time.Time { return time.Now().UTC() }}
}

var _ domainkafka.CheckinEvents = (*CheckinEventsKafka)(nil)

func (e *CheckinEventsKafka) PublishCheckinSeen(ctx context.Context, c checkin.Checkin) error {
	return e.p.PublishJSON(ctx, []byte(c.ID), CheckinSeen{Checkin: c, SeenAt: e.now(), Producer: e.name})
}
