package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/checkins/internal/domain/checkin"
	"github.com/NordCoder/checkins/internal/services/relay/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFeed struct {
	checkin.Operations
	mu      sync.Mutex
	recent  []checkin.Checkin
	err     error
	queries []checkin.RecentQuery
}

func (f *fakeFeed) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeFeed) GetRecent(_ context.Context, q checkin.RecentQuery) ([]checkin.Checkin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	var out []checkin.Checkin
	for _, c := range f.recent {
		if q.AfterTimestamp == nil || c.CreatedAt >= *q.AfterTimestamp {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeEvents struct {
	published []string
	failOn    string
}

func (e *fakeEvents) PublishCheckinSeen(_ context.Context, c checkin.Checkin) error {
	if c.ID == e.failOn {
		return errors.New("broker down")
	}
	e.published = append(e.published, c.ID)
	return nil
}

func newUC(feed *fakeFeed, ev *fakeEvents, start int64) *Usecase {
	lat, lng := 40.7, -74.0
	return NewUC(repo.Feed{C: feed}, repo.Events{P: ev}, Options{
		Latitude:  &lat,
		Longitude: &lng,
		Start:     time.Unix(start, 0),
	})
}

func TestTickPublishesOldestFirst(t *testing.T) {
	feed := &fakeFeed{recent: []checkin.Checkin{
		{ID: "c3", CreatedAt: 130},
		{ID: "c2", CreatedAt: 120},
		{ID: "c1", CreatedAt: 110},
	}}
	ev := &fakeEvents{}
	uc := newUC(feed, ev, 100)

	fetched, sent, errs, err := uc.Tick(context.Background(), 50)

	require.NoError(t, err)
	assert.Equal(t, 3, fetched)
	assert.Equal(t, 3, sent)
	assert.Zero(t, errs)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ev.published)
	assert.EqualValues(t, 130, uc.Cursor())

	require.Len(t, feed.queries, 1)
	q := feed.queries[0]
	assert.EqualValues(t, 100, *q.AfterTimestamp)
	assert.Equal(t, 50, *q.Limit)
	assert.InDelta(t, 40.7, *q.Latitude, 1e-9)
}

func TestTickSkipsAlreadyRelayed(t *testing.T) {
	feed := &fakeFeed{recent: []checkin.Checkin{{ID: "a", CreatedAt: 200}}}
	ev := &fakeEvents{}
	uc := newUC(feed, ev, 100)

	_, _, _, err := uc.Tick(context.Background(), 10)
	require.NoError(t, err)

	feed.recent = append([]checkin.Checkin{{ID: "b", CreatedAt: 200}}, feed.recent...)
	_, sent, _, err := uc.Tick(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"a", "b"}, ev.published)
	assert.EqualValues(t, 200, *feed.queries[1].AfterTimestamp)
}

func TestTickStopsAtPublishFailure(t *testing.T) {
	feed := &fakeFeed{recent: []checkin.Checkin{
		{ID: "c3", CreatedAt: 130},
		{ID: "c2", CreatedAt: 120},
		{ID: "c1", CreatedAt: 110},
	}}
	ev := &fakeEvents{failOn: "c2"}
	uc := newUC(feed, ev, 100)

	_, sent, errs, err := uc.Tick(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, errs)
	assert.EqualValues(t, 110, uc.Cursor())

	ev.failOn = ""
	_, sent, _, err = uc.Tick(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ev.published)
}

func TestTickWithoutStartQueriesFromZero(t *testing.T) {
	feed := &fakeFeed{recent: []checkin.Checkin{{ID: "a", CreatedAt: 50}}}
	ev := &fakeEvents{}
	uc := NewUC(repo.Feed{C: feed}, repo.Events{P: ev}, Options{})
	assert.Equal(t, int64(0), uc.Cursor())

	fetched, sent, errs, err := uc.Tick(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.Equal(t, 1, sent)
	assert.Zero(t, errs)
	assert.Equal(t, []string{"a"}, ev.published)
	assert.Equal(t, int64(50), uc.Cursor())
	require.NotNil(t, feed.queries[0].AfterTimestamp)
	assert.NoError(t, feed.queries[0].Validate())
}

func TestTickFeedError(t *testing.T) {
	feed := &fakeFeed{err: errors.New("rate limited")}
	uc := newUC(feed, &fakeEvents{}, 100)

	_, _, errs, err := uc.Tick(context.Background(), 0)
	assert.Error(t, err)
	assert.Equal(t, 1, errs)
	assert.Equal(t, 100, *feed.queries[0].Limit)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	feed := &fakeFeed{recent: []checkin.Checkin{{ID: "a", CreatedAt: 200}}}
	ev := &fakeEvents{}
	r := New(zap.NewNop(), newUC(feed, ev, 100), time.Hour, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return feed.calls() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Equal(t, []string{"a"}, ev.published)
}
