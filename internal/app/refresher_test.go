package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubChangeFeed struct {
	onChangeCh chan func()
}

func newStubChangeFeed() *stubChangeFeed {
	return &stubChangeFeed{onChangeCh: make(chan func(), 1)}
}

func (s *stubChangeFeed) Subscribe(ctx context.Context, _ int64, onChange func()) error {
	s.onChangeCh <- onChange
	<-ctx.Done()
	return nil
}

func TestRefresherRunsInitialRefresh(t *testing.T) {
	var calls atomic.Int64
	refresher := NewRefresher(newStubChangeFeed(), 1, func(context.Context) {
		calls.Add(1)
	}, zap.NewNop())
	refresher.interval = time.Hour // софт-пул не должен сработать в тесте

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher.Start(ctx)
	defer refresher.Stop()

	deadline := time.After(time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("expected an initial refresh on start")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRefresherKickTriggersRefresh(t *testing.T) {
	var calls atomic.Int64
	refresher := NewRefresher(newStubChangeFeed(), 1, func(context.Context) {
		calls.Add(1)
	}, zap.NewNop())
	refresher.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher.Start(ctx)
	defer refresher.Stop()

	deadline := time.After(time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("initial refresh did not happen")
		case <-time.After(5 * time.Millisecond):
		}
	}

	refresher.Kick()

	deadline = time.After(time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("kick did not trigger a refresh, calls=%d", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRefresherFeedWakeupTriggersRefresh(t *testing.T) {
	feed := newStubChangeFeed()
	var calls atomic.Int64
	refresher := NewRefresher(feed, 1, func(context.Context) {
		calls.Add(1)
	}, zap.NewNop())
	refresher.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresher.Start(ctx)
	defer refresher.Stop()

	var onChange func()
	select {
	case onChange = <-feed.onChangeCh:
	case <-time.After(time.Second):
		t.Fatalf("feed listener did not start")
	}

	deadline := time.After(time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("initial refresh did not happen")
		case <-time.After(5 * time.Millisecond):
		}
	}

	onChange() // имитация NOTIFY из фида изменений

	deadline = time.After(time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("feed wakeup did not trigger a refresh")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
