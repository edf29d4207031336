package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type blockingService struct {
	name    string
	stopped atomic.Bool
}

func (s *blockingService) Name() string { return s.name }

func (s *blockingService) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *blockingService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

type failingService struct {
	err error
}

func (s *failingService) Name() string { return "failing" }

func (s *failingService) Start(context.Context) error { return s.err }

func (s *failingService) Stop(context.Context) error { return nil }

func TestRunnerStopsAllServicesWhenOneFails(t *testing.T) {
	boom := errors.New("boom")
	blocking := &blockingService{name: "blocking"}
	runner := NewRunner(blocking, &failingService{err: boom})
	var cleaned atomic.Bool
	runner.OnStop(func() error {
		cleaned.Store(true)
		return nil
	})

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("want boom got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("blocking service should be stopped")
	}
	if !cleaned.Load() {
		t.Fatalf("cleanup hook should run")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	blocking := &blockingService{name: "blocking"}
	runner := NewRunner(blocking)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancel should stop cleanly, got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("blocking service should be stopped")
	}
}

func TestBuildRunnerRejectsInvalidInput(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
	if isKnownMode("cron") || !isKnownMode(ModeWorker) {
		t.Fatalf("unexpected mode validation")
	}
}
