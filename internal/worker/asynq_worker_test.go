package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/provider"
	"github.com/quickprintz/storefront/internal/queue"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/hibiken/asynq"
)

type countingLister struct {
	calls int
	err   error
}

func (l *countingLister) List(context.Context) ([]assets.Asset, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return []assets.Asset{{Name: "a.png", Path: "a.png"}}, nil
}

func newGalleryConsumer(lister service.AssetLister) *Consumer {
	return NewConsumer(&provider.Container{
		GalleryService: service.NewGalleryService(lister, nil, config.GalleryConfig{}),
	})
}

func TestHandleGalleryRefreshRelists(t *testing.T) {
	lister := &countingLister{}
	consumer := newGalleryConsumer(lister)
	task, err := queue.NewGalleryRefreshTask(queue.GalleryRefreshPayload{Reason: "stale"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleGalleryRefresh(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if lister.calls != 1 {
		t.Fatalf("expected one listing, got %d", lister.calls)
	}
}

func TestHandleGalleryRefreshReturnsListingError(t *testing.T) {
	consumer := newGalleryConsumer(&countingLister{err: errors.New("bucket down")})
	task, _ := queue.NewGalleryRefreshTask(queue.GalleryRefreshPayload{Reason: "warm"})
	if err := consumer.handleGalleryRefresh(context.Background(), task); !errors.Is(err, service.ErrDesignsUnavailable) {
		t.Fatalf("expected retryable listing error, got %v", err)
	}
}

func TestHandleContactForwardSkipsInvalidPayloads(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	if err := consumer.handleContactForward(context.Background(), nil); err != nil {
		t.Fatalf("nil task must be skipped, got %v", err)
	}
	bad := asynq.NewTask(queue.TaskContactForward, []byte("{"))
	if err := consumer.handleContactForward(context.Background(), bad); err == nil {
		t.Fatalf("malformed payload must fail")
	}
	zero, _ := queue.NewContactForwardTask(queue.ContactForwardPayload{})
	if err := consumer.handleContactForward(context.Background(), zero); err != nil {
		t.Fatalf("zero id must be skipped, got %v", err)
	}
	missingService, _ := queue.NewContactForwardTask(queue.ContactForwardPayload{SubmissionID: 7})
	if err := consumer.handleContactForward(context.Background(), missingService); err != nil {
		t.Fatalf("missing contact service must be skipped, got %v", err)
	}
}

func TestRegisterToleratesNil(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux())
	NewConsumer(&provider.Container{}).Register(nil)
}
