package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

type fakeLister struct {
	mu     sync.Mutex
	calls  int
	err    error
	items  []assets.Asset
	called chan struct{}
}

func (f *fakeLister) List(context.Context) ([]assets.Asset, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.called != nil {
		defer func() { f.called <- struct{}{} }()
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]assets.Asset(nil), f.items...), nil
}

func (f *fakeLister) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGalleryQueue struct {
	enabled  bool
	payloads []queue.GalleryRefreshPayload
}

func (f *fakeGalleryQueue) Enabled() bool { return f.enabled }

func (f *fakeGalleryQueue) EnqueueGalleryRefresh(payload queue.GalleryRefreshPayload, _ ...asynq.Option) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func galleryAssets() []assets.Asset {
	size := int64(2048)
	mime := "image/png"
	return []assets.Asset{
		{Name: "gold-leaf-luxury.png", Path: "cannabis/gold-leaf-luxury.png", Size: &size, MimeType: &mime},
		{Name: "blue-wave.svg", Path: "retail/blue-wave.svg"},
	}
}

type galleryClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *galleryClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *galleryClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestGallery(lister AssetLister, q GalleryRefreshQueue) (*GalleryService, *galleryClock) {
	clock := &galleryClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewGalleryService(lister, q, config.GalleryConfig{StaleMinutes: 5, GCMinutes: 10})
	svc.now = clock.Now
	return svc, clock
}

func TestGalleryServesFreshEntryFromMemory(t *testing.T) {
	lister := &fakeLister{items: galleryAssets()}
	svc, clock := newTestGallery(lister, nil)
	ctx := context.Background()

	if _, err := svc.List(ctx, assets.Query{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	clock.Advance(4 * time.Minute)
	listing, err := svc.List(ctx, assets.Query{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if lister.Calls() != 1 {
		t.Fatalf("fresh entry must not relist, calls=%d", lister.Calls())
	}
	if listing.Total != 2 || listing.Stale {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	first := listing.Items[0]
	if !first.IsImage || first.SizeLabel != "2.0 KB" {
		t.Fatalf("unexpected view: %+v", first)
	}
}

func TestGalleryStaleEntryEnqueuesRefresh(t *testing.T) {
	lister := &fakeLister{items: galleryAssets()}
	q := &fakeGalleryQueue{enabled: true}
	svc, clock := newTestGallery(lister, q)
	ctx := context.Background()

	if _, err := svc.List(ctx, assets.Query{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	clock.Advance(6 * time.Minute)
	listing, err := svc.List(ctx, assets.Query{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !listing.Stale {
		t.Fatalf("expected stale listing")
	}
	if len(q.payloads) != 1 || q.payloads[0].Reason != "stale" {
		t.Fatalf("expected one refresh task got %+v", q.payloads)
	}
	if lister.Calls() != 1 {
		t.Fatalf("stale entry must be served without relisting, calls=%d", lister.Calls())
	}
}

func TestGalleryStaleEntryRefreshesInBackgroundWithoutQueue(t *testing.T) {
	lister := &fakeLister{items: galleryAssets(), called: make(chan struct{}, 4)}
	svc, clock := newTestGallery(lister, &fakeGalleryQueue{enabled: false})
	ctx := context.Background()

	if _, err := svc.List(ctx, assets.Query{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	<-lister.called
	clock.Advance(6 * time.Minute)
	if _, err := svc.List(ctx, assets.Query{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	select {
	case <-lister.called:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected background refresh")
	}
	if lister.Calls() != 2 {
		t.Fatalf("expected 2 listings got %d", lister.Calls())
	}
}

func TestGalleryExpiredEntryRelistsSynchronously(t *testing.T) {
	lister := &fakeLister{items: galleryAssets()}
	svc, clock := newTestGallery(lister, &fakeGalleryQueue{enabled: true})
	ctx := context.Background()

	if _, err := svc.List(ctx, assets.Query{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	clock.Advance(11 * time.Minute)
	listing, err := svc.List(ctx, assets.Query{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if lister.Calls() != 2 || listing.Stale {
		t.Fatalf("expired entry must relist synchronously, calls=%d stale=%v", lister.Calls(), listing.Stale)
	}
}

func TestGalleryListingErrorPropagates(t *testing.T) {
	listErr := errors.New("boom")
	svc, _ := newTestGallery(&fakeLister{err: listErr}, nil)
	_, err := svc.List(context.Background(), assets.Query{})
	if !errors.Is(err, ErrDesignsUnavailable) || !errors.Is(err, listErr) {
		t.Fatalf("want wrapped listing error got %v", err)
	}
}

func TestGalleryFilterAndFind(t *testing.T) {
	svc, _ := newTestGallery(&fakeLister{items: galleryAssets()}, nil)
	ctx := context.Background()

	listing, err := svc.List(ctx, assets.Query{Search: "blue"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if listing.Total != 1 || listing.Items[0].Path != "retail/blue-wave.svg" {
		t.Fatalf("unexpected search result: %+v", listing.Items)
	}

	found, err := svc.Find(ctx, "/cannabis/gold-leaf-luxury.png")
	if err != nil || found.Name != "gold-leaf-luxury.png" {
		t.Fatalf("find failed: %+v %v", found, err)
	}
	if _, err := svc.Find(ctx, "missing.png"); !errors.Is(err, ErrDesignNotFound) {
		t.Fatalf("missing design want ErrDesignNotFound got %v", err)
	}
}

type blockingLister struct {
	started chan struct{}
	release chan struct{}
	listErr chan error
	items   []assets.Asset
}

func (b *blockingLister) List(ctx context.Context) ([]assets.Asset, error) {
	close(b.started)
	<-b.release
	b.listErr <- ctx.Err()
	return append([]assets.Asset(nil), b.items...), nil
}

func TestGalleryRefreshSurvivesCallerCancel(t *testing.T) {
	lister := &blockingLister{
		started: make(chan struct{}),
		release: make(chan struct{}),
		listErr: make(chan error, 1),
		items:   galleryAssets(),
	}
	svc := NewGalleryService(lister, nil, config.GalleryConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	callerErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(ctx)
		callerErr <- err
	}()
	<-lister.started
	cancel()
	if err := <-callerErr; !errors.Is(err, context.Canceled) || !errors.Is(err, ErrDesignsUnavailable) {
		t.Fatalf("cancelled caller want ErrDesignsUnavailable+Canceled got %v", err)
	}

	close(lister.release)
	if err := <-lister.listErr; err != nil {
		t.Fatalf("shared listing should not see the caller's cancel, got %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		svc.mu.RLock()
		entry := svc.entry
		svc.mu.RUnlock()
		if entry != nil {
			if len(entry.Assets) != 2 {
				t.Fatalf("cache want 2 assets got %d", len(entry.Assets))
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("gallery cache was not refreshed after caller left")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
