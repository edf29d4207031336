package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/cart"
	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/models"
	"github.com/quickprintz/storefront/internal/pricing"
)

func newTestCartService(slots *cart.MemorySlots, async bool) *CartService {
	return NewCartService(config.CartConfig{
		StorageKey:    "test-cart",
		SessionSecret: "cart-secret",
		AsyncPersist:  async,
		IdleMinutes:   30,
	}, slots.Slot)
}

func TestCartSessionRoundTrip(t *testing.T) {
	svc := newTestCartService(cart.NewMemorySlots(), false)
	session, err := svc.IssueSession()
	if err != nil {
		t.Fatalf("issue session failed: %v", err)
	}
	cartID, err := svc.ParseSession(session.Token)
	if err != nil {
		t.Fatalf("parse session failed: %v", err)
	}
	if cartID != session.CartID {
		t.Fatalf("cart id want %s got %s", session.CartID, cartID)
	}
	if got := svc.SlotKey(cartID); got != "test-cart:"+cartID {
		t.Fatalf("unexpected slot key: %s", got)
	}
}

func TestCartSessionRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := newTestCartService(cart.NewMemorySlots(), false)

	if _, err := svc.ParseSession(""); !errors.Is(err, ErrCartSessionMissing) {
		t.Fatalf("empty token want ErrCartSessionMissing got %v", err)
	}

	other := NewCartService(config.CartConfig{SessionSecret: "another-secret"}, nil)
	foreign, err := other.IssueSession()
	if err != nil {
		t.Fatalf("issue session failed: %v", err)
	}
	if _, err := svc.ParseSession(foreign.Token); !errors.Is(err, ErrCartSessionInvalid) {
		t.Fatalf("foreign token want ErrCartSessionInvalid got %v", err)
	}

	expiring := NewCartService(config.CartConfig{SessionSecret: "cart-secret", SessionExpireHours: 1}, nil)
	expiring.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := expiring.IssueSession()
	if err != nil {
		t.Fatalf("issue session failed: %v", err)
	}
	if _, err := svc.ParseSession(expired.Token); !errors.Is(err, ErrCartSessionInvalid) {
		t.Fatalf("expired token want ErrCartSessionInvalid got %v", err)
	}
}

func TestCartServiceAddItemValidates(t *testing.T) {
	svc := newTestCartService(cart.NewMemorySlots(), false)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c1", CartItemInput{Name: "No id", Price: models.RequireMoney("1")}); !errors.Is(err, ErrCartItemInvalid) {
		t.Fatalf("missing id want ErrCartItemInvalid got %v", err)
	}
	if _, err := svc.AddItem(ctx, "c1", CartItemInput{ID: "a", Name: "Neg", Price: models.RequireMoney("-1")}); !errors.Is(err, ErrCartItemInvalid) {
		t.Fatalf("negative price want ErrCartItemInvalid got %v", err)
	}
	var fieldErr *FieldError
	_, err := svc.AddItem(ctx, "c1", CartItemInput{ID: "a", Price: models.RequireMoney("1")})
	if !errors.As(err, &fieldErr) || !strings.Contains(strings.Join(fieldErr.Fields, ","), "name:required") {
		t.Fatalf("missing name want field error got %v", err)
	}
}

func TestCartServiceMergesAndTotals(t *testing.T) {
	svc := newTestCartService(cart.NewMemorySlots(), false)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c1", CartItemInput{ID: "a", Name: "A", Price: models.RequireMoney("2.50"), Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	snap, err := svc.AddItem(ctx, "c1", CartItemInput{ID: "a", Name: "A", Price: models.RequireMoney("2.50")})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3 got %+v", snap.Items)
	}
	if snap.Subtotal.String() != "7.50" || snap.TotalItems != 3 {
		t.Fatalf("unexpected totals: %s %d", snap.Subtotal, snap.TotalItems)
	}

	snap = svc.UpdateQuantity(ctx, "c1", "missing", 9)
	if snap.TotalItems != 3 {
		t.Fatalf("unknown id must not change the cart, got %d", snap.TotalItems)
	}
	snap = svc.UpdateQuantity(ctx, "c1", "a", 0)
	if snap.Items[0].Quantity != 1 {
		t.Fatalf("quantity must clamp to 1 got %d", snap.Items[0].Quantity)
	}
	snap = svc.RemoveItem(ctx, "c1", "a")
	if len(snap.Items) != 0 || !snap.Subtotal.IsZero() {
		t.Fatalf("expected empty cart got %+v", snap)
	}

	other := svc.View(ctx, "c2")
	if len(other.Items) != 0 {
		t.Fatalf("carts must be isolated per session")
	}
}

func TestCartServiceRehydratesAfterEviction(t *testing.T) {
	slots := cart.NewMemorySlots()
	svc := newTestCartService(slots, false)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	if _, err := svc.AddItem(ctx, "c1", CartItemInput{ID: "a", Name: "A", Price: models.RequireMoney("3")}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if n := svc.EvictIdle(base.Add(10 * time.Minute)); n != 0 {
		t.Fatalf("fresh cart must not be evicted, evicted %d", n)
	}
	if n := svc.EvictIdle(base.Add(31 * time.Minute)); n != 1 {
		t.Fatalf("idle cart want evicted got %d", n)
	}
	if svc.ActiveCount() != 0 {
		t.Fatalf("expected no active carts")
	}

	snap := svc.View(ctx, "c1")
	if len(snap.Items) != 1 || snap.Items[0].ID != "a" {
		t.Fatalf("cart must rehydrate from slot got %+v", snap.Items)
	}
}

func TestCartServiceAsyncPersistFlushesOnClose(t *testing.T) {
	slots := cart.NewMemorySlots()
	svc := newTestCartService(slots, true)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "c1", CartItemInput{ID: "async", Name: "Async", Price: models.RequireMoney("1")}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	data, err := slots.Slot(svc.SlotKey("c1")).Read(ctx)
	if err != nil {
		t.Fatalf("read slot failed: %v", err)
	}
	if !strings.Contains(string(data), `"async"`) {
		t.Fatalf("expected flushed snapshot got %s", data)
	}
}

func TestCartServiceAddConfigured(t *testing.T) {
	svc := newTestCartService(cart.NewMemorySlots(), false)
	ctx := context.Background()

	res, err := svc.AddConfigured(ctx, "c1", pricing.TieredConfig{
		Family:   pricing.FamilyMylarBags,
		Quantity: 250,
		Size:     "medium",
		Finish:   "matte",
	})
	if err != nil {
		t.Fatalf("add configured failed: %v", err)
	}
	if res.Quote.TotalPrice.String() != "622.50" {
		t.Fatalf("unexpected total: %s", res.Quote.TotalPrice)
	}
	if res.Cart.Subtotal.String() != "622.50" || res.Cart.TotalItems != 1 {
		t.Fatalf("unexpected cart totals: %s %d", res.Cart.Subtotal, res.Cart.TotalItems)
	}

	_, err = svc.AddConfigured(ctx, "c1", pricing.TieredConfig{
		Family:   pricing.FamilyMylarBags,
		Quantity: 10,
		Size:     "medium",
		Finish:   "matte",
	})
	if !errors.Is(err, ErrPricingConfigInvalid) {
		t.Fatalf("below minimum want ErrPricingConfigInvalid got %v", err)
	}
	_, err = svc.AddConfigured(ctx, "c1", pricing.TieredConfig{Family: "posters", Quantity: 100})
	if !errors.Is(err, ErrPricingConfigInvalid) || !errors.Is(err, pricing.ErrUnknownOption) {
		t.Fatalf("unknown family want wrapped ErrUnknownOption got %v", err)
	}
}

func TestCartServiceAddPremade(t *testing.T) {
	svc := newTestCartService(cart.NewMemorySlots(), false)
	snap := svc.AddPremade(context.Background(), "c1", assets.Asset{
		Name:      "gold-leaf.png",
		Path:      "cannabis/gold-leaf.png",
		PublicURL: "https://cdn.example/gold-leaf.png",
	})
	if len(snap.Items) != 1 {
		t.Fatalf("expected one item got %d", len(snap.Items))
	}
	got := snap.Items[0]
	if got.ID != "premade-cannabis/gold-leaf.png" || got.UnitPrice.String() != "20.00" {
		t.Fatalf("unexpected premade item: %+v", got)
	}
}
