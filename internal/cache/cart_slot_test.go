package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/quickprintz/storefront/internal/cart"
)

func TestRedisCartSlotKey(t *testing.T) {
	Use(nil, "qp")
	slot := NewRedisCartSlot(nil, "quickprintz-cart:abc", 0)
	if slot.Key() != "qp:cart:quickprintz-cart:abc" {
		t.Fatalf("unexpected key %s", slot.Key())
	}
}

func TestRedisCartSlotDisabled(t *testing.T) {
	Use(nil, "")
	slot := RedisCartSlotFactory(0)("k")
	if _, err := slot.Read(context.Background()); !errors.Is(err, ErrRedisDisabled) {
		t.Fatalf("want ErrRedisDisabled got %v", err)
	}

	// 槽不可用时购物车仍可用
	store := cart.NewStore(context.Background(), slot)
	store.AddItem(cart.LineItem{ID: "a"}, 2)
	if store.TotalItems() != 2 {
		t.Fatalf("store should work without redis, got %d", store.TotalItems())
	}
}

func TestJSONHelpersNoopWhenDisabled(t *testing.T) {
	Use(nil, "")
	var dest map[string]string
	ok, err := GetJSON(context.Background(), "x", &dest)
	if ok || err != nil {
		t.Fatalf("disabled cache should miss without error, got %v %v", ok, err)
	}
	if err := SetJSON(context.Background(), "x", map[string]string{"a": "b"}, 0); err != nil {
		t.Fatalf("disabled set should be noop, got %v", err)
	}
	if BuildKey(" ") != "qp" {
		t.Fatalf("empty key should map to prefix")
	}
}
