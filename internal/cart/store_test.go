package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/quickprintz/storefront/internal/models"
	"github.com/shopspring/decimal"
)

type failingSlot struct {
	readErr  error
	writeErr error
	writes   int
}

func (s *failingSlot) Read(context.Context) ([]byte, error) {
	return nil, s.readErr
}

func (s *failingSlot) Write(context.Context, []byte) error {
	s.writes++
	return s.writeErr
}

func item(id, price string) LineItem {
	return LineItem{
		ID:        id,
		Name:      "item " + id,
		UnitPrice: models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
	}
}

func TestStoreTotalsForDistinctItems(t *testing.T) {
	store := NewStore(context.Background(), NewMemorySlot(nil))

	store.AddItem(item("a", "2.50"), 2)
	store.AddItem(item("b", "1.25"), 4)
	store.AddItem(item("c", "10.00"))

	if got := store.TotalItems(); got != 7 {
		t.Fatalf("total items want 7 got %d", got)
	}
	if got := store.Subtotal().String(); got != "20.00" {
		t.Fatalf("subtotal want 20.00 got %s", got)
	}
}

func TestStoreAddItemMergesByID(t *testing.T) {
	store := NewStore(context.Background(), NewMemorySlot(nil))

	store.AddItem(item("x", "1.00"), 2)
	updated := item("x", "1.50")
	updated.Name = "renamed"
	store.AddItem(updated, 3)

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("quantity want 5 got %d", items[0].Quantity)
	}
	if items[0].Name != "renamed" || items[0].UnitPrice.String() != "1.50" {
		t.Fatalf("incoming fields should overwrite existing, got %+v", items[0])
	}
}

func TestStoreAddItemNonPositiveQuantityDefaultsToOne(t *testing.T) {
	store := NewStore(context.Background(), nil)
	store.AddItem(item("a", "1.00"), 0)
	store.AddItem(item("b", "1.00"), -3)
	if got := store.TotalItems(); got != 2 {
		t.Fatalf("total items want 2 got %d", got)
	}
}

func TestStoreUpdateQuantityClamps(t *testing.T) {
	store := NewStore(context.Background(), NewMemorySlot(nil))
	store.AddItem(item("a", "1.00"), 4)

	store.UpdateQuantity("a", 0)
	if got := store.Items()[0].Quantity; got != 1 {
		t.Fatalf("quantity want 1 got %d", got)
	}
	store.UpdateQuantity("a", -7)
	if got := store.Items()[0].Quantity; got != 1 {
		t.Fatalf("quantity want 1 got %d", got)
	}
	store.UpdateQuantity("a", 9)
	if got := store.Items()[0].Quantity; got != 9 {
		t.Fatalf("quantity want 9 got %d", got)
	}
}

func TestStoreUnknownIDIsNoop(t *testing.T) {
	slot := &failingSlot{}
	store := NewStore(context.Background(), slot)
	store.AddItem(item("a", "3.00"), 2)
	writes := slot.writes

	store.UpdateQuantity("missing", 5)
	store.RemoveItem("missing")

	snap := store.Snapshot()
	if len(snap.Items) != 1 || snap.TotalItems != 2 || snap.Subtotal.String() != "6.00" {
		t.Fatalf("cart should be unchanged, got %+v", snap)
	}
	if slot.writes != writes {
		t.Fatalf("no-op should not persist, writes want %d got %d", writes, slot.writes)
	}
}

func TestStoreRemoveKeepsOrder(t *testing.T) {
	store := NewStore(context.Background(), nil)
	store.AddItem(item("a", "1.00"))
	store.AddItem(item("b", "1.00"))
	store.AddItem(item("c", "1.00"))

	store.RemoveItem("b")

	items := store.Items()
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Fatalf("unexpected items after remove: %+v", items)
	}
}

func TestStoreClearCart(t *testing.T) {
	slot := NewMemorySlot(nil)
	store := NewStore(context.Background(), slot)
	store.AddItem(item("a", "4.00"), 3)

	store.ClearCart()

	if store.TotalItems() != 0 || !store.Subtotal().IsZero() {
		t.Fatalf("cleared cart should be empty, got %+v", store.Snapshot())
	}
	data, _ := slot.Read(context.Background())
	if string(data) != "[]" {
		t.Fatalf("cleared snapshot want [] got %s", string(data))
	}
}

func TestStorePersistsAndRehydrates(t *testing.T) {
	slot := NewMemorySlot(nil)
	store := NewStore(context.Background(), slot)
	withMeta := item("pod-config|1_8", "37.80")
	withMeta.Metadata = Metadata{
		{Label: "Size", Value: "1/8 oz"},
		{Label: "Quantity", Value: 100},
	}
	store.AddItem(withMeta)

	restored := NewStore(context.Background(), slot)
	items := restored.Items()
	if len(items) != 1 {
		t.Fatalf("expected one restored item, got %d", len(items))
	}
	if items[0].UnitPrice.String() != "37.80" || items[0].Quantity != 1 {
		t.Fatalf("unexpected restored item %+v", items[0])
	}
	if len(items[0].Metadata) != 2 || items[0].Metadata[0].Label != "Size" {
		t.Fatalf("metadata order not preserved: %+v", items[0].Metadata)
	}
	if v, ok := items[0].Metadata.Get("Quantity"); !ok || v.(json.Number).String() != "100" {
		t.Fatalf("numeric metadata not restored: %v", v)
	}
}

func TestStoreRehydrateCorruptedSnapshot(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{name: "garbage", data: "{not json"},
		{name: "object", data: `{"id":"a","quantity":2}`},
		{name: "string", data: `"hello"`},
		{name: "null", data: "null"},
		{name: "empty", data: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore(context.Background(), NewMemorySlot([]byte(tc.data)))
			if store.TotalItems() != 0 || len(store.Items()) != 0 {
				t.Fatalf("expected empty cart, got %+v", store.Snapshot())
			}
		})
	}
}

func TestStoreSlotFailuresAreSwallowed(t *testing.T) {
	slot := &failingSlot{readErr: errors.New("quota"), writeErr: errors.New("quota")}
	store := NewStore(context.Background(), slot)

	store.AddItem(item("a", "1.00"), 2)
	store.UpdateQuantity("a", 3)

	if store.TotalItems() != 3 {
		t.Fatalf("in-memory state should stay authoritative, got %d", store.TotalItems())
	}
	if slot.writes != 2 {
		t.Fatalf("writes want 2 got %d", slot.writes)
	}
}

func TestMetadataRejectsNestedValues(t *testing.T) {
	var m Metadata
	if err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &m); err == nil {
		t.Fatalf("expected nested metadata value to be rejected")
	}
	if err := json.Unmarshal([]byte(`{"b":"x","a":2}`), &m); err != nil {
		t.Fatalf("unmarshal metadata failed: %v", err)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal metadata failed: %v", err)
	}
	if string(out) != `{"b":"x","a":2}` {
		t.Fatalf("metadata order want b,a got %s", string(out))
	}
}
