package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/quickprintz/storefront/internal/cart"
	"github.com/quickprintz/storefront/internal/constants"
	"github.com/quickprintz/storefront/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:storefront_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestCartSnapshotSaveUpserts(t *testing.T) {
	repo := NewCartSnapshotRepository(setupRepositoryTest(t))
	ctx := context.Background()

	if got, err := repo.Get(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("missing snapshot want nil got %+v %v", got, err)
	}
	if err := repo.Save(ctx, &models.CartSnapshot{Key: "k", Payload: "[]"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(ctx, &models.CartSnapshot{Key: "k", Payload: `[{"id":"a"}]`}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	got, err := repo.Get(ctx, "k")
	if err != nil || got == nil || got.Payload != `[{"id":"a"}]` {
		t.Fatalf("unexpected snapshot %+v %v", got, err)
	}
}

func TestCartSnapshotDeleteBefore(t *testing.T) {
	repo := NewCartSnapshotRepository(setupRepositoryTest(t))
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)
	if err := repo.Save(ctx, &models.CartSnapshot{Key: "old", Payload: "[]", UpdatedAt: old}); err != nil {
		t.Fatalf("save old failed: %v", err)
	}
	if err := repo.Save(ctx, &models.CartSnapshot{Key: "new", Payload: "[]"}); err != nil {
		t.Fatalf("save new failed: %v", err)
	}
	n, err := repo.DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("delete before want 1 got %d %v", n, err)
	}
}

func TestGormCartSlotWithStore(t *testing.T) {
	repo := NewCartSnapshotRepository(setupRepositoryTest(t))
	slot := GormCartSlotFactory(repo)("quickprintz-cart:s1")

	store := cart.NewStore(context.Background(), slot)
	store.AddItem(cart.LineItem{ID: "x", Name: "x"}, 2)
	store.UpdateQuantity("x", 7)

	restored := cart.NewStore(context.Background(), slot)
	if restored.TotalItems() != 7 {
		t.Fatalf("restored total want 7 got %d", restored.TotalItems())
	}
}

func TestContactRepositoryLifecycle(t *testing.T) {
	repo := NewContactRepository(setupRepositoryTest(t))
	ctx := context.Background()

	first := &models.ContactSubmission{Name: "A", Email: "a@example.com", Message: "hello", Status: constants.ContactStatusPending}
	second := &models.ContactSubmission{Name: "B", Email: "b@example.com", Message: "hi", Status: constants.ContactStatusPending}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.MarkForwarded(ctx, first.ID, at); err != nil {
		t.Fatalf("mark forwarded failed: %v", err)
	}
	if err := repo.MarkFailed(ctx, second.ID, "status 500"); err != nil {
		t.Fatalf("mark failed failed: %v", err)
	}

	got, err := repo.GetByID(ctx, first.ID)
	if err != nil || got == nil || got.Status != constants.ContactStatusForwarded || got.ForwardedAt == nil {
		t.Fatalf("unexpected forwarded submission %+v %v", got, err)
	}
	failed, total, err := repo.List(ctx, ContactListFilter{Status: constants.ContactStatusFailed, Page: 1, PageSize: 10})
	if err != nil || total != 1 || len(failed) != 1 || failed[0].LastError != "status 500" {
		t.Fatalf("unexpected failed list %+v total %d err %v", failed, total, err)
	}
	if missing, err := repo.GetByID(ctx, 9999); err != nil || missing != nil {
		t.Fatalf("missing submission want nil got %+v %v", missing, err)
	}
}
