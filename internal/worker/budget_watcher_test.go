package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"giftplan/internal/amqp"
	"giftplan/internal/core"
	"giftplan/internal/storage"
)

func newTestWatcher(t *testing.T) (*BudgetWatcher, *storage.Store) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewBudgetWatcher(store.Purchases, store.Budgets), store
}

func seedPurchase(t *testing.T, store *storage.Store, date core.Date) core.Purchase {
	t.Helper()
	ctx := context.Background()

	recipient, err := store.Recipients.Create(ctx, core.NewRecipient{Name: "Alice"})
	if err != nil {
		t.Fatalf("create recipient: %v", err)
	}
	ni := core.NewGiftItem{RecipientID: recipient.ID, Name: "Novel"}
	ni.Normalize()
	item, err := store.Items.Create(ctx, ni)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	purchase, err := store.Purchases.Create(ctx, core.NewPurchase{
		ItemID:        item.ID,
		PurchasePrice: core.Money{Cents: 2299},
		PurchaseDate:  date,
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	return purchase
}

func TestHandlePurchaseEventCreated(t *testing.T) {
	watcher, store := newTestWatcher(t)
	ctx := context.Background()

	// The budget year comes from the purchase date, not the event time.
	if _, err := store.Budgets.Upsert(ctx, 2025, core.Money{Cents: 100000}); err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	purchase := seedPurchase(t, store, core.NewDate(2025, 12, 20))

	msg := amqp.NewPurchaseEventMessage(amqp.EventPurchaseCreated, purchase.ID, purchase.ItemID)
	if err := watcher.HandlePurchaseEvent(ctx, msg); err != nil {
		t.Fatalf("handle created event: %v", err)
	}
}

func TestHandlePurchaseEventDeleted(t *testing.T) {
	watcher, store := newTestWatcher(t)
	ctx := context.Background()

	year := time.Now().Year()
	if _, err := store.Budgets.Upsert(ctx, year, core.Money{Cents: 100000}); err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	purchase := seedPurchase(t, store, core.NewDate(year, 6, 1))
	if _, err := store.Purchases.Delete(ctx, purchase.ID); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}

	// The purchase row is gone; the handler must still succeed.
	msg := amqp.NewPurchaseEventMessage(amqp.EventPurchaseDeleted, purchase.ID, purchase.ItemID)
	if err := watcher.HandlePurchaseEvent(ctx, msg); err != nil {
		t.Fatalf("handle deleted event: %v", err)
	}
}

func TestHandlePurchaseEventNoBudget(t *testing.T) {
	watcher, store := newTestWatcher(t)
	ctx := context.Background()

	purchase := seedPurchase(t, store, core.NewDate(2025, 12, 20))

	// No budget for the year: the event is consumed, not requeued.
	msg := amqp.NewPurchaseEventMessage(amqp.EventPurchaseCreated, purchase.ID, purchase.ItemID)
	if err := watcher.HandlePurchaseEvent(ctx, msg); err != nil {
		t.Fatalf("handle event without budget: %v", err)
	}
}
