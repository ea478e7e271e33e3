package storage

import (
	"context"
	"path/filepath"
	"testing"

	"giftplan/internal/core"
)

func intPtr(n int) *int { return &n }

// newTestStore opens a migrated store on a throwaway database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createRecipient(t *testing.T, store *Store, name string, allocationCents int64) core.Recipient {
	t.Helper()

	r, err := store.Recipients.Create(context.Background(), core.NewRecipient{
		Name:             name,
		BudgetAllocation: core.Money{Cents: allocationCents},
	})
	if err != nil {
		t.Fatalf("create recipient %q: %v", name, err)
	}
	return r
}

func createItem(t *testing.T, store *Store, recipientID int64, name string) core.GiftItem {
	t.Helper()

	ni := core.NewGiftItem{RecipientID: recipientID, Name: name}
	ni.Normalize()
	item, err := store.Items.Create(context.Background(), ni)
	if err != nil {
		t.Fatalf("create item %q: %v", name, err)
	}
	return item
}

func createPurchase(t *testing.T, store *Store, itemID int64, priceCents int64, date core.Date) core.Purchase {
	t.Helper()

	p, err := store.Purchases.Create(context.Background(), core.NewPurchase{
		ItemID:        itemID,
		PurchasePrice: core.Money{Cents: priceCents},
		PurchaseDate:  date,
	})
	if err != nil {
		t.Fatalf("create purchase for item %d: %v", itemID, err)
	}
	return p
}
