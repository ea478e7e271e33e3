// Package services orchestrates operations that span the store and the
// event publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"giftplan/internal/amqp"
	"giftplan/internal/core"
	applog "giftplan/internal/log"
	"giftplan/internal/storage"
)

// PurchaseService records and removes purchases through the purchase
// repository and announces them over AMQP when a client is configured.
// The store write is the source of truth; a failed publish is logged and
// never fails the request.
type PurchaseService struct {
	purchases *storage.PurchaseRepo
	events    *amqp.Client
}

func NewPurchaseService(purchases *storage.PurchaseRepo, events *amqp.Client) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		events:    events,
	}
}

// Create records the purchase (flipping the item to "purchased") and then
// publishes a created event.
func (s *PurchaseService) Create(ctx context.Context, np core.NewPurchase) (core.Purchase, error) {
	purchase, err := s.purchases.Create(ctx, np)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("create purchase: %w", err)
	}

	s.publish(ctx, amqp.EventPurchaseCreated, purchase.ID, purchase.ItemID)
	return purchase, nil
}

// Delete removes the purchase (resetting the item to "ready_to_buy") and
// then publishes a deleted event. It reports whether a row was removed.
func (s *PurchaseService) Delete(ctx context.Context, id int64) (bool, error) {
	// The item id is gone after the delete, so look it up first.
	purchase, err := s.purchases.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	deleted, err := s.purchases.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete purchase: %w", err)
	}
	if deleted {
		s.publish(ctx, amqp.EventPurchaseDeleted, id, purchase.ItemID)
	}
	return deleted, nil
}

// List, Get, GetByItem and Update pass straight through to the repository;
// none of them touch the item linkage.

func (s *PurchaseService) List(ctx context.Context) ([]core.Purchase, error) {
	return s.purchases.List(ctx)
}

func (s *PurchaseService) Get(ctx context.Context, id int64) (core.Purchase, error) {
	return s.purchases.Get(ctx, id)
}

func (s *PurchaseService) GetByItem(ctx context.Context, itemID int64) (core.Purchase, error) {
	return s.purchases.GetByItem(ctx, itemID)
}

func (s *PurchaseService) Update(ctx context.Context, id int64, patch core.PurchasePatch) (core.Purchase, error) {
	return s.purchases.Update(ctx, id, patch)
}

func (s *PurchaseService) publish(ctx context.Context, event string, purchaseID, itemID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPurchaseEvent(ctx, event, purchaseID, itemID); err != nil {
		slog.ErrorContext(ctx, "failed to publish purchase event",
			"event", event, applog.FieldPurchaseID, purchaseID, applog.FieldError, err)
	}
}

// Close releases the event publisher, if any. The store is owned and
// closed by the caller.
func (s *PurchaseService) Close() error {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			return fmt.Errorf("close events client: %w", err)
		}
	}
	return nil
}
