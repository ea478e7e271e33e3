// Package worker consumes purchase events and watches the yearly budget,
// logging consumption after every buy and warning on overspend. It is the
// consumer side of the purchase event stream; the HTTP process publishes.
package worker

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

// BudgetWatcher recomputes the yearly analytics whenever a purchase is
// recorded or removed.
type BudgetWatcher struct {
	purchases *storage.PurchaseRepo
	budgets   *storage.BudgetRepo
}

func NewBudgetWatcher(purchases *storage.PurchaseRepo, budgets *storage.BudgetRepo) *BudgetWatcher {
	return &BudgetWatcher{
		purchases: purchases,
		budgets:   budgets,
	}
}

// HandlePurchaseEvent runs the analytics for the year the event touches.
// A missing budget row is logged and swallowed, since returning an error
// would requeue the delivery forever.
func (w *BudgetWatcher) HandlePurchaseEvent(ctx context.Context, msg *amqp.PurchaseEventMessage) error {
	// For a deleted purchase the row is gone, so the event timestamp's
	// year is the best remaining signal.
	year := msg.Timestamp.Year()
	if msg.Event == amqp.EventPurchaseCreated {
		purchase, err := w.purchases.Get(ctx, msg.PurchaseID)
		if err == nil {
			year = purchase.PurchaseDate.Year()
		} else if !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("load purchase %d: %w", msg.PurchaseID, err)
		}
	}

	analytics, err := w.budgets.Analytics(ctx, year)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "no budget configured for year", applog.FieldYear, year)
		return nil
	}
	if err != nil {
		return fmt.Errorf("budget analytics: %w", err)
	}

	if analytics.RemainingBudget.Cents < 0 {
		slog.WarnContext(ctx, "yearly budget exceeded",
			applog.FieldYear, year,
			"total_spent", analytics.TotalSpent.String(),
			"overspend", analytics.RemainingBudget.String())
		return nil
	}

	slog.InfoContext(ctx, "budget consumption updated",
		applog.FieldYear, year,
		"event", msg.Event,
		"total_spent", analytics.TotalSpent.String(),
		"remaining_budget", analytics.RemainingBudget.String())
	return nil
}
