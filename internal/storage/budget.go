package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"giftplan/internal/core"
	applog "giftplan/internal/log"
)

// BudgetRepo wraps the budget table and computes the yearly analytics
// report. At most one row per year is authoritative; when duplicates exist
// the most recently created one wins.
type BudgetRepo struct {
	db *sql.DB
}

const budgetCols = `id, total_budget, year, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var b core.Budget
	err := row.Scan(&b.ID, &b.TotalBudget.Cents, &b.Year, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// Current returns the authoritative budget row for the current calendar
// year, or core.ErrNotFound.
func (b *BudgetRepo) Current(ctx context.Context) (core.Budget, error) {
	return b.ByYear(ctx, time.Now().Year())
}

// ByYear returns the authoritative budget row for a year, or
// core.ErrNotFound.
func (b *BudgetRepo) ByYear(ctx context.Context, year int) (core.Budget, error) {
	bu, err := scanBudget(b.db.QueryRowContext(ctx,
		`SELECT `+budgetCols+` FROM budget WHERE year = ? ORDER BY created_at DESC, id DESC LIMIT 1`, year))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget for year %d: %w", year, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return bu, nil
}

// Create inserts a budget row and returns it.
func (b *BudgetRepo) Create(ctx context.Context, nb core.NewBudget) (core.Budget, error) {
	now := time.Now().UTC()
	res, err := b.db.ExecContext(ctx,
		`INSERT INTO budget (total_budget, year, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		nb.TotalBudget.Cents, nb.Year, now, now)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget id: %w", err)
	}

	bu, err := scanBudget(b.db.QueryRowContext(ctx,
		`SELECT `+budgetCols+` FROM budget WHERE id = ?`, id))
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}

	slog.InfoContext(ctx, "budget created", "budget_id", id, applog.FieldYear, nb.Year,
		applog.FieldAmountCents, nb.TotalBudget.Cents)
	return bu, nil
}

// Upsert updates the year's authoritative row if one exists, otherwise
// creates it.
func (b *BudgetRepo) Upsert(ctx context.Context, year int, total core.Money) (core.Budget, error) {
	existing, err := b.ByYear(ctx, year)
	if errors.Is(err, core.ErrNotFound) {
		return b.Create(ctx, core.NewBudget{TotalBudget: total, Year: year})
	}
	if err != nil {
		return core.Budget{}, err
	}

	_, err = b.db.ExecContext(ctx,
		`UPDATE budget SET total_budget = ?, updated_at = ? WHERE id = ?`,
		total.Cents, time.Now().UTC(), existing.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	return b.ByYear(ctx, year)
}

// Analytics computes the spend-vs-allocation report for a year. It returns
// core.ErrNotFound when no budget row exists for that year. Spending is
// grouped by the calendar-year component of purchase_date; every recipient
// appears in the breakdown even with zero items or spend.
func (b *BudgetRepo) Analytics(ctx context.Context, year int) (core.BudgetAnalytics, error) {
	budget, err := b.ByYear(ctx, year)
	if err != nil {
		return core.BudgetAnalytics{}, err
	}

	yearText := strconv.Itoa(year)

	var (
		totalSpent int64
		breakdown  []core.RecipientSpend
	)

	// The two reads are independent; run them concurrently on the pool.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := b.db.QueryRowContext(gctx, `
			SELECT COALESCE(SUM(p.purchase_price), 0)
			FROM purchases p
			WHERE strftime('%Y', p.purchase_date) = ?`, yearText).Scan(&totalSpent)
		if err != nil {
			return fmt.Errorf("total spent: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := b.db.QueryContext(gctx, `
			SELECT r.id, r.name, r.budget_allocation, COALESCE(SUM(p.purchase_price), 0)
			FROM recipients r
			LEFT JOIN gift_items gi ON r.id = gi.recipient_id
			LEFT JOIN purchases p ON gi.id = p.item_id AND strftime('%Y', p.purchase_date) = ?
			GROUP BY r.id, r.name, r.budget_allocation
			ORDER BY r.name`, yearText)
		if err != nil {
			return fmt.Errorf("recipients breakdown: %w", err)
		}
		defer rows.Close()

		breakdown = []core.RecipientSpend{}
		for rows.Next() {
			var rs core.RecipientSpend
			if err := rows.Scan(&rs.RecipientID, &rs.RecipientName, &rs.Allocated.Cents, &rs.Spent.Cents); err != nil {
				return fmt.Errorf("scan breakdown: %w", err)
			}
			rs.Remaining = rs.Allocated.Sub(rs.Spent)
			breakdown = append(breakdown, rs)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("recipients breakdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.BudgetAnalytics{}, fmt.Errorf("budget analytics year %d: %w", year, err)
	}

	spent := core.Money{Cents: totalSpent}
	return core.BudgetAnalytics{
		Year:                year,
		TotalBudget:         budget.TotalBudget,
		TotalSpent:          spent,
		RemainingBudget:     budget.TotalBudget.Sub(spent),
		RecipientsBreakdown: breakdown,
	}, nil
}
