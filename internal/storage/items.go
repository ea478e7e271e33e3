package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"giftplan/internal/core"
	applog "giftplan/internal/log"
)

// GiftItemRepo wraps CRUD and the status override against the gift_items
// table. Reads join the owning recipient's name for display.
//
// The recipient_id supplied on create/update is not checked for existence
// here; a dangling reference fails at the store's foreign-key check.
type GiftItemRepo struct {
	db *sql.DB
}

const itemSelect = `
	SELECT gi.id, gi.recipient_id, r.name, gi.name, gi.description, gi.priority, gi.status,
	       gi.target_price, gi.current_best_price, gi.notes, gi.created_at, gi.updated_at
	FROM gift_items gi
	LEFT JOIN recipients r ON gi.recipient_id = r.id`

func scanItem(row interface{ Scan(...any) error }) (core.GiftItem, error) {
	var (
		it            core.GiftItem
		recipientName sql.NullString
		description   sql.NullString
		notes         sql.NullString
		target        sql.NullInt64
		best          sql.NullInt64
	)
	err := row.Scan(&it.ID, &it.RecipientID, &recipientName, &it.Name, &description,
		&it.Priority, &it.Status, &target, &best, &notes, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return core.GiftItem{}, err
	}
	it.RecipientName = recipientName.String
	it.Description = description.String
	it.Notes = notes.String
	it.TargetPrice = moneyPtr(target)
	it.CurrentBestPrice = moneyPtr(best)
	return it, nil
}

func (g *GiftItemRepo) queryItems(ctx context.Context, query string, args ...any) ([]core.GiftItem, error) {
	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query gift items: %w", err)
	}
	defer rows.Close()

	items := []core.GiftItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gift item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query gift items: %w", err)
	}
	return items, nil
}

// List returns all gift items, newest-created first.
func (g *GiftItemRepo) List(ctx context.Context) ([]core.GiftItem, error) {
	return g.queryItems(ctx, itemSelect+` ORDER BY gi.created_at DESC, gi.id DESC`)
}

// ListByRecipient returns one recipient's items ordered by priority
// descending, then newest-created first.
func (g *GiftItemRepo) ListByRecipient(ctx context.Context, recipientID int64) ([]core.GiftItem, error) {
	return g.queryItems(ctx,
		itemSelect+` WHERE gi.recipient_id = ? ORDER BY gi.priority DESC, gi.created_at DESC, gi.id DESC`,
		recipientID)
}

// Get returns one gift item or core.ErrNotFound.
func (g *GiftItemRepo) Get(ctx context.Context, id int64) (core.GiftItem, error) {
	it, err := scanItem(g.db.QueryRowContext(ctx, itemSelect+` WHERE gi.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.GiftItem{}, fmt.Errorf("gift item %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.GiftItem{}, fmt.Errorf("get gift item: %w", err)
	}
	return it, nil
}

// Create inserts a gift item and returns the stored row with the joined
// recipient name.
func (g *GiftItemRepo) Create(ctx context.Context, ni core.NewGiftItem) (core.GiftItem, error) {
	now := time.Now().UTC()
	res, err := g.db.ExecContext(ctx, `
		INSERT INTO gift_items (recipient_id, name, description, priority, status, target_price, current_best_price, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ni.RecipientID, ni.Name, nullString(ni.Description), *ni.Priority, string(ni.Status),
		nullMoney(ni.TargetPrice), nullMoney(ni.CurrentBestPrice), nullString(ni.Notes), now, now)
	if err != nil {
		return core.GiftItem{}, fmt.Errorf("create gift item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.GiftItem{}, fmt.Errorf("create gift item id: %w", err)
	}

	slog.InfoContext(ctx, "gift item created", applog.FieldItemID, id, applog.FieldRecipientID, ni.RecipientID, "name", ni.Name)
	return g.Get(ctx, id)
}

// Update merges the supplied fields onto the existing row.
func (g *GiftItemRepo) Update(ctx context.Context, id int64, patch core.GiftItemPatch) (core.GiftItem, error) {
	current, err := g.Get(ctx, id)
	if err != nil {
		return core.GiftItem{}, err
	}

	if patch.RecipientID != nil {
		current.RecipientID = *patch.RecipientID
	}
	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Description != nil {
		current.Description = *patch.Description
	}
	if patch.Priority != nil {
		current.Priority = *patch.Priority
	}
	if patch.Status != nil {
		current.Status = *patch.Status
	}
	if patch.TargetPrice != nil {
		current.TargetPrice = patch.TargetPrice
	}
	if patch.CurrentBestPrice != nil {
		current.CurrentBestPrice = patch.CurrentBestPrice
	}
	if patch.Notes != nil {
		current.Notes = *patch.Notes
	}

	_, err = g.db.ExecContext(ctx, `
		UPDATE gift_items
		SET recipient_id = ?, name = ?, description = ?, priority = ?, status = ?,
		    target_price = ?, current_best_price = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		current.RecipientID, current.Name, nullString(current.Description), current.Priority,
		string(current.Status), nullMoney(current.TargetPrice), nullMoney(current.CurrentBestPrice),
		nullString(current.Notes), time.Now().UTC(), id)
	if err != nil {
		return core.GiftItem{}, fmt.Errorf("update gift item: %w", err)
	}
	return g.Get(ctx, id)
}

// SetStatus overwrites the item's status directly, bypassing the purchase
// linkage. Meant for manual corrections only; the normal path is through
// the purchase repository.
func (g *GiftItemRepo) SetStatus(ctx context.Context, id int64, status core.Status) (core.GiftItem, error) {
	res, err := g.db.ExecContext(ctx,
		`UPDATE gift_items SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return core.GiftItem{}, fmt.Errorf("set gift item status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.GiftItem{}, fmt.Errorf("set gift item status: %w", err)
	}
	if n == 0 {
		return core.GiftItem{}, fmt.Errorf("gift item %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "gift item status overridden", applog.FieldItemID, id, applog.FieldItemStatus, string(status))
	return g.Get(ctx, id)
}

// Delete removes a gift item and, transitively, its purchases.
func (g *GiftItemRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := g.db.ExecContext(ctx, `DELETE FROM gift_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete gift item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete gift item: %w", err)
	}
	return n > 0, nil
}
