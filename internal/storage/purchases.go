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

// PurchaseRepo wraps the purchases table and owns the cross-entity status
// transition: a gift item is "purchased" exactly while a purchase row
// referencing it exists. Create and Delete keep that invariant inside a
// single transaction; an error in either step leaves both tables untouched.
type PurchaseRepo struct {
	db *sql.DB
}

const purchaseSelect = `
	SELECT p.id, p.item_id, gi.name, r.name, p.store_name, p.purchase_price, p.purchase_date,
	       p.payment_method, p.receipt_photo, p.was_on_sale, p.notes, p.created_at, p.updated_at
	FROM purchases p
	LEFT JOIN gift_items gi ON p.item_id = gi.id
	LEFT JOIN recipients r ON gi.recipient_id = r.id`

func scanPurchase(row interface{ Scan(...any) error }) (core.Purchase, error) {
	var (
		p             core.Purchase
		itemName      sql.NullString
		recipientName sql.NullString
		storeName     sql.NullString
		paymentMethod sql.NullString
		receiptPhoto  sql.NullString
		notes         sql.NullString
		purchaseDate  string
		wasOnSale     int64
	)
	err := row.Scan(&p.ID, &p.ItemID, &itemName, &recipientName, &storeName, &p.PurchasePrice.Cents,
		&purchaseDate, &paymentMethod, &receiptPhoto, &wasOnSale, &notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return core.Purchase{}, err
	}
	p.ItemName = itemName.String
	p.RecipientName = recipientName.String
	p.StoreName = storeName.String
	p.PaymentMethod = paymentMethod.String
	p.ReceiptPhoto = receiptPhoto.String
	p.Notes = notes.String
	p.WasOnSale = wasOnSale != 0
	if p.PurchaseDate, err = core.ParseDate(purchaseDate); err != nil {
		return core.Purchase{}, fmt.Errorf("parse purchase date %q: %w", purchaseDate, err)
	}
	return p, nil
}

// List returns all purchases with item and recipient names joined, newest
// purchase date first.
func (p *PurchaseRepo) List(ctx context.Context) ([]core.Purchase, error) {
	rows, err := p.db.QueryContext(ctx, purchaseSelect+` ORDER BY p.purchase_date DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []core.Purchase{}
	for rows.Next() {
		pu, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, pu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}

// Get returns one purchase or core.ErrNotFound.
func (p *PurchaseRepo) Get(ctx context.Context, id int64) (core.Purchase, error) {
	pu, err := scanPurchase(p.db.QueryRowContext(ctx, purchaseSelect+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Purchase{}, fmt.Errorf("purchase %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Purchase{}, fmt.Errorf("get purchase: %w", err)
	}
	return pu, nil
}

// GetByItem returns the purchase linked to an item, or core.ErrNotFound.
// In normal usage an item has at most one live purchase; if duplicates
// exist the oldest row wins.
func (p *PurchaseRepo) GetByItem(ctx context.Context, itemID int64) (core.Purchase, error) {
	pu, err := scanPurchase(p.db.QueryRowContext(ctx,
		purchaseSelect+` WHERE p.item_id = ? ORDER BY p.id LIMIT 1`, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Purchase{}, fmt.Errorf("purchase for item %d: %w", itemID, core.ErrNotFound)
	}
	if err != nil {
		return core.Purchase{}, fmt.Errorf("get purchase by item: %w", err)
	}
	return pu, nil
}

// Create inserts the purchase and marks the linked item "purchased" in one
// transaction. If either write fails, neither is committed.
func (p *PurchaseRepo) Create(ctx context.Context, np core.NewPurchase) (core.Purchase, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("begin purchase create: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO purchases (item_id, store_name, purchase_price, purchase_date, payment_method, receipt_photo, was_on_sale, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		np.ItemID, nullString(np.StoreName), np.PurchasePrice.Cents, np.PurchaseDate.String(),
		nullString(np.PaymentMethod), nullString(np.ReceiptPhoto), boolToInt(np.WasOnSale),
		nullString(np.Notes), now, now)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("insert purchase: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Purchase{}, fmt.Errorf("insert purchase id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE gift_items SET status = ?, updated_at = ? WHERE id = ?`,
		string(core.StatusPurchased), now, np.ItemID); err != nil {
		return core.Purchase{}, fmt.Errorf("mark item purchased: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Purchase{}, fmt.Errorf("commit purchase create: %w", err)
	}

	slog.InfoContext(ctx, "purchase created", applog.FieldPurchaseID, id, applog.FieldItemID, np.ItemID,
		applog.FieldAmountCents, np.PurchasePrice.Cents, "purchase_date", np.PurchaseDate.String())
	return p.Get(ctx, id)
}

// Update merges the supplied fields onto the existing row. The linked item
// and its status are left alone; only Create and Delete toggle the linkage.
func (p *PurchaseRepo) Update(ctx context.Context, id int64, patch core.PurchasePatch) (core.Purchase, error) {
	current, err := p.Get(ctx, id)
	if err != nil {
		return core.Purchase{}, err
	}

	if patch.StoreName != nil {
		current.StoreName = *patch.StoreName
	}
	if patch.PurchasePrice != nil {
		current.PurchasePrice = *patch.PurchasePrice
	}
	if patch.PurchaseDate != nil {
		current.PurchaseDate = *patch.PurchaseDate
	}
	if patch.PaymentMethod != nil {
		current.PaymentMethod = *patch.PaymentMethod
	}
	if patch.ReceiptPhoto != nil {
		current.ReceiptPhoto = *patch.ReceiptPhoto
	}
	if patch.WasOnSale != nil {
		current.WasOnSale = *patch.WasOnSale
	}
	if patch.Notes != nil {
		current.Notes = *patch.Notes
	}

	_, err = p.db.ExecContext(ctx, `
		UPDATE purchases
		SET store_name = ?, purchase_price = ?, purchase_date = ?, payment_method = ?,
		    receipt_photo = ?, was_on_sale = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		nullString(current.StoreName), current.PurchasePrice.Cents, current.PurchaseDate.String(),
		nullString(current.PaymentMethod), nullString(current.ReceiptPhoto),
		boolToInt(current.WasOnSale), nullString(current.Notes), time.Now().UTC(), id)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("update purchase: %w", err)
	}
	return p.Get(ctx, id)
}

// Delete removes the purchase and resets the linked item to "ready_to_buy"
// in one transaction. It reports whether a row was removed; a missing
// purchase changes nothing.
//
// The reset is unconditional: an item that was "needed" or "researching"
// before the purchase comes back as "ready_to_buy". That loses the earlier
// state and is a deliberate simplification, not an undo.
func (p *PurchaseRepo) Delete(ctx context.Context, id int64) (bool, error) {
	current, err := p.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin purchase delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete purchase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete purchase: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE gift_items SET status = ?, updated_at = ? WHERE id = ?`,
		string(core.StatusReadyToBuy), time.Now().UTC(), current.ItemID); err != nil {
		return false, fmt.Errorf("reset item status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit purchase delete: %w", err)
	}

	slog.InfoContext(ctx, "purchase deleted", applog.FieldPurchaseID, id, applog.FieldItemID, current.ItemID)
	return n > 0, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
