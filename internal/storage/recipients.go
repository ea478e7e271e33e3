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

// RecipientRepo wraps CRUD against the recipients table. Deleting a
// recipient cascades to its gift items and their purchases through the
// store's referential-integrity rules.
type RecipientRepo struct {
	db *sql.DB
}

const recipientCols = `id, name, relationship, budget_allocation, notes, created_at, updated_at`

func scanRecipient(row interface{ Scan(...any) error }) (core.Recipient, error) {
	var (
		r            core.Recipient
		relationship sql.NullString
		notes        sql.NullString
	)
	err := row.Scan(&r.ID, &r.Name, &relationship, &r.BudgetAllocation.Cents, &notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return core.Recipient{}, err
	}
	r.Relationship = relationship.String
	r.Notes = notes.String
	return r, nil
}

// List returns all recipients ordered by name ascending.
func (r *RecipientRepo) List(ctx context.Context) ([]core.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recipientCols+` FROM recipients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	recipients := []core.Recipient{}
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		recipients = append(recipients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	return recipients, nil
}

// Get returns one recipient or core.ErrNotFound.
func (r *RecipientRepo) Get(ctx context.Context, id int64) (core.Recipient, error) {
	rec, err := scanRecipient(r.db.QueryRowContext(ctx,
		`SELECT `+recipientCols+` FROM recipients WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Recipient{}, fmt.Errorf("recipient %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Recipient{}, fmt.Errorf("get recipient: %w", err)
	}
	return rec, nil
}

// Create inserts a recipient and returns the stored row.
func (r *RecipientRepo) Create(ctx context.Context, nr core.NewRecipient) (core.Recipient, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recipients (name, relationship, budget_allocation, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nr.Name, nullString(nr.Relationship), nr.BudgetAllocation.Cents, nullString(nr.Notes), now, now)
	if err != nil {
		return core.Recipient{}, fmt.Errorf("create recipient: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Recipient{}, fmt.Errorf("create recipient id: %w", err)
	}

	slog.InfoContext(ctx, "recipient created", applog.FieldRecipientID, id, "name", nr.Name)
	return r.Get(ctx, id)
}

// Update merges the supplied fields onto the existing row. Absent fields
// retain their stored values.
func (r *RecipientRepo) Update(ctx context.Context, id int64, patch core.RecipientPatch) (core.Recipient, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return core.Recipient{}, err
	}

	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Relationship != nil {
		current.Relationship = *patch.Relationship
	}
	if patch.BudgetAllocation != nil {
		current.BudgetAllocation = *patch.BudgetAllocation
	}
	if patch.Notes != nil {
		current.Notes = *patch.Notes
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE recipients
		SET name = ?, relationship = ?, budget_allocation = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		current.Name, nullString(current.Relationship), current.BudgetAllocation.Cents,
		nullString(current.Notes), time.Now().UTC(), id)
	if err != nil {
		return core.Recipient{}, fmt.Errorf("update recipient: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes a recipient, cascading to its items and purchases.
// It reports whether a row was removed.
func (r *RecipientRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipients WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete recipient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete recipient: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "recipient deleted", applog.FieldRecipientID, id)
	}
	return n > 0, nil
}
