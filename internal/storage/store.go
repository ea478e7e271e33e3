// Package storage implements the persistent store: a single SQLite file
// shared by the entity repositories. The engine's own locking serializes
// writers; no application-level mutex is layered on top.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"giftplan/internal/core"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite handle and exposes one repository per entity.
// All repositories share the same *sql.DB.
type Store struct {
	db *sql.DB

	Recipients *RecipientRepo
	Items      *GiftItemRepo
	Purchases  *PurchaseRepo
	Budgets    *BudgetRepo
}

// Open creates the database file if needed, applies migrations and returns
// a ready-to-use store. WAL keeps readers unblocked while a writer commits;
// foreign keys are enforced so recipient deletes cascade.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	s.Recipients = &RecipientRepo{db: db}
	s.Items = &GiftItemRepo{db: db}
	s.Purchases = &PurchaseRepo{db: db}
	s.Budgets = &BudgetRepo{db: db}

	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// nullString maps an empty string to SQL NULL on the way in.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullMoney maps an optional amount to a nullable cents column.
func nullMoney(m *core.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Cents, Valid: true}
}

// moneyPtr maps a nullable cents column back to an optional amount.
func moneyPtr(n sql.NullInt64) *core.Money {
	if !n.Valid {
		return nil
	}
	return &core.Money{Cents: n.Int64}
}
