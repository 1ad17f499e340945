package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iwvelando/finance-tracker/pkg/spending"
)

var (
	// ErrCategoryNotFound is returned for an unknown category ID.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrTransactionNotFound is returned for an unknown transaction ID.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// SaveCategory inserts or updates a category.
func (s *Store) SaveCategory(ctx context.Context, c spending.Category) (err error) {
	defer func() { s.observe("SaveCategory", err) }()
	return upsertCategory(ctx, s.db, c)
}

func upsertCategory(ctx context.Context, db execer, c spending.Category) error {
	_, err := db.ExecContext(ctx, `INSERT INTO categories
		(id, name, type, icon, color, is_default, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 name = excluded.name,
		 type = excluded.type,
		 icon = excluded.icon,
		 color = excluded.color,
		 is_default = excluded.is_default,
		 sort_order = excluded.sort_order,
		 updated_at = excluded.updated_at`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color, boolToInt(c.IsDefault), c.SortOrder,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	return err
}

// DeleteCategory removes one category. Categories still referenced by a
// transaction cannot be deleted.
func (s *Store) DeleteCategory(ctx context.Context, id string) (err error) {
	defer func() { s.observe("DeleteCategory", err) }()

	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	return nil
}

// ListCategories returns every category in insertion order.
func (s *Store) ListCategories(ctx context.Context) (categories []spending.Category, err error) {
	defer func() { s.observe("ListCategories", err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, icon, color, is_default, sort_order,
		created_at, updated_at FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories = []spending.Category{}
	for rows.Next() {
		var (
			c                spending.Category
			kind             string
			icon, color      sql.NullString
			isDefault        int
			created, updated string
		)
		if err := rows.Scan(&c.ID, &c.Name, &kind, &icon, &color, &isDefault, &c.SortOrder,
			&created, &updated); err != nil {
			return nil, err
		}
		c.Type = spending.Kind(kind)
		c.Icon = icon.String
		c.Color = color.String
		c.IsDefault = isDefault != 0
		if c.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SaveTransaction inserts or updates a transaction.
func (s *Store) SaveTransaction(ctx context.Context, tx spending.Transaction) (err error) {
	defer func() { s.observe("SaveTransaction", err) }()
	return upsertTransaction(ctx, s.db, tx)
}

func upsertTransaction(ctx context.Context, db execer, tx spending.Transaction) error {
	_, err := db.ExecContext(ctx, `INSERT INTO transactions
		(id, type, amount, description, category_id, date, is_recurring, recurring_id,
		 notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 type = excluded.type,
		 amount = excluded.amount,
		 description = excluded.description,
		 category_id = excluded.category_id,
		 date = excluded.date,
		 is_recurring = excluded.is_recurring,
		 recurring_id = excluded.recurring_id,
		 notes = excluded.notes,
		 updated_at = excluded.updated_at`,
		tx.ID, string(tx.Type), tx.Amount, tx.Description, tx.CategoryID, tx.Date,
		boolToInt(tx.IsRecurring), tx.RecurringID, tx.Notes,
		formatTime(tx.CreatedAt), formatTime(tx.UpdatedAt),
	)
	return err
}

// DeleteTransaction removes one transaction.
func (s *Store) DeleteTransaction(ctx context.Context, id string) (err error) {
	defer func() { s.observe("DeleteTransaction", err) }()

	result, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return nil
}

// ListTransactions returns every transaction newest first.
func (s *Store) ListTransactions(ctx context.Context) (transactions []spending.Transaction, err error) {
	defer func() { s.observe("ListTransactions", err) }()

	rows, err := s.db.QueryContext(ctx, `SELECT id, type, amount, description, category_id, date,
		is_recurring, recurring_id, notes, created_at, updated_at
		FROM transactions ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	transactions = []spending.Transaction{}
	for rows.Next() {
		var (
			tx                 spending.Transaction
			kind               string
			recurring          int
			recurringID, notes sql.NullString
			created, updated   string
		)
		if err := rows.Scan(&tx.ID, &kind, &tx.Amount, &tx.Description, &tx.CategoryID, &tx.Date,
			&recurring, &recurringID, &notes, &created, &updated); err != nil {
			return nil, err
		}
		tx.Type = spending.Kind(kind)
		tx.IsRecurring = recurring != 0
		tx.RecurringID = recurringID.String
		tx.Notes = notes.String
		if tx.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if tx.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
