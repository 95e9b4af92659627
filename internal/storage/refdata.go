package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expense-report/internal/models"
)

// AddCategory inserts a category. Returns models.ErrDuplicateName when the
// name is taken.
func (db *DB) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	id, err := db.insertNamed(ctx, "categories", name)
	if err != nil {
		return nil, err
	}
	return &models.Category{ID: id, Name: name}, nil
}

// AddPaymentMethod inserts a payment method. Returns models.ErrDuplicateName
// when the name is taken.
func (db *DB) AddPaymentMethod(ctx context.Context, name string) (*models.PaymentMethod, error) {
	id, err := db.insertNamed(ctx, "payment_methods", name)
	if err != nil {
		return nil, err
	}
	return &models.PaymentMethod{ID: id, Name: name}, nil
}

// insertNamed inserts a row into one of the two lookup tables. The table
// name is a compile-time constant at every call site, never input.
func (db *DB) insertNamed(ctx context.Context, table, name string) (int64, error) {
	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT 1 FROM %s WHERE name = ?", table), name,
		).Scan(&exists)
		if err == nil {
			return fmt.Errorf("%s %q: %w", table, name, models.ErrDuplicateName)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check name: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (name) VALUES (?)", table), name,
		)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
		id, err = result.LastInsertId()
		return err
	})
	return id, err
}

// ListCategories retrieves all categories ordered by id.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT category_id, name FROM categories ORDER BY category_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListPaymentMethods retrieves all payment methods ordered by id.
func (db *DB) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT method_id, name FROM payment_methods ORDER BY method_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		var m models.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// CategoryIDByName resolves a category name to its id. Returns
// models.ErrReferentialIntegrity when the name is unknown.
func (db *DB) CategoryIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT category_id FROM categories WHERE name = ?", name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("category %q: %w", name, models.ErrReferentialIntegrity)
	}
	return id, err
}

// MethodIDByName resolves a payment method name to its id. Returns
// models.ErrReferentialIntegrity when the name is unknown.
func (db *DB) MethodIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT method_id FROM payment_methods WHERE name = ?", name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("payment method %q: %w", name, models.ErrReferentialIntegrity)
	}
	return id, err
}

// rowExists checks a single-row existence query inside a transaction.
func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
