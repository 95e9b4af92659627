package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expense-report/internal/models"
)

// Allowed expense update targets. Each field maps to a fixed statement so no
// caller-influenced name ever reaches statement text.
var updateStatements = map[string]string{
	"amount":      "UPDATE expenses SET amount = ? WHERE expense_id = ?",
	"category_id": "UPDATE expenses SET category_id = ? WHERE expense_id = ?",
	"method_id":   "UPDATE expenses SET method_id = ? WHERE expense_id = ?",
	"date":        "UPDATE expenses SET date = ? WHERE expense_id = ?",
	"description": "UPDATE expenses SET description = ? WHERE expense_id = ?",
	"tag":         "UPDATE expenses SET tag = ? WHERE expense_id = ?",
}

// UpdatableField reports whether field is a valid expense update target.
func UpdatableField(field string) bool {
	_, ok := updateStatements[field]
	return ok
}

// CreateExpense inserts an expense row. The referenced user, category and
// payment method are verified inside the same transaction; a missing
// reference yields models.ErrReferentialIntegrity.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) (int64, error) {
	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		checks := []struct {
			query string
			arg   int64
		}{
			{"SELECT 1 FROM users WHERE user_id = ?", e.UserID},
			{"SELECT 1 FROM categories WHERE category_id = ?", e.CategoryID},
			{"SELECT 1 FROM payment_methods WHERE method_id = ?", e.MethodID},
		}
		for _, c := range checks {
			ok, err := rowExists(ctx, tx, c.query, c.arg)
			if err != nil {
				return fmt.Errorf("check reference: %w", err)
			}
			if !ok {
				return fmt.Errorf("id %d: %w", c.arg, models.ErrReferentialIntegrity)
			}
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (user_id, category_id, method_id, amount, date, description, tag)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.UserID, e.CategoryID, e.MethodID, e.Amount, e.Date,
			nullable(e.Description), nullable(e.Tag),
		)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	return id, err
}

// ExpenseOwner returns the owning user id of an expense, or
// models.ErrNotFound when the expense does not exist.
func (db *DB) ExpenseOwner(ctx context.Context, expenseID int64) (int64, error) {
	var owner int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT user_id FROM expenses WHERE expense_id = ?", expenseID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("expense %d: %w", expenseID, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get expense owner: %w", err)
	}
	return owner, nil
}

// UpdateExpenseField sets a single whitelisted field. Values must already be
// coerced to their column type; category_id and method_id values are checked
// against their lookup tables inside the transaction.
func (db *DB) UpdateExpenseField(ctx context.Context, expenseID int64, field string, value any) error {
	stmt, ok := updateStatements[field]
	if !ok {
		return fmt.Errorf("field %q: %w", field, models.ErrInvalidField)
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var refCheck string
		switch field {
		case "category_id":
			refCheck = "SELECT 1 FROM categories WHERE category_id = ?"
		case "method_id":
			refCheck = "SELECT 1 FROM payment_methods WHERE method_id = ?"
		}
		if refCheck != "" {
			ok, err := rowExists(ctx, tx, refCheck, value)
			if err != nil {
				return fmt.Errorf("check reference: %w", err)
			}
			if !ok {
				return fmt.Errorf("%s %v: %w", field, value, models.ErrReferentialIntegrity)
			}
		}

		result, err := tx.ExecContext(ctx, stmt, value, expenseID)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("expense %d: %w", expenseID, models.ErrNotFound)
		}
		return nil
	})
}

// DeleteExpense removes an expense row. Returns models.ErrNotFound when the
// id does not exist.
func (db *DB) DeleteExpense(ctx context.Context, expenseID int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM expenses WHERE expense_id = ?", expenseID,
		)
		if err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("expense %d: %w", expenseID, models.ErrNotFound)
		}
		return nil
	})
}

// ListExpenses retrieves joined expense rows. A non-nil scopeUserID restricts
// the result to that owner; filters are AND-combined on top.
func (db *DB) ListExpenses(ctx context.Context, scopeUserID *int64, f Filters) ([]models.ExpenseRow, error) {
	query := `SELECT e.expense_id, e.user_id, e.amount, c.name, p.name, e.date, e.description, e.tag ` +
		expenseJoin
	where, args := f.clauses()
	if scopeUserID != nil {
		where = append(where, "e.user_id = ?")
		args = append(args, *scopeUserID)
	}
	query += whereClause(where)
	query += " ORDER BY e.expense_id"

	return db.queryExpenseRows(ctx, query, args...)
}

func (db *DB) queryExpenseRows(ctx context.Context, query string, args ...any) ([]models.ExpenseRow, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var result []models.ExpenseRow
	for rows.Next() {
		var r models.ExpenseRow
		var description, tag sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &r.Amount, &r.Category, &r.PaymentMethod,
			&r.Date, &description, &tag); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		r.Description = description.String
		r.Tag = tag.String
		result = append(result, r)
	}
	return result, rows.Err()
}
