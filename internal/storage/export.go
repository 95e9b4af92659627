package storage

import (
	"context"
	"fmt"

	"expense-report/internal/models"
)

// exportSortColumns is the allow-list of sortable export fields. Only values
// looked up here are ever placed in statement text.
var exportSortColumns = map[string]string{
	"expense_id":     "e.expense_id",
	"user_id":        "e.user_id",
	"amount":         "e.amount",
	"category":       "category",
	"payment_method": "payment_method",
	"date":           "e.date",
	"description":    "e.description",
	"tag":            "e.tag",
}

// ExportRows returns the full joined ledger across all users. sortField must
// be empty or one of the allow-listed export fields; anything else yields
// models.ErrInvalidField before any statement is built.
func (db *DB) ExportRows(ctx context.Context, sortField string) ([]models.ExpenseRow, error) {
	query := `SELECT e.expense_id, e.user_id, e.amount, c.name AS category, p.name AS payment_method, e.date, e.description, e.tag ` +
		expenseJoin

	if sortField != "" {
		column, ok := exportSortColumns[sortField]
		if !ok {
			return nil, fmt.Errorf("sort field %q: %w", sortField, models.ErrInvalidField)
		}
		query += " ORDER BY " + column
	}

	return db.queryExpenseRows(ctx, query)
}
