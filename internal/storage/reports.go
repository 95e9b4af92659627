package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expense-report/internal/models"
)

// MonthCategoryTotal is one row of the monthly category spending report.
type MonthCategoryTotal struct {
	Month    string // YYYY-MM
	Category string
	Total    float64
}

// MonthSpender is one row of the highest-spender-per-month report.
type MonthSpender struct {
	Month    string // YYYY-MM
	Username string
	Total    float64
}

// CategoryCount is the most-frequent-category result.
type CategoryCount struct {
	Category string
	Count    int64
}

// MethodUsage is one row of the payment method usage report.
type MethodUsage struct {
	Method string
	Count  int64
	Total  float64
}

// TagUsage is one row of the expenses-by-tag report.
type TagUsage struct {
	Tag   string
	Count int64
	Total float64
}

// TopExpenses returns the n largest expenses, optionally bounded by an
// inclusive date range. Empty bounds are skipped. A non-nil scopeUserID
// restricts the report to that owner.
func (db *DB) TopExpenses(ctx context.Context, scopeUserID *int64, n int, startDate, endDate string) ([]models.ExpenseRow, error) {
	query := `SELECT e.expense_id, e.user_id, e.amount, c.name, p.name, e.date, e.description, e.tag ` +
		expenseJoin

	var where []string
	var args []any
	if scopeUserID != nil {
		where = append(where, "e.user_id = ?")
		args = append(args, *scopeUserID)
	}
	switch {
	case startDate != "" && endDate != "":
		where = append(where, "e.date BETWEEN ? AND ?")
		args = append(args, startDate, endDate)
	case startDate != "":
		where = append(where, "e.date >= ?")
		args = append(args, startDate)
	case endDate != "":
		where = append(where, "e.date <= ?")
		args = append(args, endDate)
	}

	query += whereClause(where)
	query += " ORDER BY e.amount DESC LIMIT ?"
	args = append(args, n)

	return db.queryExpenseRows(ctx, query, args...)
}

// CategorySpending returns the total spent on an exact category name, 0 when
// there are no matching expenses.
func (db *DB) CategorySpending(ctx context.Context, scopeUserID *int64, category string) (float64, error) {
	query := `SELECT COALESCE(SUM(e.amount), 0)
FROM expenses e
JOIN categories c ON e.category_id = c.category_id
WHERE c.name = ?`
	args := []any{category}
	if scopeUserID != nil {
		query += " AND e.user_id = ?"
		args = append(args, *scopeUserID)
	}

	var total float64
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("category spending: %w", err)
	}
	return total, nil
}

// AboveCategoryAverage returns expenses whose amount exceeds the mean of
// their own category, ordered by amount descending.
func (db *DB) AboveCategoryAverage(ctx context.Context, scopeUserID *int64) ([]models.ExpenseRow, error) {
	query := `SELECT e.expense_id, e.user_id, e.amount, c.name, p.name, e.date, e.description, e.tag
` + expenseJoin + `
JOIN (
    SELECT category_id, AVG(amount) AS avg_amount
    FROM expenses
    GROUP BY category_id
) avgs ON e.category_id = avgs.category_id
WHERE e.amount > avgs.avg_amount`

	var args []any
	if scopeUserID != nil {
		query += " AND e.user_id = ?"
		args = append(args, *scopeUserID)
	}
	query += " ORDER BY e.amount DESC"

	return db.queryExpenseRows(ctx, query, args...)
}

// MonthlyCategorySpending groups spending by (year-month, category), ordered
// by month ascending then total descending.
func (db *DB) MonthlyCategorySpending(ctx context.Context, scopeUserID *int64) ([]MonthCategoryTotal, error) {
	query := `SELECT strftime('%Y-%m', e.date) AS month, c.name, SUM(e.amount) AS total
FROM expenses e
JOIN categories c ON e.category_id = c.category_id`

	var args []any
	if scopeUserID != nil {
		query += " WHERE e.user_id = ?"
		args = append(args, *scopeUserID)
	}
	query += `
GROUP BY month, c.name
ORDER BY month, total DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("monthly category spending: %w", err)
	}
	defer rows.Close()

	var result []MonthCategoryTotal
	for rows.Next() {
		var r MonthCategoryTotal
		if err := rows.Scan(&r.Month, &r.Category, &r.Total); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// HighestSpenderPerMonth returns, for every month, all users tied for the
// maximum monthly sum. Ties are all returned on purpose.
func (db *DB) HighestSpenderPerMonth(ctx context.Context) ([]MonthSpender, error) {
	query := `SELECT month, username, max_total FROM (
    SELECT strftime('%Y-%m', e.date) AS month,
           u.username,
           SUM(e.amount) AS total,
           MAX(SUM(e.amount)) OVER (PARTITION BY strftime('%Y-%m', e.date)) AS max_total
    FROM expenses e
    JOIN users u ON e.user_id = u.user_id
    GROUP BY month, u.user_id
)
WHERE total = max_total
ORDER BY month, username`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("highest spender per month: %w", err)
	}
	defer rows.Close()

	var result []MonthSpender
	for rows.Next() {
		var r MonthSpender
		if err := rows.Scan(&r.Month, &r.Username, &r.Total); err != nil {
			return nil, fmt.Errorf("scan month spender: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// MostFrequentCategory returns the single category with the most expenses,
// or nil when the ledger is empty. Ties resolve by storage order.
func (db *DB) MostFrequentCategory(ctx context.Context, scopeUserID *int64) (*CategoryCount, error) {
	query := `SELECT c.name, COUNT(*) AS expense_count
FROM expenses e
JOIN categories c ON e.category_id = c.category_id`

	var args []any
	if scopeUserID != nil {
		query += " WHERE e.user_id = ?"
		args = append(args, *scopeUserID)
	}
	query += " GROUP BY c.name ORDER BY expense_count DESC LIMIT 1"

	var r CategoryCount
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&r.Category, &r.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most frequent category: %w", err)
	}
	return &r, nil
}

// PaymentMethodUsage counts and sums expenses per payment method, ordered by
// total spent descending.
func (db *DB) PaymentMethodUsage(ctx context.Context, scopeUserID *int64) ([]MethodUsage, error) {
	query := `SELECT p.name, COUNT(*) AS transaction_count, SUM(e.amount) AS total_spent
FROM expenses e
JOIN payment_methods p ON e.method_id = p.method_id`

	var args []any
	if scopeUserID != nil {
		query += " WHERE e.user_id = ?"
		args = append(args, *scopeUserID)
	}
	query += " GROUP BY p.name ORDER BY total_spent DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("payment method usage: %w", err)
	}
	defer rows.Close()

	var result []MethodUsage
	for rows.Next() {
		var r MethodUsage
		if err := rows.Scan(&r.Method, &r.Count, &r.Total); err != nil {
			return nil, fmt.Errorf("scan method usage: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// TagExpenses counts and sums tagged expenses per tag, excluding NULL tags,
// ordered by count descending.
func (db *DB) TagExpenses(ctx context.Context, scopeUserID *int64) ([]TagUsage, error) {
	query := `SELECT e.tag, COUNT(*) AS expense_count, SUM(e.amount) AS total_spent
FROM expenses e
WHERE e.tag IS NOT NULL`

	var args []any
	if scopeUserID != nil {
		query += " AND e.user_id = ?"
		args = append(args, *scopeUserID)
	}
	query += " GROUP BY e.tag ORDER BY expense_count DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tag expenses: %w", err)
	}
	defer rows.Close()

	var result []TagUsage
	for rows.Next() {
		var r TagUsage
		if err := rows.Scan(&r.Tag, &r.Count, &r.Total); err != nil {
			return nil, fmt.Errorf("scan tag usage: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
