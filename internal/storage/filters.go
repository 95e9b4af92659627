package storage

import "strings"

// expenseJoin is the base join shared by listings, reports and export.
const expenseJoin = `FROM expenses e
JOIN categories c ON e.category_id = c.category_id
JOIN payment_methods p ON e.method_id = p.method_id`

// Filters holds the whitelisted list predicates. Zero values mean "no
// filter"; anything outside this struct cannot be expressed, so unrecognized
// keys never reach the query. All values are bound as parameters.
type Filters struct {
	Category  string   // exact category name
	Date      string   // exact ISO date
	AmountMin *float64 // inclusive lower bound
	AmountMax *float64 // inclusive upper bound
	Method    string   // exact payment method name
}

// IsZero reports whether no predicate is set.
func (f Filters) IsZero() bool {
	return f.Category == "" && f.Date == "" && f.AmountMin == nil &&
		f.AmountMax == nil && f.Method == ""
}

// clauses returns the WHERE fragments and their bound arguments.
func (f Filters) clauses() ([]string, []any) {
	var where []string
	var args []any

	if f.Category != "" {
		where = append(where, "c.name = ?")
		args = append(args, f.Category)
	}
	if f.Date != "" {
		where = append(where, "e.date = ?")
		args = append(args, f.Date)
	}
	if f.AmountMin != nil {
		where = append(where, "e.amount >= ?")
		args = append(args, *f.AmountMin)
	}
	if f.AmountMax != nil {
		where = append(where, "e.amount <= ?")
		args = append(args, *f.AmountMax)
	}
	if f.Method != "" {
		where = append(where, "p.name = ?")
		args = append(args, f.Method)
	}
	return where, args
}

// whereClause joins fragments with AND, or returns "" when there are none.
func whereClause(where []string) string {
	if len(where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(where, " AND ")
}
