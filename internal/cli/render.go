package cli

import (
	"fmt"
	"text/tabwriter"

	"expense-report/internal/models"
	"expense-report/internal/storage"
)

// table returns a tabwriter over the REPL output. Callers must Flush.
func (r *REPL) table() *tabwriter.Writer {
	return tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
}

func (r *REPL) renderUsers(users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(r.out, "No users found")
		return
	}
	w := r.table()
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
	}
	w.Flush()
}

func (r *REPL) renderCategories(categories []models.Category) {
	if len(categories) == 0 {
		fmt.Fprintln(r.out, "No categories found")
		return
	}
	w := r.table()
	fmt.Fprintln(w, "ID\tNAME")
	for _, c := range categories {
		fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
	}
	w.Flush()
}

func (r *REPL) renderPaymentMethods(methods []models.PaymentMethod) {
	if len(methods) == 0 {
		fmt.Fprintln(r.out, "No payment methods found")
		return
	}
	w := r.table()
	fmt.Fprintln(w, "ID\tNAME")
	for _, m := range methods {
		fmt.Fprintf(w, "%d\t%s\n", m.ID, m.Name)
	}
	w.Flush()
}

func (r *REPL) renderExpenses(rows []models.ExpenseRow) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "No expenses found")
		return
	}
	w := r.table()
	fmt.Fprintln(w, "ID\tUSER\tAMOUNT\tCATEGORY\tMETHOD\tDATE\tDESCRIPTION\tTAG")
	for _, e := range rows {
		fmt.Fprintf(w, "%d\t%d\t%.2f\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.UserID, e.Amount, e.Category, e.PaymentMethod, e.Date, e.Description, e.Tag)
	}
	w.Flush()
}

func (r *REPL) renderMonthlyTotals(rows []storage.MonthCategoryTotal) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "No expenses found")
		return
	}
	w := r.table()
	fmt.Fprintln(w, "MONTH\tCATEGORY\tTOTAL")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", row.Month, row.Category, row.Total)
	}
	w.Flush()
}

func (r *REPL) renderMonthSpenders(rows []storage.MonthSpender) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "No data found")
		return
	}
	w := r.table()
	fmt.Fprintln(w, "MONTH\tUSERNAME\tTOTAL")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", row.Month, row.Username, row.Total)
	}
	w.Flush()
}

func (r *REPL) renderMethodUsage(rows []storage.MethodUsage) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "No expenses found")
		return
	}
	w := r.table()
	fmt.Fprintln(w, "METHOD\tCOUNT\tTOTAL")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", row.Method, row.Count, row.Total)
	}
	w.Flush()
}

func (r *REPL) renderTagUsage(rows []storage.TagUsage) {
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "No tagged expenses found")
		return
	}
	w := r.table()
	fmt.Fprintln(w, "TAG\tCOUNT\tTOTAL")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", row.Tag, row.Count, row.Total)
	}
	w.Flush()
}
