package cli

import (
	"context"
	"fmt"
	"strings"
)

func (r *REPL) reportTopExpenses(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	n, ok := r.promptInt("Enter number of expenses to show: ")
	if !ok {
		return
	}

	var startDate, endDate string
	if dateRange := r.prompt("Enter date range (YYYY-MM-DD to YYYY-MM-DD) or leave blank: "); dateRange != "" {
		parts := strings.SplitN(dateRange, " to ", 2)
		startDate = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			endDate = strings.TrimSpace(parts[1])
		}
	}

	rows, err := r.reports.TopExpenses(ctx, actor, int(n), startDate, endDate)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "\nTop %d expenses\n", n)
	r.renderExpenses(rows)
}

func (r *REPL) reportCategorySpending(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	category := r.prompt("Enter category name: ")
	total, err := r.reports.CategorySpending(ctx, actor, category)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "\nTotal spending on %q: $%.2f\n", category, total)
}

func (r *REPL) reportAboveAverage(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	rows, err := r.reports.AboveCategoryAverage(ctx, actor)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "\nExpenses above category average:")
	r.renderExpenses(rows)
}

func (r *REPL) reportMonthlySpending(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	rows, err := r.reports.MonthlyCategorySpending(ctx, actor)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "\nMonthly spending by category:")
	r.renderMonthlyTotals(rows)
}

func (r *REPL) reportHighestSpender(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	rows, err := r.reports.HighestSpenderPerMonth(ctx, actor)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "\nHighest spender each month:")
	r.renderMonthSpenders(rows)
}

func (r *REPL) reportFrequentCategory(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	result, err := r.reports.MostFrequentCategory(ctx, actor)
	if err != nil {
		r.fail(err)
		return
	}
	if result == nil {
		fmt.Fprintln(r.out, "\nNo expenses found")
		return
	}
	fmt.Fprintf(r.out, "\nMost frequent category: %s (%d expenses)\n", result.Category, result.Count)
}

func (r *REPL) reportMethodUsage(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	rows, err := r.reports.PaymentMethodUsage(ctx, actor)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "\nPayment method usage:")
	r.renderMethodUsage(rows)
}

func (r *REPL) reportTagExpenses(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	rows, err := r.reports.TagExpenses(ctx, actor)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "\nExpenses by tag:")
	r.renderTagUsage(rows)
}
