package cli

import (
	"context"
	"fmt"
	"strconv"

	"expense-report/internal/models"
	"expense-report/internal/storage"
)

func (r *REPL) createUser(ctx context.Context) {
	actor, ok := r.requireAdmin()
	if !ok {
		return
	}

	username := r.prompt("Enter username: ")
	password := r.promptPassword("Enter password: ")
	role := models.Role(r.prompt("Enter role (Admin/User, default=User): "))

	user, err := r.ledger.CreateUser(ctx, actor, username, password, role)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "User %q created successfully with role %q!\n", user.Username, user.Role)
}

func (r *REPL) login(ctx context.Context) {
	username := r.prompt("Username: ")
	password := r.promptPassword("Password: ")

	session, err := r.ledger.Login(ctx, username, password)
	if err != nil {
		r.fail(err)
		return
	}
	r.session = &session
	fmt.Fprintf(r.out, "Login successful! Welcome, %s (%s)\n", username, session.Role)
}

func (r *REPL) logout() {
	r.session = nil
	fmt.Fprintln(r.out, "Logged out successfully")
}

func (r *REPL) listUsers(ctx context.Context) {
	actor, ok := r.requireAdmin()
	if !ok {
		return
	}

	users, err := r.ledger.ListUsers(ctx, actor)
	if err != nil {
		r.fail(err)
		return
	}
	r.renderUsers(users)
}

func (r *REPL) addCategory(ctx context.Context) {
	actor, ok := r.requireAdmin()
	if !ok {
		return
	}

	name := r.prompt("Enter category name: ")
	category, err := r.ledger.AddCategory(ctx, actor, name)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "Category %q created successfully!\n", category.Name)
}

func (r *REPL) listCategories(ctx context.Context) {
	categories, err := r.ledger.ListCategories(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	r.renderCategories(categories)
}

func (r *REPL) addPaymentMethod(ctx context.Context) {
	actor, ok := r.requireAdmin()
	if !ok {
		return
	}

	name := r.prompt("Enter payment method name: ")
	method, err := r.ledger.AddPaymentMethod(ctx, actor, name)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "Payment method %q created successfully!\n", method.Name)
}

func (r *REPL) listPaymentMethods(ctx context.Context) {
	methods, err := r.ledger.ListPaymentMethods(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	r.renderPaymentMethods(methods)
}

func (r *REPL) addExpense(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	amount, ok := r.promptFloat("Enter amount: ")
	if !ok {
		return
	}
	categoryID, ok := r.promptInt("Enter category ID: ")
	if !ok {
		return
	}
	methodID, ok := r.promptInt("Enter payment method ID: ")
	if !ok {
		return
	}
	date := r.prompt("Enter date (YYYY-MM-DD): ")
	description := r.prompt("Enter description (optional): ")
	tag := r.prompt("Enter tag (optional): ")

	if _, err := r.ledger.AddExpense(ctx, actor, categoryID, methodID, amount, date, description, tag); err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "Expense added successfully!")
}

func (r *REPL) updateExpense(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	expenseID, ok := r.promptInt("Enter expense ID to update: ")
	if !ok {
		return
	}
	field := r.prompt("Enter field to update (amount/category_id/method_id/date/description/tag): ")
	newValue := r.prompt(fmt.Sprintf("Enter new value for %s: ", field))

	if err := r.ledger.UpdateExpense(ctx, actor, expenseID, field, newValue); err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "Expense updated successfully!")
}

func (r *REPL) deleteExpense(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	expenseID, ok := r.promptInt("Enter expense ID to delete: ")
	if !ok {
		return
	}

	if err := r.ledger.DeleteExpense(ctx, actor, expenseID); err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, "Expense deleted successfully!")
}

func (r *REPL) listExpenses(ctx context.Context) {
	actor, ok := r.requireLogin()
	if !ok {
		return
	}

	fmt.Fprintln(r.out, "Available filters (press enter to skip):")
	var filters storage.Filters
	filters.Category = r.prompt("Filter by category name: ")
	filters.Date = r.prompt("Filter by date (YYYY-MM-DD): ")
	filters.AmountMin = r.optionalFloat("Minimum amount: ")
	filters.AmountMax = r.optionalFloat("Maximum amount: ")
	filters.Method = r.prompt("Filter by payment method: ")

	if filters.IsZero() {
		fmt.Fprintln(r.out, "Showing all expenses.")
	}

	rows, err := r.ledger.ListExpenses(ctx, actor, filters)
	if err != nil {
		r.fail(err)
		return
	}
	r.renderExpenses(rows)
}

// optionalFloat reads an amount bound, treating blank and bad input as unset.
func (r *REPL) optionalFloat(label string) *float64 {
	raw := r.prompt(label)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Fprintln(r.out, "Ignoring invalid amount filter.")
		return nil
	}
	return &value
}

func (r *REPL) exportCSV(ctx context.Context) {
	if _, ok := r.requireAdmin(); !ok {
		return
	}

	filename := r.prompt("Enter filename to export to (e.g., expenses.csv): ")
	sortField := r.prompt("Sort by field (optional, press enter to skip): ")

	n, err := r.transfer.Export(ctx, filename, sortField)
	if err != nil {
		r.fail(err)
		return
	}
	if sortField != "" {
		fmt.Fprintf(r.out, "%d expenses exported to %s sorted by %s\n", n, filename, sortField)
	} else {
		fmt.Fprintf(r.out, "%d expenses exported to %s\n", n, filename)
	}
}

func (r *REPL) importCSV(ctx context.Context) {
	filename := r.prompt("Enter filename to import from: ")

	n, err := r.transfer.Import(ctx, filename)
	if err != nil {
		fmt.Fprintf(r.out, "Imported %d rows before failure.\n", n)
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "%d expenses imported successfully from %s!\n", n, filename)
}
