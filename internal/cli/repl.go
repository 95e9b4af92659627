// Package cli implements the interactive numbered-menu loop. It owns the
// current session identity: created at login, cleared at logout or exit,
// never stored anywhere else.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"expense-report/internal/models"
	"expense-report/internal/services"
	"expense-report/internal/storage"
)

const menu = `
Enter the NUMBER to select an option:

1.  Create User (Admin only)
2.  Login
3.  Logout
4.  List Users (Admin only)
5.  Add Category (Admin only)
6.  List Categories
7.  Add Payment Method (Admin only)
8.  List Payment Methods
9.  Add Expense
10. Update Expense
11. Delete Expense
12. List Expenses
13. Export to CSV (Admin only)
14. Import from CSV
15. Exit

REPORTS:
16. Top N expenses in date range
17. Category spending summary
18. Expenses above category average
19. Monthly spending by category
20. Highest spender per month (Admin only)
21. Most frequent category
22. Payment method usage
23. Expenses by tag
`

// REPL reads commands from stdin and drives the services. All failures are
// reported as a single message and the loop continues.
type REPL struct {
	ledger   *services.LedgerService
	reports  *services.ReportService
	transfer *services.TransferService

	stdin   io.Reader
	scanner *bufio.Scanner
	out     io.Writer

	session *models.Session // nil when logged out
}

// New creates a REPL over the given database and streams.
func New(db *storage.DB, stdin io.Reader, out io.Writer) *REPL {
	return &REPL{
		ledger:   services.NewLedgerService(db),
		reports:  services.NewReportService(db),
		transfer: services.NewTransferService(db),
		stdin:    stdin,
		scanner:  bufio.NewScanner(stdin),
		out:      out,
	}
}

// Run executes the command loop until exit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Type 'help' to see available options")
	fmt.Fprintln(r.out)

	for {
		fmt.Fprint(r.out, "> ")
		line, ok := r.readLine()
		if !ok {
			return r.scanner.Err()
		}
		line = strings.ToLower(strings.TrimSpace(line))

		switch {
		case line == "":
			continue
		case line == "help":
			fmt.Fprint(r.out, menu, "\n")
		default:
			option, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintln(r.out, "Please enter a number (1-23) or 'help'.")
				continue
			}
			if exit := r.dispatch(ctx, option); exit {
				return nil
			}
		}
	}
}

// dispatch runs one menu option and reports whether the loop should exit.
func (r *REPL) dispatch(ctx context.Context, option int) bool {
	switch option {
	case 1:
		r.createUser(ctx)
	case 2:
		r.login(ctx)
	case 3:
		r.logout()
	case 4:
		r.listUsers(ctx)
	case 5:
		r.addCategory(ctx)
	case 6:
		r.listCategories(ctx)
	case 7:
		r.addPaymentMethod(ctx)
	case 8:
		r.listPaymentMethods(ctx)
	case 9:
		r.addExpense(ctx)
	case 10:
		r.updateExpense(ctx)
	case 11:
		r.deleteExpense(ctx)
	case 12:
		r.listExpenses(ctx)
	case 13:
		r.exportCSV(ctx)
	case 14:
		r.importCSV(ctx)
	case 15:
		return true
	case 16:
		r.reportTopExpenses(ctx)
	case 17:
		r.reportCategorySpending(ctx)
	case 18:
		r.reportAboveAverage(ctx)
	case 19:
		r.reportMonthlySpending(ctx)
	case 20:
		r.reportHighestSpender(ctx)
	case 21:
		r.reportFrequentCategory(ctx)
	case 22:
		r.reportMethodUsage(ctx)
	case 23:
		r.reportTagExpenses(ctx)
	default:
		fmt.Fprintln(r.out, "Invalid option number. Type 'help' to see available options.")
	}
	return false
}

// requireLogin returns the active session, printing a hint when there is none.
func (r *REPL) requireLogin() (models.Session, bool) {
	if r.session == nil {
		fmt.Fprintln(r.out, "You must log in first!")
		return models.Session{}, false
	}
	return *r.session, true
}

// requireAdmin returns the active session only when it belongs to an Admin.
func (r *REPL) requireAdmin() (models.Session, bool) {
	session, ok := r.requireLogin()
	if !ok {
		return models.Session{}, false
	}
	if !session.IsAdmin() {
		fmt.Fprintln(r.out, "Access denied! Admin only.")
		return models.Session{}, false
	}
	return session, true
}

// fail prints a recoverable error as a user-readable message.
func (r *REPL) fail(err error) {
	fmt.Fprintf(r.out, "Error: %s\n", userMessage(err))
}

// userMessage maps the error taxonomy to stable user-facing text.
func userMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrPermissionDenied):
		return "you do not have permission to do that"
	case errors.Is(err, models.ErrDuplicateName):
		return "that name already exists"
	case errors.Is(err, models.ErrReferentialIntegrity):
		return "invalid category ID or payment method ID"
	case errors.Is(err, models.ErrInvalidAmount):
		return "amount must be greater than zero"
	case errors.Is(err, models.ErrInvalidField):
		return "invalid field name"
	case errors.Is(err, models.ErrInvalidValue):
		return "invalid value"
	case errors.Is(err, models.ErrNotFound):
		return "record not found"
	case errors.Is(err, models.ErrInvalidCredential):
		return "invalid username or password"
	case errors.Is(err, models.ErrFileNotFound):
		return "file not found"
	default:
		return err.Error()
	}
}
