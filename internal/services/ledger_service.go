// Package services enforces the role and ownership rules of the expense
// report system on top of the storage layer. Every mutating operation and
// most reads take the acting session; nothing here trusts the caller.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"expense-report/internal/auth"
	"expense-report/internal/models"
	"expense-report/internal/storage"
)

const dateLayout = "2006-01-02"

// LedgerService covers the credential store, the reference data and the
// expense ledger.
type LedgerService struct {
	db *storage.DB
}

// NewLedgerService creates a LedgerService backed by db.
func NewLedgerService(db *storage.DB) *LedgerService {
	return &LedgerService{db: db}
}

// CreateUser stores a new user with a hashed password. Admin only.
func (s *LedgerService) CreateUser(ctx context.Context, actor models.Session, username, password string, role models.Role) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("create user: %w", models.ErrPermissionDenied)
	}
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("role %q: %w", role, models.ErrInvalidValue)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, username, hash, role)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user created", "username", username, "role", string(role))
	return user, nil
}

// Login verifies credentials and returns a session. Unknown usernames and
// wrong passwords yield the same error so usernames cannot be enumerated.
func (s *LedgerService) Login(ctx context.Context, username, password string) (models.Session, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Session{}, models.ErrInvalidCredential
		}
		return models.Session{}, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return models.Session{}, models.ErrInvalidCredential
	}

	slog.DebugContext(ctx, "login", "user_id", user.ID, "role", string(user.Role))
	return models.Session{UserID: user.ID, Role: user.Role}, nil
}

// ListUsers returns every user account. Admin only.
func (s *LedgerService) ListUsers(ctx context.Context, actor models.Session) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("list users: %w", models.ErrPermissionDenied)
	}
	return s.db.ListUsers(ctx)
}

// AddCategory creates a category. Admin only.
func (s *LedgerService) AddCategory(ctx context.Context, actor models.Session, name string) (*models.Category, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("add category: %w", models.ErrPermissionDenied)
	}
	return s.db.AddCategory(ctx, name)
}

// ListCategories returns all categories. Unrestricted read.
func (s *LedgerService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.db.ListCategories(ctx)
}

// AddPaymentMethod creates a payment method. Admin only.
func (s *LedgerService) AddPaymentMethod(ctx context.Context, actor models.Session, name string) (*models.PaymentMethod, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("add payment method: %w", models.ErrPermissionDenied)
	}
	return s.db.AddPaymentMethod(ctx, name)
}

// ListPaymentMethods returns all payment methods. Unrestricted read.
func (s *LedgerService) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	return s.db.ListPaymentMethods(ctx)
}

// AddExpense inserts an expense owned by the acting user.
func (s *LedgerService) AddExpense(ctx context.Context, actor models.Session, categoryID, methodID int64, amount float64, date, description, tag string) (int64, error) {
	if amount <= 0 {
		return 0, models.ErrInvalidAmount
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, fmt.Errorf("date %q: %w", date, models.ErrInvalidValue)
	}

	return s.db.CreateExpense(ctx, &models.Expense{
		UserID:      actor.UserID,
		CategoryID:  categoryID,
		MethodID:    methodID,
		Amount:      amount,
		Date:        date,
		Description: description,
		Tag:         tag,
	})
}

// UpdateExpense sets a single field of an expense. Non-Admin actors must own
// the row; the ownership-scoped lookup runs first, so a non-owner probing a
// foreign or nonexistent id sees ErrPermissionDenied rather than ErrNotFound.
func (s *LedgerService) UpdateExpense(ctx context.Context, actor models.Session, expenseID int64, field, newValue string) error {
	if err := s.checkOwnership(ctx, actor, expenseID); err != nil {
		return err
	}
	if !storage.UpdatableField(field) {
		return fmt.Errorf("field %q: %w", field, models.ErrInvalidField)
	}

	value, err := coerceFieldValue(field, newValue)
	if err != nil {
		return err
	}
	return s.db.UpdateExpenseField(ctx, expenseID, field, value)
}

// DeleteExpense removes an expense under the same ownership gate as update.
func (s *LedgerService) DeleteExpense(ctx context.Context, actor models.Session, expenseID int64) error {
	if err := s.checkOwnership(ctx, actor, expenseID); err != nil {
		return err
	}
	return s.db.DeleteExpense(ctx, expenseID)
}

// ListExpenses returns joined expense rows matching the filters. Non-Admin
// sessions are implicitly scoped to their own rows.
func (s *LedgerService) ListExpenses(ctx context.Context, actor models.Session, f storage.Filters) ([]models.ExpenseRow, error) {
	return s.db.ListExpenses(ctx, ownerScope(actor), f)
}

// checkOwnership applies the mutation gate: Admins pass through to a plain
// existence check, everyone else gets an ownership-scoped lookup.
func (s *LedgerService) checkOwnership(ctx context.Context, actor models.Session, expenseID int64) error {
	owner, err := s.db.ExpenseOwner(ctx, expenseID)
	if actor.IsAdmin() {
		return err
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("expense %d: %w", expenseID, models.ErrPermissionDenied)
		}
		return err
	}
	if owner != actor.UserID {
		return fmt.Errorf("expense %d: %w", expenseID, models.ErrPermissionDenied)
	}
	return nil
}

// coerceFieldValue converts the raw prompt string to the column type of the
// target field. Amounts must stay positive so the ledger invariant holds on
// update as well as insert.
func coerceFieldValue(field, raw string) (any, error) {
	switch field {
	case "amount":
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("amount %q: %w", raw, models.ErrInvalidValue)
		}
		return amount, nil
	case "category_id", "method_id":
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", field, raw, models.ErrInvalidValue)
		}
		return id, nil
	case "date":
		if _, err := time.Parse(dateLayout, raw); err != nil {
			return nil, fmt.Errorf("date %q: %w", raw, models.ErrInvalidValue)
		}
		return raw, nil
	default: // description, tag
		return nullableString(raw), nil
	}
}

// nullableString maps the empty string to NULL for the optional text fields.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ownerScope returns the listing scope for a session: nil (unscoped) for
// Admins, the session's own user id otherwise.
func ownerScope(actor models.Session) *int64 {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.UserID
	return &id
}
