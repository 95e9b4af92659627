package services

import (
	"context"
	"fmt"

	"expense-report/internal/models"
	"expense-report/internal/storage"
)

// ReportService runs the fixed set of aggregate views over the ledger. Every
// report is scoped by the same Admin/owner rule as listing, except the
// highest-spender report which is Admin only.
type ReportService struct {
	db *storage.DB
}

// NewReportService creates a ReportService backed by db.
func NewReportService(db *storage.DB) *ReportService {
	return &ReportService{db: db}
}

// TopExpenses returns the n largest expenses, optionally bounded by an
// inclusive date range (start only, end only, or both).
func (s *ReportService) TopExpenses(ctx context.Context, actor models.Session, n int, startDate, endDate string) ([]models.ExpenseRow, error) {
	if n <= 0 {
		return nil, fmt.Errorf("top count %d: %w", n, models.ErrInvalidValue)
	}
	return s.db.TopExpenses(ctx, ownerScope(actor), n, startDate, endDate)
}

// CategorySpending returns the total spent on a category, 0 when none.
func (s *ReportService) CategorySpending(ctx context.Context, actor models.Session, category string) (float64, error) {
	return s.db.CategorySpending(ctx, ownerScope(actor), category)
}

// AboveCategoryAverage returns expenses above their own category's mean,
// ordered by amount descending.
func (s *ReportService) AboveCategoryAverage(ctx context.Context, actor models.Session) ([]models.ExpenseRow, error) {
	return s.db.AboveCategoryAverage(ctx, ownerScope(actor))
}

// MonthlyCategorySpending groups spending by (year-month, category).
func (s *ReportService) MonthlyCategorySpending(ctx context.Context, actor models.Session) ([]storage.MonthCategoryTotal, error) {
	return s.db.MonthlyCategorySpending(ctx, ownerScope(actor))
}

// HighestSpenderPerMonth returns all users tied for the maximum monthly sum,
// per month. Admin only.
func (s *ReportService) HighestSpenderPerMonth(ctx context.Context, actor models.Session) ([]storage.MonthSpender, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("highest spender report: %w", models.ErrPermissionDenied)
	}
	return s.db.HighestSpenderPerMonth(ctx)
}

// MostFrequentCategory returns the category with the most expenses, or nil
// when the ledger is empty.
func (s *ReportService) MostFrequentCategory(ctx context.Context, actor models.Session) (*storage.CategoryCount, error) {
	return s.db.MostFrequentCategory(ctx, ownerScope(actor))
}

// PaymentMethodUsage counts and sums expenses per payment method.
func (s *ReportService) PaymentMethodUsage(ctx context.Context, actor models.Session) ([]storage.MethodUsage, error) {
	return s.db.PaymentMethodUsage(ctx, ownerScope(actor))
}

// TagExpenses counts and sums tagged expenses per tag.
func (s *ReportService) TagExpenses(ctx context.Context, actor models.Session) ([]storage.TagUsage, error) {
	return s.db.TagExpenses(ctx, ownerScope(actor))
}
