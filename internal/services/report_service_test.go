package services

import (
	"context"
	"path/filepath"
	"testing"

	"expense-report/internal/models"
	"expense-report/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReportServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *storage.DB
	ledger  *LedgerService
	reports *ReportService

	admin models.Session
	alice models.Session
	bob   models.Session

	food   int64
	travel int64
	card   int64
}

func (suite *ReportServiceTestSuite) SetupTest() {
	dbPath := filepath.Join(suite.T().TempDir(), "test.db")
	db, err := storage.NewDB(dbPath)
	require.NoError(suite.T(), err)
	suite.ctx = context.Background()
	suite.db = db
	suite.ledger = NewLedgerService(db)
	suite.reports = NewReportService(db)

	suite.admin = suite.seedUser("root", models.RoleAdmin)
	suite.alice = suite.seedUser("alice", models.RoleUser)
	suite.bob = suite.seedUser("bob", models.RoleUser)

	food, err := db.AddCategory(suite.ctx, "Food")
	require.NoError(suite.T(), err)
	suite.food = food.ID
	travel, err := db.AddCategory(suite.ctx, "Travel")
	require.NoError(suite.T(), err)
	suite.travel = travel.ID
	card, err := db.AddPaymentMethod(suite.ctx, "Card")
	require.NoError(suite.T(), err)
	suite.card = card.ID
}

func (suite *ReportServiceTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *ReportServiceTestSuite) seedUser(username string, role models.Role) models.Session {
	user, err := suite.db.CreateUser(suite.ctx, username, "hash", role)
	require.NoError(suite.T(), err)
	return models.Session{UserID: user.ID, Role: role}
}

func (suite *ReportServiceTestSuite) addExpense(actor models.Session, categoryID int64, amount float64, date string) {
	_, err := suite.ledger.AddExpense(suite.ctx, actor, categoryID, suite.card, amount, date, "", "")
	require.NoError(suite.T(), err)
}

func (suite *ReportServiceTestSuite) TestTopExpensesRejectsNonPositiveCount() {
	_, err := suite.reports.TopExpenses(suite.ctx, suite.admin, 0, "", "")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidValue)
}

func (suite *ReportServiceTestSuite) TestTopExpensesScopedToOwner() {
	suite.addExpense(suite.alice, suite.food, 50, "2024-01-01")
	suite.addExpense(suite.bob, suite.food, 500, "2024-01-02")

	rows, err := suite.reports.TopExpenses(suite.ctx, suite.alice, 5, "", "")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), 50.0, rows[0].Amount)
}

func (suite *ReportServiceTestSuite) TestCategorySpendingExactName() {
	suite.addExpense(suite.alice, suite.travel, 120.50, "2024-01-01")

	total, err := suite.reports.CategorySpending(suite.ctx, suite.admin, "Travel")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 120.50, total)

	// no fuzzy matching, unknown names just total zero
	total, err = suite.reports.CategorySpending(suite.ctx, suite.admin, "travel")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.0, total)
}

func (suite *ReportServiceTestSuite) TestAboveCategoryAverage() {
	suite.addExpense(suite.alice, suite.food, 10, "2024-01-01")
	suite.addExpense(suite.alice, suite.food, 20, "2024-01-02")
	suite.addExpense(suite.alice, suite.food, 90, "2024-01-03")

	rows, err := suite.reports.AboveCategoryAverage(suite.ctx, suite.admin)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 1, "only the 90 exceeds the mean of 40")
	assert.Equal(suite.T(), 90.0, rows[0].Amount)
}

func (suite *ReportServiceTestSuite) TestHighestSpenderAdminOnly() {
	_, err := suite.reports.HighestSpenderPerMonth(suite.ctx, suite.alice)
	assert.ErrorIs(suite.T(), err, models.ErrPermissionDenied)

	suite.addExpense(suite.bob, suite.food, 100, "2024-01-01")
	rows, err := suite.reports.HighestSpenderPerMonth(suite.ctx, suite.admin)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), "bob", rows[0].Username)
}

func (suite *ReportServiceTestSuite) TestMostFrequentCategory() {
	suite.addExpense(suite.alice, suite.food, 5, "2024-01-01")
	suite.addExpense(suite.alice, suite.food, 5, "2024-01-02")
	suite.addExpense(suite.alice, suite.travel, 900, "2024-01-03")

	result, err := suite.reports.MostFrequentCategory(suite.ctx, suite.admin)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), result)
	assert.Equal(suite.T(), "Food", result.Category, "count wins over amount")

	empty, err := suite.reports.MostFrequentCategory(suite.ctx, suite.bob)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), empty)
}

func (suite *ReportServiceTestSuite) TestMonthlyCategorySpendingScoped() {
	suite.addExpense(suite.alice, suite.food, 30, "2024-01-10")
	suite.addExpense(suite.bob, suite.food, 70, "2024-01-11")

	rows, err := suite.reports.MonthlyCategorySpending(suite.ctx, suite.alice)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), 30.0, rows[0].Total)
}

func (suite *ReportServiceTestSuite) TestPaymentMethodUsage() {
	suite.addExpense(suite.alice, suite.food, 30, "2024-01-10")
	suite.addExpense(suite.alice, suite.food, 20, "2024-01-11")

	rows, err := suite.reports.PaymentMethodUsage(suite.ctx, suite.alice)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), int64(2), rows[0].Count)
	assert.Equal(suite.T(), 50.0, rows[0].Total)
}

func (suite *ReportServiceTestSuite) TestTagExpensesExcludesUntagged() {
	_, err := suite.ledger.AddExpense(suite.ctx, suite.alice, suite.food, suite.card, 10, "2024-01-01", "", "work")
	require.NoError(suite.T(), err)
	suite.addExpense(suite.alice, suite.food, 99, "2024-01-02")

	rows, err := suite.reports.TagExpenses(suite.ctx, suite.alice)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), "work", rows[0].Tag)
	assert.Equal(suite.T(), 10.0, rows[0].Total)
}

func TestReportServiceSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}
