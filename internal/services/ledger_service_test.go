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

// LedgerServiceTestSuite covers the role and ownership gates around the
// store: one Admin, two regular users, one expense owned by alice.
type LedgerServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	db     *storage.DB
	ledger *LedgerService

	admin models.Session
	alice models.Session
	bob   models.Session

	categoryID int64
	methodID   int64
	expenseID  int64
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	dbPath := filepath.Join(suite.T().TempDir(), "test.db")
	db, err := storage.NewDB(dbPath)
	require.NoError(suite.T(), err)
	suite.ctx = context.Background()
	suite.db = db
	suite.ledger = NewLedgerService(db)

	suite.admin = suite.seedUser("root", models.RoleAdmin)
	suite.alice = suite.seedUser("alice", models.RoleUser)
	suite.bob = suite.seedUser("bob", models.RoleUser)

	category, err := db.AddCategory(suite.ctx, "Food")
	require.NoError(suite.T(), err)
	suite.categoryID = category.ID
	method, err := db.AddPaymentMethod(suite.ctx, "Card")
	require.NoError(suite.T(), err)
	suite.methodID = method.ID

	suite.expenseID, err = suite.ledger.AddExpense(suite.ctx, suite.alice,
		suite.categoryID, suite.methodID, 12.50, "2024-03-01", "lunch", "work")
	require.NoError(suite.T(), err)
}

func (suite *LedgerServiceTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *LedgerServiceTestSuite) seedUser(username string, role models.Role) models.Session {
	user, err := suite.db.CreateUser(suite.ctx, username, "hash", role)
	require.NoError(suite.T(), err)
	return models.Session{UserID: user.ID, Role: role}
}

func (suite *LedgerServiceTestSuite) expenseCount() int {
	rows, err := suite.db.ListExpenses(suite.ctx, nil, storage.Filters{})
	require.NoError(suite.T(), err)
	return len(rows)
}

func (suite *LedgerServiceTestSuite) TestCreateUserRequiresAdmin() {
	_, err := suite.ledger.CreateUser(suite.ctx, suite.alice, "carol", "pw", models.RoleUser)
	assert.ErrorIs(suite.T(), err, models.ErrPermissionDenied)

	users, err := suite.ledger.ListUsers(suite.ctx, suite.admin)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), users, 3)
}

func (suite *LedgerServiceTestSuite) TestCreateUserHashesPassword() {
	user, err := suite.ledger.CreateUser(suite.ctx, suite.admin, "carol", "secret", "")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleUser, user.Role, "role defaults to User")

	stored, err := suite.db.GetUserByUsername(suite.ctx, "carol")
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), "secret", stored.PasswordHash)
}

func (suite *LedgerServiceTestSuite) TestCreateUserRejectsUnknownRole() {
	_, err := suite.ledger.CreateUser(suite.ctx, suite.admin, "carol", "pw", "Owner")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidValue)
}

func (suite *LedgerServiceTestSuite) TestCreateUserDuplicate() {
	_, err := suite.ledger.CreateUser(suite.ctx, suite.admin, "alice", "pw", models.RoleUser)
	assert.ErrorIs(suite.T(), err, models.ErrDuplicateName)
}

func (suite *LedgerServiceTestSuite) TestLogin() {
	_, err := suite.ledger.CreateUser(suite.ctx, suite.admin, "carol", "secret", models.RoleUser)
	require.NoError(suite.T(), err)

	session, err := suite.ledger.Login(suite.ctx, "carol", "secret")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleUser, session.Role)
	assert.False(suite.T(), session.IsAdmin())
}

func (suite *LedgerServiceTestSuite) TestLoginDoesNotLeakUsernames() {
	_, err := suite.ledger.CreateUser(suite.ctx, suite.admin, "carol", "secret", models.RoleUser)
	require.NoError(suite.T(), err)

	_, badPassword := suite.ledger.Login(suite.ctx, "carol", "wrong")
	_, badUser := suite.ledger.Login(suite.ctx, "nobody", "wrong")

	assert.ErrorIs(suite.T(), badPassword, models.ErrInvalidCredential)
	assert.ErrorIs(suite.T(), badUser, models.ErrInvalidCredential)
	assert.Equal(suite.T(), badPassword.Error(), badUser.Error(),
		"unknown user and wrong password must be indistinguishable")
}

func (suite *LedgerServiceTestSuite) TestReferenceDataRequiresAdmin() {
	_, err := suite.ledger.AddCategory(suite.ctx, suite.bob, "Travel")
	assert.ErrorIs(suite.T(), err, models.ErrPermissionDenied)
	_, err = suite.ledger.AddPaymentMethod(suite.ctx, suite.bob, "Cash")
	assert.ErrorIs(suite.T(), err, models.ErrPermissionDenied)

	categories, err := suite.ledger.ListCategories(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), categories, 1)
}

func (suite *LedgerServiceTestSuite) TestReferenceDataDuplicatesLeaveRows() {
	_, err := suite.ledger.AddCategory(suite.ctx, suite.admin, "Food")
	assert.ErrorIs(suite.T(), err, models.ErrDuplicateName)

	categories, err := suite.ledger.ListCategories(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), categories, 1)
	assert.Equal(suite.T(), "Food", categories[0].Name)
}

func (suite *LedgerServiceTestSuite) TestAddExpenseRejectsNonPositiveAmount() {
	before := suite.expenseCount()

	_, err := suite.ledger.AddExpense(suite.ctx, suite.alice,
		suite.categoryID, suite.methodID, 0, "2024-03-01", "", "")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidAmount)
	_, err = suite.ledger.AddExpense(suite.ctx, suite.alice,
		suite.categoryID, suite.methodID, -5, "2024-03-01", "", "")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidAmount)

	assert.Equal(suite.T(), before, suite.expenseCount(), "no row may be created")
}

func (suite *LedgerServiceTestSuite) TestAddExpenseRejectsBadDate() {
	_, err := suite.ledger.AddExpense(suite.ctx, suite.alice,
		suite.categoryID, suite.methodID, 5, "2024-13-01", "", "")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidValue)
}

func (suite *LedgerServiceTestSuite) TestAddExpenseUnknownCategory() {
	_, err := suite.ledger.AddExpense(suite.ctx, suite.alice,
		999, suite.methodID, 5, "2024-03-01", "", "")
	assert.ErrorIs(suite.T(), err, models.ErrReferentialIntegrity)
}

func (suite *LedgerServiceTestSuite) TestUpdateExpenseByOwner() {
	err := suite.ledger.UpdateExpense(suite.ctx, suite.alice, suite.expenseID, "amount", "99.99")
	require.NoError(suite.T(), err)

	rows, err := suite.ledger.ListExpenses(suite.ctx, suite.alice, storage.Filters{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), 99.99, rows[0].Amount)
}

func (suite *LedgerServiceTestSuite) TestUpdateExpenseByAdmin() {
	err := suite.ledger.UpdateExpense(suite.ctx, suite.admin, suite.expenseID, "description", "team lunch")
	require.NoError(suite.T(), err)
}

func (suite *LedgerServiceTestSuite) TestUpdateExpenseByNonOwner() {
	err := suite.ledger.UpdateExpense(suite.ctx, suite.bob, suite.expenseID, "amount", "1")
	assert.ErrorIs(suite.T(), err, models.ErrPermissionDenied)

	rows, err := suite.ledger.ListExpenses(suite.ctx, suite.alice, storage.Filters{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12.50, rows[0].Amount, "row must be unchanged")
}

func (suite *LedgerServiceTestSuite) TestUpdateNonexistentExpense() {
	// A non-Admin probing a missing id must not learn it does not exist.
	err := suite.ledger.UpdateExpense(suite.ctx, suite.bob, 999, "amount", "1")
	assert.ErrorIs(suite.T(), err, models.ErrPermissionDenied)

	err = suite.ledger.UpdateExpense(suite.ctx, suite.admin, 999, "amount", "1")
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestUpdateExpenseUnknownField() {
	err := suite.ledger.UpdateExpense(suite.ctx, suite.alice, suite.expenseID, "user_id", "1")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidField)
}

func (suite *LedgerServiceTestSuite) TestUpdateExpenseRejectsNonPositiveAmount() {
	err := suite.ledger.UpdateExpense(suite.ctx, suite.alice, suite.expenseID, "amount", "-3")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidValue)
}

func (suite *LedgerServiceTestSuite) TestUpdateExpenseRejectsBadDate() {
	err := suite.ledger.UpdateExpense(suite.ctx, suite.alice, suite.expenseID, "date", "2024-13-01")
	assert.ErrorIs(suite.T(), err, models.ErrInvalidValue)

	rows, err := suite.ledger.ListExpenses(suite.ctx, suite.alice, storage.Filters{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2024-03-01", rows[0].Date, "row must be unchanged")
}

func (suite *LedgerServiceTestSuite) TestUpdateExpenseUnknownReference() {
	err := suite.ledger.UpdateExpense(suite.ctx, suite.alice, suite.expenseID, "category_id", "999")
	assert.ErrorIs(suite.T(), err, models.ErrReferentialIntegrity)
}

func (suite *LedgerServiceTestSuite) TestUpdateExpenseClearsOptionalField() {
	err := suite.ledger.UpdateExpense(suite.ctx, suite.alice, suite.expenseID, "tag", "")
	require.NoError(suite.T(), err)

	rows, err := suite.ledger.ListExpenses(suite.ctx, suite.alice, storage.Filters{})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), rows[0].Tag)
}

func (suite *LedgerServiceTestSuite) TestDeleteExpenseByNonOwner() {
	err := suite.ledger.DeleteExpense(suite.ctx, suite.bob, suite.expenseID)
	assert.ErrorIs(suite.T(), err, models.ErrPermissionDenied)
	assert.Equal(suite.T(), 1, suite.expenseCount())
}

func (suite *LedgerServiceTestSuite) TestDeleteExpenseByOwner() {
	err := suite.ledger.DeleteExpense(suite.ctx, suite.alice, suite.expenseID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, suite.expenseCount())
}

func (suite *LedgerServiceTestSuite) TestDeleteExpenseByAdmin() {
	err := suite.ledger.DeleteExpense(suite.ctx, suite.admin, suite.expenseID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, suite.expenseCount())
}

func (suite *LedgerServiceTestSuite) TestListExpensesScoping() {
	_, err := suite.ledger.AddExpense(suite.ctx, suite.bob,
		suite.categoryID, suite.methodID, 7, "2024-03-02", "", "")
	require.NoError(suite.T(), err)

	mine, err := suite.ledger.ListExpenses(suite.ctx, suite.bob, storage.Filters{})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), mine, 1)
	assert.Equal(suite.T(), suite.bob.UserID, mine[0].UserID)

	all, err := suite.ledger.ListExpenses(suite.ctx, suite.admin, storage.Filters{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 2)
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
