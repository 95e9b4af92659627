package models

// Role is the authorization level of a user account.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether the role is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
}

// Session is the identity of the currently logged-in user. It is created at
// login, passed explicitly to every operation that needs an actor, and
// discarded at logout or exit. No other session state exists.
type Session struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the session belongs to an Admin.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Category is an admin-managed expense category.
type Category struct {
	ID   int64
	Name string
}

// PaymentMethod is an admin-managed payment method.
type PaymentMethod struct {
	ID   int64
	Name string
}

// Expense is a ledger row as stored. Description and Tag are optional; the
// empty string stands for NULL.
type Expense struct {
	ID          int64
	UserID      int64
	CategoryID  int64
	MethodID    int64
	Amount      float64
	Date        string // ISO calendar date, YYYY-MM-DD
	Description string
	Tag         string
}

// ExpenseRow is the joined read model used for listings and export: category
// and payment method are resolved to their names.
type ExpenseRow struct {
	ID            int64
	UserID        int64
	Amount        float64
	Category      string
	PaymentMethod string
	Date          string
	Description   string
	Tag           string
}
