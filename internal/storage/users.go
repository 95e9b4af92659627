package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"expense-report/internal/models"
)

// CreateUser inserts a user with an already-hashed password. Returns
// models.ErrDuplicateName when the username is taken; the existing row is
// left untouched.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM users WHERE username = ?", username,
		).Scan(&exists)
		if err == nil {
			return fmt.Errorf("username %q: %w", username, models.ErrDuplicateName)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check username: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			"INSERT INTO users (username, password, role) VALUES (?, ?, ?)",
			username, passwordHash, string(role),
		)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	return &models.User{ID: id, Username: username, PasswordHash: passwordHash, Role: role}, nil
}

// GetUserByUsername retrieves a user by username. Returns models.ErrNotFound
// when no such user exists.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT user_id, username, password, role FROM users WHERE username = ?",
		username,
	)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListUsers retrieves all users ordered by id.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT user_id, username, password, role FROM users ORDER BY user_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
