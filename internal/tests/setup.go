package tests

import (
	"context"
	"database/sql"
	"fmt"
)

// TruncateTables empties every application table for a clean test state.
func TruncateTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, "TRUNCATE TABLE budgets, accounts, users RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// PromoteToAdmin grants the ADMIN role directly in the store.
func PromoteToAdmin(ctx context.Context, db *sql.DB, email string) error {
	res, err := db.ExecContext(ctx, "UPDATE users SET role = 'ADMIN' WHERE email = $1", email)
	if err != nil {
		return fmt.Errorf("promote %s: %w", email, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("promote %s: no such user", email)
	}
	return nil
}
