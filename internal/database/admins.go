package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fitclub/internal/models"
)

func (db *DB) GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	admin, err := scanAdmin(db.QueryRowContext(ctx, adminSelect+` WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return admin, nil
}

func (db *DB) GetAdminByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	admin, err := scanAdmin(db.QueryRowContext(ctx, adminSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by id: %w", err)
	}
	return admin, nil
}

// SeedAdmin идемпотентно создаёт администратора при старте:
// существующая запись с таким email не перезаписывается.
func (db *DB) SeedAdmin(ctx context.Context, email, passwordHash, name, role string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO admin_users (email, password_hash, name, role, is_active)
         VALUES (?, ?, ?, ?, 1)
         ON CONFLICT(email) DO NOTHING`,
		email, passwordHash, name, role,
	)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	return nil
}

func (db *DB) SetAdminActive(ctx context.Context, id int64, active bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE admin_users SET is_active = ? WHERE id = ?`, active, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrAdminNotFound
	}
	return nil
}

const adminSelect = `SELECT id, email, password_hash, name, role, is_active, created_at FROM admin_users`

func scanAdmin(row rowScanner) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Name, &admin.Role, &admin.IsActive, &admin.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
