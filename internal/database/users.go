package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.Language == "" {
		user.Language = models.LanguageRu
	}
	query := `INSERT INTO users (external_id, username, first_name, last_name, phone, language, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		user.ExternalID,
		nullString(user.Username),
		nullString(user.FirstName),
		nullString(user.LastName),
		nullString(user.Phone),
		user.Language,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := userSelect + ` WHERE id = ?`
	return db.queryUser(ctx, query, id)
}

func (db *DB) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := userSelect + ` WHERE external_id = ?`
	return db.queryUser(ctx, query, externalID)
}

func (db *DB) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := userSelect + ` WHERE phone = ?`
	return db.queryUser(ctx, query, phone)
}

// UpdateUserProfile обновляет данные профиля при каждом входе через Telegram.
func (db *DB) UpdateUserProfile(ctx context.Context, id int64, firstName, lastName, username string) error {
	query := `UPDATE users SET first_name = ?, last_name = ?, username = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, nullString(firstName), nullString(lastName), nullString(username), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

func (db *DB) UpdateUserPhone(ctx context.Context, externalID, phone string) error {
	query := `UPDATE users SET phone = ?, updated_at = ? WHERE external_id = ?`
	_, err := db.ExecContext(ctx, query, nullString(phone), time.Now(), externalID)
	if err != nil {
		return fmt.Errorf("failed to update user phone: %w", err)
	}
	return nil
}

func (db *DB) UpdateUserLanguage(ctx context.Context, externalID, language string) error {
	query := `UPDATE users SET language = ?, updated_at = ? WHERE external_id = ?`
	_, err := db.ExecContext(ctx, query, language, time.Now(), externalID)
	if err != nil {
		return fmt.Errorf("failed to update user language: %w", err)
	}
	return nil
}

// SearchUsers возвращает клиентов, отфильтрованных по имени, нику или телефону.
func (db *DB) SearchUsers(ctx context.Context, search string) ([]*models.User, error) {
	query := userSelect + ` ORDER BY created_at DESC`
	args := []any{}
	if search != "" {
		query = userSelect + ` WHERE first_name LIKE ? OR last_name LIKE ? OR username LIKE ? OR phone LIKE ?
                               ORDER BY created_at DESC`
		pattern := "%" + search + "%"
		args = []any{pattern, pattern, pattern, pattern}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// UsersWithPhone возвращает всех клиентов с непустым телефоном,
// по возрастанию created_at (нужно для выбора записи при слиянии).
func (db *DB) UsersWithPhone(ctx context.Context) ([]*models.User, error) {
	query := userSelect + ` WHERE phone IS NOT NULL AND phone != '' ORDER BY created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users with phone: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (db *DB) CountUserBookings(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user bookings: %w", err)
	}
	return count, nil
}

func (db *DB) CountUserBarOrders(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bar_orders WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user bar orders: %w", err)
	}
	return count, nil
}

const userSelect = `SELECT id, external_id, username, first_name, last_name, phone, language, created_at, updated_at FROM users`

func (db *DB) queryUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	var (
		user      models.User
		username  sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		phone     sql.NullString
	)
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.ExternalID, &username, &firstName, &lastName,
		&phone, &user.Language, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Username = username.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.Phone = phone.String
	return &user, nil
}

func scanUsers(rows *sql.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		var (
			user      models.User
			username  sql.NullString
			firstName sql.NullString
			lastName  sql.NullString
			phone     sql.NullString
		)
		err := rows.Scan(
			&user.ID, &user.ExternalID, &username, &firstName, &lastName,
			&phone, &user.Language, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Username = username.String
		user.FirstName = firstName.String
		user.LastName = lastName.String
		user.Phone = phone.String
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
