package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/models"
)

// --- Категории услуг ---

func (db *DB) CreateServiceCategory(ctx context.Context, c *models.ServiceCategory) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO service_categories (slug, name_ru, name_uz, icon, sort_order, is_active)
         VALUES (?, ?, ?, ?, ?, ?)`,
		c.Slug, c.Name.Ru, nullString(c.Name.Uz), nullString(c.Icon), c.SortOrder, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create service category: %w", err)
	}
	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}

// ListServiceCategories возвращает категории; activeOnly скрывает выключенные.
func (db *DB) ListServiceCategories(ctx context.Context, activeOnly bool) ([]*models.ServiceCategory, error) {
	query := `SELECT id, slug, name_ru, name_uz, icon, sort_order, is_active, created_at
              FROM service_categories`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order ASC, id ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list service categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.ServiceCategory
	for rows.Next() {
		var (
			c      models.ServiceCategory
			nameUz sql.NullString
			icon   sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name.Ru, &nameUz, &icon, &c.SortOrder, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service category: %w", err)
		}
		c.Name.Uz = nameUz.String
		c.Icon = icon.String
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// --- Услуги ---

func (db *DB) CreateService(ctx context.Context, s *models.Service) error {
	if s.Capacity <= 0 {
		s.Capacity = models.DefaultSlotCapacity
	}
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO services (category_id, name_ru, name_uz, description_ru, description_uz, price, duration, capacity, is_active, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CategoryID, s.Name.Ru, nullString(s.Name.Uz),
		nullString(s.Description.Ru), nullString(s.Description.Uz),
		s.Price, s.Duration, s.Capacity, s.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	s.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	query := serviceSelect + ` WHERE id = ?`
	s, err := scanService(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// ListServices возвращает услуги, опционально по категории и только активные.
func (db *DB) ListServices(ctx context.Context, categoryID int64, activeOnly bool) ([]*models.Service, error) {
	query := serviceSelect
	var (
		conds []string
		args  []any
	)
	if categoryID != 0 {
		conds = append(conds, "category_id = ?")
		args = append(args, categoryID)
	}
	if activeOnly {
		conds = append(conds, "is_active = 1")
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (db *DB) UpdateService(ctx context.Context, s *models.Service) error {
	result, err := db.ExecContext(ctx,
		`UPDATE services SET category_id = ?, name_ru = ?, name_uz = ?, description_ru = ?, description_uz = ?,
                price = ?, duration = ?, capacity = ?, is_active = ?, updated_at = ?
         WHERE id = ?`,
		s.CategoryID, s.Name.Ru, nullString(s.Name.Uz),
		nullString(s.Description.Ru), nullString(s.Description.Uz),
		s.Price, s.Duration, s.Capacity, s.IsActive, time.Now(), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrServiceNotFound
	}
	return nil
}

const serviceSelect = `SELECT id, category_id, name_ru, name_uz, description_ru, description_uz,
                              price, duration, capacity, is_active, created_at, updated_at
                       FROM services`

func scanService(row rowScanner) (*models.Service, error) {
	var (
		s      models.Service
		nameUz sql.NullString
		descRu sql.NullString
		descUz sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.CategoryID, &s.Name.Ru, &nameUz, &descRu, &descUz,
		&s.Price, &s.Duration, &s.Capacity, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Name.Uz = nameUz.String
	s.Description.Ru = descRu.String
	s.Description.Uz = descUz.String
	return &s, nil
}
