package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/models"
)

// --- Категории бара ---

func (db *DB) CreateBarCategory(ctx context.Context, c *models.BarCategory) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO bar_categories (slug, name_ru, name_uz, icon, sort_order, is_active)
         VALUES (?, ?, ?, ?, ?, ?)`,
		c.Slug, c.Name.Ru, nullString(c.Name.Uz), nullString(c.Icon), c.SortOrder, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create bar category: %w", err)
	}
	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}

func (db *DB) ListBarCategories(ctx context.Context, activeOnly bool) ([]*models.BarCategory, error) {
	query := `SELECT id, slug, name_ru, name_uz, icon, sort_order, is_active, created_at FROM bar_categories`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order ASC, id ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bar categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.BarCategory
	for rows.Next() {
		var (
			c      models.BarCategory
			nameUz sql.NullString
			icon   sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name.Ru, &nameUz, &icon, &c.SortOrder, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bar category: %w", err)
		}
		c.Name.Uz = nameUz.String
		c.Icon = icon.String
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// --- Позиции меню ---

func (db *DB) CreateBarItem(ctx context.Context, item *models.BarItem) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO bar_items (category_id, name_ru, name_uz, description_ru, description_uz, price,
                image_url, volume, calories, proteins, fats, carbs, is_available, sort_order, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.CategoryID, item.Name.Ru, nullString(item.Name.Uz),
		nullString(item.Description.Ru), nullString(item.Description.Uz), item.Price,
		nullString(item.ImageURL), nullString(item.Volume),
		item.Calories, item.Proteins, item.Fats, item.Carbs,
		item.IsAvailable, item.SortOrder, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create bar item: %w", err)
	}
	item.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetBarItem(ctx context.Context, id int64) (*models.BarItem, error) {
	item, err := scanBarItem(db.QueryRowContext(ctx, barItemSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bar item: %w", err)
	}
	return item, nil
}

func (db *DB) ListBarItems(ctx context.Context, categoryID int64, availableOnly bool) ([]*models.BarItem, error) {
	query := barItemSelect
	var (
		conds []string
		args  []any
	)
	if categoryID != 0 {
		conds = append(conds, "category_id = ?")
		args = append(args, categoryID)
	}
	if availableOnly {
		conds = append(conds, "is_available = 1")
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bar items: %w", err)
	}
	defer rows.Close()

	var items []*models.BarItem
	for rows.Next() {
		item, err := scanBarItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bar item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (db *DB) UpdateBarItem(ctx context.Context, item *models.BarItem) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bar_items SET category_id = ?, name_ru = ?, name_uz = ?, description_ru = ?, description_uz = ?,
                price = ?, image_url = ?, volume = ?, calories = ?, proteins = ?, fats = ?, carbs = ?,
                is_available = ?, sort_order = ?, updated_at = ?
         WHERE id = ?`,
		item.CategoryID, item.Name.Ru, nullString(item.Name.Uz),
		nullString(item.Description.Ru), nullString(item.Description.Uz),
		item.Price, nullString(item.ImageURL), nullString(item.Volume),
		item.Calories, item.Proteins, item.Fats, item.Carbs,
		item.IsAvailable, item.SortOrder, time.Now(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bar item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBarItemNotFound
	}
	return nil
}

// --- Заказы ---

// CreateBarOrder создаёт заказ одной транзакцией: сумма считается по
// текущим ценам позиций, цена каждой позиции фиксируется в заказе.
func (db *DB) CreateBarOrder(ctx context.Context, userID int64, lines []models.OrderLine) (*models.BarOrder, error) {
	var order *models.BarOrder
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()

		type pricedLine struct {
			itemID   int64
			name     string
			quantity int64
			price    int64
		}
		priced := make([]pricedLine, 0, len(lines))
		var total int64
		for _, line := range lines {
			var (
				name      string
				price     int64
				available bool
			)
			err := tx.QueryRowContext(ctx,
				`SELECT name_ru, price, is_available FROM bar_items WHERE id = ?`, line.ItemID,
			).Scan(&name, &price, &available)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBarItemNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to get bar item: %w", err)
			}
			if !available {
				return ErrBarItemNotFound
			}
			priced = append(priced, pricedLine{line.ItemID, name, line.Quantity, price})
			total += price * line.Quantity
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO bar_orders (user_id, status, total, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			userID, models.BarOrderStatusPending, total, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to create bar order: %w", err)
		}
		orderID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		items := make([]models.BarOrderItem, 0, len(priced))
		for _, p := range priced {
			itemResult, err := tx.ExecContext(ctx,
				`INSERT INTO bar_order_items (order_id, item_id, quantity, price) VALUES (?, ?, ?, ?)`,
				orderID, p.itemID, p.quantity, p.price,
			)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
			itemID, _ := itemResult.LastInsertId()
			items = append(items, models.BarOrderItem{
				ID:       itemID,
				OrderID:  orderID,
				ItemID:   p.itemID,
				ItemName: p.name,
				Quantity: p.quantity,
				Price:    p.price,
			})
		}

		order = &models.BarOrder{
			ID:        orderID,
			UserID:    userID,
			Status:    models.BarOrderStatusPending,
			Total:     total,
			Items:     items,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (db *DB) GetBarOrder(ctx context.Context, id int64) (*models.BarOrder, error) {
	var order models.BarOrder
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, status, total, created_at, updated_at FROM bar_orders WHERE id = ?`, id,
	).Scan(&order.ID, &order.UserID, &order.Status, &order.Total, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bar order: %w", err)
	}
	if err := db.loadOrderItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (db *DB) ListUserBarOrders(ctx context.Context, userID int64) ([]*models.BarOrder, error) {
	return db.queryBarOrders(ctx,
		`SELECT id, user_id, status, total, created_at, updated_at
         FROM bar_orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (db *DB) ListBarOrdersByStatus(ctx context.Context, status string) ([]*models.BarOrder, error) {
	return db.queryBarOrders(ctx,
		`SELECT id, user_id, status, total, created_at, updated_at
         FROM bar_orders WHERE status = ? ORDER BY created_at ASC`, status)
}

func (db *DB) UpdateBarOrderStatus(ctx context.Context, id int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bar_orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update bar order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBarOrderNotFound
	}
	return nil
}

func (db *DB) queryBarOrders(ctx context.Context, query string, args ...any) ([]*models.BarOrder, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bar orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.BarOrder
	for rows.Next() {
		var order models.BarOrder
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.Total, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bar order: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, order := range orders {
		if err := db.loadOrderItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (db *DB) loadOrderItems(ctx context.Context, order *models.BarOrder) error {
	rows, err := db.QueryContext(ctx,
		`SELECT oi.id, oi.order_id, oi.item_id, i.name_ru, oi.quantity, oi.price
         FROM bar_order_items oi
         JOIN bar_items i ON i.id = oi.item_id
         WHERE oi.order_id = ?
         ORDER BY oi.id ASC`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	order.Items = nil
	for rows.Next() {
		var item models.BarOrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ItemID, &item.ItemName, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

const barItemSelect = `SELECT id, category_id, name_ru, name_uz, description_ru, description_uz, price,
                              image_url, volume, calories, proteins, fats, carbs, is_available, sort_order,
                              created_at, updated_at
                       FROM bar_items`

func scanBarItem(row rowScanner) (*models.BarItem, error) {
	var (
		item     models.BarItem
		nameUz   sql.NullString
		descRu   sql.NullString
		descUz   sql.NullString
		imageURL sql.NullString
		volume   sql.NullString
	)
	err := row.Scan(
		&item.ID, &item.CategoryID, &item.Name.Ru, &nameUz, &descRu, &descUz, &item.Price,
		&imageURL, &volume, &item.Calories, &item.Proteins, &item.Fats, &item.Carbs,
		&item.IsAvailable, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Name.Uz = nameUz.String
	item.Description.Ru = descRu.String
	item.Description.Uz = descUz.String
	item.ImageURL = imageURL.String
	item.Volume = volume.String
	return &item, nil
}
