package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/models"
)

func (db *DB) CreateSlot(ctx context.Context, slot *models.Slot) error {
	if slot.Capacity <= 0 {
		slot.Capacity = models.DefaultSlotCapacity
	}
	if slot.Status == "" {
		slot.Status = models.SlotStatusActive
	}
	query := `INSERT INTO slots (service_id, date, start_time, end_time, specialist, capacity, booked_count, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		slot.ServiceID,
		slot.Date.Format(models.DateFormat),
		slot.StartTime,
		slot.EndTime,
		nullString(slot.Specialist),
		slot.Capacity,
		slot.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	slot.ID = id
	slot.CreatedAt = now
	slot.UpdatedAt = now
	return nil
}

// CreateSlots вставляет подготовленную пачку слотов одной транзакцией.
// Генерация пачки — чистая функция сервисного слоя; сбой вставки
// откатывает всю пачку целиком.
func (db *DB) CreateSlots(ctx context.Context, slots []*models.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	created := 0
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO slots (service_id, date, start_time, end_time, specialist, capacity, booked_count, status, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare slot insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, slot := range slots {
			if slot.Capacity <= 0 {
				slot.Capacity = models.DefaultSlotCapacity
			}
			result, err := stmt.ExecContext(ctx,
				slot.ServiceID,
				slot.Date.Format(models.DateFormat),
				slot.StartTime,
				slot.EndTime,
				nullString(slot.Specialist),
				slot.Capacity,
				models.SlotStatusActive,
				now,
				now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert slot: %w", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
			slot.ID = id
			slot.Status = models.SlotStatusActive
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (db *DB) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	query := slotSelect + ` WHERE s.id = ?`
	slot, err := scanSlot(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

// ListSlots возвращает слоты с опциональными фильтрами по дате и услуге.
func (db *DB) ListSlots(ctx context.Context, date *time.Time, serviceID int64) ([]*models.Slot, error) {
	query := slotSelect
	var (
		conds []string
		args  []any
	)
	if date != nil {
		conds = append(conds, "s.date = ?")
		args = append(args, date.Format(models.DateFormat))
	}
	if serviceID != 0 {
		conds = append(conds, "s.service_id = ?")
		args = append(args, serviceID)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY s.date ASC, s.start_time ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// UpdateSlot меняет специалиста, вместимость и/или статус слота.
func (db *DB) UpdateSlot(ctx context.Context, id int64, specialist *string, capacity *int64, status *string) error {
	slot, err := db.GetSlot(ctx, id)
	if err != nil {
		return err
	}

	newSpecialist := slot.Specialist
	if specialist != nil {
		newSpecialist = *specialist
	}
	newCapacity := slot.Capacity
	if capacity != nil {
		newCapacity = *capacity
	}
	newStatus := slot.Status
	if status != nil {
		newStatus = *status
	}

	query := `UPDATE slots SET specialist = ?, capacity = ?, status = ?, updated_at = ? WHERE id = ?`
	_, err = db.ExecContext(ctx, query, nullString(newSpecialist), newCapacity, newStatus, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}
	return nil
}

func (db *DB) DeleteSlot(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrSlotNotFound
	}
	return nil
}

const slotSelect = `SELECT s.id, s.service_id, sv.name_ru, s.date, s.start_time, s.end_time,
                           s.specialist, s.capacity, s.booked_count, s.status, s.created_at, s.updated_at
                    FROM slots s
                    JOIN services sv ON sv.id = s.service_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*models.Slot, error) {
	var (
		slot       models.Slot
		dateStr    string
		specialist sql.NullString
	)
	err := row.Scan(
		&slot.ID, &slot.ServiceID, &slot.ServiceName, &dateStr, &slot.StartTime, &slot.EndTime,
		&specialist, &slot.Capacity, &slot.BookedCount, &slot.Status, &slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	slot.Specialist = specialist.String
	slot.Date, err = time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slot date %s: %w", dateStr, err)
	}
	return &slot, nil
}
