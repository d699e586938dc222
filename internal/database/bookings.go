package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/models"
)

// CreateBooking создаёт бронь и занимает место в слоте одной транзакцией.
// Защита от переполнения — атомарный UPDATE с условием booked_count < capacity:
// если счётчик уже на пределе, ни одна строка не меняется и транзакция
// откатывается с ErrSlotFull. Повторная активная бронь того же клиента
// на тот же слот отклоняется с ErrDuplicateBooking.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var slotStatus string
		err := tx.QueryRowContext(ctx, `SELECT status FROM slots WHERE id = ?`, booking.SlotID).Scan(&slotStatus)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check slot: %w", err)
		}
		if slotStatus != models.SlotStatusActive {
			return ErrSlotNotFound
		}

		var existing int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM bookings WHERE user_id = ? AND slot_id = ? AND status IN (?, ?)`,
			booking.UserID, booking.SlotID,
			models.BookingStatusPending, models.BookingStatusConfirmed,
		).Scan(&existing)
		if err != nil {
			return fmt.Errorf("failed to check duplicate booking: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateBooking
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE slots SET booked_count = booked_count + 1, updated_at = ? WHERE id = ? AND booked_count < capacity`,
			time.Now(), booking.SlotID,
		)
		if err != nil {
			return fmt.Errorf("failed to occupy slot: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrSlotFull
		}

		now := time.Now()
		insert, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (user_id, slot_id, status, is_membership, comment, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			booking.UserID, booking.SlotID, booking.Status, booking.IsMembership,
			nullString(booking.Comment), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		id, err := insert.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		booking.ID = id
		booking.CreatedAt = now
		booking.UpdatedAt = now
		return nil
	})
}

// CancelBooking переводит бронь в статус отмены и освобождает место
// в той же транзакции. Отменять можно только PENDING и CONFIRMED.
func (db *DB) CancelBooking(ctx context.Context, id int64, cancelStatus string) (*models.Booking, error) {
	var booking *models.Booking
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var (
			b      models.Booking
			status string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT id, user_id, slot_id, status, is_membership FROM bookings WHERE id = ?`, id,
		).Scan(&b.ID, &b.UserID, &b.SlotID, &status, &b.IsMembership)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}
		if !models.IsCancellableBookingStatus(status) {
			return ErrNotCancellable
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
			cancelStatus, now, id,
		); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		// Счётчик не уходит ниже нуля даже при рассинхронизации.
		if _, err := tx.ExecContext(ctx,
			`UPDATE slots SET booked_count = booked_count - 1, updated_at = ? WHERE id = ? AND booked_count > 0`,
			now, b.SlotID,
		); err != nil {
			return fmt.Errorf("failed to release slot: %w", err)
		}

		b.Status = cancelStatus
		b.UpdatedAt = now
		booking = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateBookingStatus переводит бронь из статуса from в to, не трогая
// счётчик слота (подтверждение и завершение место не освобождают).
// Перевод выполняется атомарно: бронь в другом статусе не изменяется.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, from, to string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now(), id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := db.GetBooking(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListUserBookings возвращает брони клиента, свежие первыми.
func (db *DB) ListUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := bookingSelect + ` WHERE b.user_id = ? ORDER BY b.created_at DESC`
	return db.queryBookings(ctx, query, userID)
}

// ListBookingsByStatus возвращает все брони в заданном статусе.
func (db *DB) ListBookingsByStatus(ctx context.Context, status string) ([]*models.Booking, error) {
	query := bookingSelect + ` WHERE b.status = ? ORDER BY s.date ASC, s.start_time ASC`
	return db.queryBookings(ctx, query, status)
}

// ListBookingsByDate возвращает брони на дату (для расписания админки и экспорта).
func (db *DB) ListBookingsByDate(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	query := bookingSelect + ` WHERE s.date = ? ORDER BY s.start_time ASC`
	return db.queryBookings(ctx, query, date.Format(models.DateFormat))
}

// ListBookingsBetween возвращает брони за период дат включительно.
func (db *DB) ListBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	query := bookingSelect + ` WHERE s.date >= ? AND s.date <= ? ORDER BY s.date ASC, s.start_time ASC`
	return db.queryBookings(ctx, query, from.Format(models.DateFormat), to.Format(models.DateFormat))
}

// CountActiveBookingsForSlot считает занятые места по живым броням слота.
func (db *DB) CountActiveBookingsForSlot(ctx context.Context, slotID int64) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE slot_id = ? AND status IN (?, ?)`,
		slotID, models.BookingStatusPending, models.BookingStatusConfirmed,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count slot bookings: %w", err)
	}
	return count, nil
}

const bookingSelect = `SELECT b.id, b.user_id, b.slot_id, b.status, b.is_membership, b.comment,
                              b.created_at, b.updated_at,
                              s.date, s.start_time, s.end_time, s.service_id, sv.name_ru,
                              EXISTS(SELECT 1 FROM session_feedback f WHERE f.booking_id = b.id)
                       FROM bookings b
                       JOIN slots s ON s.id = b.slot_id
                       JOIN services sv ON sv.id = s.service_id`

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b       models.Booking
		comment sql.NullString
		dateStr string
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.SlotID, &b.Status, &b.IsMembership, &comment,
		&b.CreatedAt, &b.UpdatedAt,
		&dateStr, &b.SlotStart, &b.SlotEnd, &b.ServiceID, &b.ServiceName,
		&b.HasFeedback,
	)
	if err != nil {
		return nil, err
	}
	b.Comment = comment.String
	b.SlotDate, err = time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slot date %s: %w", dateStr, err)
	}
	return &b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
