package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fitclub/internal/models"
)

// CreateFeedback сохраняет отзыв о занятии. Разрешён только для
// завершённых бронирований, не больше одного отзыва на бронь.
func (db *DB) CreateFeedback(ctx context.Context, feedback *models.SessionFeedback) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM bookings WHERE id = ?`, feedback.BookingID,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}
		if status != models.BookingStatusCompleted {
			return ErrFeedbackNotAllowed
		}

		var exists int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM session_feedback WHERE booking_id = ?`, feedback.BookingID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check feedback: %w", err)
		}
		if exists > 0 {
			return ErrFeedbackExists
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO session_feedback (booking_id, rating, comment) VALUES (?, ?, ?)`,
			feedback.BookingID, feedback.Rating, nullString(feedback.Comment),
		)
		if err != nil {
			return fmt.Errorf("failed to create feedback: %w", err)
		}
		feedback.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		return nil
	})
}

// ListFeedback возвращает отзывы для админки, свежие первыми.
func (db *DB) ListFeedback(ctx context.Context, limit int64) ([]*models.SessionFeedback, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, booking_id, rating, comment, created_at
         FROM session_feedback ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var feedbacks []*models.SessionFeedback
	for rows.Next() {
		var (
			f       models.SessionFeedback
			comment sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.BookingID, &f.Rating, &comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		f.Comment = comment.String
		feedbacks = append(feedbacks, &f)
	}
	return feedbacks, rows.Err()
}
