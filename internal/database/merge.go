package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MergeUserGroup переносит бронирования, заказы бара и абонементы
// дубликатов на оставляемую запись, удаляет дубликаты и приводит
// телефон оставляемой записи к каноническому виду (только цифры).
// Вся группа — одна транзакция: при сбое данные группы не трогаются.
func (db *DB) MergeUserGroup(ctx context.Context, keepID int64, duplicateIDs []int64, normalizedPhone string) error {
	if len(duplicateIDs) == 0 {
		return nil
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		for _, dupID := range duplicateIDs {
			if _, err := tx.ExecContext(ctx,
				`UPDATE bookings SET user_id = ?, updated_at = ? WHERE user_id = ?`,
				keepID, now, dupID); err != nil {
				return fmt.Errorf("failed to reparent bookings of user %d: %w", dupID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE bar_orders SET user_id = ?, updated_at = ? WHERE user_id = ?`,
				keepID, now, dupID); err != nil {
				return fmt.Errorf("failed to reparent bar orders of user %d: %w", dupID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE user_memberships SET user_id = ? WHERE user_id = ?`,
				keepID, dupID); err != nil {
				return fmt.Errorf("failed to reparent memberships of user %d: %w", dupID, err)
			}
			// Дубликат удаляется только после переноса всех ссылок.
			if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, dupID); err != nil {
				return fmt.Errorf("failed to delete duplicate user %d: %w", dupID, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET phone = ?, updated_at = ? WHERE id = ?`,
			normalizedPhone, now, keepID); err != nil {
			return fmt.Errorf("failed to normalize phone of user %d: %w", keepID, err)
		}
		return nil
	})
}
