package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/models"
)

// --- Тарифы ---

func (db *DB) CreateMembershipPlan(ctx context.Context, plan *models.MembershipPlan) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO membership_plans (name_ru, name_uz, type, duration_days, total_visits, max_freeze_days, price, is_active, sort_order)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			plan.Name.Ru, nullString(plan.Name.Uz), plan.Type, plan.DurationDays,
			plan.TotalVisits, plan.MaxFreezeDays, plan.Price, plan.IsActive, plan.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("failed to create membership plan: %w", err)
		}
		plan.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		for _, serviceID := range plan.IncludedServiceIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO plan_services (plan_id, service_id) VALUES (?, ?)`,
				plan.ID, serviceID,
			); err != nil {
				return fmt.Errorf("failed to link plan service: %w", err)
			}
		}
		return nil
	})
}

func (db *DB) GetMembershipPlan(ctx context.Context, id int64) (*models.MembershipPlan, error) {
	plan, err := scanPlan(db.QueryRowContext(ctx, planSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership plan: %w", err)
	}
	if err := db.loadPlanServices(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (db *DB) ListMembershipPlans(ctx context.Context, activeOnly bool) ([]*models.MembershipPlan, error) {
	query := planSelect
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order ASC, id ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.MembershipPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, plan := range plans {
		if err := db.loadPlanServices(ctx, plan); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func (db *DB) UpdateMembershipPlan(ctx context.Context, plan *models.MembershipPlan) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE membership_plans SET name_ru = ?, name_uz = ?, type = ?, duration_days = ?,
                    total_visits = ?, max_freeze_days = ?, price = ?, is_active = ?, sort_order = ?
             WHERE id = ?`,
			plan.Name.Ru, nullString(plan.Name.Uz), plan.Type, plan.DurationDays,
			plan.TotalVisits, plan.MaxFreezeDays, plan.Price, plan.IsActive, plan.SortOrder,
			plan.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update membership plan: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrPlanNotFound
		}

		// Состав тарифа переписывается целиком.
		if _, err := tx.ExecContext(ctx, `DELETE FROM plan_services WHERE plan_id = ?`, plan.ID); err != nil {
			return fmt.Errorf("failed to clear plan services: %w", err)
		}
		for _, serviceID := range plan.IncludedServiceIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO plan_services (plan_id, service_id) VALUES (?, ?)`,
				plan.ID, serviceID,
			); err != nil {
				return fmt.Errorf("failed to link plan service: %w", err)
			}
		}
		return nil
	})
}

func (db *DB) loadPlanServices(ctx context.Context, plan *models.MembershipPlan) error {
	rows, err := db.QueryContext(ctx,
		`SELECT service_id FROM plan_services WHERE plan_id = ? ORDER BY service_id ASC`, plan.ID)
	if err != nil {
		return fmt.Errorf("failed to load plan services: %w", err)
	}
	defer rows.Close()

	plan.IncludedServiceIDs = nil
	for rows.Next() {
		var serviceID int64
		if err := rows.Scan(&serviceID); err != nil {
			return fmt.Errorf("failed to scan plan service: %w", err)
		}
		plan.IncludedServiceIDs = append(plan.IncludedServiceIDs, serviceID)
	}
	return rows.Err()
}

// --- Абонементы клиентов ---

func (db *DB) CreateUserMembership(ctx context.Context, m *models.UserMembership) error {
	result, err := db.ExecContext(ctx,
		`INSERT INTO user_memberships (user_id, plan_id, start_date, end_date, remaining_visits, used_freeze_days, status, payment_type)
         VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		m.UserID, m.PlanID, m.StartDate, m.EndDate, m.RemainingVisits, m.Status, m.PaymentType,
	)
	if err != nil {
		return fmt.Errorf("failed to create user membership: %w", err)
	}
	m.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}

func (db *DB) GetUserMembership(ctx context.Context, id int64) (*models.UserMembership, error) {
	m, err := scanMembership(db.QueryRowContext(ctx, membershipSelect+` WHERE um.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// ExpireStaleMemberships лениво переводит просроченные активные абонементы
// в EXPIRED. Вызывается перед любым чтением состояния абонементов, так что
// отдельного планировщика не нужно.
func (db *DB) ExpireStaleMemberships(ctx context.Context) error {
	_, err := db.ExecContext(ctx,
		`UPDATE user_memberships SET status = ? WHERE status = ? AND end_date < ?`,
		models.MembershipStatusExpired, models.MembershipStatusActive, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to expire memberships: %w", err)
	}
	return nil
}

// CurrentMembership возвращает последний по времени создания ACTIVE или
// FROZEN абонемент клиента, либо nil без ошибки, если такого нет.
func (db *DB) CurrentMembership(ctx context.Context, userID int64) (*models.UserMembership, error) {
	query := membershipSelect + ` WHERE um.user_id = ? AND um.status IN (?, ?)
                                  ORDER BY um.created_at DESC, um.id DESC LIMIT 1`
	m, err := scanMembership(db.QueryRowContext(ctx, query, userID,
		models.MembershipStatusActive, models.MembershipStatusFrozen))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current membership: %w", err)
	}
	return m, nil
}

// ListUserMemberships возвращает всю историю абонементов клиента, свежие первыми.
func (db *DB) ListUserMemberships(ctx context.Context, userID int64) ([]*models.UserMembership, error) {
	query := membershipSelect + ` WHERE um.user_id = ? ORDER BY um.created_at DESC, um.id DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*models.UserMembership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (db *DB) UpdateMembershipStatus(ctx context.Context, id int64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE user_memberships SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update membership status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// FreezeMembership открывает эпизод заморозки и переводит абонемент в FROZEN.
// Лимит проверяется по уже использованным дням; на абонемент может быть
// только одна открытая заморозка (гарантируется статусом FROZEN).
func (db *DB) FreezeMembership(ctx context.Context, membershipID int64) (*models.MembershipFreeze, error) {
	var freeze *models.MembershipFreeze
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var (
			status        string
			usedDays      int64
			maxFreezeDays int64
		)
		err := tx.QueryRowContext(ctx,
			`SELECT um.status, um.used_freeze_days, p.max_freeze_days
             FROM user_memberships um
             JOIN membership_plans p ON p.id = um.plan_id
             WHERE um.id = ?`, membershipID,
		).Scan(&status, &usedDays, &maxFreezeDays)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMembershipNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get membership: %w", err)
		}
		if status != models.MembershipStatusActive {
			return ErrMembershipNotActive
		}
		if usedDays >= maxFreezeDays {
			return ErrFreezeLimitExceeded
		}

		now := time.Now()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO membership_freezes (membership_id, freeze_start, freeze_end, days_frozen)
             VALUES (?, ?, NULL, 0)`,
			membershipID, now,
		)
		if err != nil {
			return fmt.Errorf("failed to create freeze: %w", err)
		}
		freezeID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE user_memberships SET status = ? WHERE id = ?`,
			models.MembershipStatusFrozen, membershipID,
		); err != nil {
			return fmt.Errorf("failed to freeze membership: %w", err)
		}

		freeze = &models.MembershipFreeze{
			ID:           freezeID,
			MembershipID: membershipID,
			FreezeStart:  now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return freeze, nil
}

// UnfreezeMembership закрывает открытую заморозку: считает замороженные дни
// с округлением вверх, продлевает абонемент на эти дни и возвращает его
// в ACTIVE. Частичный день заморозки засчитывается как полный.
func (db *DB) UnfreezeMembership(ctx context.Context, membershipID int64) (int64, error) {
	var daysFrozen int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM user_memberships WHERE id = ?`, membershipID,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMembershipNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get membership: %w", err)
		}
		if status != models.MembershipStatusFrozen {
			return ErrMembershipNotFrozen
		}

		var (
			freezeID    int64
			freezeStart time.Time
		)
		err = tx.QueryRowContext(ctx,
			`SELECT id, freeze_start FROM membership_freezes
             WHERE membership_id = ? AND freeze_end IS NULL
             ORDER BY freeze_start DESC LIMIT 1`, membershipID,
		).Scan(&freezeID, &freezeStart)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoOpenFreeze
		}
		if err != nil {
			return fmt.Errorf("failed to get open freeze: %w", err)
		}

		now := time.Now()
		elapsed := now.Sub(freezeStart)
		daysFrozen = int64(elapsed / (24 * time.Hour))
		if elapsed%(24*time.Hour) > 0 {
			daysFrozen++
		}
		if daysFrozen < 1 {
			daysFrozen = 1
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE membership_freezes SET freeze_end = ?, days_frozen = ? WHERE id = ?`,
			now, daysFrozen, freezeID,
		); err != nil {
			return fmt.Errorf("failed to close freeze: %w", err)
		}

		// Срок продлевается на фактические дни заморозки; used_freeze_days
		// копит их для проверки лимита при следующей заморозке.
		if _, err := tx.ExecContext(ctx,
			`UPDATE user_memberships
             SET status = ?, end_date = datetime(end_date, '+' || ? || ' days'), used_freeze_days = used_freeze_days + ?
             WHERE id = ?`,
			models.MembershipStatusActive, daysFrozen, daysFrozen, membershipID,
		); err != nil {
			return fmt.Errorf("failed to unfreeze membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return daysFrozen, nil
}

// DecrementVisit атомарно списывает одно посещение с абонемента типа VISITS.
// Условие remaining_visits > 0 не даёт уйти в минус при гонке.
func (db *DB) DecrementVisit(ctx context.Context, membershipID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE user_memberships SET remaining_visits = remaining_visits - 1
         WHERE id = ? AND remaining_visits IS NOT NULL AND remaining_visits > 0`,
		membershipID,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement visit: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoVisitsRemaining
	}
	return nil
}

// ListMembershipFreezes возвращает историю заморозок абонемента, свежие первыми.
func (db *DB) ListMembershipFreezes(ctx context.Context, membershipID int64) ([]*models.MembershipFreeze, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, membership_id, freeze_start, freeze_end, days_frozen, created_at
         FROM membership_freezes WHERE membership_id = ? ORDER BY freeze_start DESC`,
		membershipID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list freezes: %w", err)
	}
	defer rows.Close()

	var freezes []*models.MembershipFreeze
	for rows.Next() {
		var f models.MembershipFreeze
		if err := rows.Scan(&f.ID, &f.MembershipID, &f.FreezeStart, &f.FreezeEnd, &f.DaysFrozen, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan freeze: %w", err)
		}
		freezes = append(freezes, &f)
	}
	return freezes, rows.Err()
}

const planSelect = `SELECT id, name_ru, name_uz, type, duration_days, total_visits, max_freeze_days,
                           price, is_active, sort_order, created_at
                    FROM membership_plans`

func scanPlan(row rowScanner) (*models.MembershipPlan, error) {
	var (
		plan   models.MembershipPlan
		nameUz sql.NullString
	)
	err := row.Scan(
		&plan.ID, &plan.Name.Ru, &nameUz, &plan.Type, &plan.DurationDays, &plan.TotalVisits,
		&plan.MaxFreezeDays, &plan.Price, &plan.IsActive, &plan.SortOrder, &plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	plan.Name.Uz = nameUz.String
	return &plan, nil
}

const membershipSelect = `SELECT um.id, um.user_id, um.plan_id, um.start_date, um.end_date,
                                 um.remaining_visits, um.used_freeze_days, um.status, um.payment_type, um.created_at,
                                 p.id, p.name_ru, p.name_uz, p.type, p.duration_days, p.total_visits,
                                 p.max_freeze_days, p.price, p.is_active, p.sort_order, p.created_at
                          FROM user_memberships um
                          JOIN membership_plans p ON p.id = um.plan_id`

func scanMembership(row rowScanner) (*models.UserMembership, error) {
	var (
		m      models.UserMembership
		plan   models.MembershipPlan
		nameUz sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.UserID, &m.PlanID, &m.StartDate, &m.EndDate,
		&m.RemainingVisits, &m.UsedFreezeDays, &m.Status, &m.PaymentType, &m.CreatedAt,
		&plan.ID, &plan.Name.Ru, &nameUz, &plan.Type, &plan.DurationDays, &plan.TotalVisits,
		&plan.MaxFreezeDays, &plan.Price, &plan.IsActive, &plan.SortOrder, &plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	plan.Name.Uz = nameUz.String
	m.Plan = &plan
	return &m, nil
}
