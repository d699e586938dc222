package database

import (
	"context"
	"fmt"
	"time"

	"fitclub/internal/models"
)

// GetPendingCounts считает необработанные заявки для поллинга админки.
func (db *DB) GetPendingCounts(ctx context.Context) (*models.PendingCounts, error) {
	var counts models.PendingCounts
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE status = ?`, models.BookingStatusPending,
	).Scan(&counts.PendingBookings)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending bookings: %w", err)
	}
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bar_orders WHERE status = ?`, models.BarOrderStatusPending,
	).Scan(&counts.PendingOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	return &counts, nil
}

// GetDashboardStats собирает сводку для главной страницы админки.
// Графики строятся за последние 7 дней, выручка бара — за текущий месяц.
func (db *DB) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	now := time.Now()
	today := now.Format(models.DateFormat)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -6)

	simple := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&stats.TotalUsers, `SELECT COUNT(*) FROM users`, nil},
		{&stats.TotalBookings, `SELECT COUNT(*) FROM bookings`, nil},
		{&stats.TotalOrders, `SELECT COUNT(*) FROM bar_orders`, nil},
		{&stats.TodayBookings,
			`SELECT COUNT(*) FROM bookings b JOIN slots s ON s.id = b.slot_id WHERE s.date = ?`,
			[]any{today}},
		{&stats.TodayOrders,
			`SELECT COUNT(*) FROM bar_orders WHERE date(created_at) = ?`,
			[]any{today}},
		{&stats.Revenue,
			`SELECT COALESCE(SUM(total), 0) FROM bar_orders WHERE status = ? AND created_at >= ?`,
			[]any{models.BarOrderStatusCompleted, monthStart}},
		{&stats.UsersWithMemberships,
			`SELECT COUNT(DISTINCT user_id) FROM user_memberships WHERE status IN (?, ?)`,
			[]any{models.MembershipStatusActive, models.MembershipStatusFrozen}},
		{&stats.ActiveMemberships,
			`SELECT COUNT(*) FROM user_memberships WHERE status = ?`,
			[]any{models.MembershipStatusActive}},
		{&stats.CompletedVisits,
			`SELECT COUNT(*) FROM bookings WHERE status = ?`,
			[]any{models.BookingStatusCompleted}},
		{&stats.TodayVisits,
			`SELECT COUNT(*) FROM bookings b JOIN slots s ON s.id = b.slot_id WHERE b.status = ? AND s.date = ?`,
			[]any{models.BookingStatusCompleted, today}},
	}
	for _, q := range simple {
		if err := db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("failed to query dashboard stats: %w", err)
		}
	}

	var err error
	stats.BookingsByService, err = db.bookingsByService(ctx, weekAgo)
	if err != nil {
		return nil, err
	}
	stats.BookingsByDay, err = db.dayCounts(ctx,
		`SELECT s.date, COUNT(*) FROM bookings b JOIN slots s ON s.id = b.slot_id
         WHERE s.date >= ? GROUP BY s.date`, weekAgo, now)
	if err != nil {
		return nil, err
	}
	stats.VisitsByDay, err = db.dayCounts(ctx,
		`SELECT s.date, COUNT(*) FROM bookings b JOIN slots s ON s.id = b.slot_id
         WHERE b.status = '`+models.BookingStatusCompleted+`' AND s.date >= ? GROUP BY s.date`, weekAgo, now)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (db *DB) bookingsByService(ctx context.Context, since time.Time) ([]models.ServiceCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT sv.name_ru, COUNT(*) AS cnt
         FROM bookings b
         JOIN slots s ON s.id = b.slot_id
         JOIN services sv ON sv.id = s.service_id
         WHERE s.date >= ?
         GROUP BY sv.id
         ORDER BY cnt DESC`,
		since.Format(models.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by service: %w", err)
	}
	defer rows.Close()

	var counts []models.ServiceCount
	for rows.Next() {
		var c models.ServiceCount
		if err := rows.Scan(&c.ServiceName, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan service count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// dayCounts заполняет ряд за 7 дней, включая дни без событий.
func (db *DB) dayCounts(ctx context.Context, query string, from, to time.Time) ([]models.DayCount, error) {
	rows, err := db.QueryContext(ctx, query, from.Format(models.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query day counts: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]int64)
	for rows.Next() {
		var (
			date  string
			count int64
		)
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		byDate[date] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var counts []models.DayCount
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		counts = append(counts, models.DayCount{
			Date:  d.Format("02.01"),
			Count: byDate[d.Format(models.DateFormat)],
		})
	}
	return counts, nil
}
