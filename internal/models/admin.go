package models

import "time"

const (
	AdminRoleSuperAdmin = "SUPER_ADMIN"
	AdminRoleManager    = "MANAGER"
)

type AdminUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// PendingCounts счётчики необработанных заявок для поллинга админки.
type PendingCounts struct {
	PendingBookings int64 `json:"pending_bookings"`
	PendingOrders   int64 `json:"pending_orders"`
}

// DayCount количество событий за день для графиков дашборда.
type DayCount struct {
	Date  string `json:"date"` // "DD.MM"
	Count int64  `json:"count"`
}

// ServiceCount количество записей на услугу за период.
type ServiceCount struct {
	ServiceName string `json:"service_name"`
	Count       int64  `json:"count"`
}

// DashboardStats сводка для главной страницы админки.
type DashboardStats struct {
	TotalUsers            int64          `json:"total_users"`
	TotalBookings         int64          `json:"total_bookings"`
	TotalOrders           int64          `json:"total_orders"`
	TodayBookings         int64          `json:"today_bookings"`
	TodayOrders           int64          `json:"today_orders"`
	Revenue               int64          `json:"revenue"` // выручка бара за месяц
	UsersWithMemberships  int64          `json:"users_with_memberships"`
	ActiveMemberships     int64          `json:"active_memberships"`
	CompletedVisits       int64          `json:"completed_visits"`
	TodayVisits           int64          `json:"today_visits"`
	BookingsByService     []ServiceCount `json:"bookings_by_service"`
	BookingsByDay         []DayCount     `json:"bookings_by_day"`
	VisitsByDay           []DayCount     `json:"visits_by_day"`
}

// MergeResult итог слияния дубликатов клиентов по телефону.
type MergeResult struct {
	Merged       int      `json:"merged"`
	MergedPhones []string `json:"merged_phones"`
}
