package models

import (
	"database/sql"
	"time"
)

type MembershipPlan struct {
	ID            int64         `json:"id"`
	Name          LocalizedText `json:"name"`
	Type          string        `json:"type"` // UNLIMITED | VISITS
	DurationDays  int64         `json:"duration_days"`
	TotalVisits   sql.NullInt64 `json:"total_visits"` // обязателен для VISITS
	MaxFreezeDays int64         `json:"max_freeze_days"`
	Price         int64         `json:"price"`
	IsActive      bool          `json:"is_active"`
	SortOrder     int64         `json:"sort_order"`
	CreatedAt     time.Time     `json:"created_at"`

	// ID услуг, входящих в тариф (many-to-many через plan_services).
	IncludedServiceIDs []int64 `json:"included_service_ids,omitempty"`
}

type UserMembership struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	PlanID          int64         `json:"plan_id"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	RemainingVisits sql.NullInt64 `json:"remaining_visits"` // NULL для UNLIMITED
	UsedFreezeDays  int64         `json:"used_freeze_days"`
	Status          string        `json:"status"` // ACTIVE, FROZEN, EXPIRED, CANCELLED
	PaymentType     string        `json:"payment_type"`
	CreatedAt       time.Time     `json:"created_at"`

	Plan *MembershipPlan `json:"plan,omitempty"`
}

// IsFrozen сообщает, заморожен ли абонемент сейчас.
func (m *UserMembership) IsFrozen() bool {
	return m.Status == MembershipStatusFrozen
}

// MembershipFreeze один эпизод заморозки. Открытая заморозка имеет
// freeze_end = NULL; на абонемент одновременно не больше одной открытой.
type MembershipFreeze struct {
	ID           int64        `json:"id"`
	MembershipID int64        `json:"membership_id"`
	FreezeStart  time.Time    `json:"freeze_start"`
	FreezeEnd    sql.NullTime `json:"freeze_end"`
	DaysFrozen   int64        `json:"days_frozen"` // вычисляется при разморозке
	CreatedAt    time.Time    `json:"created_at"`
}
