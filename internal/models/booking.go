package models

import "time"

type Booking struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	SlotID       int64     `json:"slot_id"`
	Status       string    `json:"status"` // PENDING, CONFIRMED, COMPLETED, CANCELLED_BY_USER, CANCELLED_BY_ADMIN
	IsMembership bool      `json:"is_membership"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Поля из JOIN со слотом и услугой, только для чтения.
	SlotDate    time.Time `json:"slot_date,omitempty"`
	SlotStart   string    `json:"slot_start,omitempty"`
	SlotEnd     string    `json:"slot_end,omitempty"`
	ServiceID   int64     `json:"service_id,omitempty"`
	ServiceName string    `json:"service_name,omitempty"`
	HasFeedback bool      `json:"has_feedback,omitempty"`
}

type SessionFeedback struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	Rating    int64     `json:"rating"` // 1..5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
