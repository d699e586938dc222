package models

import "time"

// Slot - окно записи на услугу. booked_count поддерживается
// транзакциями бронирования и никогда не выходит за [0, capacity].
type Slot struct {
	ID          int64     `json:"id"`
	ServiceID   int64     `json:"service_id"`
	ServiceName string    `json:"service_name,omitempty"` // для JOIN-выборок
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"` // "HH:MM"
	EndTime     string    `json:"end_time"`   // "HH:MM"
	Specialist  string    `json:"specialist,omitempty"`
	Capacity    int64     `json:"capacity"`
	BookedCount int64     `json:"booked_count"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsFull сообщает, остались ли свободные места.
func (s *Slot) IsFull() bool {
	return s.BookedCount >= s.Capacity
}

// TimeRange пара времени начала и конца для массовой генерации слотов.
type TimeRange struct {
	StartTime string `json:"start_time" yaml:"start_time"`
	EndTime   string `json:"end_time" yaml:"end_time"`
}
