package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCanceled  = "booking_canceled"
	EventBookingCompleted = "booking_completed"

	EventMembershipPurchased = "membership_purchased"
	EventMembershipFrozen    = "membership_frozen"
	EventMembershipUnfrozen  = "membership_unfrozen"

	EventBarOrderCreated       = "bar_order_created"
	EventBarOrderStatusChanged = "bar_order_status_changed"

	EventFeedbackLeft = "feedback_left"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID   int64     `json:"booking_id"`
	UserID      int64     `json:"user_id"`
	ExternalID  string    `json:"external_id"`
	UserName    string    `json:"user_name"`
	ServiceName string    `json:"service_name"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	Comment     string    `json:"comment,omitempty"`
	ChangedBy   string    `json:"changed_by,omitempty"`
}

// MembershipEventPayload carries membership lifecycle details.
type MembershipEventPayload struct {
	MembershipID int64     `json:"membership_id"`
	UserID       int64     `json:"user_id"`
	ExternalID   string    `json:"external_id"`
	PlanName     string    `json:"plan_name"`
	EndDate      time.Time `json:"end_date"`
	DaysFrozen   int64     `json:"days_frozen,omitempty"`
}

// BarOrderEventPayload carries a bar order snapshot.
type BarOrderEventPayload struct {
	OrderID    int64  `json:"order_id"`
	UserID     int64  `json:"user_id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Total      int64  `json:"total"`
}

// FeedbackEventPayload carries a new session feedback.
type FeedbackEventPayload struct {
	BookingID   int64  `json:"booking_id"`
	UserName    string `json:"user_name"`
	ServiceName string `json:"service_name"`
	Rating      int64  `json:"rating"`
	Comment     string `json:"comment,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
