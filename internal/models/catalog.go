package models

import "time"

type ServiceCategory struct {
	ID        int64         `json:"id"`
	Slug      string        `json:"slug"`
	Name      LocalizedText `json:"name"`
	Icon      string        `json:"icon,omitempty"`
	SortOrder int64         `json:"sort_order"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

type Service struct {
	ID          int64         `json:"id"`
	CategoryID  int64         `json:"category_id"`
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
	Price       int64         `json:"price"`    // в тийинах/копейках
	Duration    int64         `json:"duration"` // в минутах
	Capacity    int64         `json:"capacity"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
