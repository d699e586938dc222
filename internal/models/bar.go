package models

import "time"

type BarCategory struct {
	ID        int64         `json:"id"`
	Slug      string        `json:"slug"`
	Name      LocalizedText `json:"name"`
	Icon      string        `json:"icon,omitempty"`
	SortOrder int64         `json:"sort_order"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

type BarItem struct {
	ID          int64         `json:"id"`
	CategoryID  int64         `json:"category_id"`
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
	Price       int64         `json:"price"`
	ImageURL    string        `json:"image_url,omitempty"`
	Volume      string        `json:"volume,omitempty"`
	Calories    int64         `json:"calories,omitempty"`
	Proteins    int64         `json:"proteins,omitempty"`
	Fats        int64         `json:"fats,omitempty"`
	Carbs       int64         `json:"carbs,omitempty"`
	IsAvailable bool          `json:"is_available"`
	SortOrder   int64         `json:"sort_order"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type BarOrder struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Status    string         `json:"status"`
	Total     int64          `json:"total"` // фиксируется при создании заказа
	Items     []BarOrderItem `json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type BarOrderItem struct {
	ID       int64  `json:"id"`
	OrderID  int64  `json:"order_id"`
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name,omitempty"` // для JOIN-выборок
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"` // цена позиции на момент заказа
}

// OrderLine позиция запроса на создание заказа.
type OrderLine struct {
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}
