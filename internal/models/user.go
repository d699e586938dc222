package models

import (
	"strings"
	"time"
)

type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"` // Telegram ID либо синтетический "manual-"/"phone-" ключ
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasTelegram сообщает, привязан ли клиент к реальному аккаунту Telegram.
func (u *User) HasTelegram() bool {
	return !strings.HasPrefix(u.ExternalID, ExternalIDManualPrefix) &&
		!strings.HasPrefix(u.ExternalID, ExternalIDPhonePrefix)
}

// NormalizePhone оставляет в номере только цифры. Пустой результат
// означает "телефона нет".
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
