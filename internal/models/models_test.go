package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalizedTextResolve(t *testing.T) {
	text := LocalizedText{Ru: "Йога", Uz: "Yoga"}

	assert.Equal(t, "Йога", text.Resolve(LanguageRu))
	assert.Equal(t, "Yoga", text.Resolve(LanguageUz))

	// Неизвестный язык и пустой перевод откатываются на русский
	assert.Equal(t, "Йога", text.Resolve("en"))
	assert.Equal(t, "Массаж", LocalizedText{Ru: "Массаж"}.Resolve(LanguageUz))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"international format", "+998 90 123-45-67", "998901234567"},
		{"digits only", "998901234567", "998901234567"},
		{"with parentheses", "+998 (90) 123 45 67", "998901234567"},
		{"no digits", "нет телефона", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.phone))
		})
	}
}

func TestUserHasTelegram(t *testing.T) {
	assert.True(t, (&User{ExternalID: "123456789"}).HasTelegram())
	assert.False(t, (&User{ExternalID: "manual-5f2c9a"}).HasTelegram())
	assert.False(t, (&User{ExternalID: "phone-998901234567"}).HasTelegram())
}

func TestBookingStatusHelpers(t *testing.T) {
	assert.True(t, IsActiveBookingStatus(BookingStatusPending))
	assert.True(t, IsActiveBookingStatus(BookingStatusConfirmed))
	assert.False(t, IsActiveBookingStatus(BookingStatusCompleted))
	assert.False(t, IsActiveBookingStatus(BookingStatusCancelledByUser))

	assert.True(t, IsCancellableBookingStatus(BookingStatusPending))
	assert.False(t, IsCancellableBookingStatus(BookingStatusCancelledByAdmin))
}

func TestSlotIsFull(t *testing.T) {
	slot := &Slot{Capacity: 2, BookedCount: 1}
	assert.False(t, slot.IsFull())
	slot.BookedCount = 2
	assert.True(t, slot.IsFull())
}
