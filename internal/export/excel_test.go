package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitclub/internal/database"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportBookings(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(dir, "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()

	cat := &models.ServiceCategory{Slug: "gym", Name: models.LocalizedText{Ru: "Зал"}, IsActive: true}
	require.NoError(t, db.CreateServiceCategory(ctx, cat))
	svc := &models.Service{
		CategoryID: cat.ID,
		Name:       models.LocalizedText{Ru: "Персональная тренировка"},
		Price:      150000,
		Capacity:   1,
		IsActive:   true,
	}
	require.NoError(t, db.CreateService(ctx, svc))

	slot := &models.Slot{
		ServiceID: svc.ID,
		Date:      time.Now().AddDate(0, 0, 1),
		StartTime: "10:00",
		EndTime:   "11:00",
		Capacity:  1,
	}
	require.NoError(t, db.CreateSlot(ctx, slot))

	user := &models.User{ExternalID: "123456", FirstName: "Анна", Phone: "998901234567", Language: "ru"}
	require.NoError(t, db.CreateUser(ctx, user))

	booking := &models.Booking{UserID: user.ID, SlotID: slot.ID, Status: models.BookingStatusPending}
	require.NoError(t, db.CreateBooking(ctx, booking))

	exporter := NewExporter(db, filepath.Join(dir, "exports"), &logger)
	path, err := exporter.ExportBookings(ctx, time.Now(), time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Записи")
	require.NoError(t, err)
	// Заголовок периода, шапка таблицы и одна запись
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Contains(t, rows[2], "Персональная тренировка")
	assert.Contains(t, rows[2][4], "Анна")
}

func TestExportBookings_EmptyPeriod(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(dir, "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exporter := NewExporter(db, filepath.Join(dir, "exports"), &logger)
	path, err := exporter.ExportBookings(context.Background(), time.Now(), time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.FileExists(t, path)
}
