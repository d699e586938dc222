package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fitclub/internal/domain"
	"fitclub/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter выгружает отчёты в Excel для администраторов.
type Exporter struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewExporter(repo domain.Repository, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{repo: repo, path: path, logger: logger}
}

var bookingStatusLabels = map[string]string{
	models.BookingStatusPending:          "Ожидает",
	models.BookingStatusConfirmed:        "Подтверждена",
	models.BookingStatusCompleted:        "Завершена",
	models.BookingStatusCancelledByUser:  "Отменена клиентом",
	models.BookingStatusCancelledByAdmin: "Отменена администратором",
}

// ExportBookings создаёт файл со всеми записями за период и возвращает
// путь к нему.
func (e *Exporter) ExportBookings(ctx context.Context, from, to time.Time) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	bookings, err := e.repo.ListBookingsBetween(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Записи"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Записи за период: %s - %s",
		from.Format("02.01.2006"), to.Format("02.01.2006")))
	_ = f.MergeCell(sheetName, "A1", "G1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"№", "Дата", "Время", "Услуга", "Клиент", "Статус", "По абонементу"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 3
	for _, b := range bookings {
		client, err := e.repo.GetUserByID(ctx, b.UserID)
		clientName := ""
		if err == nil {
			clientName = client.FirstName
			if client.LastName != "" {
				clientName += " " + client.LastName
			}
			if client.Phone != "" {
				clientName += " (+" + client.Phone + ")"
			}
		}

		status := bookingStatusLabels[b.Status]
		if status == "" {
			status = b.Status
		}
		membership := ""
		if b.IsMembership {
			membership = "Да"
		}

		values := []any{
			b.ID,
			b.SlotDate.Format("02.01.2006"),
			b.SlotStart + " - " + b.SlotEnd,
			b.ServiceName,
			clientName,
			status,
			membership,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "C", 15)
	_ = f.SetColWidth(sheetName, "D", "F", 28)
	_ = f.SetColWidth(sheetName, "G", "G", 14)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(bookings)).Msg("bookings export created")
	return filePath, nil
}
