package audit

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/catalog"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/models"
)

const sheetName = "Reservas"

var headerColumns = []string{"ID", "Nome", "WhatsApp", "Serviço", "Barbeiro", "Data", "Horário", "Valor (R$)", "Criado em"}

// ExportXLSX renders the reservations into a spreadsheet, one row per
// reservation in the order given, and returns the encoded file.
func ExportXLSX(reservations []models.Reservation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	if err := writeHeader(f); err != nil {
		return nil, err
	}
	for i, r := range reservations {
		if err := writeRow(f, i+2, r); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File) error {
	for i, col := range headerColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(headerColumns), 1)
		_ = f.SetCellStyle(sheetName, startCell, endCell, style)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, r models.Reservation) error {
	barberName := r.BarberID
	if barber, ok := catalog.BarberByID(r.BarberID); ok {
		barberName = barber.DisplayName
	}

	values := []interface{}{
		r.ID,
		r.Name,
		r.Phone,
		r.Service,
		barberName,
		r.Date,
		r.Time,
		r.Price,
		r.CreatedAt.Format("02/01/2006 15:04"),
	}
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, val); err != nil {
			return err
		}
	}
	return nil
}
