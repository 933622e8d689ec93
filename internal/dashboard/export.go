package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"Date", "Officer", "Activity", "Travel (km)", "Village", "GPS Location", "Proof"}

func (r Row) record() []string {
	return []string{r.Date, r.Officer, r.Type, r.Travel, r.Village, r.GPS, r.Proof}
}

// WriteCSV writes the rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(r.record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

const sheetName = "Activity Log"

// Workbook builds an XLSX report: a title, the KPI summary and the activity rows.
func Workbook(m Metrics, rows []Row, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillWorkbook(f, m, rows, generatedAt); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fillWorkbook(f *excelize.File, m Metrics, rows []Row, generatedAt time.Time) error {
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2C3E50"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", "Field Activity Report"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheetName, 1, 30); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04:05"))); err != nil {
		return err
	}

	summary := [][2]interface{}{
		{"Total Distance (km)", FormatKm(m.TotalDistance)},
		{"Meetings", m.TotalMeetings},
		{"B2B Sales", m.B2BSales},
		{"B2C Sales", m.B2CSales},
	}
	for i, kv := range summary {
		row := 4 + i
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
	}

	headerRow := 4 + len(summary) + 1
	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetName, "A", "G", 20); err != nil {
		return err
	}

	for i, r := range rows {
		for col, value := range r.record() {
			cell, err := excelize.CoordinatesToCellName(col+1, headerRow+1+i)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}
	}
	return nil
}
