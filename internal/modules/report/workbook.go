package report

import (
	"fmt"
	"time"

	"equiprent/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	sheetRentals = "Rentals"
	sheetSummary = "Summary"
	dateFormat   = "2006-01-02"
)

var rentalColumns = []struct {
	title string
	width float64
}{
	{"ID", 8},
	{"Equipment", 28},
	{"Serial number", 18},
	{"Category", 18},
	{"Renter", 20},
	{"Class", 10},
	{"Student ID", 14},
	{"Phone", 16},
	{"E-mail", 26},
	{"Start", 12},
	{"End", 12},
	{"Status", 12},
	{"Applied at", 20},
}

var statusFill = map[domain.RentalStatus]string{
	domain.RentalRented:   "#C6EFCE",
	domain.RentalPending:  "#FFEB9C",
	domain.RentalApproved: "#DDEBF7",
	domain.RentalRejected: "#EDEDED",
	domain.RentalReturned: "#EDEDED",
	domain.RentalOverdue:  "#FFC7CE",
}

// buildWorkbook lays the rentals out one per row, plus a per-status summary sheet.
func buildWorkbook(rentals []domain.Rental, counts map[domain.RentalStatus]int64, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetRentals); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, col := range rentalColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetRentals, cell, col.title); err != nil {
			return nil, err
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetRentals, name, name, col.width); err != nil {
			return nil, err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(rentalColumns))
	if err := f.SetCellStyle(sheetRentals, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	styles := make(map[domain.RentalStatus]int, len(statusFill))
	for st, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("status style: %w", err)
		}
		styles[st] = id
	}

	for i := range rentals {
		r := &rentals[i]
		row := i + 2

		var equipment, serial, category string
		if r.Equipment != nil {
			equipment, serial = r.Equipment.Name, r.Equipment.SerialNumber
			if r.Equipment.Category != nil {
				category = r.Equipment.Category.Name
			}
		}

		values := []interface{}{
			r.ID,
			equipment,
			serial,
			category,
			r.RenterName,
			r.RenterClass,
			r.StudentID,
			r.Phone,
			r.Email,
			r.StartDate.Format(dateFormat),
			r.EndDate.Format(dateFormat),
			string(r.Status),
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetRentals, start, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}

		if style, ok := styles[r.Status]; ok {
			cell, _ := excelize.CoordinatesToCellName(12, row)
			if err := f.SetCellStyle(sheetRentals, cell, cell, style); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(sheetRentals, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	if len(rentals) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(rentals)+1)
		if err := f.AutoFilter(sheetRentals, ref, nil); err != nil {
			return nil, err
		}
	}

	if err := writeSummary(f, counts, len(rentals), generated, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummary(f *excelize.File, counts map[domain.RentalStatus]int64, exported int, generated time.Time, headerStyle int) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Generated at", generated.Format("2006-01-02 15:04 MST")},
		{"Rows exported", exported},
		{},
		{"Status", "Rentals"},
	}
	for _, st := range domain.RentalStatuses {
		rows = append(rows, []interface{}{string(st), counts[st]})
	}

	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		v := values
		if err := f.SetSheetRow(sheetSummary, cell, &v); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(sheetSummary, "A4", "B4", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheetSummary, "A", "A", 18)
}
