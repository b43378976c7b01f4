package exports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// sheet describe una hoja: títulos, ancho por columna y filas.
type sheet struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]any
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateTime)
}

func stampPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return stamp(*t)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func buildSheets(ds Dataset) []sheet {
	users := sheet{
		name:    "Users",
		headers: []string{"ID", "Username", "Email", "Role", "Status", "Organization", "Animals", "Devices", "Created At"},
		widths:  []float64{38, 18, 26, 10, 10, 14, 10, 10, 20},
	}
	for _, u := range ds.Users {
		users.rows = append(users.rows, []any{u.ID, u.Username, u.Email, string(u.Role), string(u.Status),
			u.OrganizationID, u.AnimalCount, u.DeviceCount, stamp(u.CreatedAt)})
	}

	animalsSheet := sheet{
		name:    "Animals",
		headers: []string{"ID", "Owner", "Name", "Species", "Sex", "Weight (kg)", "Age", "Device", "Created At"},
		widths:  []float64{38, 38, 16, 10, 10, 12, 8, 38, 20},
	}
	for _, a := range ds.Animals {
		animalsSheet.rows = append(animalsSheet.rows, []any{a.ID, a.OwnerUserID, a.Name, string(a.Species), string(a.Sex),
			a.WeightKg, a.AgeYears, a.DeviceID, stamp(a.CreatedAt)})
	}

	devicesSheet := sheet{
		name:    "Devices",
		headers: []string{"ID", "Code", "User", "Animal", "Activated", "Paid", "Payment Type", "Battery", "Last Sync"},
		widths:  []float64{38, 16, 38, 38, 10, 8, 14, 10, 20},
	}
	for _, d := range ds.Devices {
		devicesSheet.rows = append(devicesSheet.rows, []any{d.ID, d.Code, d.UserID, d.AnimalID, yesNo(d.IsActivated),
			yesNo(d.IsPaid), string(d.PaymentType), d.BatteryLevel, stampPtr(d.LastSyncAt)})
	}

	recordsSheet := sheet{
		name:    "Medical Records",
		headers: []string{"ID", "Animal", "Type", "Date", "Title", "Veterinarian", "Clinic"},
		widths:  []float64{38, 38, 14, 20, 24, 18, 18},
	}
	for _, r := range ds.MedicalRecords {
		recordsSheet.rows = append(recordsSheet.rows, []any{r.ID, r.AnimalID, string(r.Type), stamp(r.Date),
			r.Title, r.Veterinarian, r.Clinic})
	}

	readings := sheet{
		name:    "Readings",
		headers: []string{"ID", "Animal", "Metric", "Value", "Unit", "Timestamp"},
		widths:  []float64{38, 38, 14, 10, 8, 20},
	}
	for _, r := range ds.Readings {
		readings.rows = append(readings.rows, []any{r.ID, r.AnimalID, string(r.Metric), r.Value, r.Unit, stamp(r.Timestamp)})
	}

	scores := sheet{
		name:    "Health Scores",
		headers: []string{"ID", "Animal", "Overall", "Heart Rate", "Temperature", "Activity", "Sleep", "Stress", "Timestamp"},
		widths:  []float64{38, 38, 10, 12, 12, 10, 10, 10, 20},
	}
	for _, s := range ds.Scores {
		scores.rows = append(scores.rows, []any{s.ID, s.AnimalID, s.Overall, s.HeartRate, s.Temperature,
			s.Activity, s.Sleep, s.Stress, stamp(s.Timestamp)})
	}

	reportsSheet := sheet{
		name:    "Reports",
		headers: []string{"ID", "User", "Animal", "Type", "Title", "Generated At"},
		widths:  []float64{38, 38, 38, 16, 32, 20},
	}
	for _, r := range ds.Reports {
		reportsSheet.rows = append(reportsSheet.rows, []any{r.ID, r.UserID, r.AnimalID, string(r.Type), r.Title, stamp(r.GeneratedAt)})
	}

	return []sheet{users, animalsSheet, devicesSheet, recordsSheet, readings, scores, reportsSheet}
}

// EncodeXLSX genera un libro con una hoja por entidad y la fila de títulos con estilo.
func EncodeXLSX(ds Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sh := range buildSheets(ds) {
		idx, err := f.NewSheet(sh.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sh.name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, sh, headerStyle); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	for col, h := range sh.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sh.name, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sh.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
		if col < len(sh.widths) {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return fmt.Errorf("failed to convert column number: %w", err)
			}
			if err := f.SetColWidth(sh.name, name, name, sh.widths[col]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	for i, row := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sh.name, err)
		}
	}

	return f.SetPanes(sh.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
