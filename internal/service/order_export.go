package service

import (
	"io"
	"procomp-service/internal/model"
	apperrors "procomp-service/pkg/app_errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var orderExportHeaders = []string{"ID", "Dátum", "Szállítás", "Fizetés", "Leírás", "Ügyfél", "Email", "Státusz", "Megjegyzés"}

const (
	OrderExportCSVName  = "rendelesek.csv"
	OrderExportXLSXName = "rendelesek.xlsx"
)

func orderExportRow(o *model.AdminOrder) []string {
	note := ""
	if o.Note != nil {
		note = flattenLines(*o.Note)
	}
	return []string{
		strconv.Itoa(o.TicketID),
		o.CreatedAt.UTC().Format(time.RFC3339),
		o.ShippingMethod,
		o.PaymentMethod,
		flattenLines(o.Description),
		o.CustomerName,
		o.CustomerEmail,
		string(o.Status),
		note,
	}
}

func flattenLines(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }), " ")
}

// WriteOrdersCSV 分號分隔，每個值都加引號，引號加倍
func WriteOrdersCSV(w io.Writer, orders []*model.AdminOrder) error {
	lines := make([]string, 0, len(orders)+1)
	lines = append(lines, strings.Join(orderExportHeaders, ";"))

	for _, o := range orders {
		row := orderExportRow(o)
		quoted := make([]string, len(row))
		for i, v := range row {
			quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		lines = append(lines, strings.Join(quoted, ";"))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// BuildOrdersWorkbook 與 CSV 相同欄位的 xlsx
func BuildOrdersWorkbook(orders []*model.AdminOrder) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Rendelesek"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range orderExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, o := range orders {
		for colIdx, v := range orderExportRow(o) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if colIdx == 0 {
				f.SetCellValue(sheet, cell, o.TicketID)
				continue
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	colWidths := []float64{8, 22, 14, 14, 40, 20, 26, 10, 30}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	return f, nil
}

// ExportFilename 依格式決定檔名
func ExportFilename(format string) (string, error) {
	switch format {
	case "", "csv":
		return OrderExportCSVName, nil
	case "xlsx":
		return OrderExportXLSXName, nil
	}
	return "", apperrors.NewValidationError("format", "must be csv or xlsx")
}
