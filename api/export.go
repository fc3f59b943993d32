package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"celengan/middleware"
	"celengan/models"
	"celengan/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportHandler transaction export endpoints
type ExportHandler struct {
	reports *service.ReportService
}

// NewExportHandler creates the export handler
func NewExportHandler(reports *service.ReportService) *ExportHandler {
	return &ExportHandler{reports: reports}
}

var exportHeaders = []string{"Tanggal", "Akun", "Kategori", "Tipe", "Jumlah", "Keterangan"}

// exportRange reads start_date and end_date and loads the rows between them
func (h *ExportHandler) exportRange(c *gin.Context) ([]models.Transaction, string, bool) {
	startStr, endStr := c.Query("start_date"), c.Query("end_date")
	if startStr == "" || endStr == "" {
		BadRequest(c, "start_date and end_date are required")
		return nil, "", false
	}
	start, err := parseDate(startStr)
	if err != nil {
		invalidDate(c, "start_date")
		return nil, "", false
	}
	end, err := parseDate(endStr)
	if err != nil {
		invalidDate(c, "end_date")
		return nil, "", false
	}

	rows, err := h.reports.ExportTransactions(c.Request.Context(), middleware.GetCurrentUserID(c), start, end)
	if err != nil {
		respondError(c, err, "could not load transactions")
		return nil, "", false
	}
	return rows, fmt.Sprintf("transaksi_%s_%s", startStr, endStr), true
}

func exportRow(t models.Transaction) []string {
	var account, category string
	if t.Account != nil {
		account = t.Account.Name
	}
	if t.Category != nil {
		category = t.Category.Name
	}
	return []string{
		t.TransactionDate.Format(dateLayout),
		account,
		category,
		string(t.Type),
		t.Amount.StringFixed(2),
		t.Description,
	}
}

// ExportCSV exports transactions in a date range as CSV
// @Summary Export transactions as CSV
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string true "first day (2024-01-01)"
// @Param end_date query string true "last day (2024-12-31)"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} Response
// @Router /api/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, name, ok := h.exportRange(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// BOM so spreadsheet apps pick UTF-8
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeaders); err != nil {
		InternalError(c, "could not build CSV")
		return
	}
	for _, t := range rows {
		if err := writer.Write(exportRow(t)); err != nil {
			InternalError(c, "could not build CSV")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "could not build CSV")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX exports transactions in a date range as an Excel workbook
// @Summary Export transactions as XLSX
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string true "first day (2024-01-01)"
// @Param end_date query string true "last day (2024-12-31)"
// @Success 200 {file} file "XLSX file"
// @Failure 400 {object} Response
// @Router /api/export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, name, ok := h.exportRange(c)
	if !ok {
		return
	}

	f, err := buildWorkbook(rows)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "could not build workbook"))
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", name))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "could not write workbook")
	}
}

func buildWorkbook(rows []models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Transaksi"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{Border: border})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFF59D"}, Pattern: 1},
		Border: border,
	})

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "C", 18)
	f.SetColWidth(sheet, "D", "D", 10)
	f.SetColWidth(sheet, "E", "E", 16)
	f.SetColWidth(sheet, "F", "F", 36)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	income, expense := decimal.Zero, decimal.Zero
	for i, t := range rows {
		row := i + 2
		values := exportRow(t)
		for col, v := range values {
			f.SetCellValue(sheet, fmt.Sprintf("%c%d", 'A'+col, row), v)
		}
		// amounts as numbers so spreadsheet formulas work
		amount, _ := t.Amount.Float64()
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), amount)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)

		if t.Type == models.TransactionTypeIncome {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}

	totals := len(rows) + 2
	inc, _ := income.Float64()
	exp, _ := expense.Float64()
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totals), "Pemasukan")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", totals), inc)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", totals), "Pengeluaran")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totals), exp)
	f.SetCellValue(sheet, fmt.Sprintf("E%d", totals), fmt.Sprintf("%d transaksi", len(rows)))
	f.MergeCell(sheet, fmt.Sprintf("E%d", totals), fmt.Sprintf("F%d", totals))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", totals), fmt.Sprintf("F%d", totals), totalStyle)

	return f, nil
}

