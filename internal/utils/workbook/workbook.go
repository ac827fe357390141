// Package workbook reads back spreadsheets returned by the extraction service.
package workbook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/supchaser/pdftoxl/internal/app/models"
	"github.com/xuri/excelize/v2"
)

const (
	ErrorsSheet      = "Errors"
	sourceFileHeader = "Source File"
	errorHeader      = "Error"
)

// Inspect lists the sheets of an xlsx payload with their data row counts and
// collects the rows of the service's Errors sheet.
func Inspect(data []byte) (*models.WorkbookSummary, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	summary := &models.WorkbookSummary{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		dataRows := 0
		if len(rows) > 1 {
			dataRows = len(rows) - 1
		}
		summary.Sheets = append(summary.Sheets, models.SheetSummary{Name: sheet, Rows: dataRows})

		if sheet == ErrorsSheet {
			summary.Errors = append(summary.Errors, sheetErrors(rows)...)
		}
	}

	return summary, nil
}

func sheetErrors(rows [][]string) []models.SheetError {
	if len(rows) < 2 {
		return nil
	}

	sourceCol, errorCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case sourceFileHeader:
			sourceCol = i
		case errorHeader:
			errorCol = i
		}
	}
	if errorCol < 0 {
		return nil
	}

	out := make([]models.SheetError, 0, len(rows)-1)
	for _, row := range rows[1:] {
		e := models.SheetError{Error: cell(row, errorCol)}
		if sourceCol >= 0 {
			e.SourceFile = cell(row, sourceCol)
		}
		if e.Error == "" && e.SourceFile == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}
