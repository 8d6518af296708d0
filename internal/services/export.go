package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dashlite/dashlite/internal/models"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// ExportFormat names a supported download format.
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// ParseExportFormat reads the format query parameter, defaulting to xlsx.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "", string(ExportXLSX):
		return ExportXLSX, nil
	case string(ExportCSV):
		return ExportCSV, nil
	default:
		return "", srvErrors.NewValidationError("unknown export format %q", s)
	}
}

// ContentType returns the MIME type browsers expect for the format.
func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f ExportFormat) Extension() string {
	return string(f)
}

// ExportService turns a rendered chart into a downloadable file.
type ExportService struct {
	executor *ExecutorService
}

func NewExportService(executor *ExecutorService) *ExportService {
	return &ExportService{executor: executor}
}

// ExportChart runs the chart under the given filter values and writes the
// result to w in the requested format.
func (s *ExportService) ExportChart(ctx context.Context, w io.Writer, chartID string, values models.FilterValues, format ExportFormat) error {
	if format != ExportXLSX && format != ExportCSV {
		return srvErrors.NewValidationError("unknown export format %q", string(format))
	}

	result, err := s.executor.RenderChart(ctx, chartID, values)
	if err != nil {
		return err
	}

	if format == ExportCSV {
		return writeCSV(w, result)
	}
	return writeXLSX(w, result)
}

func writeXLSX(w io.Writer, result *models.ChartResult) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(result.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(result.Columns))
	for i, column := range result.Columns {
		header[i] = column
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range result.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		cells := make([]any, len(row))
		for j, value := range row {
			cells[j] = value
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, result *models.ChartResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(result.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range result.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// sheetName makes a chart name acceptable as a workbook sheet: the
// characters :\/?*[] are forbidden and names cap at 31 runes.
func sheetName(name string) string {
	replacer := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")
	name = strings.TrimSpace(replacer.Replace(name))
	if name == "" {
		name = "Chart"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = strings.TrimSpace(string(runes[:31]))
	}
	return name
}
