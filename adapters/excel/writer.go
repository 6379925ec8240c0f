package excel

import (
	"fmt"
	"math"

	"goimpact/internal/report"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Writer saves report tables as xlsx workbooks.
type Writer struct {
	log zerolog.Logger
}

func NewWriter(log zerolog.Logger) *Writer {
	return &Writer{log: log}
}

// WriteTable writes a single table to sheet in a new workbook at path.
func (w *Writer) WriteTable(path, sheet string, table report.Table) error {
	if sheet == "" {
		sheet = table.Name
	}
	table.Name = sheet
	return w.WriteWorkbook(path, []report.Table{table})
}

// WriteWorkbook writes each table to a sheet named after it.
func (w *Writer) WriteWorkbook(path string, tables []report.Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to write to %s", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}
		if err := writeSheet(f, t); err != nil {
			return fmt.Errorf("sheet %s: %w", t.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return err
	}
	w.log.Info().Str("path", path).Int("sheets", len(tables)).Msg("Wrote workbook")
	return nil
}

func writeSheet(f *excelize.File, t report.Table) error {
	for i, h := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(t.Name, cell, h); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			v, ok := cellValue(v, t.IsMoney(c))
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(t.Name, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellValue drops nil and non-finite values and rounds money to cents.
func cellValue(v interface{}, money bool) (interface{}, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
		if money {
			return decimal.NewFromFloat(x).Round(2).InexactFloat64(), true
		}
	}
	return v, true
}
