package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRowData represents a row of raw Excel data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete Excel dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// HasColumn reports whether a header exists.
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Require fails when any of the named columns is absent.
func (d *ExcelData) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !d.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Present reports whether the cell holds a non-empty value.
func (r RawRowData) Present(col string) bool {
	v, ok := r[col]
	if !ok {
		return false
	}
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "nan") && !strings.EqualFold(v, "null")
}

// String returns the trimmed cell value.
func (r RawRowData) String(col string) string {
	return strings.TrimSpace(r[col])
}

// Float parses the cell; ok is false when it is empty, not numeric or not finite.
func (r RawRowData) Float(col string) (float64, bool) {
	if !r.Present(col) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(r.String(col), ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Int parses an integer code. Spreadsheet codes often arrive as "2.0".
func (r RawRowData) Int(col string) (int, bool) {
	f, ok := r.Float(col)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Bool parses true/false, yes/no and 1/0.
func (r RawRowData) Bool(col string) (bool, bool) {
	switch strings.ToLower(r.String(col)) {
	case "true", "yes", "1", "1.0", "y":
		return true, true
	case "false", "no", "0", "0.0", "n":
		return false, true
	}
	return false, false
}
